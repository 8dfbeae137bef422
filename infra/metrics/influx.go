package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/svckit/core/metrics"
	"github.com/kilianp07/svckit/infra/logger"
)

// InfluxRecorder writes build records to an InfluxDB instance using the official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder configured for the given InfluxDB endpoint.
func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback pings the InfluxDB instance and returns a
// NopRecorder if the health check fails.
func NewInfluxRecorderWithFallback(url, token, org, bucket string) coremetrics.Recorder {
	rec := NewInfluxRecorder(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordBuild writes the record as a service_build point.
func (r *InfluxRecorder) RecordBuild(rec coremetrics.BuildRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("service_build").
		AddTag("service", rec.Service).
		AddTag("adapter", rec.Adapter).
		AddTag("shared", strconv.FormatBool(rec.Shared)).
		AddTag("outcome", rec.Outcome()).
		AddField("duration_ms", float64(rec.Duration.Microseconds())/1000).
		SetTime(ts)
	return r.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (r *InfluxRecorder) Close() error {
	r.client.Close()
	return nil
}
