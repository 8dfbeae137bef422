// Package influx builds InfluxDB v2 clients from a service configuration
// section.
package influx

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/domain"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
	"github.com/kilianp07/svckit/infra/logger"
)

// Environment variables overriding url and token.
const (
	EnvURL   = "INFLUX_URL"
	EnvToken = "INFLUX_TOKEN"
)

// Params are the connection parameters.
type Params struct {
	URL            string `json:"url"`
	Token          string `json:"token"`
	Org            string `json:"org"`
	Bucket         string `json:"bucket"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	BatchSize      uint   `json:"batch_size"`
	HealthCheck    bool   `json:"health_check"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{URL: "http://localhost:8086", TimeoutSeconds: 5, BatchSize: 5000}
}

// Defaults is the static default section of the adapter.
func Defaults() adapter.Section {
	p := DefaultParams()
	return adapter.Section{
		"url":             p.URL,
		"timeout_seconds": p.TimeoutSeconds,
		"batch_size":      p.BatchSize,
		"health_check":    p.HealthCheck,
	}
}

func envOverride(sec adapter.Section, lookup adapter.EnvLookup) {
	for key, variable := range map[string]string{"url": EnvURL, "token": EnvToken} {
		if v, ok := lookup(variable); ok && v != "" {
			sec[key] = v
		}
	}
}

// Section computes the effective configuration for the given overrides.
func Section(overrides adapter.Section, lookup adapter.EnvLookup) adapter.Section {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return adapter.Resolve(Defaults(), overrides, lookup, envOverride)
}

// DecodeParams extracts the parameters from sec.
func DecodeParams(sec adapter.Section) (Params, error) {
	var p Params
	if err := factory.Decode(sec, &p); err != nil {
		return Params{}, err
	}
	if err := mergo.Merge(&p, DefaultParams()); err != nil {
		return Params{}, err
	}
	p.URL = strings.TrimSuffix(p.URL, "/api/v2/write")
	return p, nil
}

// Client is an InfluxDB client bound to an organisation and bucket.
type Client struct {
	influxdb2.Client
	org    string
	bucket string
}

// WriteAPI returns a non-blocking write API for the configured bucket.
func (c *Client) WriteAPI() api.WriteAPI { return c.Client.WriteAPI(c.org, c.bucket) }

// WriteAPIBlocking returns a blocking write API for the configured bucket.
func (c *Client) WriteAPIBlocking() api.WriteAPIBlocking {
	return c.Client.WriteAPIBlocking(c.org, c.bucket)
}

func (c *Client) Org() string    { return c.org }
func (c *Client) Bucket() string { return c.bucket }

// Close flushes pending writes and releases the HTTP client.
func (c *Client) Close() error {
	c.Client.Close()
	return nil
}

// Build creates a client for sec. No request is made unless health_check
// is set, in which case a failing check is a ConstructionError.
func Build(ctx context.Context, sec adapter.Section, log logger.Logger) (*Client, error) {
	p, err := DecodeParams(sec)
	if err != nil {
		return nil, adapter.Constructing("influx", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	timeout := time.Duration(p.TimeoutSeconds) * time.Second
	opts := influxdb2.DefaultOptions().
		SetHTTPClient(&http.Client{Timeout: timeout}).
		SetBatchSize(p.BatchSize)
	c := &Client{Client: influxdb2.NewClientWithOptions(p.URL, p.Token, opts), org: p.Org, bucket: p.Bucket}

	if !p.HealthCheck {
		log.Debugf("influx client for %s (no health check)", p.URL)
		return c, nil
	}
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	health, err := c.Health(hctx)
	if err == nil && health.Status != domain.HealthCheckStatusPass {
		err = fmt.Errorf("health status %s", health.Status)
	}
	if err != nil {
		c.Client.Close()
		return nil, adapter.Constructing("influx", fmt.Errorf("%s: %w", p.URL, err))
	}
	log.Debugf("influx client for %s healthy", p.URL)
	return c, nil
}
