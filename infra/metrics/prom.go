package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/svckit/core/metrics"
)

// PromRecorder records service builds in Prometheus metrics.
type PromRecorder struct {
	builds  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewPromRecorder registers build metrics on the default Prometheus registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry("", prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer and an empty
// namespace to "svckit".
func NewPromRecorderWithRegistry(namespace string, reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "svckit"
	}
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "builds_total",
		Help:      "Total number of service construction attempts",
	}, []string{"service", "adapter", "shared", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Time spent constructing a service instance",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "adapter"})

	if err := reg.Register(builds); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		builds = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(latency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		latency = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return &PromRecorder{builds: builds, latency: latency}, nil
}

// RecordBuild increments the build counter and observes the build duration.
func (r *PromRecorder) RecordBuild(rec coremetrics.BuildRecord) error {
	r.builds.WithLabelValues(rec.Service, rec.Adapter, strconv.FormatBool(rec.Shared), rec.Outcome()).Inc()
	r.latency.WithLabelValues(rec.Service, rec.Adapter).Observe(rec.Duration.Seconds())
	return nil
}
