// Package monitoring builds Sentry clients from a service configuration
// section and reports errors to them.
package monitoring

import (
	"time"

	"dario.cat/mergo"
	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
	coremon "github.com/kilianp07/svckit/core/monitoring"
)

// Params define settings for Sentry error monitoring.
type Params struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Debug            bool    `json:"debug"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{Environment: "production"}
}

// Defaults is the static default section of the adapter.
func Defaults() adapter.Section {
	return adapter.Section{"environment": DefaultParams().Environment}
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
	return p, nil
}

// Build creates a Sentry client. An empty DSN yields a client that drops
// every event.
func Build(sec adapter.Section) (*sentry.Client, error) {
	p, err := DecodeParams(sec)
	if err != nil {
		return nil, adapter.Constructing("sentry", err)
	}
	return NewClient(p)
}

// NewClient creates a Sentry client from p.
func NewClient(p Params) (*sentry.Client, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              p.DSN,
		Environment:      p.Environment,
		Release:          p.Release,
		TracesSampleRate: p.TracesSampleRate,
		Debug:            p.Debug,
	})
	if err != nil {
		return nil, adapter.Constructing("sentry", err)
	}
	return client, nil
}

// NewSentryMonitor returns a Monitor for p, or a NopMonitor when no DSN is
// configured.
func NewSentryMonitor(p Params) (coremon.Monitor, error) {
	if p.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	client, err := NewClient(p)
	if err != nil {
		return nil, err
	}
	return NewMonitor(client), nil
}

// NewMonitor reports to client through a dedicated hub.
func NewMonitor(client *sentry.Client) coremon.Monitor {
	return &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}
}

type sentryMonitor struct {
	hub *sentry.Hub
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		s.hub.CaptureException(err)
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		s.hub.CaptureException(err)
	})
}

func (s *sentryMonitor) Flush(timeout time.Duration) bool { return s.hub.Flush(timeout) }
