package config

import "github.com/kilianp07/svckit/infra/monitoring"

// SentryConfig defines settings for Sentry error monitoring. An empty DSN
// disables reporting.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	Debug            bool    `json:"debug"`
}

func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = monitoring.DefaultParams().Environment
	}
}

// Params converts the section for the monitoring package.
func (c SentryConfig) Params() monitoring.Params {
	return monitoring.Params{
		DSN:              c.DSN,
		Environment:      c.Environment,
		Release:          c.Release,
		TracesSampleRate: c.TracesSampleRate,
		Debug:            c.Debug,
	}
}
