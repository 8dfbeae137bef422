package metrics

import "github.com/kilianp07/svckit/core/factory"

// Config defines the configured build recorders.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Address serves /metrics when non-empty, e.g. ":9102".
	Address string `json:"address"`
}
