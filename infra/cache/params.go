package cache

import (
	"os"
	"time"

	"dario.cat/mergo"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
)

// EnvURL is the environment variable consulted for host and port.
const EnvURL = "REDIS_URL"

// Params are the positional connection parameters. Zero values are
// replaced by the defaults when decoded.
type Params struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// Timeout is the connect timeout in seconds; 0 keeps the client default.
	Timeout      float64 `json:"timeout"`
	PersistentID string  `json:"persistent_id"`
	// RetryInterval is the reconnect back-off in milliseconds.
	RetryInterval int  `json:"retry_interval"`
	Persistent    bool `json:"persistent"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{Host: "localhost", Port: 6379}
}

// Defaults is the static default section of the adapter.
func Defaults() adapter.Section {
	p := DefaultParams()
	return adapter.Section{
		"host":           p.Host,
		"port":           p.Port,
		"timeout":        p.Timeout,
		"persistent_id":  p.PersistentID,
		"retry_interval": p.RetryInterval,
		"persistent":     p.Persistent,
	}
}

// Section computes the effective configuration for the given overrides.
// A nil lookup reads the process environment.
func Section(overrides adapter.Section, lookup adapter.EnvLookup) adapter.Section {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return adapter.Resolve(Defaults(), overrides, lookup, adapter.URLOverride(EnvURL))
}

// DecodeParams extracts the connection parameters from sec, filling absent
// values with DefaultParams.
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

// Endpoint converts the parameters into the driver's connection endpoint.
func (p Params) Endpoint() Endpoint {
	return Endpoint{
		Host:          p.Host,
		Port:          p.Port,
		Timeout:       time.Duration(p.Timeout * float64(time.Second)),
		PersistentID:  p.PersistentID,
		RetryInterval: time.Duration(p.RetryInterval) * time.Millisecond,
	}
}
