package adapter

import (
	"os"
	"regexp"
)

// EnvLookup reads an environment variable. os.LookupEnv satisfies it.
type EnvLookup func(key string) (string, bool)

// EnvOverride adjusts a section from the environment. Overrides never fail:
// a missing or malformed variable leaves the section untouched.
type EnvOverride func(sec Section, lookup EnvLookup)

var connURL = regexp.MustCompile(`^\w[\w+.-]*://([^:/]+):(\d+)`)

// URLOverride parses a connection string of the form scheme://host:port from
// variable and sets the host and port keys. The scheme is ignored.
func URLOverride(variable string) EnvOverride {
	return func(sec Section, lookup EnvLookup) {
		raw, ok := lookup(variable)
		if !ok {
			return
		}
		m := connURL.FindStringSubmatch(raw)
		if m == nil {
			return
		}
		sec["host"] = m[1]
		sec["port"] = m[2]
	}
}

// Resolve computes the effective configuration of a service. Environment
// overrides are applied to the defaults first so that explicit overrides
// still win on key collision.
func Resolve(defaults, overrides Section, lookup EnvLookup, env ...EnvOverride) Section {
	base := defaults.Clone()
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, apply := range env {
		apply(base, lookup)
	}
	return Merge(base, overrides)
}
