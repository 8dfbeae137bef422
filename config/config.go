package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/svckit/core/metrics"
)

// EnvPrefix marks environment variables overriding file values. Levels are
// separated by a double underscore: SVC_SERVICES__CACHE__OPTIONS__HOST.
const EnvPrefix = "SVC_"

type Config struct {
	Logging   LoggingConfig            `json:"logging"`
	Metrics   metrics.Config           `json:"metrics"`
	Sentry    SentryConfig             `json:"sentry"`
	Templates TemplatesConfig          `json:"templates"`
	Services  map[string]ServiceConfig `json:"services"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
	c.Templates.SetDefaults()
	for name, svc := range c.Services {
		svc.SetDefaults()
		c.Services[name] = svc
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for _, name := range c.ServiceNames() {
		if err := c.Services[name].Validate(); err != nil {
			return fmt.Errorf("service %s: %w", name, err)
		}
	}
	return nil
}

// ServiceNames lists the configured services in sorted order.
func (c Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for n := range c.Services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
