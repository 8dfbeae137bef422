package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `logging:
  level: debug
metrics:
  address: ":9102"
  sinks:
    - type: "prometheus"
      conf:
        namespace: "svckit"
sentry:
  dsn: ""
templates:
  dir: "./mail"
services:
  cache:
    adapter: redis
    shared: true
    options:
      host: localhost
      database: 2
  mailer:
    adapter: mail
    options:
      transport: smtp
      host: smtp.local
  pdf:
    adapter: pdf
    options:
      binary: /usr/bin/wkhtmltopdf
      enableXvfb: "1"
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9102", cfg.Metrics.Address)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "prometheus", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, "svckit", cfg.Metrics.Sinks[0].Conf["namespace"])
	assert.Equal(t, "production", cfg.Sentry.Environment)
	assert.Equal(t, "./mail", cfg.Templates.Dir)

	assert.Equal(t, []string{"cache", "mailer", "pdf"}, cfg.ServiceNames())
	cache := cfg.Services["cache"]
	assert.Equal(t, "redis", cache.Adapter)
	assert.True(t, cache.Shared)
	assert.Equal(t, "localhost", cache.Section().String("host"))
	assert.Equal(t, 2, cache.Section().Int("database"))
	assert.False(t, cfg.Services["mailer"].Shared)
	assert.Equal(t, "1", cfg.Services["pdf"].Options["enableXvfb"])
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SVC_SERVICES__CACHE__OPTIONS__HOST", "cache.internal")
	t.Setenv("SVC_LOGGING__LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "config.yaml", sample))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "cache.internal", cfg.Services["cache"].Options["host"])
	assert.Equal(t, 2, cfg.Services["cache"].Section().Int("database"))
}

func TestLoad_JSONAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"services": {"doc": {"adapter": "pdf"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "templates", cfg.Templates.Dir)
	assert.NotNil(t, cfg.Services["doc"].Options)
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.yaml", "services:\n  x:\n    shared: true\n"))
	assert.ErrorContains(t, err, "service x")

	_, err = Load(writeConfig(t, "config.yaml", "logging:\n  level: loud\n"))
	assert.ErrorContains(t, err, "logging")
}
