package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/svckit/core/adapter"
	coremon "github.com/kilianp07/svckit/core/monitoring"
)

func TestBuild_Defaults(t *testing.T) {
	client, err := Build(adapter.Section{"release": "1.2.3"})
	require.NoError(t, err)
	assert.Equal(t, "production", client.Options().Environment)
	assert.Equal(t, "1.2.3", client.Options().Release)
}

func TestBuild_BadDSN(t *testing.T) {
	_, err := Build(adapter.Section{"dsn": "::not a dsn"})
	var ce *adapter.ConstructionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "sentry", ce.Service)
}

func TestNewSentryMonitor_NoDSN(t *testing.T) {
	m, err := NewSentryMonitor(Params{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestMonitor_SendsTaggedEvents(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dsn := strings.Replace(srv.URL, "http://", "http://public@", 1) + "/1"
	m, err := NewSentryMonitor(Params{DSN: dsn, Environment: "test"})
	require.NoError(t, err)

	m.CaptureException(errors.New("construct cache: refused"), map[string]string{"service": "cache"})
	m.CaptureException(nil, nil)
	assert.True(t, m.Flush(2*time.Second))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "construct cache: refused")
	assert.Contains(t, bodies[0], `"service":"cache"`)
}
