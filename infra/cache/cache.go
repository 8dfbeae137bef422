package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/kilianp07/svckit/core/adapter"
)

const serviceName = "cache"

// Endpoint identifies the server and connection behaviour.
type Endpoint struct {
	Host          string
	Port          int
	Timeout       time.Duration
	PersistentID  string
	RetryInterval time.Duration
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Conn is a live connection as returned by a Driver.
type Conn interface {
	Auth(ctx context.Context, password string) error
	Select(ctx context.Context, index int) error
	Close() error
}

// Driver opens connections. Connect opens a dedicated connection; PConnect
// reuses a connection pool that outlives the returned Conn.
type Driver interface {
	Connect(ctx context.Context, ep Endpoint) (Conn, error)
	PConnect(ctx context.Context, ep Endpoint) (Conn, error)
}

// Build connects with the parameters in sec and applies the configured
// authentication and database selection. A failing step leaves the
// connection opened by the earlier steps as is.
func Build(ctx context.Context, sec adapter.Section, drv Driver) (Conn, error) {
	p, err := DecodeParams(sec)
	if err != nil {
		return nil, adapter.Constructing(serviceName, err)
	}
	ep := p.Endpoint()

	var conn Conn
	if p.Persistent {
		conn, err = drv.PConnect(ctx, ep)
	} else {
		conn, err = drv.Connect(ctx, ep)
	}
	if err != nil {
		return nil, adapter.Constructing(serviceName, err)
	}
	if sec.Has("password") {
		if err := conn.Auth(ctx, sec.String("password")); err != nil {
			return nil, adapter.Constructing(serviceName, err)
		}
	}
	// database 0 is the server default and counts as empty.
	if sec.Has("database") && sec.Int("database") != 0 {
		if err := conn.Select(ctx, sec.Int("database")); err != nil {
			return nil, adapter.Constructing(serviceName, err)
		}
	}
	return conn, nil
}

// New resolves the effective configuration from overrides and the process
// environment and builds a connection with DefaultDriver.
func New(ctx context.Context, overrides adapter.Section) (Conn, error) {
	return Build(ctx, Section(overrides, nil), DefaultDriver)
}
