package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/svckit/infra/logger"
)

// DefaultDriver is the process-wide driver; its persistent pools live as
// long as the process.
var DefaultDriver = NewRedisDriver()

// RedisDriver opens connections with go-redis.
type RedisDriver struct {
	mu    sync.Mutex
	pools map[string]*redis.Client
	log   logger.Logger
	// PoolSize bounds persistent pools.
	PoolSize int
}

// NewRedisDriver returns a driver with no persistent pools.
func NewRedisDriver() *RedisDriver {
	return &RedisDriver{
		pools:    make(map[string]*redis.Client),
		log:      logger.New("cache"),
		PoolSize: 10,
	}
}

func options(ep Endpoint, poolSize int) *redis.Options {
	opts := &redis.Options{
		Addr:     ep.Addr(),
		PoolSize: poolSize,
	}
	if ep.Timeout > 0 {
		opts.DialTimeout = ep.Timeout
	}
	if ep.RetryInterval > 0 {
		opts.MinRetryBackoff = ep.RetryInterval
		opts.MaxRetryBackoff = ep.RetryInterval
	}
	return opts
}

// Connect opens a dedicated connection.
func (d *RedisDriver) Connect(ctx context.Context, ep Endpoint) (Conn, error) {
	d.log.Debugf("connecting to %s", ep.Addr())
	return open(ctx, redis.NewClient(options(ep, 1)), false)
}

// PConnect takes a connection from the persistent pool of the endpoint,
// creating the pool on first use. Pools are keyed by address and
// persistent id.
func (d *RedisDriver) PConnect(ctx context.Context, ep Endpoint) (Conn, error) {
	key := poolKey(ep)
	d.mu.Lock()
	rdb, ok := d.pools[key]
	if !ok {
		rdb = redis.NewClient(options(ep, d.PoolSize))
		d.pools[key] = rdb
	}
	d.mu.Unlock()
	d.log.Debugf("persistent connection to %s (reused pool: %t)", ep.Addr(), ok)
	return open(ctx, rdb, true)
}

// Pools returns the number of persistent pools.
func (d *RedisDriver) Pools() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pools)
}

// Shutdown closes every persistent pool.
func (d *RedisDriver) Shutdown() error {
	d.mu.Lock()
	pools := d.pools
	d.pools = make(map[string]*redis.Client)
	d.mu.Unlock()
	var errs []error
	for key, rdb := range pools {
		if err := rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pool %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func poolKey(ep Endpoint) string {
	return ep.Addr() + "/" + ep.PersistentID
}

// open establishes the socket with a PING. A server error reply, such as
// NOAUTH before authentication, still means the connection is up.
func open(ctx context.Context, rdb *redis.Client, persistent bool) (*RedisConn, error) {
	conn := rdb.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		var reply redis.Error
		if !errors.As(err, &reply) {
			_ = conn.Close()
			if !persistent {
				_ = rdb.Close()
			}
			return nil, err
		}
	}
	return &RedisConn{Conn: conn, pool: rdb, persistent: persistent}, nil
}

// RedisConn is a single stateful connection. All go-redis commands are
// available through the embedded *redis.Conn.
type RedisConn struct {
	*redis.Conn
	pool       *redis.Client
	persistent bool
}

// Auth authenticates the connection.
func (c *RedisConn) Auth(ctx context.Context, password string) error {
	return c.Conn.Auth(ctx, password).Err()
}

// Select switches the connection to the database at index.
func (c *RedisConn) Select(ctx context.Context, index int) error {
	return c.Conn.Select(ctx, index).Err()
}

// Persistent reports whether the connection belongs to a persistent pool.
func (c *RedisConn) Persistent() bool { return c.persistent }

// Close releases the connection. Dedicated connections also close their
// client; persistent pools stay open for reuse.
func (c *RedisConn) Close() error {
	err := c.Conn.Close()
	if !c.persistent {
		if perr := c.pool.Close(); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}
