package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/logger"
	"github.com/kilianp07/svckit/core/metrics"
	"github.com/kilianp07/svckit/core/monitoring"
	"github.com/kilianp07/svckit/internal/eventbus"
)

// ErrUnknownService is returned by Get for names that were never registered.
var ErrUnknownService = errors.New("unknown service")

// Builder constructs the instance of a service from its options.
type Builder func(ctx context.Context, name string, opts adapter.Section) (any, error)

// Definition describes how a service is built.
type Definition struct {
	Adapter string          `json:"adapter"`
	Shared  bool            `json:"shared"`
	Options adapter.Section `json:"options"`
}

// Event is published after every Get.
type Event struct {
	ID       string
	Service  string
	Adapter  string
	Shared   bool
	Cached   bool
	Duration time.Duration
	Err      error
	Time     time.Time
}

type entry struct {
	def   Definition
	build Builder

	mu       sync.Mutex
	instance any
	built    bool
}

// Container builds and caches named services. It is safe for concurrent use.
type Container struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	log logger.Logger
	rec metrics.Recorder
	mon monitoring.Monitor
	bus *eventbus.TypedBus[Event]
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l logger.Logger) Option { return func(c *Container) { c.log = l } }

// WithRecorder sets the build metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *Container) { c.rec = r } }

// WithMonitor sets the error reporter notified of failed builds.
func WithMonitor(m monitoring.Monitor) Option { return func(c *Container) { c.mon = m } }

// WithBus sets the bus on which build events are published.
func WithBus(b *eventbus.TypedBus[Event]) Option { return func(c *Container) { c.bus = b } }

// New returns an empty Container.
func New(opts ...Option) *Container {
	c := &Container{
		entries: make(map[string]*entry),
		log:     nopLogger{},
		rec:     metrics.NopRecorder{},
		mon:     monitoring.NopMonitor{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Register adds a service definition. Names are unique.
func (c *Container) Register(name string, def Definition, build Builder) error {
	if build == nil {
		return fmt.Errorf("service %s: nil builder", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		return fmt.Errorf("service %s already registered", name)
	}
	def.Options = def.Options.Clone()
	c.entries[name] = &entry{def: def, build: build}
	return nil
}

// Names lists the registered services in sorted order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Definition returns the definition registered under name.
func (c *Container) Definition(name string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return Definition{}, false
	}
	return e.def, true
}

// Get returns the instance of the named service, building it if needed.
func (c *Container) Get(ctx context.Context, name string) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	if !e.def.Shared {
		return c.build(ctx, name, e)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.built {
		c.publish(Event{ID: uuid.NewString(), Service: name, Adapter: e.def.Adapter, Shared: true, Cached: true, Time: time.Now()})
		return e.instance, nil
	}
	inst, err := c.build(ctx, name, e)
	if err != nil {
		return nil, err
	}
	e.instance, e.built = inst, true
	c.mu.Lock()
	c.order = append(c.order, name)
	c.mu.Unlock()
	return inst, nil
}

func (c *Container) build(ctx context.Context, name string, e *entry) (any, error) {
	start := time.Now()
	inst, err := e.build(ctx, name, e.def.Options.Clone())
	if err == nil && inst == nil {
		err = adapter.Constructing(name, errors.New("builder returned no instance"))
	}
	dur := time.Since(start)
	id := uuid.NewString()

	if err != nil {
		c.log.Errorf("build %s (%s) failed after %s: %v", name, e.def.Adapter, dur, err)
		c.mon.CaptureException(err, map[string]string{"service": name, "adapter": e.def.Adapter, "build_id": id})
	} else {
		c.log.Debugw("service built", map[string]any{
			"service":  name,
			"adapter":  e.def.Adapter,
			"shared":   e.def.Shared,
			"duration": dur.String(),
			"build_id": id,
		})
	}
	if rerr := c.rec.RecordBuild(metrics.BuildRecord{
		Service:  name,
		Adapter:  e.def.Adapter,
		Shared:   e.def.Shared,
		Duration: dur,
		Err:      err,
		Time:     start,
	}); rerr != nil {
		c.log.Warnf("record build %s: %v", name, rerr)
	}
	c.publish(Event{ID: id, Service: name, Adapter: e.def.Adapter, Shared: e.def.Shared, Duration: dur, Err: err, Time: start})
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", name, err)
	}
	return inst, nil
}

func (c *Container) publish(ev Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

// Close closes the cached shared instances that implement io.Closer, most
// recently built first, and forgets them.
func (c *Container) Close() error {
	c.mu.Lock()
	order := c.order
	c.order = nil
	c.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		c.mu.RLock()
		e := c.entries[order[i]]
		c.mu.RUnlock()
		e.mu.Lock()
		inst := e.instance
		e.instance, e.built = nil, false
		e.mu.Unlock()
		if cl, ok := inst.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", order[i], err))
			}
		}
	}
	return errors.Join(errs...)
}

// Resolve fetches the named service and asserts its type.
func Resolve[T any](ctx context.Context, c *Container, name string) (T, error) {
	var zero T
	inst, err := c.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	v, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("service %s is %T, not %T", name, inst, zero)
	}
	return v, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Infow(string, map[string]any)  {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
