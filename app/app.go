package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kilianp07/svckit/app/plugins"
	"github.com/kilianp07/svckit/config"
	"github.com/kilianp07/svckit/core/container"
	coremetrics "github.com/kilianp07/svckit/core/metrics"
	coremon "github.com/kilianp07/svckit/core/monitoring"
	"github.com/kilianp07/svckit/infra/cache"
	"github.com/kilianp07/svckit/infra/logger"
	"github.com/kilianp07/svckit/infra/metrics"
	"github.com/kilianp07/svckit/infra/monitoring"
	"github.com/kilianp07/svckit/infra/view"
	"github.com/kilianp07/svckit/internal/eventbus"
)

// App wires the configured services into a container.
type App struct {
	Config    *config.Config
	Container *container.Container
	Templates *view.Renderer
	Events    *eventbus.TypedBus[container.Event]

	recorder coremetrics.Recorder
	monitor  coremon.Monitor
	log      logger.Logger
}

// New creates an App from the configuration. No service is built.
func New(cfg *config.Config) (*App, error) {
	logger.SetLevel(cfg.Logging.Level)
	logg := logger.New("app")

	rec, err := coremetrics.NewRecorder(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry.Params())
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	bus := eventbus.NewTyped[container.Event]()
	c := container.New(
		container.WithLogger(logger.New("container")),
		container.WithRecorder(rec),
		container.WithMonitor(mon),
		container.WithBus(bus),
	)

	env := plugins.Env{Logger: logger.New, Monitor: mon}
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		f, ok := plugins.Adapters.Lookup(svc.Adapter)
		if !ok {
			bus.Close()
			return nil, fmt.Errorf("service %s: unknown adapter %s (known: %s)",
				name, svc.Adapter, strings.Join(plugins.Adapters.Names(), ", "))
		}
		def := container.Definition{Adapter: svc.Adapter, Shared: svc.Shared, Options: svc.Section()}
		if err := c.Register(name, def, f(env)); err != nil {
			bus.Close()
			return nil, err
		}
	}

	return &App{
		Config:    cfg,
		Container: c,
		Templates: view.New(os.DirFS(cfg.Templates.Dir), view.WithLogger(logger.New("view"))),
		Events:    bus,
		recorder:  rec,
		monitor:   mon,
		log:       logg,
	}, nil
}

// ServeMetrics exposes Prometheus metrics on the configured address until
// ctx is cancelled. It returns immediately when no address is configured.
func (a *App) ServeMetrics(ctx context.Context) error {
	if a.Config.Metrics.Address == "" {
		return nil
	}
	a.log.Infof("serving metrics on %s", a.Config.Metrics.Address)
	return metrics.StartPromServer(ctx, a.Config.Metrics.Address)
}

// CheckResult is the outcome of building one service.
type CheckResult struct {
	Service  string
	Adapter  string
	Duration time.Duration
	Err      error
}

// Check builds the named services, or all of them when names is empty,
// and releases every instance afterwards.
func (a *App) Check(ctx context.Context, names ...string) []CheckResult {
	if len(names) == 0 {
		names = a.Container.Names()
	}
	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		res := CheckResult{Service: name}
		if def, ok := a.Container.Definition(name); ok {
			res.Adapter = def.Adapter
		}
		start := time.Now()
		v, err := a.Container.Get(ctx, name)
		res.Duration = time.Since(start)
		res.Err = err
		if def, _ := a.Container.Definition(name); err == nil && !def.Shared {
			if cl, ok := v.(io.Closer); ok {
				_ = cl.Close()
			}
		}
		results = append(results, res)
	}
	return results
}

// Close releases cached services and the persistent redis pools, flushes
// reporting and stops the event bus.
func (a *App) Close() error {
	var errs []error
	if err := a.Container.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := cache.DefaultDriver.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if cl, ok := a.recorder.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.monitor.Flush(2 * time.Second)
	a.Events.Close()
	return errors.Join(errs...)
}
