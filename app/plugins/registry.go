package plugins

import (
	"github.com/kilianp07/svckit/core/container"
	"github.com/kilianp07/svckit/core/factory"
	coremon "github.com/kilianp07/svckit/core/monitoring"
	"github.com/kilianp07/svckit/infra/logger"
)

// Env carries the shared collaborators handed to every adapter.
type Env struct {
	// Logger returns the logger for a service.
	Logger  func(service string) logger.Logger
	Monitor coremon.Monitor
}

func (e Env) logger(service string) logger.Logger {
	if e.Logger == nil {
		return logger.NopLogger{}
	}
	return e.Logger(service)
}

func (e Env) monitor() coremon.Monitor {
	if e.Monitor == nil {
		return coremon.NopMonitor{}
	}
	return e.Monitor
}

// AdapterFactory returns the container builder of an adapter.
type AdapterFactory func(env Env) container.Builder

// Adapters holds the adapter factories by name.
var Adapters = factory.NewRegistry[AdapterFactory]()

// RegisterAdapter adds an adapter under name.
func RegisterAdapter(name string, f AdapterFactory) error { return Adapters.Register(name, f) }
