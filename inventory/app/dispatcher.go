// Package app wires every inventory command slice and catalog reaction into one shell.Dispatcher.
package app

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/allowloansextension"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/appendinventory"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/borrowbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/extendloanperiod"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/forbidloansextension"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markloanoverdue"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markloanshouldreturnsoon"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markreservationexpired"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reportlostbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reservebook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/returnbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/satisfyreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/writebookoff"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/reaction/catalogreaction"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell/observable"
)

// Observability is optional. Each handler is wrapped with an observable.CommandWrapper
// if at least one of the fields is set.
type Observability struct {
	MetricsCollector shell.MetricsCollector
	TracingCollector shell.TracingCollector
	ContextualLogger shell.ContextualLogger
	Logger           shell.Logger
}

func (o Observability) enabled() bool {
	return o.MetricsCollector != nil || o.TracingCollector != nil || o.ContextualLogger != nil || o.Logger != nil
}

// Config bundles what NewDispatcher needs besides the repository.
type Config struct {
	Observability     Observability
	HandlerOptions    []shell.HandlerOption
	DispatcherOptions []shell.DispatcherOption
}

// NewDispatcher routes all command and reaction handlers on repository.
func NewDispatcher(repository shell.Repository, cfg Config) (*shell.Dispatcher, error) {
	d, err := shell.NewDispatcher(cfg.DispatcherOptions...)
	if err != nil {
		return nil, err
	}

	opts := cfg.HandlerOptions
	obs := cfg.Observability

	routes := []func() error{
		func() error { return route(d, obs, appendinventory.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, borrowbook.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, returnbook.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, reservebook.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, cancelreservation.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, markreservationexpired.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, satisfyreservation.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, writebookoff.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, reportlostbook.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, extendloanperiod.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, markloanoverdue.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, markloanshouldreturnsoon.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, forbidloansextension.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, allowloansextension.NewCommandHandler(repository, opts...)) },
		func() error { return route(d, obs, catalogreaction.NewBookAddedHandler(repository, opts...)) },
		func() error { return route(d, obs, catalogreaction.NewBookRemovedHandler(repository, opts...)) },
	}

	for _, r := range routes {
		if err := r(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func route[C shell.Command](d *shell.Dispatcher, obs Observability, handler shell.CommandHandler[C]) error {
	if !obs.enabled() {
		return shell.Route[C](d, handler)
	}

	wrapper, err := observable.NewCommandWrapper[C](
		handler,
		observable.WithCommandMetrics[C](obs.MetricsCollector),
		observable.WithCommandTracing[C](obs.TracingCollector),
		observable.WithCommandContextualLogging[C](obs.ContextualLogger),
		observable.WithCommandLogging[C](obs.Logger),
	)
	if err != nil {
		return err
	}

	return shell.Route[C](d, wrapper)
}
