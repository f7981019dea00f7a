// Package breaker decorates an event store with a circuit breaker (sony/gobreaker).
//
// Infrastructure failures (unreachable database, failing statements) count as failures.
// eventstore.ErrConcurrencyConflict and context cancellation count as successes: they say nothing about the
// health of the database. While the circuit is open, calls fail fast with ErrCircuitOpen.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

const (
	defaultName                = "eventstore"
	defaultMaxRequests         = 1
	defaultInterval            = time.Minute
	defaultOpenTimeout         = 10 * time.Second
	defaultConsecutiveFailures = 5

	MetricStateChanges = "eventstore_circuit_breaker_state_changes_total"

	logMsgStateChanged = "eventstore circuit breaker state changed"
	logAttrName        = "name"
	logAttrFrom        = "from"
	logAttrTo          = "to"
)

// ErrCircuitOpen is returned while the circuit is open or half-open and saturated.
var ErrCircuitOpen = errors.New("eventstore circuit breaker is open")

// Store is the event store contract that gets protected.
type Store interface {
	Query(ctx context.Context, filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// EventStore wraps a Store with a circuit breaker. It implements Store itself.
type EventStore struct {
	next    Store
	cb      *gobreaker.CircuitBreaker[queryResult]
	config  config
	metrics eventstore.MetricsCollector
	logger  eventstore.Logger
}

type queryResult struct {
	events eventstore.StorableEvents
	maxSeq eventstore.MaxSequenceNumberUint
}

type config struct {
	name                string
	maxRequests         uint32
	interval            time.Duration
	openTimeout         time.Duration
	consecutiveFailures uint32
}

// Option configures the EventStore.
type Option func(*EventStore)

func WithName(name string) Option {
	return func(es *EventStore) { es.config.name = name }
}

// WithMaxRequests sets the number of trial requests allowed in the half-open state.
func WithMaxRequests(n uint32) Option {
	return func(es *EventStore) { es.config.maxRequests = n }
}

// WithInterval sets the cyclic period of the closed state after which the failure counts are cleared.
func WithInterval(d time.Duration) Option {
	return func(es *EventStore) { es.config.interval = d }
}

// WithOpenTimeout sets how long the circuit stays open before it becomes half-open.
func WithOpenTimeout(d time.Duration) Option {
	return func(es *EventStore) { es.config.openTimeout = d }
}

// WithConsecutiveFailures sets after how many consecutive failures the circuit opens.
func WithConsecutiveFailures(n uint32) Option {
	return func(es *EventStore) { es.config.consecutiveFailures = n }
}

func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) { es.metrics = collector }
}

func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) { es.logger = logger }
}

// New wraps next with a circuit breaker.
func New(next Store, options ...Option) *EventStore {
	es := &EventStore{
		next: next,
		config: config{
			name:                defaultName,
			maxRequests:         defaultMaxRequests,
			interval:            defaultInterval,
			openTimeout:         defaultOpenTimeout,
			consecutiveFailures: defaultConsecutiveFailures,
		},
	}

	for _, option := range options {
		option(es)
	}

	threshold := es.config.consecutiveFailures

	es.cb = gobreaker.NewCircuitBreaker[queryResult](gobreaker.Settings{
		Name:        es.config.name,
		MaxRequests: es.config.maxRequests,
		Interval:    es.config.interval,
		Timeout:     es.config.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: es.onStateChange,
		IsSuccessful:  isSuccessful,
	})

	return es
}

// Query delegates to the wrapped store unless the circuit is open.
func (es *EventStore) Query(
	ctx context.Context,
	filter eventstore.Filter,
) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error) {

	result, err := es.cb.Execute(func() (queryResult, error) {
		events, maxSeq, queryErr := es.next.Query(ctx, filter)

		return queryResult{events: events, maxSeq: maxSeq}, queryErr
	})
	if err != nil {
		return nil, 0, mapOpenState(err)
	}

	return result.events, result.maxSeq, nil
}

// Append delegates to the wrapped store unless the circuit is open.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	_, err := es.cb.Execute(func() (queryResult, error) {
		return queryResult{}, es.next.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
	})

	return mapOpenState(err)
}

// State returns the current state of the circuit: "closed", "half-open" or "open".
func (es *EventStore) State() string {
	return es.cb.State().String()
}

func (es *EventStore) onStateChange(name string, from gobreaker.State, to gobreaker.State) {
	if es.logger != nil {
		es.logger.Warn(logMsgStateChanged, logAttrName, name, logAttrFrom, from.String(), logAttrTo, to.String())
	}

	if es.metrics != nil {
		es.metrics.IncrementCounter(MetricStateChanges, map[string]string{
			logAttrName: name,
			logAttrFrom: from.String(),
			logAttrTo:   to.String(),
		})
	}
}

func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, eventstore.ErrConcurrencyConflict) ||
		errors.Is(err, context.Canceled)
}

func mapOpenState(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrCircuitOpen, err)
	}

	return err
}
