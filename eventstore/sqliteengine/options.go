package sqliteengine

import (
	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the events table name. The embedded migrations only create the default table.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithSnapshotTableName sets the snapshots table name.
func WithSnapshotTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptySnapshotsTableName
		}

		es.snapshotTableName = tableName

		return nil
	}
}

func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.obs.Logger = logger
		return nil
	}
}

func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.obs.ContextualLogger = logger
		return nil
	}
}

func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.obs.Metrics = collector
		return nil
	}
}

func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.obs.Tracing = collector
		return nil
	}
}
