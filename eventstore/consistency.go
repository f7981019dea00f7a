package eventstore

import "context"

// ConsistencyLevel selects between the primary and a read replica for queries.
// Only stores constructed with a replica look at it.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handling needs it: a decision must see every
	// event that was appended before it, otherwise the append fails with ErrConcurrencyConflict anyway.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency may read from a replica. Fine for reports and read models.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key holding the ConsistencyLevel.
const ConsistencyLevelKey contextKey = "eventstore.consistency_level"

func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if there is none.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
