package shell

import (
	"context"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Command is implemented by every inventory command.
// CommandType identifies the command for routing and observability, ForBookID names the entity it targets.
type Command interface {
	CommandType() string
	ForBookID() core.BookIDString
}

// CoreCommandHandler processes one command type without any observability concerns.
// It returns the business outcome in HandlerResult; rejections are not errors.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// DecideFunc is the pure decision of one command slice.
type DecideFunc[C Command] func(state core.InventoryState, command C) core.DecisionResult

// EventStore is the part of an event store engine the repository needs.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// SnapshotStore persists materialized states.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error
	LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error)
}

// Repository is the load/append boundary of the inventory.
type Repository interface {
	Load(ctx context.Context, bookID core.BookIDString) (core.InventoryState, eventstore.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		bookID core.BookIDString,
		expectedVersion eventstore.MaxSequenceNumberUint,
		events core.DomainEvents,
		metadata EventMetadata,
	) error
}
