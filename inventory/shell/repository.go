package shell

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const (
	// SnapshotProjectionType keys the snapshots of materialized inventory states.
	SnapshotProjectionType = "InventoryState"

	defaultSnapshotEvery = 50
	snapshotSaveTimeout  = 2 * time.Second

	snapshotReasonMiss           = "snapshot_miss"
	snapshotReasonLoadError      = "snapshot_load_error"
	snapshotReasonQueryError     = "incremental_query_error"
	snapshotReasonUnmarshalError = "unmarshal_error"
	snapshotReasonDecodeError    = "deserialize_error"
)

var (
	ErrNilEventStore            = errors.New("event store must not be nil")
	ErrNilSnapshotStore         = errors.New("snapshot store must not be nil")
	ErrInvalidSnapshotInterval  = errors.New("snapshot interval must be positive")
	ErrLoadingInventoryFailed   = errors.New("loading inventory failed")
	ErrAppendingInventoryFailed = errors.New("appending inventory events failed")
)

// BuildBookFilter selects the whole event history of one book.
// Query and Append use the same filter, so concurrent writers to the same book conflict.
func BuildBookFilter(bookID core.BookIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.EventTypes()...).
		AndAnyPredicateOf(eventstore.P("BookID", bookID)).
		Finalize()
}

// EventSourcedRepository loads an InventoryState by replaying the book's events and appends new ones
// guarded by the version that was loaded.
//
// With WithSnapshots it restores the state from a snapshot and only replays newer events.
// Snapshots are an optimization: any snapshot failure falls back to a full replay.
type EventSourcedRepository struct {
	eventStore       EventStore
	snapshots        SnapshotStore
	snapshotEvery    int
	logger           Logger
	contextualLogger ContextualLogger
}

// RepositoryOption configures an EventSourcedRepository.
type RepositoryOption func(*EventSourcedRepository) error

// WithSnapshots enables snapshots, which are saved after every snapshotEvery replayed events (default 50).
func WithSnapshots(store SnapshotStore) RepositoryOption {
	return func(r *EventSourcedRepository) error {
		if store == nil {
			return ErrNilSnapshotStore
		}

		r.snapshots = store

		return nil
	}
}

func WithSnapshotEvery(events int) RepositoryOption {
	return func(r *EventSourcedRepository) error {
		if events <= 0 {
			return ErrInvalidSnapshotInterval
		}

		r.snapshotEvery = events

		return nil
	}
}

func WithRepositoryLogger(logger Logger) RepositoryOption {
	return func(r *EventSourcedRepository) error {
		r.logger = logger

		return nil
	}
}

func WithRepositoryContextualLogger(logger ContextualLogger) RepositoryOption {
	return func(r *EventSourcedRepository) error {
		r.contextualLogger = logger

		return nil
	}
}

func NewEventSourcedRepository(eventStore EventStore, options ...RepositoryOption) (*EventSourcedRepository, error) {
	if eventStore == nil {
		return nil, ErrNilEventStore
	}

	r := &EventSourcedRepository{
		eventStore:    eventStore,
		snapshotEvery: defaultSnapshotEvery,
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Load returns the current state of the book and the version to pass to Append.
func (r *EventSourcedRepository) Load(
	ctx context.Context,
	bookID core.BookIDString,
) (core.InventoryState, eventstore.MaxSequenceNumberUint, error) {

	filter := BuildBookFilter(bookID)

	if r.snapshots != nil {
		if state, version, ok := r.loadFromSnapshot(ctx, bookID, filter); ok {
			return state, version, nil
		}
	}

	storableEvents, version, err := r.eventStore.Query(ctx, filter)
	if err != nil {
		return core.InventoryState{}, 0, errors.Join(ErrLoadingInventoryFailed, err)
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return core.InventoryState{}, 0, errors.Join(ErrLoadingInventoryFailed, err)
	}

	state := core.Replay(bookID, history)

	if r.snapshots != nil && len(history) >= r.snapshotEvery {
		r.saveSnapshot(ctx, filter, version, state)
	}

	return state, version, nil
}

// Append stores events atomically, or fails with eventstore.ErrConcurrencyConflict if the book changed
// after expectedVersion was loaded.
func (r *EventSourcedRepository) Append(
	ctx context.Context,
	bookID core.BookIDString,
	expectedVersion eventstore.MaxSequenceNumberUint,
	events core.DomainEvents,
	metadata EventMetadata,
) error {

	if len(events) == 0 {
		return nil
	}

	storableEvents, err := StorableEventsFrom(events, metadata)
	if err != nil {
		return errors.Join(ErrAppendingInventoryFailed, err)
	}

	if err := r.eventStore.Append(ctx, BuildBookFilter(bookID), expectedVersion, storableEvents[0], storableEvents[1:]...); err != nil {
		if errors.Is(err, eventstore.ErrConcurrencyConflict) {
			return err
		}

		return errors.Join(ErrAppendingInventoryFailed, err)
	}

	return nil
}

func (r *EventSourcedRepository) loadFromSnapshot(
	ctx context.Context,
	bookID core.BookIDString,
	filter eventstore.Filter,
) (core.InventoryState, eventstore.MaxSequenceNumberUint, bool) {

	snapshot, err := r.snapshots.LoadSnapshot(ctx, SnapshotProjectionType, filter)
	if err != nil {
		r.logFallback(ctx, snapshotReasonLoadError, err)

		return core.InventoryState{}, 0, false
	}

	if snapshot == nil || !snapshot.Covers(filter) {
		r.logInfo(ctx, LogMsgSnapshotMiss, LogAttrSnapshotReason, snapshotReasonMiss)

		return core.InventoryState{}, 0, false
	}

	base := core.EmptyState(bookID)
	if err := jsoniter.ConfigFastest.Unmarshal(snapshot.Data, &base); err != nil || base.BookID != bookID {
		r.logFallback(ctx, snapshotReasonDecodeError, err)

		return core.InventoryState{}, 0, false
	}

	storableEvents, maxSequence, err := r.eventStore.Query(ctx, snapshot.IncrementalFilter(filter))
	if err != nil {
		r.logFallback(ctx, snapshotReasonQueryError, err)

		return core.InventoryState{}, 0, false
	}

	incremental, err := DomainEventsFrom(storableEvents)
	if err != nil {
		r.logFallback(ctx, snapshotReasonUnmarshalError, err)

		return core.InventoryState{}, 0, false
	}

	version := max(maxSequence, snapshot.SequenceNumber)
	state := core.ReplayOnto(base, incremental)

	r.logInfo(ctx, LogMsgSnapshotHit, LogAttrSequence, snapshot.SequenceNumber, LogAttrEventCount, len(incremental))

	if len(incremental) >= r.snapshotEvery {
		r.saveSnapshot(ctx, filter, version, state)
	}

	return state, version, true
}

// saveSnapshot never fails the load, errors are only logged.
func (r *EventSourcedRepository) saveSnapshot(
	parentCtx context.Context,
	filter eventstore.Filter,
	version eventstore.MaxSequenceNumberUint,
	state core.InventoryState,
) {

	ctx, cancel := context.WithTimeout(parentCtx, snapshotSaveTimeout)
	defer cancel()

	data, err := jsoniter.ConfigFastest.Marshal(state)
	if err != nil {
		r.logSaveError(ctx, err)

		return
	}

	snapshot, err := eventstore.BuildSnapshot(SnapshotProjectionType, filter.Hash(), version, data)
	if err != nil {
		r.logSaveError(ctx, err)

		return
	}

	if err := r.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		r.logSaveError(ctx, err)

		return
	}

	r.logInfo(ctx, LogMsgSnapshotSaved, LogAttrSequence, version)
}

func (r *EventSourcedRepository) logInfo(ctx context.Context, msg string, args ...any) {
	if r.contextualLogger != nil {
		r.contextualLogger.InfoContext(ctx, msg, args...)
	} else if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *EventSourcedRepository) logFallback(ctx context.Context, reason string, err error) {
	args := []any{LogAttrSnapshotReason, reason}
	if err != nil {
		args = append(args, LogAttrError, err.Error())
	}

	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, LogMsgSnapshotFallback, args...)
	} else if r.logger != nil {
		r.logger.Warn(LogMsgSnapshotFallback, args...)
	}
}

func (r *EventSourcedRepository) logSaveError(ctx context.Context, err error) {
	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, LogMsgSnapshotSaveError, LogAttrError, err.Error())
	} else if r.logger != nil {
		r.logger.Warn(LogMsgSnapshotSaveError, LogAttrError, err.Error())
	}
}
