// Package eventstore provides the storage-agnostic abstractions of an append-only event log
// with "dynamic event streams".
//
// A stream is not a physical entity, it is whatever a Filter selects. The inventory of one book,
// for example, is the stream of all events whose payload carries that BookID. The same Filter is
// used to Query the stream and to guard the Append to it: an Append only succeeds when the highest
// sequence number matched by the Filter is still the one observed by the preceding Query, otherwise
// ErrConcurrencyConflict is returned.
//
// Key types:
//   - Filter: Defines criteria for querying events (event types, payload predicates, boundaries)
//   - StorableEvent: Represents an event that can be stored and retrieved
//   - Snapshot: A serialized projection state at a known sequence number
//
// Engines live in sub packages (postgresengine, sqliteengine); observability adapters in
// oteladapters and promadapters.
//
// Common usage pattern:
//
//	filter := BuildEventFilter().
//		Matching().
//		AnyPredicateOf(P("BookID", bookID.String())).
//		Finalize()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	newEvent, err := eventstore.BuildStorableEvent(eventType, time.Now(), payload, metadata)
//	err = store.Append(ctx, filter, maxSeq, newEvent)
package eventstore
