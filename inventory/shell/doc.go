// Package shell is the imperative shell around the pure inventory core.
//
// It maps domain events to storable events and back, loads and appends the per-book state through
// EventSourcedRepository, runs Decide functions inside a generic CommandHandler with optimistic
// concurrency retries, and routes commands through a Dispatcher that serializes them per book.
//
// Observability is opt-in: the helpers in observability.go are used by the observable package,
// which decorates any CoreCommandHandler with metrics, tracing and logging.
package shell
