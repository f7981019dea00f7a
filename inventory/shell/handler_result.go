package shell

import (
	"time"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// HandlerResult is the outcome of a command handler execution: the business outcome plus retry metadata.
type HandlerResult struct {
	// Outcome is StatusSuccess, StatusIdempotent or StatusRejected, or StatusError if the handler failed.
	Outcome string

	// Idempotent is true if the state already reflected the command and nothing was appended.
	Idempotent bool

	// Events are the appended events, the failure event of a rejection included.
	Events core.DomainEvents

	// Rejection is set if a business rule rejected the command. It is not returned as an error.
	Rejection *core.Rejection

	// RetryAttempts is the number of attempts made, 1 if there was no retry.
	RetryAttempts int

	// TotalRetryDelay only counts the backoff waits, not the execution time.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is true if every attempt failed with a retryable error.
	RetriesExhausted bool
}

func (r HandlerResult) IsRejected() bool {
	return r.Rejection != nil
}

func NewSuccessResult(events core.DomainEvents, retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(HandlerResult{Outcome: StatusSuccess, Events: events}, retryMetrics)
}

func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(HandlerResult{Outcome: StatusIdempotent, Idempotent: true}, retryMetrics)
}

func NewRejectedResult(rejection core.Rejection, events core.DomainEvents, retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(
		HandlerResult{Outcome: StatusRejected, Events: events, Rejection: &rejection},
		retryMetrics,
	)
}

// NewErrorResult keeps the retry metadata of a failed execution.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return withRetryMetrics(HandlerResult{Outcome: StatusError}, retryMetrics)
}

func withRetryMetrics(result HandlerResult, retryMetrics RetryMetrics) HandlerResult {
	result.RetryAttempts = retryMetrics.Attempts
	result.TotalRetryDelay = retryMetrics.TotalDelay
	result.LastErrorType = retryMetrics.LastErrorType
	result.RetriesExhausted = retryMetrics.RetriesExhausted

	return result
}
