package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

// Metric names.
const (
	CommandHandlerDurationMetric            = "commandhandler_handle_duration_seconds"
	CommandHandlerCallsMetric               = "commandhandler_handle_calls_total"
	CommandHandlerIdempotentMetric          = "commandhandler_idempotent_operations_total"
	CommandHandlerRejectedMetric            = "commandhandler_rejected_operations_total"
	CommandHandlerCanceledMetric            = "commandhandler_canceled_operations_total"
	CommandHandlerTimeoutMetric             = "commandhandler_timeout_operations_total"
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"
	CommandHandlerRetriesMetric             = "commandhandler_retries_total"
	CommandHandlerRetryDelayMetric          = "commandhandler_retry_delay_seconds"
	CommandHandlerMaxRetriesReachedMetric   = "commandhandler_max_retries_reached_total"
)

// Status values used as metric labels and span statuses.
const (
	StatusSuccess             = "success"
	StatusError               = "error"
	StatusIdempotent          = "idempotent"
	StatusRejected            = "rejected"
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusConcurrencyConflict = "concurrency_conflict"
)

// Log messages.
const (
	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandFailed    = "command handler failed"

	LogMsgSnapshotHit       = "snapshot hit: incremental replay"
	LogMsgSnapshotMiss      = "snapshot miss: full replay"
	LogMsgSnapshotFallback  = "snapshot unusable: full replay"
	LogMsgSnapshotSaved     = "snapshot saved"
	LogMsgSnapshotSaveError = "snapshot save error"

	LogMsgDispatchBatchCompleted = "dispatch batch completed"
)

// Log and label attribute keys.
const (
	LogAttrCommandType     = "command_type"
	LogAttrBookID          = "book_id"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrRejectionReason = "rejection_reason"
	LogAttrEventCount      = "event_count"
	LogAttrCommandCount    = "command_count"
	LogAttrBookCount       = "book_count"
	LogAttrError           = "error"
	LogAttrSnapshotReason  = "snapshot_reason"
	LogAttrSequence        = "sequence"
	LogAttrAttemptNumber   = "attempt_number"
	LogAttrErrorType       = "error_type"
	LogAttrFinalErrorType  = "final_error_type"
)

const SpanNameCommandHandle = "commandhandler.handle"

type (
	MetricsCollector           = eventstore.MetricsCollector
	ContextualMetricsCollector = eventstore.ContextualMetricsCollector
	TracingCollector           = eventstore.TracingCollector
	SpanContext                = eventstore.SpanContext
	ContextualLogger           = eventstore.ContextualLogger
	Logger                     = eventstore.Logger
)

func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType:   commandType,
		LogAttrAttemptNumber: strconv.Itoa(attemptNumber),
		LogAttrErrorType:     errorType,
	}
}

func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// statusCounters maps statuses to the dedicated counter incremented next to the calls counter.
var statusCounters = map[string]string{
	StatusIdempotent:          CommandHandlerIdempotentMetric,
	StatusRejected:            CommandHandlerRejectedMetric,
	StatusCanceled:            CommandHandlerCanceledMetric,
	StatusTimeout:             CommandHandlerTimeoutMetric,
	StatusConcurrencyConflict: CommandHandlerConcurrencyConflictMetric,
}

// RecordCommandMetrics records duration and call count, plus the status counter if the status has one.
// A ContextualMetricsCollector receives ctx for exemplars.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {

	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	if metric, ok := statusCounters[status]; ok {
		incrementCounter(ctx, collector, metric, BuildCommandLabels(commandType, status))
	}
}

// RecordRetryMetrics records what a HandlerResult reports about retries.
func RecordRetryMetrics(ctx context.Context, collector MetricsCollector, commandType string, result HandlerResult) {
	if collector == nil {
		return
	}

	if result.RetryAttempts > 1 {
		incrementCounter(
			ctx,
			collector,
			CommandHandlerRetriesMetric,
			BuildRetryLabels(commandType, result.RetryAttempts-1, result.LastErrorType),
		)

		recordDuration(
			ctx,
			collector,
			CommandHandlerRetryDelayMetric,
			result.TotalRetryDelay,
			map[string]string{LogAttrCommandType: commandType},
		)
	}

	if result.RetriesExhausted {
		incrementCounter(
			ctx,
			collector,
			CommandHandlerMaxRetriesReachedMetric,
			map[string]string{LogAttrCommandType: commandType, LogAttrFinalErrorType: result.LastErrorType},
		)
	}
}

func recordDuration(
	ctx context.Context,
	collector MetricsCollector,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)

		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)

		return
	}

	collector.IncrementCounter(metric, labels)
}

func StartCommandSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	commandType string,
	bookID string,
) (context.Context, SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrCommandType: commandType,
		LogAttrBookID:      bookID,
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, attrs)
}

func FinishCommandSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// The contextual logger wins over the plain one if both are set.

func LogCommandStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	bookID string,
) {

	args := []any{LogAttrCommandType, commandType, LogAttrBookID, bookID}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandStarted, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandStarted, args...)
	}
}

func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	result HandlerResult,
	duration time.Duration,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, result.Outcome,
		LogAttrEventCount, len(result.Events),
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if result.Rejection != nil {
		args = append(args, LogAttrRejectionReason, string(result.Rejection.Reason))
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandCompleted, args...)
	}
}

func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgCommandFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgCommandFailed, args...)
	}
}

func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}

// StatusForError classifies a handler error into one of the error statuses.
func StatusForError(err error) string {
	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}
