// Package storeobs bundles the optional logging, metrics and tracing of the event store engines.
//
// Every collector is optional. The ContextualLogger is preferred over the plain Logger when both are set,
// and ContextualMetricsCollector methods are preferred when the metrics collector implements them.
package storeobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

const (
	OperationQuery        = "query"
	OperationAppend       = "append"
	OperationSaveSnapshot = "save_snapshot"
	OperationLoadSnapshot = "load_snapshot"

	MetricQueryDuration        = "eventstore_query_duration_seconds"
	MetricAppendDuration       = "eventstore_append_duration_seconds"
	MetricSnapshotDuration     = "eventstore_snapshot_duration_seconds"
	MetricEventsQueried        = "eventstore_events_queried_total"
	MetricEventsAppended       = "eventstore_events_appended_total"
	MetricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	MetricDatabaseErrors       = "eventstore_database_errors_total"

	SpanNameQuery        = "eventstore.query"
	SpanNameAppend       = "eventstore.append"
	SpanNameSaveSnapshot = "eventstore.save_snapshot"
	SpanNameLoadSnapshot = "eventstore.load_snapshot"

	StatusSuccess  = "success"
	StatusError    = "error"
	StatusConflict = "conflict"

	AttrOperation    = "operation"
	AttrStatus       = "status"
	AttrErrorType    = "error_type"
	AttrConflictType = "conflict_type"
	AttrEventCount   = "event_count"
	AttrEventType    = "event_type"
	AttrMaxSequence  = "max_sequence"
	AttrExpectedSeq  = "expected_sequence"
	AttrDurationMS   = "duration_ms"
	AttrEngine       = "engine"

	LogAttrError            = "error"
	LogAttrQuery            = "query"
	LogAttrEventType        = "event_type"
	LogAttrEventCount       = "event_count"
	LogAttrDurationMS       = "duration_ms"
	LogAttrExpectedEvents   = "expected_events"
	LogAttrRowsAffected     = "rows_affected"
	LogAttrExpectedSequence = "expected_sequence"

	LogMsgSQLExecuted         = "executed sql for: "
	LogMsgOperation           = "eventstore operation: "
	LogMsgQueryCompleted      = "query completed"
	LogMsgEventsAppended      = "events appended"
	LogMsgConcurrencyConflict = "concurrency conflict detected"

	ErrorTypeBuildQuery   = "build_query_failed"
	ErrorTypeDatabase     = "database_query_failed"
	ErrorTypeRowScan      = "row_scan_failed"
	ErrorTypeBuildEvent   = "build_event_failed"
	ErrorTypeDatabaseExec = "database_exec_failed"
	ErrorTypeRowsAffected = "rows_affected_failed"
	ErrorTypeCanceled     = "context_canceled"
	ErrorTypeTimeout      = "context_deadline_exceeded"
)

// Observer holds the optional observability collaborators of an engine.
type Observer struct {
	Engine           string
	Logger           eventstore.Logger
	ContextualLogger eventstore.ContextualLogger
	Metrics          eventstore.MetricsCollector
	Tracing          eventstore.TracingCollector
}

// Operation tracks one observed engine operation from start to finish.
type Operation struct {
	observer       Observer
	ctx            context.Context
	name           string
	durationMetric string
	span           eventstore.SpanContext
	start          time.Time
}

// Start begins an observed operation and returns the (possibly span carrying) context to continue with.
func (o Observer) Start(
	ctx context.Context,
	operation string,
	durationMetric string,
	spanName string,
	attrs map[string]string,
) (*Operation, context.Context) {

	op := &Operation{
		observer:       o,
		ctx:            ctx,
		name:           operation,
		durationMetric: durationMetric,
		start:          time.Now(),
	}

	if o.Tracing != nil {
		spanAttrs := map[string]string{AttrOperation: operation}
		if o.Engine != "" {
			spanAttrs[AttrEngine] = o.Engine
		}

		for k, v := range attrs {
			spanAttrs[k] = v
		}

		ctx, op.span = o.Tracing.StartSpan(ctx, spanName, spanAttrs)
		op.ctx = ctx
	}

	return op, ctx
}

// Success records duration and (optionally) the count of handled events and closes the span.
func (op *Operation) Success(countMetric string, eventCount int, attrs map[string]string) time.Duration {
	duration := time.Since(op.start)

	op.observer.recordDuration(op.ctx, op.durationMetric, duration, op.name, StatusSuccess)

	if countMetric != "" {
		op.observer.recordValue(op.ctx, countMetric, float64(eventCount), op.name, StatusSuccess)
	}

	finishAttrs := map[string]string{
		AttrEventCount: strconv.Itoa(eventCount),
		AttrDurationMS: FormatMilliseconds(duration),
	}

	for k, v := range attrs {
		finishAttrs[k] = v
	}

	op.finishSpan(StatusSuccess, finishAttrs)

	return duration
}

// Failure records the error metrics, logs the error and closes the span with the error type.
func (op *Operation) Failure(errorType string, err error, logMsg string, args ...any) {
	duration := time.Since(op.start)

	if errors.Is(err, context.Canceled) {
		errorType = ErrorTypeCanceled
	} else if errors.Is(err, context.DeadlineExceeded) {
		errorType = ErrorTypeTimeout
	}

	op.observer.recordDuration(op.ctx, op.durationMetric, duration, op.name, StatusError)

	if op.observer.Metrics != nil {
		labels := map[string]string{
			AttrOperation: op.name,
			AttrStatus:    StatusError,
			AttrErrorType: errorType,
		}

		if contextual, ok := op.observer.Metrics.(eventstore.ContextualMetricsCollector); ok {
			contextual.IncrementCounterContext(op.ctx, MetricDatabaseErrors, labels)
		} else {
			op.observer.Metrics.IncrementCounter(MetricDatabaseErrors, labels)
		}
	}

	if logMsg != "" {
		op.observer.LogError(op.ctx, logMsg, err, args...)
	}

	op.finishSpan(StatusError, map[string]string{
		AttrErrorType:  errorType,
		AttrDurationMS: FormatMilliseconds(duration),
	})
}

// Conflict records a concurrency conflict, which is an expected outcome and not a database error.
func (op *Operation) Conflict(args ...any) {
	duration := time.Since(op.start)

	op.observer.recordDuration(op.ctx, op.durationMetric, duration, op.name, StatusConflict)

	if op.observer.Metrics != nil {
		labels := map[string]string{
			AttrOperation:    op.name,
			AttrConflictType: "concurrency",
		}

		if contextual, ok := op.observer.Metrics.(eventstore.ContextualMetricsCollector); ok {
			contextual.IncrementCounterContext(op.ctx, MetricConcurrencyConflicts, labels)
		} else {
			op.observer.Metrics.IncrementCounter(MetricConcurrencyConflicts, labels)
		}
	}

	op.observer.LogOperation(op.ctx, LogMsgConcurrencyConflict, args...)

	op.finishSpan(StatusConflict, map[string]string{AttrErrorType: "concurrency_conflict"})
}

func (op *Operation) finishSpan(status string, attrs map[string]string) {
	if op.observer.Tracing == nil || op.span == nil {
		return
	}

	op.span.SetStatus(status)

	for k, v := range attrs {
		op.span.AddAttribute(k, v)
	}

	op.observer.Tracing.FinishSpan(op.span, status, attrs)
}

// LogSQL logs an executed statement with its duration at debug level.
func (o Observer) LogSQL(ctx context.Context, action string, sqlQuery string, duration time.Duration) {
	args := []any{LogAttrDurationMS, ToMilliseconds(duration), LogAttrQuery, sqlQuery}

	if o.ContextualLogger != nil {
		o.ContextualLogger.DebugContext(ctx, LogMsgSQLExecuted+action, args...)
		return
	}

	if o.Logger != nil {
		o.Logger.Debug(LogMsgSQLExecuted+action, args...)
	}
}

// LogOperation logs operational information at info level.
func (o Observer) LogOperation(ctx context.Context, action string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.InfoContext(ctx, LogMsgOperation+action, args...)
		return
	}

	if o.Logger != nil {
		o.Logger.Info(LogMsgOperation+action, args...)
	}
}

// LogWarn logs non-critical failures, e.g. closing rows.
func (o Observer) LogWarn(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{LogAttrError, err.Error()}, args...)

	if o.ContextualLogger != nil {
		o.ContextualLogger.WarnContext(ctx, msg, allArgs...)
		return
	}

	if o.Logger != nil {
		o.Logger.Warn(msg, allArgs...)
	}
}

// LogError logs failures that cause an operation to fail.
func (o Observer) LogError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{LogAttrError, err.Error()}, args...)

	if o.ContextualLogger != nil {
		o.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if o.Logger != nil {
		o.Logger.Error(msg, allArgs...)
	}
}

func (o Observer) recordDuration(ctx context.Context, metric string, d time.Duration, operation, status string) {
	if o.Metrics == nil {
		return
	}

	labels := map[string]string{AttrOperation: operation, AttrStatus: status}

	if contextual, ok := o.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	o.Metrics.RecordDuration(metric, d, labels)
}

func (o Observer) recordValue(ctx context.Context, metric string, value float64, operation, status string) {
	if o.Metrics == nil {
		return
	}

	labels := map[string]string{AttrOperation: operation, AttrStatus: status}

	if contextual, ok := o.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	o.Metrics.RecordValue(metric, value, labels)
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// FormatMilliseconds formats a duration for span attributes.
func FormatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Nanoseconds())/1e6)
}
