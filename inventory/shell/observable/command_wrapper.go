package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

// CommandWrapper decorates a core command handler with metrics, tracing and logging.
// It never changes the result or the error of the wrapped handler.
type CommandWrapper[C shell.Command] struct {
	coreHandler      shell.CoreCommandHandler[C]
	commandType      string
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewCommandWrapper wraps coreHandler. The command type label is taken from the zero value of C.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CoreCommandHandler[C],
	opts ...CommandOption[C],
) (*CommandWrapper[C], error) {

	if coreHandler == nil {
		return nil, shell.ErrNilCommandHandler
	}

	var zeroCommand C

	wrapper := &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the wrapped handler and records the outcome.
// Rejections are recorded with the "rejected" status, they are business outcomes and not errors.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	commandStart := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType, command.ForBookID())
	shell.LogCommandStart(ctx, w.logger, w.contextualLogger, w.commandType, command.ForBookID())

	result, err := w.coreHandler.Handle(ctx, command)
	duration := time.Since(commandStart)

	shell.RecordRetryMetrics(ctx, w.metricsCollector, w.commandType, result)

	if err != nil {
		status := shell.StatusForError(err)
		shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
		shell.FinishCommandSpan(w.tracingCollector, span, status, duration, err)
		shell.LogCommandError(ctx, w.logger, w.contextualLogger, w.commandType, err)

		return result, err
	}

	status := businessStatus(result)
	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishCommandSpan(w.tracingCollector, span, status, duration, nil)
	shell.LogCommandSuccess(ctx, w.logger, w.contextualLogger, w.commandType, result, duration)

	return result, nil
}

func businessStatus(result shell.HandlerResult) string {
	switch {
	case result.Idempotent:
		return shell.StatusIdempotent
	case result.IsRejected():
		return shell.StatusRejected
	default:
		return shell.StatusSuccess
	}
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.metricsCollector = collector

		return nil
	}
}

func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.tracingCollector = collector

		return nil
	}
}

// WithCommandContextualLogging takes precedence over WithCommandLogging.
func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.contextualLogger = logger

		return nil
	}
}

func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.logger = logger

		return nil
	}
}
