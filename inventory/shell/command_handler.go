package shell

import (
	"context"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// CommandHandler runs the Load -> Decide -> Append workflow for one command type
// and retries it on concurrency conflicts. Observability lives in the observable package.
type CommandHandler[C Command] struct {
	repository   Repository
	decide       DecideFunc[C]
	retryOptions []RetryOption
}

type handlerConfig struct {
	retryOptions []RetryOption
}

// HandlerOption configures a CommandHandler.
type HandlerOption func(*handlerConfig)

// WithRetryOptions replaces the default retry configuration.
func WithRetryOptions(opts ...RetryOption) HandlerOption {
	return func(c *handlerConfig) {
		c.retryOptions = opts
	}
}

func NewCommandHandler[C Command](repository Repository, decide DecideFunc[C], opts ...HandlerOption) CommandHandler[C] {
	config := handlerConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	return CommandHandler[C]{
		repository:   repository,
		decide:       decide,
		retryOptions: config.retryOptions,
	}
}

// Handle returns a rejected HandlerResult with a nil error if a business rule rejects the command.
// Errors are reserved for infrastructure failures, cancellation and exhausted retries.
func (h CommandHandler[C]) Handle(ctx context.Context, command C) (HandlerResult, error) {
	var decision core.DecisionResult

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, execErr = h.execute(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return NewErrorResult(retryMetrics), err
	}

	switch {
	case decision.IsIdempotent():
		return NewIdempotentResult(retryMetrics), nil
	case decision.IsRejected():
		return NewRejectedResult(*decision.Rejection, decision.Events, retryMetrics), nil
	default:
		return NewSuccessResult(decision.Events, retryMetrics), nil
	}
}

func (h CommandHandler[C]) execute(ctx context.Context, command C) (core.DecisionResult, error) {
	ctx = eventstore.WithStrongConsistency(ctx)
	bookID := command.ForBookID()

	state, version, err := h.repository.Load(ctx, bookID)
	if err != nil {
		return core.DecisionResult{}, err
	}

	decision := h.decide(state, command)

	if !decision.HasEventsToAppend() {
		return decision, nil
	}

	if err := h.repository.Append(ctx, bookID, version, decision.Events, BuildCommandMetadata()); err != nil {
		return core.DecisionResult{}, err
	}

	return decision, nil
}
