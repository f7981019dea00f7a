package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultDispatchConcurrency = 8

var (
	ErrUnknownCommandType     = errors.New("no handler routed for command type")
	ErrDuplicateRoute         = errors.New("a handler is already routed for command type")
	ErrUnexpectedCommand      = errors.New("command does not match the routed handler")
	ErrNilCommandHandler      = errors.New("command handler must not be nil")
	ErrInvalidConcurrency     = errors.New("concurrency must be positive")
	ErrNilDispatcher          = errors.New("dispatcher must not be nil")
	ErrDispatchBatchCancelled = errors.New("dispatch batch cancelled")
)

type routedHandler func(ctx context.Context, command Command) (HandlerResult, error)

// Dispatcher routes commands to their handlers by command type.
//
// Commands for the same book never run concurrently inside one Dispatcher; across processes the
// optimistic concurrency check of the event store takes over. Commands for different books run in parallel.
type Dispatcher struct {
	mu               sync.RWMutex
	handlers         map[string]routedHandler
	locks            *keyedMutex
	concurrency      int
	logger           Logger
	contextualLogger ContextualLogger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithConcurrency bounds how many books DispatchBatch works on at the same time.
func WithConcurrency(books int) DispatcherOption {
	return func(d *Dispatcher) error {
		if books <= 0 {
			return ErrInvalidConcurrency
		}

		d.concurrency = books

		return nil
	}
}

func WithDispatcherLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		d.logger = logger

		return nil
	}
}

func WithDispatcherContextualLogger(logger ContextualLogger) DispatcherOption {
	return func(d *Dispatcher) error {
		d.contextualLogger = logger

		return nil
	}
}

func NewDispatcher(options ...DispatcherOption) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers:    make(map[string]routedHandler),
		locks:       newKeyedMutex(),
		concurrency: defaultDispatchConcurrency,
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Route registers the handler for the command type of C.
func Route[C Command](d *Dispatcher, handler CoreCommandHandler[C]) error {
	if d == nil {
		return ErrNilDispatcher
	}

	if handler == nil {
		return ErrNilCommandHandler
	}

	var zero C
	commandType := zero.CommandType()

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[commandType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, commandType)
	}

	d.handlers[commandType] = func(ctx context.Context, command Command) (HandlerResult, error) {
		typed, ok := command.(C)
		if !ok {
			return HandlerResult{Outcome: StatusError}, fmt.Errorf("%w: %T", ErrUnexpectedCommand, command)
		}

		return handler.Handle(ctx, typed)
	}

	return nil
}

// Dispatch handles one command while holding the lock of its book. Waiting for the lock ends when ctx is done.
func (d *Dispatcher) Dispatch(ctx context.Context, command Command) (HandlerResult, error) {
	d.mu.RLock()
	handler, ok := d.handlers[command.CommandType()]
	d.mu.RUnlock()

	if !ok {
		return HandlerResult{Outcome: StatusError}, fmt.Errorf("%w: %s", ErrUnknownCommandType, command.CommandType())
	}

	unlock, err := d.locks.lock(ctx, command.ForBookID())
	if err != nil {
		return HandlerResult{Outcome: StatusForError(err)}, err
	}
	defer unlock()

	return handler(ctx, command)
}

// BatchResult is the outcome of one command of a batch.
type BatchResult struct {
	Command Command
	Result  HandlerResult
	Err     error
}

// DispatchBatch groups the commands by book, keeps the submission order within each book and works on
// up to WithConcurrency books in parallel. Results are returned in input order.
//
// A failing command does not stop the batch, its error is reported in its BatchResult.
// If ctx is done, commands not started yet fail with the context error and DispatchBatch returns it.
func (d *Dispatcher) DispatchBatch(ctx context.Context, commands []Command) ([]BatchResult, error) {
	start := time.Now()
	results := make([]BatchResult, len(commands))

	order := make([]string, 0)
	groups := make(map[string][]int)

	for i, command := range commands {
		results[i].Command = command

		bookID := command.ForBookID()
		if _, seen := groups[bookID]; !seen {
			order = append(order, bookID)
		}

		groups[bookID] = append(groups[bookID], i)
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, bookID := range order {
		indexes := groups[bookID]

		g.Go(func() error {
			for n, i := range indexes {
				if err := groupCtx.Err(); err != nil {
					for _, skipped := range indexes[n:] {
						results[skipped].Err = err
					}

					return errors.Join(ErrDispatchBatchCancelled, err)
				}

				results[i].Result, results[i].Err = d.Dispatch(groupCtx, commands[i])
			}

			return nil
		})
	}

	err := g.Wait()

	d.logBatch(ctx, len(commands), len(order), time.Since(start))

	return results, err
}

func (d *Dispatcher) logBatch(ctx context.Context, commandCount int, bookCount int, duration time.Duration) {
	args := []any{
		LogAttrCommandCount, commandCount,
		LogAttrBookCount, bookCount,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if d.contextualLogger != nil {
		d.contextualLogger.InfoContext(ctx, LogMsgDispatchBatchCompleted, args...)
	} else if d.logger != nil {
		d.logger.Info(LogMsgDispatchBatchCompleted, args...)
	}
}

// keyedMutex hands out one lock per key and forgets it when nobody holds or waits for it.
// A lock is a channel with capacity one, so that waiting for it can be abandoned when ctx is done.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	held chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) lock(ctx context.Context, key string) (unlock func(), err error) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{held: make(chan struct{}, 1)}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.held <- struct{}{}:
		return func() {
			<-entry.held
			k.release(key, entry)
		}, nil
	case <-ctx.Done():
		k.release(key, entry)

		return nil, ctx.Err()
	}
}

func (k *keyedMutex) release(key string, entry *keyedLock) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
}
