package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/appendinventory"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/borrowbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

func Test_CommandHandler_Success_AppendsAllEventsOfTheDecision(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := givenRepository(t, givenSQLiteStore(t))
	handler := appendinventory.NewCommandHandler(repository)
	bookID, itemID := uuid.New(), uuid.New()

	// act
	result, err := handler.Handle(ctx, appendinventory.BuildCommand(bookID, itemID, uuid.New(), time.Now()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, shell.StatusSuccess, result.Outcome)
	assert.Len(t, result.Events, 2)
	assert.Equal(t, 1, result.RetryAttempts)

	state, version, err := repository.Load(ctx, bookID.String())
	require.NoError(t, err)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(2), version)
	assert.Equal(t, 1, state.AvailableCount())
}

func Test_CommandHandler_Idempotent_AppendsNothing(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := givenRepository(t, givenSQLiteStore(t))
	handler := appendinventory.NewCommandHandler(repository)
	command := appendinventory.BuildCommand(uuid.New(), uuid.New(), uuid.New(), time.Now())

	_, err := handler.Handle(ctx, command)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Empty(t, result.Events)

	_, version, err := repository.Load(ctx, command.ForBookID())
	require.NoError(t, err)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(2), version)
}

func Test_CommandHandler_Rejected_StoresTheFailureEventAndReturnsNoError(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := givenRepository(t, givenSQLiteStore(t))
	handler := borrowbook.NewCommandHandler(repository)
	bookID := uuid.New()

	// act
	result, err := handler.Handle(ctx, borrowbook.BuildCommand(bookID, uuid.New(), uuid.New(), uuid.New(), time.Now()))

	// assert
	require.NoError(t, err)
	assert.True(t, result.IsRejected())
	require.NotNil(t, result.Rejection)
	assert.ErrorIs(t, result.Rejection, core.ErrNotAvailable)

	state, version, err := repository.Load(ctx, bookID.String())
	require.NoError(t, err)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(1), version)
	assert.Equal(t, core.EmptyState(bookID.String()), state)
}

func Test_CommandHandler_RetriesConcurrencyConflicts(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := &conflictingRepository{
		Repository: givenRepository(t, givenSQLiteStore(t)),
		conflicts:  2,
	}
	handler := appendinventory.NewCommandHandler(repository, shell.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))

	// act
	result, err := handler.Handle(ctx, appendinventory.BuildCommand(uuid.New(), uuid.New(), uuid.New(), time.Now()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, shell.StatusSuccess, result.Outcome)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Greater(t, result.TotalRetryDelay, time.Duration(0))
}

func Test_CommandHandler_RetriesExhausted(t *testing.T) {
	// arrange
	ctx := context.Background()
	repository := &conflictingRepository{
		Repository: givenRepository(t, givenSQLiteStore(t)),
		conflicts:  10,
	}
	handler := appendinventory.NewCommandHandler(
		repository,
		shell.WithRetryOptions(shell.WithMaxAttempts(2), shell.WithBaseDelay(time.Millisecond)),
	)

	// act
	result, err := handler.Handle(ctx, appendinventory.BuildCommand(uuid.New(), uuid.New(), uuid.New(), time.Now()))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.Equal(t, shell.StatusError, result.Outcome)
	assert.True(t, result.RetriesExhausted)
	assert.Equal(t, 2, result.RetryAttempts)
}

func Test_CommandHandler_LoadFailureIsNotRetried(t *testing.T) {
	// arrange
	loadErr := errors.New("connection refused")
	handler := appendinventory.NewCommandHandler(failingRepository{err: loadErr})

	// act
	result, err := handler.Handle(context.Background(), appendinventory.BuildCommand(uuid.New(), uuid.New(), uuid.New(), time.Now()))

	// assert
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, 1, result.RetryAttempts)
}

// conflictingRepository fails the first appends with a concurrency conflict.
type conflictingRepository struct {
	shell.Repository
	conflicts int
}

func (r *conflictingRepository) Append(
	ctx context.Context,
	bookID core.BookIDString,
	expectedVersion eventstore.MaxSequenceNumberUint,
	events core.DomainEvents,
	metadata shell.EventMetadata,
) error {

	if r.conflicts > 0 {
		r.conflicts--
		return eventstore.ErrConcurrencyConflict
	}

	return r.Repository.Append(ctx, bookID, expectedVersion, events, metadata)
}

type failingRepository struct {
	err error
}

func (r failingRepository) Load(context.Context, core.BookIDString) (core.InventoryState, eventstore.MaxSequenceNumberUint, error) {
	return core.InventoryState{}, 0, r.err
}

func (r failingRepository) Append(
	context.Context,
	core.BookIDString,
	eventstore.MaxSequenceNumberUint,
	core.DomainEvents,
	shell.EventMetadata,
) error {

	return r.err
}
