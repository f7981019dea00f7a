package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-inventory-go/inventory/app"
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/allowloansextension"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/appendinventory"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/borrowbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/extendloanperiod"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/forbidloansextension"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markloanoverdue"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markloanshouldreturnsoon"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markreservationexpired"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reportlostbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/reservebook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/returnbook"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/satisfyreservation"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/writebookoff"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/reaction/catalogreaction"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
	"github.com/AntonStoeckl/library-inventory-go/testutil/observability/testdoubles"
)

func givenRepository(t *testing.T) *shell.EventSourcedRepository {
	t.Helper()

	es, err := sqliteengine.Open(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = es.Close() })

	repository, err := shell.NewEventSourcedRepository(es)
	require.NoError(t, err)

	return repository
}

func Test_NewDispatcher_RoutesEveryCommandType(t *testing.T) {
	// arrange
	ctx := context.Background()
	dispatcher, err := app.NewDispatcher(givenRepository(t), app.Config{})
	require.NoError(t, err)

	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	bookID, itemID, userID, loanID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	commands := []shell.Command{
		catalogreaction.ReactToBookAdded(core.BuildBookAdded(bookID.String(), "Dune", now)),
		appendinventory.BuildCommand(bookID, itemID, uuid.New(), now),
		reservebook.BuildCommand(bookID, userID, now),
		satisfyreservation.BuildCommand(bookID, userID, now),
		markreservationexpired.BuildCommand(bookID, userID, now),
		reservebook.BuildCommand(bookID, userID, now),
		cancelreservation.BuildCommand(bookID, userID, now),
		borrowbook.BuildCommand(bookID, itemID, userID, loanID, now),
		forbidloansextension.BuildCommand(bookID, []uuid.UUID{userID}, now),
		allowloansextension.BuildCommand(bookID, []uuid.UUID{userID}, now),
		extendloanperiod.BuildCommand(bookID, loanID, userID, now),
		markloanshouldreturnsoon.BuildCommand(bookID, loanID, now),
		markloanoverdue.BuildCommand(bookID, loanID, now),
		returnbook.BuildCommand(bookID, itemID, userID, now),
		reportlostbook.BuildCommand(bookID, itemID, userID, now),
		writebookoff.BuildCommand(bookID, uuid.New(), uuid.New(), core.WriteOffDamaged, now),
		catalogreaction.ReactToBookRemoved(core.BuildBookRemoved(bookID.String(), now)),
	}

	for _, command := range commands {
		// act
		_, dispatchErr := dispatcher.Dispatch(ctx, command)

		// assert
		assert.NoError(t, dispatchErr, command.CommandType())
	}
}

func Test_NewDispatcher_WithObservability_WrapsHandlers(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	dispatcher, err := app.NewDispatcher(givenRepository(t), app.Config{
		Observability: app.Observability{MetricsCollector: metrics, TracingCollector: tracing},
	})
	require.NoError(t, err)

	bookID := uuid.New()

	// act
	result, dispatchErr := dispatcher.Dispatch(
		context.Background(),
		cancelreservation.BuildCommand(bookID, uuid.New(), time.Now()),
	)

	// assert
	require.NoError(t, dispatchErr)
	assert.True(t, result.IsRejected())
	assert.True(t, metrics.HasCounter(shell.CommandHandlerRejectedMetric, map[string]string{
		shell.LogAttrCommandType: "CancelReservation",
	}))

	span, found := tracing.FinishedSpan(shell.SpanNameCommandHandle)
	require.True(t, found)
	assert.Equal(t, shell.StatusRejected, span.Status)
}

func Test_NewDispatcher_InvalidDispatcherOption(t *testing.T) {
	// act
	_, err := app.NewDispatcher(givenRepository(t), app.Config{
		DispatcherOptions: []shell.DispatcherOption{shell.WithConcurrency(0)},
	})

	// assert
	assert.ErrorIs(t, err, shell.ErrInvalidConcurrency)
}
