package appendinventory_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/appendinventory"
)

func Test_Decide_EmptyQueue_BookBecameAvailable(t *testing.T) {
	// arrange
	bookID, itemID, librarianID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	state := givenState(t, bookID, core.BuildInventoryCreated(bookID.String(), now.Add(-time.Hour)))

	command := appendinventory.BuildCommand(bookID, itemID, librarianID, now)

	// act
	result := appendinventory.Decide(state, command)

	// assert
	require.Len(t, result.Events, 2)
	assert.Equal(
		t,
		core.BuildInventoryAppended(bookID.String(), itemID.String(), librarianID.String(), now),
		result.Events[0],
	)
	assert.Equal(t, core.BuildBookBecameAvailable(bookID.String(), 1, now), result.Events[1])
}

func Test_Decide_QueueNotEmpty_BookReadyToPickUpForHead(t *testing.T) {
	// arrange
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()
	state := givenState(
		t,
		bookID,
		core.BuildReservationAdded(bookID.String(), "first", time.Time{}, now.Add(-2*time.Hour)),
		core.BuildReservationAdded(bookID.String(), "second", time.Time{}, now.Add(-time.Hour)),
	)

	command := appendinventory.BuildCommand(bookID, itemID, uuid.New(), now)

	// act
	result := appendinventory.Decide(state, command)

	// assert
	require.Len(t, result.Events, 2)
	ready, ok := result.Events[1].(core.BookReadyToPickUp)
	require.True(t, ok)
	assert.Equal(t, "first", ready.UserID)
	assert.Equal(t, command.OccurredAt.Add(core.PickUpWindow), ready.PickUpDeadline)
}

func Test_Decide_HeadAlreadyHoldsACopy_BookReadyToPickUpForHeadAgain(t *testing.T) {
	// arrange
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()
	state := givenState(
		t,
		bookID,
		core.BuildReservationAdded(bookID.String(), "first", time.Time{}, now.Add(-3*time.Hour)),
		core.BuildReservationAdded(bookID.String(), "second", time.Time{}, now.Add(-2*time.Hour)),
		core.BuildInventoryAppended(bookID.String(), uuid.NewString(), "librarian", now.Add(-time.Hour)),
		core.BuildBookReadyToPickUp(bookID.String(), "first", now.Add(-time.Hour)),
	)

	// act
	result := appendinventory.Decide(state, appendinventory.BuildCommand(bookID, itemID, uuid.New(), now))

	// assert
	require.Len(t, result.Events, 2)
	ready, ok := result.Events[1].(core.BookReadyToPickUp)
	require.True(t, ok)
	assert.Equal(t, "first", ready.UserID)
}

func Test_Decide_OnlyReservationAlreadySatisfied_BookReadyToPickUpNotAvailable(t *testing.T) {
	// arrange
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()
	state := givenState(
		t,
		bookID,
		core.BuildReservationAdded(bookID.String(), "first", time.Time{}, now.Add(-2*time.Hour)),
		core.BuildBookReadyToPickUp(bookID.String(), "first", now.Add(-time.Hour)),
	)

	// act
	result := appendinventory.Decide(state, appendinventory.BuildCommand(bookID, itemID, uuid.New(), now))

	// assert
	require.Len(t, result.Events, 2)
	assert.IsType(t, core.BookReadyToPickUp{}, result.Events[1])
}

func Test_Decide_ItemAlreadyInInventory_Idempotent(t *testing.T) {
	// arrange
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()
	state := givenState(t, bookID, core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-time.Hour)))

	// act
	result := appendinventory.Decide(state, appendinventory.BuildCommand(bookID, itemID, uuid.New(), now))

	// assert
	assert.True(t, result.IsIdempotent())
	assert.Empty(t, result.Events)
}

func givenState(t *testing.T, bookID uuid.UUID, history ...core.DomainEvent) core.InventoryState {
	t.Helper()

	return core.Replay(bookID.String(), history)
}
