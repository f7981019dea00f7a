package writebookoff_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/writebookoff"
)

func Test_Decide_Success_RemovesTheCopy(t *testing.T) {
	// arrange
	bookID, itemID, librarianID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	state := givenState(t, bookID,
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-2*time.Hour)),
		core.BuildInventoryAppended(bookID.String(), uuid.NewString(), "librarian", now.Add(-time.Hour)),
	)

	// act
	result := writebookoff.Decide(state, writebookoff.BuildCommand(bookID, itemID, librarianID, core.WriteOffDamaged, now))

	// assert
	require.Len(t, result.Events, 1)
	assert.Equal(
		t,
		core.BuildInventoryDecreased(bookID.String(), itemID.String(), librarianID.String(), core.WriteOffDamaged, 1, now),
		result.Events[0],
	)

	_, stillThere := core.ReplayOnto(state, result.Events).ItemByID(itemID.String())
	assert.False(t, stillThere)
}

func Test_Decide_Success_LostCopy(t *testing.T) {
	// arrange
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()

	state := givenState(t, bookID,
		core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-2*time.Hour)),
		core.BuildBookLost(bookID.String(), itemID.String(), "", "", now.Add(-time.Hour)),
	)

	command := writebookoff.BuildCommand(bookID, itemID, uuid.New(), "", now)

	// act
	result := writebookoff.Decide(state, command)

	// assert
	require.Len(t, result.Events, 1)
	decreased, ok := result.Events[0].(core.InventoryDecreased)
	require.True(t, ok)
	assert.Equal(t, core.WriteOffOther, decreased.Reason)
	assert.Equal(t, 0, decreased.AvailableBooksCount)
}

func Test_Decide_Error_MissingItem(t *testing.T) {
	bookID, itemID := uuid.New(), uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		history core.DomainEvents
	}{
		{
			name: "unknown_copy",
		},
		{
			name: "borrowed_copy",
			history: core.DomainEvents{
				core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-2*time.Hour)),
				core.BuildBookBorrowed(bookID.String(), itemID.String(), uuid.NewString(), uuid.NewString(), 0, now.Add(-time.Hour)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			state := givenState(t, bookID, tt.history...)

			// act
			result := writebookoff.Decide(state, writebookoff.BuildCommand(bookID, itemID, uuid.New(), core.WriteOffLost, now))

			// assert
			require.True(t, result.IsRejected())
			assert.Equal(t, core.WritingBookOffFailedEventType, result.Events[0].EventType())
			assert.ErrorIs(t, result.Rejection, core.ErrMissingItem)
		})
	}
}

func givenState(t *testing.T, bookID uuid.UUID, history ...core.DomainEvent) core.InventoryState {
	t.Helper()

	return core.Replay(bookID.String(), history)
}
