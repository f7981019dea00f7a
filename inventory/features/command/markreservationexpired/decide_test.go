package markreservationexpired_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/features/command/markreservationexpired"
)

func Test_Decide_Success_EarmarkedCopyMovesOn(t *testing.T) {
	// arrange
	bookID, userID, next := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	state := givenState(t, bookID,
		core.BuildReservationAdded(bookID.String(), userID.String(), time.Time{}, now.Add(-72*time.Hour)),
		core.BuildReservationAdded(bookID.String(), next.String(), time.Time{}, now.Add(-60*time.Hour)),
		core.BuildInventoryAppended(bookID.String(), uuid.NewString(), "librarian", now.Add(-50*time.Hour)),
		core.BuildBookReadyToPickUp(bookID.String(), userID.String(), now.Add(-50*time.Hour)),
	)

	// act
	result := markreservationexpired.Decide(state, markreservationexpired.BuildCommand(bookID, userID, now))

	// assert
	require.Len(t, result.Events, 2)
	assert.Equal(t, core.BuildReservationPickUpPeriodExpired(bookID.String(), userID.String(), now), result.Events[0])
	assert.Equal(t, core.BuildBookReadyToPickUp(bookID.String(), next.String(), now), result.Events[1])

	after := core.ReplayOnto(state, result.Events)
	require.Len(t, after.Reservations, 1)
	assert.True(t, after.Reservations[0].Satisfied)
}

func Test_Decide_Success_UnsatisfiedReservation(t *testing.T) {
	// arrange
	bookID, userID := uuid.New(), uuid.New()
	now := time.Now()

	state := givenState(t, bookID,
		core.BuildReservationAdded(bookID.String(), userID.String(), time.Time{}, now.Add(-time.Hour)),
	)

	// act
	result := markreservationexpired.Decide(state, markreservationexpired.BuildCommand(bookID, userID, now))

	// assert
	require.Len(t, result.Events, 1)
	assert.Equal(t, core.ReservationPickUpPeriodExpiredEventType, result.Events[0].EventType())
}

func Test_Decide_EarmarkedCopyGoneFromShelf_NotHandedOn(t *testing.T) {
	bookID, userID, next, itemID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	tests := []struct {
		name string
		gone core.DomainEvent
	}{
		{
			name: "written_off",
			gone: core.BuildInventoryDecreased(
				bookID.String(), itemID.String(), "librarian", core.WriteOffDamaged, 0, now.Add(-time.Hour),
			),
		},
		{
			name: "lost",
			gone: core.BuildBookLost(bookID.String(), itemID.String(), "", userID.String(), now.Add(-time.Hour)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			state := givenState(t, bookID,
				core.BuildReservationAdded(bookID.String(), userID.String(), time.Time{}, now.Add(-72*time.Hour)),
				core.BuildReservationAdded(bookID.String(), next.String(), time.Time{}, now.Add(-60*time.Hour)),
				core.BuildInventoryAppended(bookID.String(), itemID.String(), "librarian", now.Add(-50*time.Hour)),
				core.BuildBookReadyToPickUp(bookID.String(), userID.String(), now.Add(-50*time.Hour)),
				tt.gone,
			)

			// act
			result := markreservationexpired.Decide(state, markreservationexpired.BuildCommand(bookID, userID, now))

			// assert
			require.Len(t, result.Events, 1)
			assert.Equal(t, core.BuildReservationPickUpPeriodExpired(bookID.String(), userID.String(), now), result.Events[0])

			after := core.ReplayOnto(state, result.Events)
			assert.Zero(t, after.InLibraryCount())
			require.Len(t, after.Reservations, 1)
			assert.False(t, after.Reservations[0].Satisfied)
		})
	}
}

func Test_Decide_Idempotent_WhenNoReservation(t *testing.T) {
	// arrange
	bookID := uuid.New()
	state := givenState(t, bookID)

	// act
	result := markreservationexpired.Decide(state, markreservationexpired.BuildCommand(bookID, uuid.New(), time.Now()))

	// assert
	assert.True(t, result.IsIdempotent())
	assert.Nil(t, result.Rejection)
}

func givenState(t *testing.T, bookID uuid.UUID, history ...core.DomainEvent) core.InventoryState {
	t.Helper()

	return core.Replay(bookID.String(), history)
}
