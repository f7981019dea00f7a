package markreservationexpired

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide drops a reservation whose holder did not show up in time. It is issued by a scheduler and never rejects.
//
// Business Rules:
//
//	GIVEN: A user in the reservation queue
//	WHEN: MarkReservationExpired command is received
//	THEN: ReservationPickUpPeriodExpired event is generated
//	THEN: if a copy was earmarked for the user and is still on the shelf, it goes to the head of the queue or becomes available
//	IDEMPOTENCY: If the user holds no reservation, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	userID := command.UserID.String()

	reservation, reserved := state.ReservationOfUser(userID)
	if !reserved {
		return core.IdempotentDecision()
	}

	expired := core.BuildReservationPickUpPeriodExpired(bookID, userID, command.OccurredAt)
	if !reservation.Satisfied {
		return core.SuccessDecision(expired)
	}

	after := core.Apply(state, expired)
	if !after.HasUnearmarkedCopy() {
		return core.SuccessDecision(expired)
	}

	availability := core.RouteAvailability(after, bookID, command.OccurredAt)

	return core.SuccessDecision(expired, availability.Event())
}
