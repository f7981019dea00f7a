package cancelreservation

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide implements the business logic to withdraw a reservation.
//
// Business Rules:
//
//	GIVEN: A user in the reservation queue
//	WHEN: CancelReservation command is received
//	THEN: ReservationCanceled event is generated
//	THEN: if a copy was earmarked for the user and is still on the shelf, it goes to the head of the queue or becomes available
//	ERROR: MissingReservation if the user holds no reservation
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	userID := command.UserID.String()

	reservation, reserved := state.ReservationOfUser(userID)
	if !reserved {
		return core.RejectionDecision(
			core.BuildCancelingReservationFailed(bookID, userID, core.ReasonMissingReservation, command.OccurredAt),
		)
	}

	canceled := core.BuildReservationCanceled(bookID, userID, command.OccurredAt)
	if !reservation.Satisfied {
		return core.SuccessDecision(canceled)
	}

	after := core.Apply(state, canceled)
	if !after.HasUnearmarkedCopy() {
		return core.SuccessDecision(canceled)
	}

	availability := core.RouteAvailability(after, bookID, command.OccurredAt)

	return core.SuccessDecision(canceled, availability.Event())
}
