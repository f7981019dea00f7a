package satisfyreservation

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide earmarks a copy for a reservation holder.
//
// Business Rules:
//
//	GIVEN: A user in the reservation queue
//	WHEN: SatisfyReservation command is received
//	THEN: BookReadyToPickUp event is generated, the pickup deadline is one pickup window later
//	IDEMPOTENCY: If the user holds no reservation or it is already satisfied, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	userID := command.UserID.String()

	reservation, reserved := state.ReservationOfUser(userID)
	if !reserved || reservation.Satisfied {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildBookReadyToPickUp(command.ForBookID(), userID, command.OccurredAt))
}
