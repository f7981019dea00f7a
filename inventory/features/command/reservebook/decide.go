package reservebook

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide implements the business logic to queue a user for a book.
//
// Business Rules:
//
//	GIVEN: A book and a user
//	WHEN: ReserveBook command is received
//	THEN: ReservationAdded event is generated, the user joins the tail of the queue
//	ERROR: AlreadyBorrowed if the user holds a loan on this book
//	ERROR: AlreadyReserved if the user is already in the queue
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	userID := command.UserID.String()

	if _, hasLoan := state.LoanOfUser(userID); hasLoan {
		return reject(command, core.ReasonAlreadyBorrowed)
	}

	if _, reserved := state.ReservationOfUser(userID); reserved {
		return reject(command, core.ReasonAlreadyReserved)
	}

	return core.SuccessDecision(
		core.BuildReservationAdded(
			command.ForBookID(),
			userID,
			core.ExpectedReadyToPickUp(state),
			command.OccurredAt,
		),
	)
}

func reject(command Command, reason core.RejectionReason) core.DecisionResult {
	return core.RejectionDecision(
		core.BuildReservingBookFailed(command.ForBookID(), command.UserID.String(), reason, command.OccurredAt),
	)
}
