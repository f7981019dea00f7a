package returnbook

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide implements the business logic to take back a borrowed copy.
//
// Business Rules:
//
//	GIVEN: A copy borrowed by a user
//	WHEN: ReturnBook command is received
//	THEN: BookReturned event is generated
//	THEN: BookReadyToPickUp for the first reservation without an earmarked copy, else BookBecameAvailable
//	ERROR: MissingItem if the copy is not part of the inventory
//	ERROR: NotBorrowed if the copy is not borrowed by this user
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	itemID := command.ItemID.String()
	userID := command.UserID.String()

	item, exists := state.ItemByID(itemID)
	if !exists {
		return reject(command, core.ReasonMissingItem)
	}

	if item.Status != core.ItemBorrowed || item.BorrowedBy != userID {
		return reject(command, core.ReasonNotBorrowed)
	}

	loan, _ := state.LoanOfItem(itemID)
	returned := core.BuildBookReturned(bookID, itemID, loan.LoanID, userID, command.OccurredAt)
	availability := core.RouteAvailability(core.Apply(state, returned), bookID, command.OccurredAt)

	return core.SuccessDecision(returned, availability.Event())
}

func reject(command Command, reason core.RejectionReason) core.DecisionResult {
	return core.RejectionDecision(
		core.BuildReturningBookFailed(
			command.ForBookID(),
			command.ItemID.String(),
			command.UserID.String(),
			reason,
			command.OccurredAt,
		),
	)
}
