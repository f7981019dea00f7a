package writebookoff

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide implements the business logic to write a copy off.
//
// Business Rules:
//
//	GIVEN: A copy that is on the shelf or lost
//	WHEN: WriteBookOff command is received
//	THEN: InventoryDecreased event is generated with the copies still available
//	ERROR: MissingItem if the copy is not part of the inventory or currently borrowed
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	itemID := command.ItemID.String()
	librarianID := command.LibrarianID.String()

	item, exists := state.ItemByID(itemID)
	if !exists || item.Status == core.ItemBorrowed {
		return core.RejectionDecision(
			core.BuildWritingBookOffFailed(bookID, itemID, librarianID, core.ReasonMissingItem, command.OccurredAt),
		)
	}

	decreased := core.BuildInventoryDecreased(bookID, itemID, librarianID, command.Reason, 0, command.OccurredAt)
	decreased.AvailableBooksCount = core.Apply(state, decreased).AvailableCount()

	return core.SuccessDecision(decreased)
}
