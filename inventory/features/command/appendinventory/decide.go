package appendinventory

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide puts a new copy on the shelf and routes it to the reservation queue.
//
// Business Rules:
//
//	GIVEN: The inventory of a book
//	WHEN: AppendInventory command is received
//	THEN: InventoryAppended event is generated
//	THEN: BookReadyToPickUp for the first reservation without an earmarked copy, else BookBecameAvailable
//	IDEMPOTENCY: If the item is already part of the inventory, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	itemID := command.ItemID.String()

	if _, exists := state.ItemByID(itemID); exists {
		return core.IdempotentDecision()
	}

	appended := core.BuildInventoryAppended(bookID, itemID, command.LibrarianID.String(), command.OccurredAt)
	availability := core.RouteAvailability(core.Apply(state, appended), bookID, command.OccurredAt)

	return core.SuccessDecision(appended, availability.Event())
}
