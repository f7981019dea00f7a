package catalogreaction

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// DecideBookAdded starts the inventory of a newly cataloged book.
//
// Business Rules:
//
//	GIVEN: A book the catalog just added
//	WHEN: CreateInventory command is received
//	THEN: InventoryCreated event is generated
//	IDEMPOTENCY: If the inventory already exists, no event is generated
func DecideBookAdded(state core.InventoryState, command CreateInventory) core.DecisionResult {
	if state.Created {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildInventoryCreated(command.BookID, command.OccurredAt))
}

// DecideBookRemoved clears the inventory of a book the catalog dropped.
// Later commands behave as on a book without history.
//
// Business Rules:
//
//	GIVEN: A book the catalog just removed
//	WHEN: RemoveInventory command is received
//	THEN: InventoryRemoved event is generated
//	IDEMPOTENCY: If there is no inventory to clear, no event is generated
func DecideBookRemoved(state core.InventoryState, command RemoveInventory) core.DecisionResult {
	if !state.Created && len(state.Items) == 0 && len(state.Loans) == 0 && len(state.Reservations) == 0 {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildInventoryRemoved(command.BookID, command.OccurredAt))
}
