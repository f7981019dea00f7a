package reportlostbook

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide marks a copy as lost and closes the loan on it. It never rejects.
//
// Business Rules:
//
//	GIVEN: A copy of a book
//	WHEN: ReportLostBook command is received
//	THEN: BookLost event is generated, naming the loan and borrower if the copy was on loan
//	IDEMPOTENCY: If the copy is unknown or already lost, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	itemID := command.ItemID.String()

	item, exists := state.ItemByID(itemID)
	if !exists || item.Status == core.ItemLost {
		return core.IdempotentDecision()
	}

	userID := command.UserID.String()
	loanID := ""
	if loan, onLoan := state.LoanOfItem(itemID); onLoan {
		loanID = loan.LoanID
		userID = loan.Borrower
	}

	return core.SuccessDecision(core.BuildBookLost(command.ForBookID(), itemID, loanID, userID, command.OccurredAt))
}
