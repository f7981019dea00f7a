package markloanoverdue

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide flags a loan past its due date. It is issued by a scheduler and never rejects.
//
// Business Rules:
//
//	GIVEN: A loan
//	WHEN: MarkLoanOverdue command is received
//	THEN: LoanBecameOverdue event is generated
//	IDEMPOTENCY: If the loan is unknown or already overdue, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	loanID := command.LoanID.String()

	loan, exists := state.LoanByID(loanID)
	if !exists || loan.Status == core.LoanOverdue {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildLoanBecameOverdue(command.ForBookID(), loanID, command.OccurredAt))
}
