package markloanshouldreturnsoon

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide flags a loan whose due date is near. It is issued by a scheduler and never rejects.
//
// Business Rules:
//
//	GIVEN: A loan
//	WHEN: MarkLoanShouldReturnSoon command is received
//	THEN: LoanBecameShouldReturnSoon event is generated
//	IDEMPOTENCY: If the loan is unknown, already flagged or already overdue, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	loanID := command.LoanID.String()

	loan, exists := state.LoanByID(loanID)
	if !exists || loan.Status != core.LoanActive {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildLoanBecameShouldReturnSoon(command.ForBookID(), loanID, command.OccurredAt))
}
