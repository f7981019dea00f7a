package allowloansextension

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide restores the right to extend for the loans of the named borrowers. It never rejects.
//
// Business Rules:
//
//	GIVEN: Loans on a book
//	WHEN: AllowLoansExtension command is received
//	THEN: LoansExtensionAllowed event is generated for the borrowers whose loan forbids extension
//	IDEMPOTENCY: If no named borrower holds such a loan, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	var affected []core.UserIDString

	for _, borrower := range command.Borrowers {
		if loan, hasLoan := state.LoanOfUser(borrower.String()); hasLoan && !loan.ExtensionAllowed {
			affected = append(affected, loan.Borrower)
		}
	}

	if len(affected) == 0 {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildLoansExtensionAllowed(command.ForBookID(), affected, command.OccurredAt))
}
