package extendloanperiod

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide implements the business logic to extend a loan by one loan period.
//
// Business Rules:
//
//	GIVEN: A loan held by a user
//	WHEN: ExtendLoanPeriod command is received
//	THEN: LoanPeriodExtended event is generated, the new due date is the previous one plus one loan period
//	ERROR: CannotExtend if the loan is unknown
//	ERROR: CannotExtend if anybody is waiting in the reservation queue
//	ERROR: CannotExtend if the user does not hold the loan
//	ERROR: CannotExtend if extensions are forbidden for the borrower
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	loanID := command.LoanID.String()
	userID := command.UserID.String()

	loan, exists := state.LoanByID(loanID)
	if !exists || state.HasReservations() || loan.Borrower != userID || !loan.ExtensionAllowed {
		return core.RejectionDecision(
			core.BuildExtendingLoanPeriodFailed(bookID, loanID, userID, core.ReasonCannotExtend, command.OccurredAt),
		)
	}

	return core.SuccessDecision(core.BuildLoanPeriodExtended(bookID, loanID, userID, loan.DueAt, command.OccurredAt))
}
