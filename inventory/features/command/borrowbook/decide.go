package borrowbook

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

// Decide implements the business logic to lend a copy of a book to a user.
//
// Business Rules:
//
//	GIVEN: A copy of a book and a user
//	WHEN: BorrowBook command is received
//	THEN: BookBorrowed event is generated, due one loan period later
//	THEN: ReservationBecameLoan event is generated if the user held a reservation
//	ERROR: AlreadyBorrowed if the user already holds a loan on this book
//	ERROR: NotAvailable if the copy is not on the shelf
//	ERROR: NotAvailable if the copies on the shelf are claimed by reservations ahead of the user
//	IDEMPOTENCY: If the user's loan already has the command's loan id, no event is generated
func Decide(state core.InventoryState, command Command) core.DecisionResult {
	bookID := command.ForBookID()
	itemID := command.ItemID.String()
	userID := command.UserID.String()
	loanID := command.LoanID.String()

	if loan, hasLoan := state.LoanOfUser(userID); hasLoan {
		if loan.LoanID == loanID {
			return core.IdempotentDecision()
		}

		return reject(command, core.ReasonAlreadyBorrowed)
	}

	if item, exists := state.ItemByID(itemID); !exists || item.Status != core.ItemInLibrary {
		return reject(command, core.ReasonNotAvailable)
	}

	if !mayTakeFromShelf(state, userID) {
		return reject(command, core.ReasonNotAvailable)
	}

	// The count is final only after the reservation, if any, is gone.
	events := core.DomainEvents{core.BuildBookBorrowed(bookID, itemID, loanID, userID, 0, command.OccurredAt)}
	if _, reserved := state.ReservationOfUser(userID); reserved {
		events = append(events, core.BuildReservationBecameLoan(bookID, userID, loanID, command.OccurredAt))
	}

	after := core.ReplayOnto(state, events)
	borrowed := events[0].(core.BookBorrowed)
	borrowed.AvailableBooksCount = after.AvailableCount()
	events[0] = borrowed

	return core.SuccessDecision(events[0], events[1:]...)
}

// mayTakeFromShelf reports whether the queue leaves a copy on the shelf for the user.
// While the queue is at least as long as the shelf, only the holders it can serve may borrow.
func mayTakeFromShelf(state core.InventoryState, userID core.UserIDString) bool {
	inLibrary := state.InLibraryCount()
	if len(state.Reservations) < inLibrary {
		return true
	}

	position := state.ReservationPosition(userID)

	return position >= 0 && position < inLibrary
}

func reject(command Command, reason core.RejectionReason) core.DecisionResult {
	return core.RejectionDecision(
		core.BuildBorrowingBookFailed(
			command.ForBookID(),
			command.ItemID.String(),
			command.UserID.String(),
			reason,
			command.OccurredAt,
		),
	)
}
