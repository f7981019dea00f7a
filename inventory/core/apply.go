package core

import (
	"slices"
)

// Apply returns the state after event. It never modifies the given state.
//
// Events of another book, failure events and events without a state change leave the state as it is.
// Targets that no longer exist (a loan, an item, a reservation) are skipped silently.
func Apply(state InventoryState, event DomainEvent) InventoryState {
	if event == nil || event.ForBookID() != state.BookID || event.IsErrorEvent() {
		return state
	}

	s := state.clone()

	switch e := event.(type) {
	case InventoryCreated:
		s.Created = true

	case InventoryRemoved:
		return EmptyState(s.BookID)

	case InventoryAppended:
		if s.itemIndex(e.ItemID) < 0 {
			s.Items = append(s.Items, InventoryItem{ItemID: e.ItemID, Status: ItemInLibrary})
		}

	case InventoryDecreased:
		s.Items = slices.DeleteFunc(s.Items, func(i InventoryItem) bool { return i.ItemID == e.ItemID })

	case BookBorrowed:
		if idx := s.itemIndex(e.ItemID); idx >= 0 {
			s.Items[idx].Status = ItemBorrowed
			s.Items[idx].BorrowedBy = e.UserID
		}

		s.Loans = append(s.Loans, Loan{
			LoanID:           e.LoanID,
			ItemID:           e.ItemID,
			Borrower:         e.UserID,
			TakenAt:          e.OccurredAt,
			DueAt:            e.WhenDue,
			Status:           LoanActive,
			ExtensionAllowed: true,
		})

	case ReservationBecameLoan:
		s.Reservations = removeReservation(s.Reservations, e.UserID)

	case BookReturned:
		if idx := s.itemIndex(e.ItemID); idx >= 0 {
			s.Items[idx].Status = ItemInLibrary
			s.Items[idx].BorrowedBy = ""
		}

		s.Loans = removeLoansOfItem(s.Loans, e.ItemID)

	case BookLost:
		if idx := s.itemIndex(e.ItemID); idx >= 0 {
			s.Items[idx].Status = ItemLost
			s.Items[idx].BorrowedBy = ""
		}

		s.Loans = removeLoansOfItem(s.Loans, e.ItemID)

	case LoanPeriodExtended:
		if idx := s.loanIndex(e.LoanID); idx >= 0 {
			s.Loans[idx].DueAt = e.NewDueAt
		}

	case LoanBecameOverdue:
		if idx := s.loanIndex(e.LoanID); idx >= 0 {
			s.Loans[idx].Status = LoanOverdue
		}

	case LoanBecameShouldReturnSoon:
		if idx := s.loanIndex(e.LoanID); idx >= 0 {
			s.Loans[idx].Status = LoanShouldReturnSoon
		}

	case LoansExtensionForbidden:
		setExtensionAllowed(s.Loans, e.Borrowers, false)

	case LoansExtensionAllowed:
		setExtensionAllowed(s.Loans, e.Borrowers, true)

	case ReservationAdded:
		if s.ReservationPosition(e.UserID) < 0 {
			s.Reservations = append(s.Reservations, Reservation{
				BookID:    e.BookID,
				Holder:    e.UserID,
				CreatedAt: e.OccurredAt,
			})
		}

	case ReservationCanceled:
		s.Reservations = removeReservation(s.Reservations, e.UserID)

	case ReservationPickUpPeriodExpired:
		s.Reservations = removeReservation(s.Reservations, e.UserID)

	case BookReadyToPickUp:
		if idx := s.ReservationPosition(e.UserID); idx >= 0 {
			s.Reservations[idx].Satisfied = true
			s.Reservations[idx].PickUpDeadline = e.PickUpDeadline
		}
	}

	return s
}

// Replay folds the history of one book into its state, starting from EmptyState.
func Replay(bookID BookIDString, history DomainEvents) InventoryState {
	return ReplayOnto(EmptyState(bookID), history)
}

// ReplayOnto continues from an already materialized state, e.g. one restored from a snapshot.
func ReplayOnto(state InventoryState, history DomainEvents) InventoryState {
	for _, event := range history {
		state = Apply(state, event)
	}

	return state
}

func removeReservation(reservations []Reservation, holder UserIDString) []Reservation {
	return slices.DeleteFunc(reservations, func(r Reservation) bool { return r.Holder == holder })
}

func removeLoansOfItem(loans []Loan, itemID ItemIDString) []Loan {
	return slices.DeleteFunc(loans, func(l Loan) bool { return l.ItemID == itemID })
}

func setExtensionAllowed(loans []Loan, borrowers []UserIDString, allowed bool) {
	for i := range loans {
		if slices.Contains(borrowers, loans[i].Borrower) {
			loans[i].ExtensionAllowed = allowed
		}
	}
}
