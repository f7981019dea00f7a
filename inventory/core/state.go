package core

import (
	"slices"
	"time"
)

type ItemStatus string

const (
	ItemInLibrary ItemStatus = "in_library"
	ItemBorrowed  ItemStatus = "borrowed"
	ItemLost      ItemStatus = "lost"
)

// InventoryItem is one physical copy. BorrowedBy is set only while Status is ItemBorrowed.
type InventoryItem struct {
	ItemID     ItemIDString
	Status     ItemStatus
	BorrowedBy UserIDString
}

type LoanStatus string

const (
	LoanActive           LoanStatus = "active"
	LoanOverdue          LoanStatus = "overdue"
	LoanShouldReturnSoon LoanStatus = "should_return_soon"
)

type Loan struct {
	LoanID           LoanIDString
	ItemID           ItemIDString
	Borrower         UserIDString
	TakenAt          time.Time
	DueAt            time.Time
	Status           LoanStatus
	ExtensionAllowed bool
}

// Reservation is a place in the queue. A satisfied reservation has a copy earmarked until PickUpDeadline.
type Reservation struct {
	BookID         BookIDString
	Holder         UserIDString
	CreatedAt      time.Time
	Satisfied      bool
	PickUpDeadline time.Time
}

// InventoryState is the materialized inventory of one book.
// Items keep insertion order, Reservations keep arrival order: position 0 is served next.
type InventoryState struct {
	BookID       BookIDString
	Created      bool
	Items        []InventoryItem
	Loans        []Loan
	Reservations []Reservation
}

// EmptyState returns the state of a book without any history.
func EmptyState(bookID BookIDString) InventoryState {
	return InventoryState{BookID: bookID}
}

func (s InventoryState) clone() InventoryState {
	s.Items = slices.Clone(s.Items)
	s.Loans = slices.Clone(s.Loans)
	s.Reservations = slices.Clone(s.Reservations)

	return s
}

// InLibraryCount is the number of copies currently on the shelf, earmarked ones included.
func (s InventoryState) InLibraryCount() int {
	count := 0
	for _, item := range s.Items {
		if item.Status == ItemInLibrary {
			count++
		}
	}

	return count
}

// SatisfiedReservationsCount is the number of copies earmarked for reservation holders.
func (s InventoryState) SatisfiedReservationsCount() int {
	count := 0
	for _, reservation := range s.Reservations {
		if reservation.Satisfied {
			count++
		}
	}

	return count
}

// AvailableCount is the number of copies on the shelf that are not earmarked, never negative.
func (s InventoryState) AvailableCount() int {
	return max(s.InLibraryCount()-s.SatisfiedReservationsCount(), 0)
}

func (s InventoryState) ItemByID(itemID ItemIDString) (InventoryItem, bool) {
	idx := s.itemIndex(itemID)
	if idx < 0 {
		return InventoryItem{}, false
	}

	return s.Items[idx], true
}

func (s InventoryState) LoanByID(loanID LoanIDString) (Loan, bool) {
	idx := s.loanIndex(loanID)
	if idx < 0 {
		return Loan{}, false
	}

	return s.Loans[idx], true
}

func (s InventoryState) LoanOfUser(userID UserIDString) (Loan, bool) {
	idx := slices.IndexFunc(s.Loans, func(l Loan) bool { return l.Borrower == userID })
	if idx < 0 {
		return Loan{}, false
	}

	return s.Loans[idx], true
}

func (s InventoryState) LoanOfItem(itemID ItemIDString) (Loan, bool) {
	idx := slices.IndexFunc(s.Loans, func(l Loan) bool { return l.ItemID == itemID })
	if idx < 0 {
		return Loan{}, false
	}

	return s.Loans[idx], true
}

// ReservationPosition returns the queue position of the user's reservation, or -1.
func (s InventoryState) ReservationPosition(userID UserIDString) int {
	return slices.IndexFunc(s.Reservations, func(r Reservation) bool { return r.Holder == userID })
}

func (s InventoryState) ReservationOfUser(userID UserIDString) (Reservation, bool) {
	idx := s.ReservationPosition(userID)
	if idx < 0 {
		return Reservation{}, false
	}

	return s.Reservations[idx], true
}

// HeadOfQueue returns the reservation at position 0, satisfied or not.
func (s InventoryState) HeadOfQueue() (Reservation, bool) {
	if len(s.Reservations) == 0 {
		return Reservation{}, false
	}

	return s.Reservations[0], true
}

// HasUnearmarkedCopy reports whether a copy is on the shelf that no reservation holds.
func (s InventoryState) HasUnearmarkedCopy() bool {
	return s.InLibraryCount() > s.SatisfiedReservationsCount()
}

func (s InventoryState) HasReservations() bool {
	return len(s.Reservations) > 0
}

func (s InventoryState) itemIndex(itemID ItemIDString) int {
	return slices.IndexFunc(s.Items, func(i InventoryItem) bool { return i.ItemID == itemID })
}

func (s InventoryState) loanIndex(loanID LoanIDString) int {
	return slices.IndexFunc(s.Loans, func(l Loan) bool { return l.LoanID == loanID })
}
