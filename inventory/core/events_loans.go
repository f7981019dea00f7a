package core

import (
	"time"
)

const (
	BookBorrowedEventType               = "BookBorrowed"
	ReservationBecameLoanEventType      = "ReservationBecameLoan"
	BookReturnedEventType               = "BookReturned"
	BookLostEventType                   = "BookLost"
	LoanPeriodExtendedEventType         = "LoanPeriodExtended"
	LoanBecameOverdueEventType          = "LoanBecameOverdue"
	LoanBecameShouldReturnSoonEventType = "LoanBecameShouldReturnSoon"
	LoansExtensionForbiddenEventType    = "LoansExtensionForbidden"
	LoansExtensionAllowedEventType      = "LoansExtensionAllowed"
)

// BookBorrowed opens a loan on a copy. AvailableBooksCount is counted after the borrowing.
type BookBorrowed struct {
	BookID              BookIDString
	ItemID              ItemIDString
	LoanID              LoanIDString
	UserID              UserIDString
	WhenDue             time.Time
	AvailableBooksCount int
	OccurredAt          OccurredAtTS
}

func BuildBookBorrowed(
	bookID BookIDString,
	itemID ItemIDString,
	loanID LoanIDString,
	userID UserIDString,
	availableBooksCount int,
	occurredAt time.Time,
) BookBorrowed {

	at := ToOccurredAt(occurredAt)

	return BookBorrowed{
		BookID:              bookID,
		ItemID:              itemID,
		LoanID:              loanID,
		UserID:              userID,
		WhenDue:             at.Add(LoanPeriod),
		AvailableBooksCount: availableBooksCount,
		OccurredAt:          at,
	}
}

func (e BookBorrowed) EventType() string        { return BookBorrowedEventType }
func (e BookBorrowed) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookBorrowed) ForBookID() BookIDString  { return e.BookID }
func (e BookBorrowed) IsErrorEvent() bool       { return false }

// ReservationBecameLoan removes the reservation of a user who just borrowed the book.
type ReservationBecameLoan struct {
	BookID     BookIDString
	UserID     UserIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

func BuildReservationBecameLoan(
	bookID BookIDString,
	userID UserIDString,
	loanID LoanIDString,
	occurredAt time.Time,
) ReservationBecameLoan {

	return ReservationBecameLoan{BookID: bookID, UserID: userID, LoanID: loanID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ReservationBecameLoan) EventType() string        { return ReservationBecameLoanEventType }
func (e ReservationBecameLoan) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ReservationBecameLoan) ForBookID() BookIDString  { return e.BookID }
func (e ReservationBecameLoan) IsErrorEvent() bool       { return false }

// BookReturned closes the loan and puts the copy back on the shelf.
type BookReturned struct {
	BookID     BookIDString
	ItemID     ItemIDString
	LoanID     LoanIDString
	UserID     UserIDString
	OccurredAt OccurredAtTS
}

func BuildBookReturned(
	bookID BookIDString,
	itemID ItemIDString,
	loanID LoanIDString,
	userID UserIDString,
	occurredAt time.Time,
) BookReturned {

	return BookReturned{BookID: bookID, ItemID: itemID, LoanID: loanID, UserID: userID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e BookReturned) EventType() string        { return BookReturnedEventType }
func (e BookReturned) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookReturned) ForBookID() BookIDString  { return e.BookID }
func (e BookReturned) IsErrorEvent() bool       { return false }

// BookLost marks a copy as lost and closes any loan on it. LoanID is empty if the copy was not on loan.
type BookLost struct {
	BookID     BookIDString
	ItemID     ItemIDString
	LoanID     LoanIDString
	UserID     UserIDString
	OccurredAt OccurredAtTS
}

func BuildBookLost(
	bookID BookIDString,
	itemID ItemIDString,
	loanID LoanIDString,
	userID UserIDString,
	occurredAt time.Time,
) BookLost {

	return BookLost{BookID: bookID, ItemID: itemID, LoanID: loanID, UserID: userID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e BookLost) EventType() string        { return BookLostEventType }
func (e BookLost) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookLost) ForBookID() BookIDString  { return e.BookID }
func (e BookLost) IsErrorEvent() bool       { return false }

// LoanPeriodExtended moves the due date by one LoanPeriod.
type LoanPeriodExtended struct {
	BookID        BookIDString
	LoanID        LoanIDString
	UserID        UserIDString
	PreviousDueAt time.Time
	NewDueAt      time.Time
	OccurredAt    OccurredAtTS
}

func BuildLoanPeriodExtended(
	bookID BookIDString,
	loanID LoanIDString,
	userID UserIDString,
	previousDueAt time.Time,
	occurredAt time.Time,
) LoanPeriodExtended {

	return LoanPeriodExtended{
		BookID:        bookID,
		LoanID:        loanID,
		UserID:        userID,
		PreviousDueAt: previousDueAt,
		NewDueAt:      previousDueAt.Add(LoanPeriod),
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e LoanPeriodExtended) EventType() string        { return LoanPeriodExtendedEventType }
func (e LoanPeriodExtended) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LoanPeriodExtended) ForBookID() BookIDString  { return e.BookID }
func (e LoanPeriodExtended) IsErrorEvent() bool       { return false }

type LoanBecameOverdue struct {
	BookID     BookIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

func BuildLoanBecameOverdue(bookID BookIDString, loanID LoanIDString, occurredAt time.Time) LoanBecameOverdue {
	return LoanBecameOverdue{BookID: bookID, LoanID: loanID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e LoanBecameOverdue) EventType() string        { return LoanBecameOverdueEventType }
func (e LoanBecameOverdue) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LoanBecameOverdue) ForBookID() BookIDString  { return e.BookID }
func (e LoanBecameOverdue) IsErrorEvent() bool       { return false }

type LoanBecameShouldReturnSoon struct {
	BookID     BookIDString
	LoanID     LoanIDString
	OccurredAt OccurredAtTS
}

func BuildLoanBecameShouldReturnSoon(bookID BookIDString, loanID LoanIDString, occurredAt time.Time) LoanBecameShouldReturnSoon {
	return LoanBecameShouldReturnSoon{BookID: bookID, LoanID: loanID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e LoanBecameShouldReturnSoon) EventType() string        { return LoanBecameShouldReturnSoonEventType }
func (e LoanBecameShouldReturnSoon) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LoanBecameShouldReturnSoon) ForBookID() BookIDString  { return e.BookID }
func (e LoanBecameShouldReturnSoon) IsErrorEvent() bool       { return false }

// LoansExtensionForbidden clears the extension flag on the loans of the named borrowers.
type LoansExtensionForbidden struct {
	BookID     BookIDString
	Borrowers  []UserIDString
	OccurredAt OccurredAtTS
}

func BuildLoansExtensionForbidden(bookID BookIDString, borrowers []UserIDString, occurredAt time.Time) LoansExtensionForbidden {
	return LoansExtensionForbidden{BookID: bookID, Borrowers: borrowers, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e LoansExtensionForbidden) EventType() string        { return LoansExtensionForbiddenEventType }
func (e LoansExtensionForbidden) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LoansExtensionForbidden) ForBookID() BookIDString  { return e.BookID }
func (e LoansExtensionForbidden) IsErrorEvent() bool       { return false }

// LoansExtensionAllowed sets the extension flag on the loans of the named borrowers.
type LoansExtensionAllowed struct {
	BookID     BookIDString
	Borrowers  []UserIDString
	OccurredAt OccurredAtTS
}

func BuildLoansExtensionAllowed(bookID BookIDString, borrowers []UserIDString, occurredAt time.Time) LoansExtensionAllowed {
	return LoansExtensionAllowed{BookID: bookID, Borrowers: borrowers, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e LoansExtensionAllowed) EventType() string        { return LoansExtensionAllowedEventType }
func (e LoansExtensionAllowed) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LoansExtensionAllowed) ForBookID() BookIDString  { return e.BookID }
func (e LoansExtensionAllowed) IsErrorEvent() bool       { return false }
