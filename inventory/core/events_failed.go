package core

import (
	"time"
)

const (
	BorrowingBookFailedEventType        = "BorrowingBookFailed"
	ReturningBookFailedEventType        = "ReturningBookFailed"
	ReservingBookFailedEventType        = "ReservingBookFailed"
	CancelingReservationFailedEventType = "CancelingReservationFailed"
	WritingBookOffFailedEventType       = "WritingBookOffFailed"
	ExtendingLoanPeriodFailedEventType  = "ExtendingLoanPeriodFailed"
)

// The failure events below record rejected commands. They never change the state.

type BorrowingBookFailed struct {
	BookID     BookIDString
	ItemID     ItemIDString
	UserID     UserIDString
	Reason     RejectionReason
	OccurredAt OccurredAtTS
}

func BuildBorrowingBookFailed(
	bookID BookIDString,
	itemID ItemIDString,
	userID UserIDString,
	reason RejectionReason,
	occurredAt time.Time,
) BorrowingBookFailed {

	return BorrowingBookFailed{BookID: bookID, ItemID: itemID, UserID: userID, Reason: reason, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e BorrowingBookFailed) EventType() string                { return BorrowingBookFailedEventType }
func (e BorrowingBookFailed) HasOccurredAt() time.Time         { return e.OccurredAt }
func (e BorrowingBookFailed) ForBookID() BookIDString          { return e.BookID }
func (e BorrowingBookFailed) IsErrorEvent() bool               { return true }
func (e BorrowingBookFailed) RejectionReason() RejectionReason { return e.Reason }

type ReturningBookFailed struct {
	BookID     BookIDString
	ItemID     ItemIDString
	UserID     UserIDString
	Reason     RejectionReason
	OccurredAt OccurredAtTS
}

func BuildReturningBookFailed(
	bookID BookIDString,
	itemID ItemIDString,
	userID UserIDString,
	reason RejectionReason,
	occurredAt time.Time,
) ReturningBookFailed {

	return ReturningBookFailed{BookID: bookID, ItemID: itemID, UserID: userID, Reason: reason, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ReturningBookFailed) EventType() string                { return ReturningBookFailedEventType }
func (e ReturningBookFailed) HasOccurredAt() time.Time         { return e.OccurredAt }
func (e ReturningBookFailed) ForBookID() BookIDString          { return e.BookID }
func (e ReturningBookFailed) IsErrorEvent() bool               { return true }
func (e ReturningBookFailed) RejectionReason() RejectionReason { return e.Reason }

type ReservingBookFailed struct {
	BookID     BookIDString
	UserID     UserIDString
	Reason     RejectionReason
	OccurredAt OccurredAtTS
}

func BuildReservingBookFailed(
	bookID BookIDString,
	userID UserIDString,
	reason RejectionReason,
	occurredAt time.Time,
) ReservingBookFailed {

	return ReservingBookFailed{BookID: bookID, UserID: userID, Reason: reason, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ReservingBookFailed) EventType() string                { return ReservingBookFailedEventType }
func (e ReservingBookFailed) HasOccurredAt() time.Time         { return e.OccurredAt }
func (e ReservingBookFailed) ForBookID() BookIDString          { return e.BookID }
func (e ReservingBookFailed) IsErrorEvent() bool               { return true }
func (e ReservingBookFailed) RejectionReason() RejectionReason { return e.Reason }

type CancelingReservationFailed struct {
	BookID     BookIDString
	UserID     UserIDString
	Reason     RejectionReason
	OccurredAt OccurredAtTS
}

func BuildCancelingReservationFailed(
	bookID BookIDString,
	userID UserIDString,
	reason RejectionReason,
	occurredAt time.Time,
) CancelingReservationFailed {

	return CancelingReservationFailed{BookID: bookID, UserID: userID, Reason: reason, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e CancelingReservationFailed) EventType() string                { return CancelingReservationFailedEventType }
func (e CancelingReservationFailed) HasOccurredAt() time.Time         { return e.OccurredAt }
func (e CancelingReservationFailed) ForBookID() BookIDString          { return e.BookID }
func (e CancelingReservationFailed) IsErrorEvent() bool               { return true }
func (e CancelingReservationFailed) RejectionReason() RejectionReason { return e.Reason }

type WritingBookOffFailed struct {
	BookID     BookIDString
	ItemID     ItemIDString
	UserID     UserIDString
	Reason     RejectionReason
	OccurredAt OccurredAtTS
}

func BuildWritingBookOffFailed(
	bookID BookIDString,
	itemID ItemIDString,
	userID UserIDString,
	reason RejectionReason,
	occurredAt time.Time,
) WritingBookOffFailed {

	return WritingBookOffFailed{BookID: bookID, ItemID: itemID, UserID: userID, Reason: reason, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e WritingBookOffFailed) EventType() string                { return WritingBookOffFailedEventType }
func (e WritingBookOffFailed) HasOccurredAt() time.Time         { return e.OccurredAt }
func (e WritingBookOffFailed) ForBookID() BookIDString          { return e.BookID }
func (e WritingBookOffFailed) IsErrorEvent() bool               { return true }
func (e WritingBookOffFailed) RejectionReason() RejectionReason { return e.Reason }

type ExtendingLoanPeriodFailed struct {
	BookID     BookIDString
	LoanID     LoanIDString
	UserID     UserIDString
	Reason     RejectionReason
	OccurredAt OccurredAtTS
}

func BuildExtendingLoanPeriodFailed(
	bookID BookIDString,
	loanID LoanIDString,
	userID UserIDString,
	reason RejectionReason,
	occurredAt time.Time,
) ExtendingLoanPeriodFailed {

	return ExtendingLoanPeriodFailed{BookID: bookID, LoanID: loanID, UserID: userID, Reason: reason, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ExtendingLoanPeriodFailed) EventType() string                { return ExtendingLoanPeriodFailedEventType }
func (e ExtendingLoanPeriodFailed) HasOccurredAt() time.Time         { return e.OccurredAt }
func (e ExtendingLoanPeriodFailed) ForBookID() BookIDString          { return e.BookID }
func (e ExtendingLoanPeriodFailed) IsErrorEvent() bool               { return true }
func (e ExtendingLoanPeriodFailed) RejectionReason() RejectionReason { return e.Reason }
