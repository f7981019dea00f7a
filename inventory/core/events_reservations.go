package core

import (
	"time"
)

const (
	ReservationAddedEventType               = "ReservationAdded"
	ReservationCanceledEventType            = "ReservationCanceled"
	ReservationPickUpPeriodExpiredEventType = "ReservationPickUpPeriodExpired"
	BookReadyToPickUpEventType              = "BookReadyToPickUp"
	BookBecameAvailableEventType            = "BookBecameAvailable"
)

// ReservationAdded appends a reservation to the tail of the queue.
// WhenExpected estimates when a copy will be earmarked; it is zero if the book has no loans.
type ReservationAdded struct {
	BookID       BookIDString
	UserID       UserIDString
	WhenExpected time.Time
	OccurredAt   OccurredAtTS
}

func BuildReservationAdded(
	bookID BookIDString,
	userID UserIDString,
	whenExpected time.Time,
	occurredAt time.Time,
) ReservationAdded {

	return ReservationAdded{BookID: bookID, UserID: userID, WhenExpected: whenExpected, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ReservationAdded) EventType() string        { return ReservationAddedEventType }
func (e ReservationAdded) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ReservationAdded) ForBookID() BookIDString  { return e.BookID }
func (e ReservationAdded) IsErrorEvent() bool       { return false }

type ReservationCanceled struct {
	BookID     BookIDString
	UserID     UserIDString
	OccurredAt OccurredAtTS
}

func BuildReservationCanceled(bookID BookIDString, userID UserIDString, occurredAt time.Time) ReservationCanceled {
	return ReservationCanceled{BookID: bookID, UserID: userID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ReservationCanceled) EventType() string        { return ReservationCanceledEventType }
func (e ReservationCanceled) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ReservationCanceled) ForBookID() BookIDString  { return e.BookID }
func (e ReservationCanceled) IsErrorEvent() bool       { return false }

type ReservationPickUpPeriodExpired struct {
	BookID     BookIDString
	UserID     UserIDString
	OccurredAt OccurredAtTS
}

func BuildReservationPickUpPeriodExpired(
	bookID BookIDString,
	userID UserIDString,
	occurredAt time.Time,
) ReservationPickUpPeriodExpired {

	return ReservationPickUpPeriodExpired{BookID: bookID, UserID: userID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e ReservationPickUpPeriodExpired) EventType() string {
	return ReservationPickUpPeriodExpiredEventType
}
func (e ReservationPickUpPeriodExpired) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ReservationPickUpPeriodExpired) ForBookID() BookIDString  { return e.BookID }
func (e ReservationPickUpPeriodExpired) IsErrorEvent() bool       { return false }

// BookReadyToPickUp earmarks a copy for the named reservation holder until PickUpDeadline.
type BookReadyToPickUp struct {
	BookID         BookIDString
	UserID         UserIDString
	PickUpDeadline time.Time
	OccurredAt     OccurredAtTS
}

func BuildBookReadyToPickUp(bookID BookIDString, userID UserIDString, occurredAt time.Time) BookReadyToPickUp {
	at := ToOccurredAt(occurredAt)

	return BookReadyToPickUp{BookID: bookID, UserID: userID, PickUpDeadline: at.Add(PickUpWindow), OccurredAt: at}
}

func (e BookReadyToPickUp) EventType() string        { return BookReadyToPickUpEventType }
func (e BookReadyToPickUp) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookReadyToPickUp) ForBookID() BookIDString  { return e.BookID }
func (e BookReadyToPickUp) IsErrorEvent() bool       { return false }

// BookBecameAvailable announces unreserved copies on the shelf. It changes no state.
type BookBecameAvailable struct {
	BookID              BookIDString
	AvailableBooksCount int
	OccurredAt          OccurredAtTS
}

func BuildBookBecameAvailable(bookID BookIDString, availableBooksCount int, occurredAt time.Time) BookBecameAvailable {
	return BookBecameAvailable{BookID: bookID, AvailableBooksCount: availableBooksCount, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e BookBecameAvailable) EventType() string        { return BookBecameAvailableEventType }
func (e BookBecameAvailable) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookBecameAvailable) ForBookID() BookIDString  { return e.BookID }
func (e BookBecameAvailable) IsErrorEvent() bool       { return false }
