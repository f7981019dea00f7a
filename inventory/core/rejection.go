package core

import (
	"errors"
	"fmt"
)

// RejectionReason is the closed taxonomy of business rule violations.
type RejectionReason string

const (
	ReasonAlreadyBorrowed    RejectionReason = "AlreadyBorrowed"
	ReasonNotAvailable       RejectionReason = "NotAvailable"
	ReasonMissingItem        RejectionReason = "MissingItem"
	ReasonNotBorrowed        RejectionReason = "NotBorrowed"
	ReasonAlreadyReserved    RejectionReason = "AlreadyReserved"
	ReasonMissingReservation RejectionReason = "MissingReservation"
	ReasonCannotExtend       RejectionReason = "CannotExtend"
)

var (
	ErrAlreadyBorrowed    = errors.New("book is already borrowed by this user")
	ErrNotAvailable       = errors.New("book is not available for this user")
	ErrMissingItem        = errors.New("inventory item is missing")
	ErrNotBorrowed        = errors.New("inventory item is not borrowed by this user")
	ErrAlreadyReserved    = errors.New("book is already reserved by this user")
	ErrMissingReservation = errors.New("user holds no reservation for this book")
	ErrCannotExtend       = errors.New("loan period cannot be extended")

	ErrUnknownRejectionReason = errors.New("unknown rejection reason")
)

// Err returns the sentinel error of the reason.
func (r RejectionReason) Err() error {
	switch r {
	case ReasonAlreadyBorrowed:
		return ErrAlreadyBorrowed
	case ReasonNotAvailable:
		return ErrNotAvailable
	case ReasonMissingItem:
		return ErrMissingItem
	case ReasonNotBorrowed:
		return ErrNotBorrowed
	case ReasonAlreadyReserved:
		return ErrAlreadyReserved
	case ReasonMissingReservation:
		return ErrMissingReservation
	case ReasonCannotExtend:
		return ErrCannotExtend
	default:
		return ErrUnknownRejectionReason
	}
}

// Rejection is the result variant a rejected command produces next to its failure event.
// It is a domain fact, not a fault: nothing retries it.
type Rejection struct {
	Reason RejectionReason
	Event  FailureEvent
}

// BuildRejection wraps a failure event.
func BuildRejection(event FailureEvent) Rejection {
	return Rejection{Reason: event.RejectionReason(), Event: event}
}

// Error implements error, so a Rejection can travel where an error is expected.
func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Event.EventType(), r.Reason.Err())
}

// Unwrap exposes the reason's sentinel to errors.Is.
func (r Rejection) Unwrap() error {
	return r.Reason.Err()
}
