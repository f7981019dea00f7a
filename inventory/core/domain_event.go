package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent in the order they happened.
type DomainEvents = []DomainEvent

// DomainEvent is a fact about one book's inventory.
type DomainEvent interface {
	// EventType returns the string identifier under which the event is stored.
	EventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// ForBookID returns the book whose inventory the event belongs to.
	ForBookID() BookIDString

	// IsErrorEvent returns true for the failure events that record rejected commands.
	IsErrorEvent() bool
}

// FailureEvent is a DomainEvent recording a rejected command.
type FailureEvent interface {
	DomainEvent
	RejectionReason() RejectionReason
}
