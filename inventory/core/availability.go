package core

import (
	"time"
)

// AvailabilityKind tags the variant of an Availability.
type AvailabilityKind int

const (
	BecameAvailable AvailabilityKind = iota + 1
	ReadyToPickUp
)

func (k AvailabilityKind) String() string {
	switch k {
	case BecameAvailable:
		return "became_available"
	case ReadyToPickUp:
		return "ready_to_pick_up"
	default:
		return "unknown"
	}
}

// Availability is the follow-up of a copy arriving on the shelf.
// Exactly one of BookBecameAvailable and BookReadyToPickUp is set, selected by Kind.
type Availability struct {
	Kind                AvailabilityKind
	BookBecameAvailable BookBecameAvailable
	BookReadyToPickUp   BookReadyToPickUp
}

// Event returns the event of the active variant.
func (a Availability) Event() DomainEvent {
	if a.Kind == ReadyToPickUp {
		return a.BookReadyToPickUp
	}

	return a.BookBecameAvailable
}

// RouteAvailability decides what happens with a copy that just arrived on the shelf.
// The state must already contain the copy.
// With a non-empty queue the head of the queue is asked to pick it up, otherwise the copy becomes available.
func RouteAvailability(state InventoryState, bookID BookIDString, now time.Time) Availability {
	if head, ok := state.HeadOfQueue(); ok {
		return Availability{
			Kind:              ReadyToPickUp,
			BookReadyToPickUp: BuildBookReadyToPickUp(bookID, head.Holder, now),
		}
	}

	return Availability{
		Kind:                BecameAvailable,
		BookBecameAvailable: BuildBookBecameAvailable(bookID, state.AvailableCount(), now),
	}
}

// ExpectedReadyToPickUp estimates when a new reservation could be served, from the loans and queue before it.
// It returns the zero time if nothing is on loan.
func ExpectedReadyToPickUp(state InventoryState) time.Time {
	if len(state.Loans) == 0 {
		return time.Time{}
	}

	for _, loan := range state.Loans {
		if loan.ExtensionAllowed {
			return loan.DueAt
		}
	}

	unsatisfied := len(state.Reservations) - state.SatisfiedReservationsCount()
	periods := unsatisfied - len(state.Loans) + 1

	return state.Loans[len(state.Loans)-1].DueAt.Add(time.Duration(periods) * LoanPeriod)
}
