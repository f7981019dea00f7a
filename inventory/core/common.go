package core

import (
	"time"
)

// Identifiers are plain strings, usually UUIDs.
type (
	BookIDString = string
	ItemIDString = string
	UserIDString = string
	LoanIDString = string
)

// OccurredAtTS is a UTC timestamp with microsecond precision, the resolution both engines store.
type OccurredAtTS = time.Time

const (
	// LoanPeriod is the default loan duration and also the increment of one extension.
	LoanPeriod = 14 * 24 * time.Hour

	// PickUpWindow is how long an earmarked copy waits for the reservation holder.
	PickUpWindow = 48 * time.Hour
)

// ToOccurredAt normalizes t to UTC with microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
