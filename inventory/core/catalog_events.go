package core

import (
	"time"
)

// Catalog events are produced by the catalog, not by the inventory. The inventory only reacts to them.
const (
	BookAddedEventType   = "BookAdded"
	BookRemovedEventType = "BookRemoved"
)

type BookAdded struct {
	BookID     BookIDString
	Title      string
	OccurredAt OccurredAtTS
}

func BuildBookAdded(bookID BookIDString, title string, occurredAt time.Time) BookAdded {
	return BookAdded{BookID: bookID, Title: title, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e BookAdded) EventType() string        { return BookAddedEventType }
func (e BookAdded) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookAdded) ForBookID() BookIDString  { return e.BookID }
func (e BookAdded) IsErrorEvent() bool       { return false }

type BookRemoved struct {
	BookID     BookIDString
	OccurredAt OccurredAtTS
}

func BuildBookRemoved(bookID BookIDString, occurredAt time.Time) BookRemoved {
	return BookRemoved{BookID: bookID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e BookRemoved) EventType() string        { return BookRemovedEventType }
func (e BookRemoved) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookRemoved) ForBookID() BookIDString  { return e.BookID }
func (e BookRemoved) IsErrorEvent() bool       { return false }
