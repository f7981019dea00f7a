package core

import (
	"time"
)

const (
	InventoryCreatedEventType   = "InventoryCreated"
	InventoryRemovedEventType   = "InventoryRemoved"
	InventoryAppendedEventType  = "InventoryAppended"
	InventoryDecreasedEventType = "InventoryDecreased"
)

// WriteOffReason says why a copy left the inventory.
type WriteOffReason string

const (
	WriteOffLost    WriteOffReason = "lost"
	WriteOffDamaged WriteOffReason = "damaged"
	WriteOffOther   WriteOffReason = "other"
)

// InventoryCreated starts the inventory of a book that the catalog added.
type InventoryCreated struct {
	BookID     BookIDString
	OccurredAt OccurredAtTS
}

func BuildInventoryCreated(bookID BookIDString, occurredAt time.Time) InventoryCreated {
	return InventoryCreated{BookID: bookID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e InventoryCreated) EventType() string        { return InventoryCreatedEventType }
func (e InventoryCreated) HasOccurredAt() time.Time { return e.OccurredAt }
func (e InventoryCreated) ForBookID() BookIDString  { return e.BookID }
func (e InventoryCreated) IsErrorEvent() bool       { return false }

// InventoryRemoved discards all items, loans and reservations of a book that the catalog removed.
type InventoryRemoved struct {
	BookID     BookIDString
	OccurredAt OccurredAtTS
}

func BuildInventoryRemoved(bookID BookIDString, occurredAt time.Time) InventoryRemoved {
	return InventoryRemoved{BookID: bookID, OccurredAt: ToOccurredAt(occurredAt)}
}

func (e InventoryRemoved) EventType() string        { return InventoryRemovedEventType }
func (e InventoryRemoved) HasOccurredAt() time.Time { return e.OccurredAt }
func (e InventoryRemoved) ForBookID() BookIDString  { return e.BookID }
func (e InventoryRemoved) IsErrorEvent() bool       { return false }

// InventoryAppended adds a copy to the shelf.
type InventoryAppended struct {
	BookID     BookIDString
	ItemID     ItemIDString
	AppendedBy UserIDString
	OccurredAt OccurredAtTS
}

func BuildInventoryAppended(
	bookID BookIDString,
	itemID ItemIDString,
	appendedBy UserIDString,
	occurredAt time.Time,
) InventoryAppended {

	return InventoryAppended{
		BookID:     bookID,
		ItemID:     itemID,
		AppendedBy: appendedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e InventoryAppended) EventType() string        { return InventoryAppendedEventType }
func (e InventoryAppended) HasOccurredAt() time.Time { return e.OccurredAt }
func (e InventoryAppended) ForBookID() BookIDString  { return e.BookID }
func (e InventoryAppended) IsErrorEvent() bool       { return false }

// InventoryDecreased removes a written-off copy.
// AvailableBooksCount is the number of unreserved copies on the shelf after the write-off.
type InventoryDecreased struct {
	BookID              BookIDString
	ItemID              ItemIDString
	WrittenOffBy        UserIDString
	Reason              WriteOffReason
	AvailableBooksCount int
	OccurredAt          OccurredAtTS
}

func BuildInventoryDecreased(
	bookID BookIDString,
	itemID ItemIDString,
	writtenOffBy UserIDString,
	reason WriteOffReason,
	availableBooksCount int,
	occurredAt time.Time,
) InventoryDecreased {

	return InventoryDecreased{
		BookID:              bookID,
		ItemID:              itemID,
		WrittenOffBy:        writtenOffBy,
		Reason:              reason,
		AvailableBooksCount: availableBooksCount,
		OccurredAt:          ToOccurredAt(occurredAt),
	}
}

func (e InventoryDecreased) EventType() string        { return InventoryDecreasedEventType }
func (e InventoryDecreased) HasOccurredAt() time.Time { return e.OccurredAt }
func (e InventoryDecreased) ForBookID() BookIDString  { return e.BookID }
func (e InventoryDecreased) IsErrorEvent() bool       { return false }
