package writebookoff

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "WriteBookOff"

// Command removes a copy from the inventory for good.
type Command struct {
	BookID      uuid.UUID
	ItemID      uuid.UUID
	LibrarianID uuid.UUID
	Reason      core.WriteOffReason
	OccurredAt  core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

// BuildCommand defaults an empty reason to core.WriteOffOther.
func BuildCommand(bookID, itemID, librarianID uuid.UUID, reason core.WriteOffReason, occurredAt time.Time) Command {
	if reason == "" {
		reason = core.WriteOffOther
	}

	return Command{
		BookID:      bookID,
		ItemID:      itemID,
		LibrarianID: librarianID,
		Reason:      reason,
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}
