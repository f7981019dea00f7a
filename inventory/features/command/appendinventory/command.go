package appendinventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "AppendInventory"

// Command adds one physical copy to the inventory of a book.
type Command struct {
	BookID      uuid.UUID
	ItemID      uuid.UUID
	LibrarianID uuid.UUID
	OccurredAt  core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

func BuildCommand(bookID, itemID, librarianID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:      bookID,
		ItemID:      itemID,
		LibrarianID: librarianID,
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}
