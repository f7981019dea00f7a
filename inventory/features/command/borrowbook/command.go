package borrowbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "BorrowBook"

// Command lends a copy to a user. LoanID is chosen by the caller, so a retried command is recognized.
type Command struct {
	BookID     uuid.UUID
	ItemID     uuid.UUID
	UserID     uuid.UUID
	LoanID     uuid.UUID
	OccurredAt core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

func BuildCommand(bookID, itemID, userID, loanID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		ItemID:     itemID,
		UserID:     userID,
		LoanID:     loanID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
