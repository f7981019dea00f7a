package markloanoverdue

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "MarkLoanOverdue"

type Command struct {
	BookID     uuid.UUID
	LoanID     uuid.UUID
	OccurredAt core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

func BuildCommand(bookID, loanID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		LoanID:     loanID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
