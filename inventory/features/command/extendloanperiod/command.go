package extendloanperiod

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "ExtendLoanPeriod"

type Command struct {
	BookID     uuid.UUID
	LoanID     uuid.UUID
	UserID     uuid.UUID
	OccurredAt core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

func BuildCommand(bookID, loanID, userID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		LoanID:     loanID,
		UserID:     userID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
