package forbidloansextension

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "ForbidLoansExtension"

type Command struct {
	BookID     uuid.UUID
	Borrowers  []uuid.UUID
	OccurredAt core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

func BuildCommand(bookID uuid.UUID, borrowers []uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		Borrowers:  borrowers,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
