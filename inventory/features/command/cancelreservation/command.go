package cancelreservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const commandType = "CancelReservation"

type Command struct {
	BookID     uuid.UUID
	UserID     uuid.UUID
	OccurredAt core.OccurredAtTS
}

func (c Command) CommandType() string {
	return commandType
}

func (c Command) ForBookID() core.BookIDString {
	return c.BookID.String()
}

func BuildCommand(bookID, userID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		BookID:     bookID,
		UserID:     userID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
