package catalogreaction

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

func ReactToBookAdded(event core.BookAdded) CreateInventory {
	return CreateInventory{BookID: event.BookID, OccurredAt: core.ToOccurredAt(event.OccurredAt)}
}

func ReactToBookRemoved(event core.BookRemoved) RemoveInventory {
	return RemoveInventory{BookID: event.BookID, OccurredAt: core.ToOccurredAt(event.OccurredAt)}
}

// ReactTo maps a catalog event to the command it triggers.
// It returns false for events the inventory does not react to.
func ReactTo(event core.DomainEvent) (shell.Command, bool) {
	switch e := event.(type) {
	case core.BookAdded:
		return ReactToBookAdded(e), true
	case core.BookRemoved:
		return ReactToBookRemoved(e), true
	default:
		return nil, false
	}
}
