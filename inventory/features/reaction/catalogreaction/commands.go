package catalogreaction

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/core"
)

const (
	createInventoryCommandType = "CreateInventory"
	removeInventoryCommandType = "RemoveInventory"
)

// CreateInventory is issued when the catalog added a book.
type CreateInventory struct {
	BookID     core.BookIDString
	OccurredAt core.OccurredAtTS
}

func (c CreateInventory) CommandType() string {
	return createInventoryCommandType
}

func (c CreateInventory) ForBookID() core.BookIDString {
	return c.BookID
}

// RemoveInventory is issued when the catalog removed a book.
type RemoveInventory struct {
	BookID     core.BookIDString
	OccurredAt core.OccurredAtTS
}

func (c RemoveInventory) CommandType() string {
	return removeInventoryCommandType
}

func (c RemoveInventory) ForBookID() core.BookIDString {
	return c.BookID
}
