package catalogreaction

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

type (
	BookAddedHandler   = shell.CommandHandler[CreateInventory]
	BookRemovedHandler = shell.CommandHandler[RemoveInventory]
)

func NewBookAddedHandler(repository shell.Repository, opts ...shell.HandlerOption) BookAddedHandler {
	return shell.NewCommandHandler[CreateInventory](repository, DecideBookAdded, opts...)
}

func NewBookRemovedHandler(repository shell.Repository, opts ...shell.HandlerOption) BookRemovedHandler {
	return shell.NewCommandHandler[RemoveInventory](repository, DecideBookRemoved, opts...)
}
