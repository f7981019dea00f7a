package cancelreservation

import (
	"github.com/AntonStoeckl/library-inventory-go/inventory/shell"
)

type CommandHandler = shell.CommandHandler[Command]

func NewCommandHandler(repository shell.Repository, opts ...shell.HandlerOption) CommandHandler {
	return shell.NewCommandHandler[Command](repository, Decide, opts...)
}
