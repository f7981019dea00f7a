// Package allowloansextension implements the system command that lifts a block on loan extensions.
package allowloansextension
