// Package writebookoff implements the Write Book Off use case: a damaged or lost copy leaves the inventory.
package writebookoff
