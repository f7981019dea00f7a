// Package appendinventory implements the Append Inventory use case: a librarian adds a copy of a book.
//
// The new copy is either earmarked for the next reservation holder or announced as available.
// Both events are appended together.
package appendinventory
