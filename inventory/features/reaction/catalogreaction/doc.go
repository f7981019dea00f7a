// Package catalogreaction keeps the inventory in step with the catalog.
//
// "Book added" creates the inventory of a book, "book removed" clears it.
// The reactions go through the same load, decide and append cycle as user commands.
package catalogreaction
