// Package core holds the pure part of the library inventory: the per-book state, the domain events,
// the rejection taxonomy and the event applier.
//
// Nothing in here performs I/O or reads the clock. Every time value arrives as event or command input,
// so replaying a history always yields the same InventoryState.
package core
