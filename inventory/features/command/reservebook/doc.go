// Package reservebook implements the Reserve Book use case.
//
// A reservation is accepted even while copies are on the shelf. Whether its holder may
// take one is decided by the borrowbook slice, from the queue position.
package reservebook
