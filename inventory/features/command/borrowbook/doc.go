// Package borrowbook implements the Borrow Book use case.
//
// The reservation queue decides whose turn it is: a user may take a copy from the shelf
// when there are more copies than reservations, or when the user is among the first
// reservations the shelf can serve.
package borrowbook
