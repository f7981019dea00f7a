// Package returnbook implements the Return Book use case.
package returnbook
