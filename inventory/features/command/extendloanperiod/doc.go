// Package extendloanperiod implements the Extend Loan Period use case.
//
// Extensions are only granted while nobody waits for the book.
package extendloanperiod
