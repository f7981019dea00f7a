// Package markloanoverdue implements the time-triggered transition of a loan to overdue.
package markloanoverdue
