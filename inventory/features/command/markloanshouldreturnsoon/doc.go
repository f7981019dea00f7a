// Package markloanshouldreturnsoon implements the time-triggered reminder that a loan is almost due.
package markloanshouldreturnsoon
