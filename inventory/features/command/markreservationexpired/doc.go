// Package markreservationexpired implements the time-triggered expiry of a reservation pickup period.
package markreservationexpired
