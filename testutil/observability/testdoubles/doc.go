// Package testdoubles provides spies for the logging, metrics and tracing interfaces of the event store
// and the inventory shell.
package testdoubles
