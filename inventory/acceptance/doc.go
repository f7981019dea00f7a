// Package acceptance holds the Gherkin scenarios of the lending inventory.
//
// The scenarios in features/ run through the complete command path: dispatcher, command handlers,
// event-sourced repository and an embedded SQLite event store created per scenario.
package acceptance
