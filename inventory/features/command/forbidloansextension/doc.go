// Package forbidloansextension implements the system command that blocks loan extensions,
// e.g. for borrowers with overdue loans elsewhere.
package forbidloansextension
