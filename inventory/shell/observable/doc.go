// Package observable instruments command handlers without touching their business logic.
//
// CommandWrapper records, per command type:
//   - commandhandler_handle_duration_seconds and commandhandler_handle_calls_total with a status label
//   - a dedicated counter for idempotent, rejected, canceled, timed out and conflicting executions
//   - retry counts and delays reported in the HandlerResult
//   - a "commandhandler.handle" span and start/completion/failure logs
//
// Any collector implementation of the eventstore package works, e.g. oteladapters or promadapters.
package observable
