// Package oteladapters implements the eventstore observability interfaces on top of OpenTelemetry.
//
//   - MetricsCollector maps durations to histograms (seconds), counters to Int64Counter and values to gauges.
//   - TracingCollector starts spans on a trace.Tracer and maps status strings to span codes.
//   - SlogBridgeLogger and OTelLogger implement eventstore.ContextualLogger, so log records carry trace and span IDs.
//
// The inventory shell uses the same adapters for its command handler metrics and spans.
package oteladapters
