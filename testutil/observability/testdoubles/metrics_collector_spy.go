package testdoubles

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

// SpyMetricRecord is one captured metrics call. Duration is set for durations, Value for values.
type SpyMetricRecord struct {
	Kind     string // "duration", "counter" or "value"
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures metrics calls, with or without context.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	records []SpyMetricRecord
}

func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: "duration", Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: "counter", Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: "value", Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

func (s *MetricsCollectorSpy) record(record SpyMetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
}

func (s *MetricsCollectorSpy) Records() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.records)
}

// CountRecords counts the records of a metric whose labels contain all of wantLabels.
func (s *MetricsCollectorSpy) CountRecords(kind, metric string, wantLabels map[string]string) int {
	count := 0

	for _, record := range s.Records() {
		if record.Kind == kind && record.Metric == metric && containsLabels(record.Labels, wantLabels) {
			count++
		}
	}

	return count
}

func (s *MetricsCollectorSpy) HasCounter(metric string, wantLabels map[string]string) bool {
	return s.CountRecords("counter", metric, wantLabels) > 0
}

func (s *MetricsCollectorSpy) HasDuration(metric string, wantLabels map[string]string) bool {
	return s.CountRecords("duration", metric, wantLabels) > 0
}

func containsLabels(labels, want map[string]string) bool {
	for k, v := range want {
		if labels[k] != v {
			return false
		}
	}

	return true
}

var _ eventstore.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
