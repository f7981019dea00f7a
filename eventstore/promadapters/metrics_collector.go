// Package promadapters implements eventstore.MetricsCollector on a Prometheus registry.
//
// Each metric name becomes one vector: RecordDuration a HistogramVec (seconds), IncrementCounter a CounterVec,
// RecordValue a GaugeVec. The label names of a vector are fixed by its first use. Later calls fill
// missing labels with "" and drop unknown ones.
package promadapters

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

const helpText = "library inventory metric"

type MetricsCollector struct {
	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*vec[*prometheus.HistogramVec]
	counters   map[string]*vec[*prometheus.CounterVec]
	gauges     map[string]*vec[*prometheus.GaugeVec]
}

type vec[T any] struct {
	collector  T
	labelNames []string
}

type Option func(*MetricsCollector)

// WithBuckets overrides prometheus.DefBuckets for all duration histograms.
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) { m.buckets = buckets }
}

func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) *MetricsCollector {
	m := &MetricsCollector{
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]*vec[*prometheus.HistogramVec]),
		counters:   make(map[string]*vec[*prometheus.CounterVec]),
		gauges:     make(map[string]*vec[*prometheus.GaugeVec]),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	v := m.histogram(metric, labels)
	if v == nil {
		return
	}

	v.collector.WithLabelValues(values(v.labelNames, labels)...).Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	v := m.counter(metric, labels)
	if v == nil {
		return
	}

	v.collector.WithLabelValues(values(v.labelNames, labels)...).Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	v := m.gauge(metric, labels)
	if v == nil {
		return
	}

	v.collector.WithLabelValues(values(v.labelNames, labels)...).Set(value)
}

func (m *MetricsCollector) histogram(name string, labels map[string]string) *vec[*prometheus.HistogramVec] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.histograms[name]; ok {
		return v
	}

	labelNames := names(labels)
	collector := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: name, Help: helpText, Buckets: m.buckets},
		labelNames,
	)

	if err := m.registerer.Register(collector); err != nil {
		return nil
	}

	v := &vec[*prometheus.HistogramVec]{collector: collector, labelNames: labelNames}
	m.histograms[name] = v

	return v
}

func (m *MetricsCollector) counter(name string, labels map[string]string) *vec[*prometheus.CounterVec] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.counters[name]; ok {
		return v
	}

	labelNames := names(labels)
	collector := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: helpText}, labelNames)

	if err := m.registerer.Register(collector); err != nil {
		return nil
	}

	v := &vec[*prometheus.CounterVec]{collector: collector, labelNames: labelNames}
	m.counters[name] = v

	return v
}

func (m *MetricsCollector) gauge(name string, labels map[string]string) *vec[*prometheus.GaugeVec] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.gauges[name]; ok {
		return v
	}

	labelNames := names(labels)
	collector := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: helpText}, labelNames)

	if err := m.registerer.Register(collector); err != nil {
		return nil
	}

	v := &vec[*prometheus.GaugeVec]{collector: collector, labelNames: labelNames}
	m.gauges[name] = v

	return v
}

func names(labels map[string]string) []string {
	labelNames := make([]string, 0, len(labels))
	for name := range labels {
		labelNames = append(labelNames, name)
	}

	slices.Sort(labelNames)

	return labelNames
}

func values(labelNames []string, labels map[string]string) []string {
	labelValues := make([]string, len(labelNames))
	for i, name := range labelNames {
		labelValues[i] = labels[name]
	}

	return labelValues
}

var _ eventstore.MetricsCollector = (*MetricsCollector)(nil)
