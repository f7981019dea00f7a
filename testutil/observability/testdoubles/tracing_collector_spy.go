package testdoubles

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

// SpySpan is a span started through TracingCollectorSpy.
type SpySpan struct {
	mu       sync.Mutex
	Name     string
	Attrs    map[string]string
	Status   string
	Finished bool
}

func (s *SpySpan) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = status
}

func (s *SpySpan) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Attrs[key] = value
}

// TracingCollectorSpy captures started and finished spans.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpySpan
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	span := &SpySpan{Name: name, Attrs: maps.Clone(attrs)}
	if span.Attrs == nil {
		span.Attrs = make(map[string]string)
	}

	s.mu.Lock()
	s.spans = append(s.spans, span)
	s.mu.Unlock()

	return ctx, span
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpan)
	if !ok {
		return
	}

	span.mu.Lock()
	defer span.mu.Unlock()

	span.Status = status
	span.Finished = true
	maps.Copy(span.Attrs, attrs)
}

func (s *TracingCollectorSpy) Spans() []*SpySpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.spans)
}

// FinishedSpan returns the first finished span with the given name.
func (s *TracingCollectorSpy) FinishedSpan(name string) (*SpySpan, bool) {
	for _, span := range s.Spans() {
		span.mu.Lock()
		finished := span.Finished
		span.mu.Unlock()

		if span.Name == name && finished {
			return span, true
		}
	}

	return nil, false
}

var _ eventstore.TracingCollector = (*TracingCollectorSpy)(nil)
