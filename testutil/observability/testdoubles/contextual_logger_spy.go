package testdoubles

import (
	"context"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
)

// SpyLogRecord is one captured log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Arg returns the value logged for key, or nil.
func (r SpyLogRecord) Arg(key string) any {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if r.Args[i] == key {
			return r.Args[i+1]
		}
	}

	return nil
}

// ContextualLoggerSpy captures contextual and plain log calls. It satisfies both logger interfaces.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	records []SpyLogRecord
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) Debug(msg string, args ...any) { s.record(context.Background(), "debug", msg, args) }
func (s *ContextualLoggerSpy) Info(msg string, args ...any)  { s.record(context.Background(), "info", msg, args) }
func (s *ContextualLoggerSpy) Warn(msg string, args ...any)  { s.record(context.Background(), "warn", msg, args) }
func (s *ContextualLoggerSpy) Error(msg string, args ...any) { s.record(context.Background(), "error", msg, args) }

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: slices.Clone(args), Context: ctx})
}

// Records returns a copy of everything logged so far, in call order.
func (s *ContextualLoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.records)
}

// FindLog returns the first record with the given level and message.
func (s *ContextualLoggerSpy) FindLog(level, message string) (SpyLogRecord, bool) {
	for _, record := range s.Records() {
		if record.Level == level && record.Message == message {
			return record, true
		}
	}

	return SpyLogRecord{}, false
}

func (s *ContextualLoggerSpy) HasInfoLog(message string) bool {
	_, found := s.FindLog("info", message)
	return found
}

func (s *ContextualLoggerSpy) HasWarnLog(message string) bool {
	_, found := s.FindLog("warn", message)
	return found
}

func (s *ContextualLoggerSpy) HasErrorLog(message string) bool {
	_, found := s.FindLog("error", message)
	return found
}

var (
	_ eventstore.ContextualLogger = (*ContextualLoggerSpy)(nil)
	_ eventstore.Logger           = (*ContextualLoggerSpy)(nil)
)
