// Package audit records combat events to durable sinks without blocking the
// turn that produced them.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Writer durably records a single event.
type Writer interface {
	Write(ctx context.Context, e event.Event) error
}

// Record is an event as read back from a durable sink.
type Record struct {
	ID         int64           `json:"id"`
	SessionID  string          `json:"session_id"`
	Round      int             `json:"round"`
	Kind       event.Kind      `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Reader reads back the events recorded for a session.
type Reader interface {
	// ListBySession returns the session's events in insertion order.
	//
	// Postcondition: Returns a non-nil slice (may be empty) or a non-nil error.
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, e event.Event) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, e event.Event) error { return f(ctx, e) }

// LogSink writes each event as one structured entry, keyed by event kind.
// It is both a Writer and a synchronous event.Emitter.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink over logger.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Write logs e at info level. It never fails.
func (s *LogSink) Write(_ context.Context, e event.Event) error {
	s.logger.Info(string(e.Kind()), zap.Inline(e))
	return nil
}

// Emit logs e.
func (s *LogSink) Emit(ctx context.Context, e event.Event) {
	_ = s.Write(ctx, e)
}

// Sync flushes the underlying logger.
func (s *LogSink) Sync() error {
	return s.logger.Sync()
}

// MultiWriter writes to every writer in order and returns the first error,
// after attempting all of them.
type MultiWriter []Writer

// Write forwards e to each writer.
func (m MultiWriter) Write(ctx context.Context, e event.Event) error {
	var first error
	for _, w := range m {
		if err := w.Write(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
