package audit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// ErrSinkClosed is returned by Close when called more than once.
var ErrSinkClosed = errors.New("audit sink is closed")

// AsyncSink queues events in a bounded buffer and writes them from a single
// background worker, preserving emission order. When the buffer is full the
// event is dropped and a warning logged; Emit never blocks.
type AsyncSink struct {
	writer  Writer
	logger  *zap.Logger
	queue   chan event.Event
	done    chan struct{}
	dropped atomic.Int64

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewAsyncSink creates a stopped AsyncSink. Call Start before emitting.
//
// Precondition: writer and logger must be non-nil. bufferSize < 1 is raised to 1.
func NewAsyncSink(writer Writer, bufferSize int, logger *zap.Logger) *AsyncSink {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AsyncSink{
		writer: writer,
		logger: logger,
		queue:  make(chan event.Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Start launches the worker. Calling Start more than once has no effect.
func (s *AsyncSink) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	go s.run()
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for e := range s.queue {
		if err := s.writer.Write(context.Background(), e); err != nil {
			s.logger.Warn("audit write failed",
				zap.String("kind", string(e.Kind())),
				zap.String("session_id", e.SessionID),
				zap.Error(err),
			)
		}
	}
}

// Emit enqueues e. Events emitted before Start or after Close are dropped.
func (s *AsyncSink) Emit(_ context.Context, e event.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.closed {
		s.drop(e, "sink not running")
		return
	}
	select {
	case s.queue <- e:
	default:
		s.drop(e, "buffer full")
	}
}

func (s *AsyncSink) drop(e event.Event, reason string) {
	n := s.dropped.Add(1)
	s.logger.Warn("audit event dropped",
		zap.String("reason", reason),
		zap.String("kind", string(e.Kind())),
		zap.String("session_id", e.SessionID),
		zap.Int64("dropped_total", n),
	)
}

// Dropped reports how many events have been discarded.
func (s *AsyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events and waits for queued events to be written,
// giving up when ctx expires.
//
// Postcondition: No further events are written after Close returns nil.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSinkClosed
	}
	s.closed = true
	started := s.started
	close(s.queue)
	s.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
