package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/audit"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

func attack(sessionID string, round int) event.Event {
	return event.Event{
		SessionID: sessionID,
		Round:     round,
		At:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload: event.AttackResolved{
			Attacker: "Titus", Defender: "Ork Boy",
			Roll: 5, Success: true, Damage: 11,
		},
	}
}

func TestLogSink_WritesStructuredEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := audit.NewLogSink(zap.New(core))

	sink.Emit(context.Background(), attack("s1", 1))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "attack_resolved", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "s1", fields["session_id"])
	payload, ok := fields["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Titus", payload["attacker"])
	assert.EqualValues(t, 11, payload["damage"])
}

type recordingWriter struct {
	mu     sync.Mutex
	rounds []int
	block  chan struct{}
	err    error
}

func (w *recordingWriter) Write(_ context.Context, e event.Event) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rounds = append(w.rounds, e.Round)
	return w.err
}

func (w *recordingWriter) got() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]int(nil), w.rounds...)
}

func TestAsyncSink_PreservesOrderAndDrainsOnClose(t *testing.T) {
	w := &recordingWriter{}
	sink := audit.NewAsyncSink(w, 16, zaptest.NewLogger(t))
	sink.Start()

	for i := 1; i <= 10; i++ {
		sink.Emit(context.Background(), attack("s1", i))
	}
	require.NoError(t, sink.Close(context.Background()))

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, w.got())
	assert.Zero(t, sink.Dropped())
	assert.ErrorIs(t, sink.Close(context.Background()), audit.ErrSinkClosed)
}

func TestAsyncSink_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := &recordingWriter{block: make(chan struct{})}
	sink := audit.NewAsyncSink(w, 1, zap.New(core))
	sink.Start()

	// The worker takes the first event and blocks; the second fills the
	// buffer; everything after that is dropped.
	sink.Emit(context.Background(), attack("s1", 1))
	require.Eventually(t, func() bool {
		sink.Emit(context.Background(), attack("s1", 2))
		return sink.Dropped() > 0
	}, 2*time.Second, time.Millisecond)

	close(w.block)
	require.NoError(t, sink.Close(context.Background()))
	assert.NotEmpty(t, logs.FilterMessage("audit event dropped").All())
	assert.Equal(t, 1, w.got()[0])
}

func TestAsyncSink_DropsBeforeStartAndAfterClose(t *testing.T) {
	w := &recordingWriter{}
	sink := audit.NewAsyncSink(w, 4, zaptest.NewLogger(t))

	sink.Emit(context.Background(), attack("s1", 1))
	assert.Equal(t, int64(1), sink.Dropped())

	sink.Start()
	require.NoError(t, sink.Close(context.Background()))
	sink.Emit(context.Background(), attack("s1", 2))
	assert.Equal(t, int64(2), sink.Dropped())
	assert.Empty(t, w.got())
}

func TestAsyncSink_WriteErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := &recordingWriter{err: errors.New("db down")}
	sink := audit.NewAsyncSink(w, 4, zap.New(core))
	sink.Start()

	sink.Emit(context.Background(), attack("s1", 1))
	require.NoError(t, sink.Close(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("audit write failed").Len())
}

func TestMultiWriter_AttemptsEveryWriter(t *testing.T) {
	first := &recordingWriter{err: errors.New("first failed")}
	second := &recordingWriter{}
	err := audit.MultiWriter{first, second}.Write(context.Background(), attack("s1", 3))

	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []int{3}, second.got())
}
