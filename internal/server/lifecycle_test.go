package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
	stopErr error

	order *[]string
	name  string
	mu    *sync.Mutex
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop(context.Context) error {
	m.stopped.Store(true)
	if m.order != nil {
		m.mu.Lock()
		*m.order = append(*m.order, m.name)
		m.mu.Unlock()
	}
	return m.stopErr
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLifecycleStartsAndStopsServicesInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)

	var mu sync.Mutex
	var order []string
	svc1 := &mockService{name: "http", order: &order, mu: &mu}
	svc2 := &mockService{name: "health", order: &order, mu: &mu}
	lc.Add("http", svc1)
	lc.Add("health", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, svc1, svc2)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
	assert.Equal(t, []string{"health", "http"}, order)
}

func TestLifecycleReturnsServiceFailure(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	boom := errors.New("bind: address in use")

	healthy := &mockService{}
	failing := &mockService{startFn: func() error { return boom }}
	lc.Add("healthy", healthy)
	lc.Add("failing", failing)

	err := lc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped.Load())
}

func TestLifecycleReportsStopErrors(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	stuck := errors.New("drain timed out")
	svc := &mockService{stopErr: stuck}
	lc.Add("stuck", svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	waitStarted(t, svc)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, stuck)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func(context.Context) error {
			stopped = true
			return nil
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)

	assert.NoError(t, svc.Stop(context.Background()))
	assert.True(t, stopped)

	assert.NoError(t, (&FuncService{StartFn: func() error { return nil }}).Stop(context.Background()))
}
