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

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func (o *stopOrder) list() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.names...)
}

type mockService struct {
	name    string
	order   *stopOrder
	started atomic.Bool
	stopped atomic.Bool
	startFn func(ctx context.Context) error
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.order != nil {
		m.order.add(m.name)
	}
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServicesInReverse(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}

	svc1 := &mockService{name: "svc1", order: order}
	svc2 := &mockService{name: "svc2", order: order}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitDone(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
	assert.Equal(t, []string{"svc2", "svc1"}, order.list())
}

func TestLifecycleCompletedServiceTriggersShutdown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	background := &mockService{name: "director"}
	console := &mockService{name: "console", startFn: func(context.Context) error { return nil }}
	lc.Add("director", background)
	lc.Add("console", console)

	assert.NoError(t, waitDone(t, runAsync(lc, context.Background())))
	assert.True(t, background.stopped.Load())
	assert.True(t, console.stopped.Load())
}

func TestLifecycleReturnsServiceFailure(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	other := &mockService{name: "other"}
	lc.Add("other", other)
	lc.Add("broken", &mockService{name: "broken", startFn: func(context.Context) error { return boom }})

	err := waitDone(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, other.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start(context.Background())
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}

func TestFuncServiceNilStop(t *testing.T) {
	svc := &FuncService{StartFn: func(context.Context) error { return nil }}
	assert.NotPanics(t, svc.Stop)
}
