package health

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"himood/pkg/logger"
)

func testLogger() logger.Client {
	return logger.NewWithWriter("production", io.Discard)
}

func TestNewWatcher_RejectsBadSchedule(t *testing.T) {
	_, err := NewWatcher("not a schedule", func(context.Context) error { return nil }, testLogger())
	assert.Error(t, err)
}

func TestWatcher_Transitions(t *testing.T) {
	// check is driven synchronously here, so a plain variable is safe.
	var probeErr error
	probe := func(context.Context) error { return probeErr }

	w, err := NewWatcher("@every 1h", probe, testLogger())
	require.NoError(t, err)

	// Healthy by default, confirmed by a passing probe.
	w.check()
	assert.True(t, w.Healthy())
	assert.Empty(t, w.LastError())

	// Failing probe flips the state and records the reason.
	probeErr = errors.New("redis: connection refused")
	w.check()
	assert.False(t, w.Healthy())
	assert.Equal(t, "redis: connection refused", w.LastError())

	// Recovery clears it.
	probeErr = nil
	w.check()
	assert.True(t, w.Healthy())
	assert.Empty(t, w.LastError())
}

func TestWatcher_RunsOnSchedule(t *testing.T) {
	var calls atomic.Int32
	probe := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	w, err := NewWatcher("@every 10ms", probe, testLogger())
	require.NoError(t, err)

	w.Start()
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 probe runs, got %d", calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher("@every 1h", func(context.Context) error { return nil }, testLogger())
	require.NoError(t, err)

	w.Start()
	w.Stop()
	w.Stop()
}

func TestWatcher_ProbeSeesDeadline(t *testing.T) {
	w, err := NewWatcher("@every 1h", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline on probe context")
		}
		return nil
	}, testLogger())
	require.NoError(t, err)

	w.check()
	assert.True(t, w.Healthy(), w.LastError())
}
