// Package health tracks dependency liveness on a cron schedule so the
// health endpoint can answer from memory instead of probing inline.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"himood/pkg/logger"
)

const probeTimeout = 5 * time.Second

// Probe checks one dependency; nil means healthy.
type Probe func(ctx context.Context) error

// Watcher runs a probe on a schedule and keeps the last outcome. State
// transitions are logged once, not on every tick.
type Watcher struct {
	schedule cron.Schedule
	probe    Probe
	logger   logger.Client

	mu      sync.RWMutex
	healthy bool
	lastErr string

	done chan struct{}
	once sync.Once
}

// NewWatcher parses a standard 5-field cron expression; descriptors like
// "@every 30s" work too. Start must be called to begin probing.
func NewWatcher(cronExpr string, probe Probe, logger logger.Client) (*Watcher, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid health schedule %q: %w", cronExpr, err)
	}

	return &Watcher{
		schedule: schedule,
		probe:    probe,
		logger:   logger,
		healthy:  true,
		done:     make(chan struct{}),
	}, nil
}

// Start probes once immediately, then follows the schedule.
func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) run() {
	w.check()

	for {
		next := w.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			w.check()
		case <-w.done:
			timer.Stop()
			return
		}
	}
}

func (w *Watcher) check() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := w.probe(ctx)

	w.mu.Lock()
	wasHealthy := w.healthy
	w.healthy = err == nil
	if err != nil {
		w.lastErr = err.Error()
	} else {
		w.lastErr = ""
	}
	w.mu.Unlock()

	if err != nil && wasHealthy {
		w.logger.Warn("dependency became unhealthy", logger.Field{Key: "error", Value: err.Error()})
	}
	if err == nil && !wasHealthy {
		w.logger.Info("dependency recovered")
	}
}

// Healthy reports the last probe outcome.
func (w *Watcher) Healthy() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.healthy
}

// LastError returns the most recent probe failure, empty when healthy.
func (w *Watcher) LastError() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastErr
}

// Stop halts the schedule loop.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
