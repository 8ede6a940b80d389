package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BroadcastWorker runs the periodic live-location re-send after a
// successful emergency alert. The loop is bounded: it stops by itself
// after maxRuns iterations so a forgotten session cannot text contacts
// forever, and Stop cancels it at any point. Starting while running
// replaces the previous loop.
type BroadcastWorker struct {
	interval time.Duration
	maxRuns  int

	mu      sync.Mutex
	cancel  context.CancelFunc
	current context.Context
}

func NewBroadcastWorker(interval time.Duration, maxRuns int) *BroadcastWorker {
	return &BroadcastWorker{
		interval: interval,
		maxRuns:  maxRuns,
	}
}

func (w *BroadcastWorker) Start(run func(ctx context.Context)) {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.current = ctx
	w.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"interval": w.interval,
		"maxRuns":  w.maxRuns,
	}).Info("Live location broadcast started")

	go w.loop(ctx, run)
}

func (w *BroadcastWorker) loop(ctx context.Context, run func(ctx context.Context)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for runs := 0; runs < w.maxRuns; runs++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
	logrus.Info("Live location broadcast reached run limit")
	w.release(ctx)
}

// release clears the worker state only when ctx is still the live loop's
// context, so a loop finishing its run limit cannot kill a replacement
// that started in the meantime.
func (w *BroadcastWorker) release(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != ctx {
		return
	}
	w.cancel()
	w.cancel = nil
	w.current = nil
}

// Stop cancels the loop. Stopping an already-stopped worker is a no-op.
func (w *BroadcastWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
		w.current = nil
		logrus.Info("Live location broadcast stopped")
	}
}

func (w *BroadcastWorker) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}
