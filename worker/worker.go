package worker

import (
	"context"
	"time"
)

// Worker long running task
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker runs its work on a fixed delay, backing off after failures
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

// StartTick run onWork in a loop until the context is cancelled
func (w *TickWorker) StartTick(ctx context.Context, onWork func(ctx context.Context) error) error {
	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := onWork(ctx); err != nil {
				dur = w.errDelay()
			} else {
				dur = w.delay()
			}
		}
	}
}

func (w *TickWorker) delay() time.Duration {
	if w.Delay > 0 {
		return w.Delay
	}
	return time.Second
}

func (w *TickWorker) errDelay() time.Duration {
	if w.ErrDelay > 0 {
		return w.ErrDelay
	}
	return 3 * time.Second
}
