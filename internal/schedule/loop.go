package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// FrameHook runs once per frame after due timers have fired.
type FrameHook func(dt time.Duration)

// Loop drives a Scheduler from a wall-clock ticker.
type Loop struct {
	sched    *Scheduler
	interval time.Duration
	hooks    []FrameHook
	frames   atomic.Uint64
	now      func() time.Time
}

// NewLoop creates a frame loop that ticks every interval.
func NewLoop(sched *Scheduler, interval time.Duration, hooks ...FrameHook) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		sched:    sched,
		interval: interval,
		hooks:    hooks,
		now:      time.Now,
	}
}

// Frames returns the number of frames run so far.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Step runs one frame with an explicit delta.
func (l *Loop) Step(dt time.Duration) {
	l.sched.Advance(dt)
	for _, h := range l.hooks {
		h(dt)
	}
	l.frames.Add(1)
}

// Run ticks until ctx is canceled. The delta passed to each frame is the
// measured wall time since the previous frame.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("frame loop started", "interval", l.interval)

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("frame loop stopping", "frames", l.frames.Load())
			return ctx.Err()

		case <-ticker.C:
			cur := l.now()
			l.Step(cur.Sub(last))
			last = cur
		}
	}
}
