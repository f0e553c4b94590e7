package vfx

import (
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/fxpool/internal/pool"
	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/schedule"
)

// Effect is the bookkeeping record of one spawn. It stays valid after the
// instance went back to its pool: releasing a stale record is a no-op, so a
// handle that was reused by a later spawn is never released twice.
type Effect struct {
	name      string
	handle    pool.Handle
	pool      *pool.Pool
	host      scene.Host // nil for standalone spawns
	container scene.Host

	mu       sync.Mutex
	timer    *schedule.Timer
	deadline time.Duration
	released bool
}

// Name returns the effect name.
func (e *Effect) Name() string { return e.name }

// Handle returns the pooled instance. Do not keep it past Release.
func (e *Effect) Handle() pool.Handle { return e.handle }

// Host returns the attach host, or nil for standalone spawns.
func (e *Effect) Host() scene.Host { return e.host }

// Attached reports whether the effect was spawned under a host.
func (e *Effect) Attached() bool { return e.host != nil }

// Deadline returns the scheduler time of the automatic release.
// ok is false for manually controlled effects.
func (e *Effect) Deadline() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deadline, e.deadline > 0
}

// Released reports whether the instance went back to its pool.
func (e *Effect) Released() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}

// Stop turns emission off without releasing. Already-emitted particles of a
// real backend fade out naturally.
func (e *Effect) Stop() {
	if e.Released() {
		return
	}
	e.handle.SetEmitting(false)
}

// Release cancels the pending expiry and returns the instance to its pool.
// Safe to call any number of times.
func (e *Effect) Release() {
	e.release("released")
}

func (e *Effect) expire() {
	e.release("expired")
}

func (e *Effect) release(reason string) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return
	}
	e.released = true
	t := e.timer
	e.timer = nil
	e.mu.Unlock()

	t.Cancel()

	if !e.pool.Owns(e.handle) {
		// Pool was closed on shutdown; the instance is already freed.
		return
	}

	if e.host != nil {
		if e.host.Valid() {
			e.handle.Reparent(e.container)
		} else {
			slog.Debug("effect host destroyed before release", "effect", e.name, "host", e.host.ObjectID())
		}
	}

	if err := e.pool.Release(e.handle); err != nil {
		slog.Warn("effect release failed", "effect", e.name, "reason", reason, "err", err)
		return
	}
	slog.Debug("effect returned to pool", "effect", e.name, "reason", reason)
}
