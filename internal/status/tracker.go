// Package status tracks per-entity status overlays: at most one active
// effect per (entity, kind), refreshed on re-application rather than stacked.
package status

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/schedule"
	"github.com/udisondev/fxpool/internal/vfx"
)

// DefaultDuration is used when ApplyEffect gets a non-positive duration.
const DefaultDuration = 5 * time.Second

// Spawner spawns effects parented under a host.
type Spawner interface {
	SpawnAttached(name string, host scene.Host, offset scene.Vec3) (*vfx.Effect, error)
}

// Scheduler arms the removal timer of an attachment.
type Scheduler interface {
	Now() time.Duration
	RunAfter(d time.Duration, fn func()) *schedule.Timer
}

// attachment is the active overlay of one (entity, kind) pair.
type attachment struct {
	effect   *vfx.Effect
	timer    *schedule.Timer
	deadline time.Duration
}

// Tracker is the per-entity overlay index. It is independent of the pools:
// it only holds spawn records and releases them through vfx.Effect.
//
// Thread-safe: all methods are protected by sync.Mutex.
type Tracker struct {
	spawner Spawner
	sched   Scheduler

	mu     sync.Mutex
	active map[uint32]map[Kind]*attachment // objectID → kind → attachment
}

// NewTracker creates an empty tracker.
func NewTracker(spawner Spawner, sched Scheduler) *Tracker {
	return &Tracker{
		spawner: spawner,
		sched:   sched,
		active:  make(map[uint32]map[Kind]*attachment, 64),
	}
}

// ApplyEffect shows kind's overlay on host for duration. An overlay of the
// same kind already on host is cleared first, so re-application refreshes.
// Kinds without an overlay are ignored.
func (t *Tracker) ApplyEffect(host scene.Host, kind Kind, duration time.Duration, offset scene.Vec3) error {
	name, ok := OverlayEffect(kind)
	if !ok {
		return nil
	}
	id, ok := hostKey(host)
	if !ok {
		return vfx.ErrInvalidHost
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev := t.lookup(id, kind); prev != nil {
		t.clear(id, kind, prev)
		slog.Debug("status overlay refreshed", "object", id, "kind", kind)
	}

	e, err := t.spawner.SpawnAttached(name, host, offset)
	if err != nil {
		return err
	}

	att := &attachment{
		effect:   e,
		deadline: t.sched.Now() + duration,
	}
	att.timer = t.sched.RunAfter(duration, func() {
		t.expire(id, kind, att)
	})

	byKind, ok := t.active[id]
	if !ok {
		byKind = make(map[Kind]*attachment, 4)
		t.active[id] = byKind
	}
	byKind[kind] = att
	return nil
}

// RemoveEffect clears kind's overlay from host. No-op when absent.
// Works for destroyed hosts too.
func (t *Tracker) RemoveEffect(host scene.Host, kind Kind) {
	id, ok := hostKey(host)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if att := t.lookup(id, kind); att != nil {
		t.clear(id, kind, att)
	}
}

// RemoveAllEffects clears every overlay on host. Call it when the entity is
// destroyed so no attachment outlives it.
func (t *Tracker) RemoveAllEffects(host scene.Host) {
	id, ok := hostKey(host)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	byKind, ok := t.active[id]
	if !ok {
		return
	}
	for _, kind := range slices.Sorted(maps.Keys(byKind)) {
		t.clear(id, kind, byKind[kind])
	}
}

// HasEffect reports whether host currently shows kind's overlay.
func (t *Tracker) HasEffect(host scene.Host, kind Kind) bool {
	id, ok := hostKey(host)
	if !ok {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lookup(id, kind) != nil
}

// ActiveEffectCount returns the number of overlays on host.
func (t *Tracker) ActiveEffectCount(host scene.Host) int {
	id, ok := hostKey(host)
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active[id])
}

// Kinds returns the active kinds on host, sorted.
func (t *Tracker) Kinds(host scene.Host) []Kind {
	id, ok := hostKey(host)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.active[id]))
}

// Deadline returns the scheduler time at which kind's overlay on host is
// removed.
func (t *Tracker) Deadline(host scene.Host, kind Kind) (time.Duration, bool) {
	id, ok := hostKey(host)
	if !ok {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if att := t.lookup(id, kind); att != nil {
		return att.deadline, true
	}
	return 0, false
}

// Effect returns the spawn record of kind's overlay on host.
func (t *Tracker) Effect(host scene.Host, kind Kind) (*vfx.Effect, bool) {
	id, ok := hostKey(host)
	if !ok {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if att := t.lookup(id, kind); att != nil {
		return att.effect, true
	}
	return nil, false
}

// Entities returns the number of hosts with at least one overlay.
func (t *Tracker) Entities() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// expire is the removal timer callback. It only clears the attachment it was
// armed for; a refreshed attachment has its own timer.
func (t *Tracker) expire(id uint32, kind Kind, att *attachment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lookup(id, kind) != att {
		return
	}
	t.clear(id, kind, att)
	slog.Debug("status overlay expired", "object", id, "kind", kind)
}

// hostKey returns host's map key. It fails for a nil interface and for a nil
// node or instance pointer.
func hostKey(host scene.Host) (uint32, bool) {
	if host == nil {
		return 0, false
	}
	id := host.ObjectID()
	return id, id != scene.NoObject
}

// lookup returns the attachment for (id, kind). Caller must hold t.mu.
func (t *Tracker) lookup(id uint32, kind Kind) *attachment {
	return t.active[id][kind]
}

// clear cancels the removal timer, stops emission, releases the instance and
// erases the entry. Caller must hold t.mu.
func (t *Tracker) clear(id uint32, kind Kind, att *attachment) {
	att.timer.Cancel()
	att.effect.Stop()
	att.effect.Release()

	byKind := t.active[id]
	delete(byKind, kind)
	if len(byKind) == 0 {
		delete(t.active, id)
	}
}
