// Package vfx is the effect orchestrator: it owns one pool per effect name,
// spawns standalone and attached effects, and returns every spawned instance
// to its pool once its nominal lifetime has elapsed.
package vfx

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/udisondev/fxpool/internal/effect"
	"github.com/udisondev/fxpool/internal/pool"
	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/schedule"
)

const defaultInitialPoolSize = 10

var (
	ErrResourceLoadFailed = errors.New("effect resource load failed")
	ErrInvalidHost        = errors.New("invalid attach host")
)

// Scheduler arms deferred callbacks on the frame clock.
type Scheduler interface {
	Now() time.Duration
	RunAfter(d time.Duration, fn func()) *schedule.Timer
}

// Option configures a Manager.
type Option func(*Manager)

// WithInitialPoolSize sets how many instances a new pool pre-creates.
func WithInitialPoolSize(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.initialSize = n
		}
	}
}

// Manager orchestrates effect spawning. Construct one per subsystem and pass
// it to the gameplay code that needs effects.
//
// Thread-safe: the pool map is guarded by sync.Mutex; each pool has its own lock.
type Manager struct {
	registry  *effect.Registry
	loader    pool.Loader
	sched     Scheduler
	container scene.Host

	initialSize int

	mu    sync.Mutex
	pools map[string]*pool.Pool
}

// NewManager creates a Manager. container is the neutral parent inactive
// instances are parked under.
func NewManager(reg *effect.Registry, loader pool.Loader, sched Scheduler, container scene.Host, opts ...Option) *Manager {
	m := &Manager{
		registry:    reg,
		loader:      loader,
		sched:       sched,
		container:   container,
		initialSize: defaultInitialPoolSize,
		pools:       make(map[string]*pool.Pool, reg.Len()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Container returns the neutral parent for pooled instances.
func (m *Manager) Container() scene.Host { return m.container }

// SpawnAt plays name at a world transform with a uniform scale (<= 0 means 1).
// The instance is released automatically after the effect's lifetime unless
// the effect is under manual control.
func (m *Manager) SpawnAt(name string, at scene.Transform, scale float64) (*Effect, error) {
	def, p, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	h, err := p.Acquire()
	if err != nil {
		slog.Warn("effect acquire failed", "effect", name, "err", err)
		return nil, fmt.Errorf("spawning %q: %w", name, err)
	}

	if scale <= 0 {
		scale = 1
	}
	h.SetTransform(at.WithScale(scale))
	restart(h)

	e := &Effect{name: name, handle: h, pool: p, container: m.container}
	m.arm(e, def)
	return e, nil
}

// SpawnAttached plays name parented under host at a local offset, so it
// follows the host every frame. The returned Effect can be released early.
func (m *Manager) SpawnAttached(name string, host scene.Host, offset scene.Vec3) (*Effect, error) {
	def, p, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	if host == nil || !host.Valid() {
		slog.Warn("invalid host for attached effect", "effect", name)
		return nil, fmt.Errorf("attaching %q: %w", name, ErrInvalidHost)
	}

	h, err := p.Acquire()
	if err != nil {
		slog.Warn("effect acquire failed", "effect", name, "err", err)
		return nil, fmt.Errorf("spawning %q: %w", name, err)
	}

	h.Reparent(host)
	h.SetTransform(scene.At(offset))
	restart(h)

	e := &Effect{name: name, handle: h, pool: p, host: host, container: m.container}
	m.arm(e, def)
	return e, nil
}

// Prewarm creates the pools for names up front so the first spawn does not
// pay for instantiation. Every name is attempted; errors are joined.
func (m *Manager) Prewarm(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, _, err := m.resolve(name); err != nil {
			errs = append(errs, err)
		}
	}
	slog.Info("pre-warmed effect pools", "requested", len(names), "failed", len(errs))
	return errors.Join(errs...)
}

// HasEffect reports whether name is registered.
func (m *Manager) HasEffect(name string) bool {
	return m.registry.Has(name)
}

// Definition returns the registered definition of name.
func (m *Manager) Definition(name string) (effect.Definition, error) {
	return m.registry.Lookup(name)
}

// Pool returns the pool for name if it has been created.
func (m *Manager) Pool(name string) (*pool.Pool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[name]
	return p, ok
}

// Stats returns occupancy for every created pool.
func (m *Manager) Stats() map[string]pool.Stats {
	m.mu.Lock()
	pools := maps.Clone(m.pools)
	m.mu.Unlock()

	out := make(map[string]pool.Stats, len(pools))
	for name, p := range pools {
		out[name] = p.Stats()
	}
	return out
}

// Close frees every pooled instance. Pending expiry callbacks become no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	pools := m.pools
	m.pools = make(map[string]*pool.Pool)
	m.mu.Unlock()

	for _, p := range pools {
		p.Close()
	}
	slog.Info("effect pools closed", "pools", len(pools))
}

// resolve looks up name and returns its pool, creating it on first use.
// A resource that cannot be loaded aborts pool creation; the next call
// tries again.
func (m *Manager) resolve(name string) (effect.Definition, *pool.Pool, error) {
	def, err := m.registry.Lookup(name)
	if err != nil {
		slog.Warn("effect not found", "effect", name)
		return effect.Definition{}, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pools[name]; ok {
		return def, p, nil
	}

	tmpl, err := m.loader.Load(def.Resource)
	if err != nil {
		slog.Warn("effect resource load failed", "effect", name, "resource", def.Resource, "err", err)
		return def, nil, fmt.Errorf("loading %q for %q: %w: %w", def.Resource, name, ErrResourceLoadFailed, err)
	}

	p, err := pool.New(name, tmpl, m.container, m.initialSize)
	if err != nil {
		slog.Warn("effect pool creation failed", "effect", name, "err", err)
		return def, nil, fmt.Errorf("creating pool for %q: %w: %w", name, ErrResourceLoadFailed, err)
	}
	m.pools[name] = p

	slog.Debug("effect pool created", "effect", name, "initial", m.initialSize)
	return def, p, nil
}

// arm schedules the automatic release of e after the effect's lifetime.
func (m *Manager) arm(e *Effect, def effect.Definition) {
	if def.Manual() {
		return
	}
	e.mu.Lock()
	e.deadline = m.sched.Now() + def.Lifetime
	e.mu.Unlock()

	t := m.sched.RunAfter(def.Lifetime, func() {
		e.expire()
	})

	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		t.Cancel()
		return
	}
	e.timer = t
	e.mu.Unlock()
}

// restart guarantees a clean burst even if the handle was mid-emission.
func restart(h pool.Handle) {
	h.SetEmitting(false)
	h.Restart()
	h.SetEmitting(true)
}
