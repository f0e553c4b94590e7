// Package pool implements the per-effect reuse collection.
//
// A Pool grows on demand and never shrinks: Acquire always returns an
// instance unless the template itself fails, trading memory for guaranteed
// visual feedback during effect storms.
package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/fxpool/internal/scene"
)

// ErrForeignRelease is returned when a handle is not InUse in the pool.
var ErrForeignRelease = errors.New("handle not in use in this pool")

// State of a pooled instance.
type State uint8

const (
	Available State = iota
	InUse
)

func (s State) String() string {
	if s == InUse {
		return "in_use"
	}
	return "available"
}

// instance is the pool-side record of one handle.
type instance struct {
	handle Handle
	owner  *Pool
	state  State
}

// Stats is a snapshot of pool occupancy.
type Stats struct {
	Available int
	InUse     int
	Total     int
}

func (s Stats) String() string {
	return fmt.Sprintf("total=%d available=%d in_use=%d", s.Total, s.Available, s.InUse)
}

// Pool is a reuse collection for one effect type.
//
// Thread-safe: every state transition happens under a single mutex, so an
// instance is never observed in both collections or in neither.
type Pool struct {
	name      string
	template  Template
	container scene.Host

	mu        sync.Mutex
	all       map[Handle]*instance
	available []*instance // FIFO: dequeue from the front
	inUse     map[Handle]*instance
}

// New creates a pool and pre-warms it with initial instances.
// container is the neutral parent for inactive instances.
func New(name string, tmpl Template, container scene.Host, initial int) (*Pool, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("creating pool %q: nil template", name)
	}
	p := &Pool{
		name:      name,
		template:  tmpl,
		container: container,
		all:       make(map[Handle]*instance, initial),
		available: make([]*instance, 0, initial),
		inUse:     make(map[Handle]*instance, initial),
	}
	for range initial {
		inst, err := p.create()
		if err != nil {
			return nil, fmt.Errorf("pre-warming pool %q: %w", name, err)
		}
		p.available = append(p.available, inst)
	}
	return p, nil
}

// Name returns the effect name this pool serves.
func (p *Pool) Name() string { return p.name }

// Container returns the neutral parent of inactive instances.
func (p *Pool) Container() scene.Host { return p.container }

// Acquire returns an active instance, reusing the oldest available one or
// growing the pool when none is left.
func (p *Pool) Acquire() (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var inst *instance
	if len(p.available) > 0 {
		inst = p.available[0]
		p.available[0] = nil
		p.available = p.available[1:]
	} else {
		var err error
		inst, err = p.create()
		if err != nil {
			return nil, fmt.Errorf("growing pool %q: %w", p.name, err)
		}
		slog.Debug("effect pool grew", "effect", p.name, "total", len(p.all))
	}

	inst.state = InUse
	p.inUse[inst.handle] = inst
	inst.handle.SetVisible(true)
	inst.handle.SetEmitting(true)
	return inst.handle, nil
}

// Release deactivates h and returns it to the available queue.
// A handle that is not InUse here is rejected and the pool is left untouched.
func (p *Pool) Release(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, ok := p.inUse[h]
	if !ok || inst.owner != p {
		slog.Warn("rejected release of handle not in use", "effect", p.name)
		return fmt.Errorf("releasing to pool %q: %w", p.name, ErrForeignRelease)
	}

	delete(p.inUse, h)
	p.deactivate(h)
	inst.state = Available
	p.available = append(p.available, inst)
	return nil
}

// IsAvailable reports whether h belongs to this pool and is Available.
func (p *Pool) IsAvailable(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	inst, ok := p.all[h]
	return ok && inst.state == Available
}

// IsInUse reports whether h belongs to this pool and is InUse.
func (p *Pool) IsInUse(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inUse[h]
	return ok
}

// Owns reports whether h was created by this pool.
func (p *Pool) Owns(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.all[h]
	return ok
}

// Stats returns the current occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Available: len(p.available),
		InUse:     len(p.inUse),
		Total:     len(p.all),
	}
}

// Close deactivates and frees every instance. Only for subsystem shutdown;
// the pool must not be used afterwards.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for h := range p.all {
		p.deactivate(h)
		if f, ok := h.(Freer); ok {
			f.Free()
		}
	}
	clear(p.all)
	clear(p.inUse)
	p.available = nil
}

// create instantiates a new handle in the deactivated state.
// Caller must hold p.mu.
func (p *Pool) create() (*instance, error) {
	h, err := p.template.Instantiate()
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, errors.New("template returned nil handle")
	}
	inst := &instance{handle: h, owner: p, state: Available}
	p.all[h] = inst
	p.deactivate(h)
	return inst, nil
}

// deactivate stops emission, hides, resets the transform and parks h under
// the container. Caller must hold p.mu.
func (p *Pool) deactivate(h Handle) {
	h.SetEmitting(false)
	h.SetVisible(false)
	h.SetTransform(scene.Identity())
	if h.Parent() != p.container {
		h.Reparent(p.container)
	}
}
