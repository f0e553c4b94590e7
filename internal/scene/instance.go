package scene

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrResourceNotFound is returned by Library.Load for unknown refs.
var ErrResourceNotFound = errors.New("resource not found")

// Instance is an in-memory effect instance. It tracks transform, visibility,
// emission and parent the way a renderer-side node would, without drawing.
type Instance struct {
	id   uint32
	name string
	ref  string

	mu       sync.RWMutex
	local    Transform
	visible  bool
	emitting bool
	parent   Host
	restarts int
	freed    bool
}

// NewInstance creates a hidden, non-emitting instance for resource ref.
func NewInstance(name, ref string) *Instance {
	return &Instance{
		id:    nextObjectID.Add(1),
		name:  name,
		ref:   ref,
		local: Identity(),
	}
}

func (i *Instance) ObjectID() uint32 {
	if i == nil {
		return NoObject
	}
	return i.id
}

func (i *Instance) Name() string     { return i.name }
func (i *Instance) Resource() string { return i.ref }

// Valid reports whether the instance has not been freed.
func (i *Instance) Valid() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return !i.freed
}

// WorldPosition composes the local position with the parent's.
func (i *Instance) WorldPosition() Vec3 {
	i.mu.RLock()
	pos, parent := i.local.Position, i.parent
	i.mu.RUnlock()
	if parent != nil && parent.Valid() {
		return parent.WorldPosition().Add(pos)
	}
	return pos
}

func (i *Instance) SetTransform(t Transform) {
	i.mu.Lock()
	i.local = t
	i.mu.Unlock()
}

func (i *Instance) Transform() Transform {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.local
}

func (i *Instance) SetVisible(v bool) {
	i.mu.Lock()
	i.visible = v
	i.mu.Unlock()
}

func (i *Instance) Visible() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.visible
}

func (i *Instance) SetEmitting(e bool) {
	i.mu.Lock()
	i.emitting = e
	i.mu.Unlock()
}

func (i *Instance) Emitting() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.emitting
}

// Restart stops and restarts emission from the first frame.
func (i *Instance) Restart() {
	i.mu.Lock()
	i.emitting = false
	i.restarts++
	i.emitting = true
	i.mu.Unlock()
}

// Restarts returns how many times Restart was called.
func (i *Instance) Restarts() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.restarts
}

// Reparent moves the instance under parent. The old parent is only touched
// while it is still valid; a destroyed host is simply dropped.
func (i *Instance) Reparent(parent Host) {
	i.mu.Lock()
	old := i.parent
	i.parent = parent
	i.mu.Unlock()

	if old == parent {
		return
	}
	if n, ok := old.(*Node); ok && n.Valid() {
		n.RemoveChild(i)
	}
	if n, ok := parent.(*Node); ok && n != nil {
		n.AddChild(i)
	}
}

func (i *Instance) Parent() Host {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.parent
}

// Free detaches and invalidates the instance. Used on subsystem shutdown.
func (i *Instance) Free() {
	i.Reparent(nil)
	i.mu.Lock()
	i.freed = true
	i.visible = false
	i.emitting = false
	i.mu.Unlock()
}

// Template instantiates Instances for a single resource ref.
type Template struct {
	ref     string
	created atomic.Int64
}

// NewTemplate creates a template for ref.
func NewTemplate(ref string) *Template {
	return &Template{ref: ref}
}

// Ref returns the resource ref.
func (t *Template) Ref() string { return t.ref }

// Created returns the number of instances created so far.
func (t *Template) Created() int64 { return t.created.Load() }

// New creates the next instance, named "<ref>_Pool_<n>".
func (t *Template) New() *Instance {
	n := t.created.Add(1) - 1
	return NewInstance(fmt.Sprintf("%s_Pool_%d", t.ref, n), t.ref)
}

// Library resolves resource refs to templates.
type Library struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewLibrary creates a library that knows the given refs.
func NewLibrary(refs ...string) *Library {
	l := &Library{templates: make(map[string]*Template, len(refs))}
	for _, ref := range refs {
		l.Add(ref)
	}
	return l
}

// Add registers ref and returns its template. Existing templates are kept.
func (l *Library) Add(ref string) *Template {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.templates[ref]; ok {
		return t
	}
	t := NewTemplate(ref)
	l.templates[ref] = t
	return t
}

// Template returns the template for ref, or nil.
func (l *Library) Template(ref string) *Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.templates[ref]
}

// Resolve returns the template for ref or ErrResourceNotFound.
func (l *Library) Resolve(ref string) (*Template, error) {
	if t := l.Template(ref); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("resolving %q: %w", ref, ErrResourceNotFound)
}
