// Package scene holds the spatial collaborators the effect core consumes:
// transform values, a minimal host node graph and an in-memory effect
// instance usable as a headless rendering backend.
package scene

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Host is anything an effect instance can be parented under.
// Implementations must report Valid() == false once destroyed, and a nil
// receiver must report ObjectID() == NoObject.
type Host interface {
	ObjectID() uint32
	Valid() bool
	WorldPosition() Vec3
}

// NoObject is the ID of a nil host. Live objects are numbered from 1.
const NoObject uint32 = 0

var nextObjectID atomic.Uint32

// Node is a scene-graph node. Children inherit the node's world position.
//
// Thread-safe: parent/child links are protected by sync.RWMutex.
type Node struct {
	id   uint32
	name string

	mu        sync.RWMutex
	local     Transform
	parent    *Node
	children  []Host
	destroyed atomic.Bool
}

// NewNode creates a root node at pos with a fresh object ID.
func NewNode(name string, pos Vec3) *Node {
	return &Node{
		id:    nextObjectID.Add(1),
		name:  name,
		local: At(pos),
	}
}

// ObjectID returns the node's unique ID, or NoObject for a nil node.
func (n *Node) ObjectID() uint32 {
	if n == nil {
		return NoObject
	}
	return n.id
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Valid reports whether the node has not been destroyed.
func (n *Node) Valid() bool { return n != nil && !n.destroyed.Load() }

// Destroy marks the node and its node children invalid. Attached hosts that
// are not nodes (effect instances) are left for their owners to reclaim.
func (n *Node) Destroy() {
	if !n.destroyed.CompareAndSwap(false, true) {
		return
	}
	n.mu.RLock()
	children := slices.Clone(n.children)
	n.mu.RUnlock()
	for _, c := range children {
		if child, ok := c.(*Node); ok {
			child.Destroy()
		}
	}
}

// SetPosition sets the local position.
func (n *Node) SetPosition(pos Vec3) {
	n.mu.Lock()
	n.local.Position = pos
	n.mu.Unlock()
}

// Position returns the local position.
func (n *Node) Position() Vec3 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.local.Position
}

// WorldPosition returns the position composed with all ancestors.
func (n *Node) WorldPosition() Vec3 {
	n.mu.RLock()
	pos, parent := n.local.Position, n.parent
	n.mu.RUnlock()
	if parent != nil {
		return parent.WorldPosition().Add(pos)
	}
	return pos
}

// AddNode parents child under n.
func (n *Node) AddNode(child *Node) {
	if old := child.parentNode(); old != nil {
		old.RemoveChild(child)
	}
	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()
	n.AddChild(child)
}

func (n *Node) parentNode() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// AddChild records h as a child of n. Adding an existing child is a no-op.
func (n *Node) AddChild(h Host) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.children, h) {
		n.children = append(n.children, h)
	}
}

// RemoveChild drops h from n's children.
func (n *Node) RemoveChild(h Host) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := slices.Index(n.children, h); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

// Children returns a snapshot of the node's children.
func (n *Node) Children() []Host {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.children)
}
