package effect

import (
	"fmt"
	"strings"
	"time"
)

// ManualLifetime marks effects that are removed explicitly (looping status
// overlays) instead of auto-expiring. Any lifetime at or above it counts.
const ManualLifetime = 999 * time.Second

// Category groups effects for diagnostics. It never drives control flow.
type Category uint8

const (
	Weapon Category = iota
	Impact
	Explosion
	StatusEffect
	UI
	Environment

	categoryCount
)

var categoryNames = [categoryCount]string{
	Weapon:       "weapon",
	Impact:       "impact",
	Explosion:    "explosion",
	StatusEffect: "status_effect",
	UI:           "ui",
	Environment:  "environment",
}

func (c Category) String() string {
	if c < categoryCount {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c < categoryCount }

// ParseCategory parses a category name, case-insensitively.
// Both "status_effect" and "statuseffect" are accepted.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if key == name || key == strings.ReplaceAll(name, "_", "") {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown effect category %q", s)
}

// Categories returns all categories in declaration order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := range categoryCount {
		out = append(out, c)
	}
	return out
}

// Definition is the immutable metadata of one spawnable effect.
type Definition struct {
	Name     string
	Resource string // opaque visual template ref, resolved by the backend
	Lifetime time.Duration
	Category Category
}

// Manual reports whether the effect is exempt from automatic expiry.
func (d Definition) Manual() bool {
	return d.Lifetime >= ManualLifetime
}

// Validate checks the definition's static invariants.
func (d Definition) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	case d.Resource == "":
		return fmt.Errorf("%w: effect %q has no resource", ErrInvalidDefinition, d.Name)
	case d.Lifetime <= 0:
		return fmt.Errorf("%w: effect %q lifetime %s", ErrInvalidDefinition, d.Name, d.Lifetime)
	case !d.Category.Valid():
		return fmt.Errorf("%w: effect %q %s", ErrInvalidDefinition, d.Name, d.Category)
	}
	return nil
}
