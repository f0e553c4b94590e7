// Package data loads the effect catalog: the fixed registration list of
// every spawnable effect plus the sprite table used by the terminal backend.
package data

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/fxpool/internal/effect"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// EffectEntry is one effect in the catalog file.
type EffectEntry struct {
	Name     string        `yaml:"name"`
	Resource string        `yaml:"resource"`
	Lifetime time.Duration `yaml:"lifetime"`
	Category string        `yaml:"category"`
}

// SpriteEntry describes how the terminal backend draws a resource.
type SpriteEntry struct {
	Frames string `yaml:"frames"` // one rune per animation frame
	Color  string `yaml:"color"`  // W3C color name or #rrggbb
}

// Catalog is the parsed catalog file.
type Catalog struct {
	Effects []EffectEntry          `yaml:"effects"`
	Sprites map[string]SpriteEntry `yaml:"sprites"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}
	return c, nil
}

// LoadCatalog reads a catalog file from path.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	slog.Info("loaded effect catalog", "path", path, "effects", len(c.Effects), "sprites", len(c.Sprites))
	return c, nil
}

// ParseCatalog decodes catalog YAML.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.Sprites == nil {
		c.Sprites = map[string]SpriteEntry{}
	}
	return &c, nil
}

// Definitions converts the entries to registry definitions, in file order.
func (c *Catalog) Definitions() ([]effect.Definition, error) {
	defs := make([]effect.Definition, 0, len(c.Effects))
	for i, e := range c.Effects {
		cat, err := effect.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i, e.Name, err)
		}
		defs = append(defs, effect.Definition{
			Name:     e.Name,
			Resource: e.Resource,
			Lifetime: e.Lifetime,
			Category: cat,
		})
	}
	return defs, nil
}

// Resources returns every distinct resource ref, in file order.
func (c *Catalog) Resources() []string {
	seen := make(map[string]struct{}, len(c.Effects))
	refs := make([]string, 0, len(c.Effects))
	for _, e := range c.Effects {
		if _, ok := seen[e.Resource]; ok {
			continue
		}
		seen[e.Resource] = struct{}{}
		refs = append(refs, e.Resource)
	}
	return refs
}
