// Package terminal draws pooled effects as animated glyphs on a tcell screen.
package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/fxpool/internal/data"
	"github.com/udisondev/fxpool/internal/pool"
	"github.com/udisondev/fxpool/internal/scene"
)

// Sprite is the glyph animation for one resource.
type Sprite struct {
	Frames []rune
	Style  tcell.Style
}

var fallbackSprite = Sprite{Frames: []rune{'*'}, Style: tcell.StyleDefault}

// NewSprite converts a catalog sprite entry. Unknown colors fall back to
// the default foreground.
func NewSprite(e data.SpriteEntry) Sprite {
	frames := []rune(e.Frames)
	if len(frames) == 0 {
		frames = fallbackSprite.Frames
	}
	style := tcell.StyleDefault
	if c := tcell.GetColor(e.Color); c != tcell.ColorDefault {
		style = style.Foreground(c)
	}
	return Sprite{Frames: frames, Style: style}
}

// Sprites converts a whole catalog sprite table.
func Sprites(entries map[string]data.SpriteEntry) map[string]Sprite {
	out := make(map[string]Sprite, len(entries))
	for ref, e := range entries {
		out[ref] = NewSprite(e)
	}
	return out
}

// Glyph returns the rune shown n frames after the last restart.
func (s Sprite) Glyph(n uint64) rune {
	if len(s.Frames) == 0 {
		return fallbackSprite.Frames[0]
	}
	return s.Frames[n%uint64(len(s.Frames))]
}

// Instance is a pooled scene instance with a sprite.
type Instance struct {
	*scene.Instance
	sprite Sprite
}

// Sprite returns the instance's sprite.
func (i *Instance) Sprite() Sprite { return i.sprite }

// Loader implements pool.Loader over a scene library, wrapping every
// created instance with its sprite and remembering it for drawing.
//
// Thread-safe.
type Loader struct {
	lib     *scene.Library
	sprites map[string]Sprite

	mu        sync.Mutex
	instances []*Instance
}

// NewLoader creates a loader. Refs without a sprite draw as '*'.
func NewLoader(lib *scene.Library, sprites map[string]Sprite) *Loader {
	return &Loader{lib: lib, sprites: sprites}
}

// Load resolves ref to a template that produces sprite instances.
func (l *Loader) Load(ref string) (pool.Template, error) {
	tmpl, err := l.lib.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("terminal loader: %w", err)
	}
	sprite, ok := l.sprites[ref]
	if !ok {
		sprite = fallbackSprite
	}
	return pool.TemplateFunc(func() (pool.Handle, error) {
		inst := &Instance{Instance: tmpl.New(), sprite: sprite}
		l.mu.Lock()
		l.instances = append(l.instances, inst)
		l.mu.Unlock()
		return inst, nil
	}), nil
}

// Instances returns a snapshot of every instance created so far, freed
// ones included.
func (l *Loader) Instances() []*Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Instance, len(l.instances))
	copy(out, l.instances)
	return out
}
