package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/fxpool/internal/data"
	"github.com/udisondev/fxpool/internal/effect"
	"github.com/udisondev/fxpool/internal/pool"
	"github.com/udisondev/fxpool/internal/scene"
	"github.com/udisondev/fxpool/internal/schedule"
	"github.com/udisondev/fxpool/internal/vfx"
)

type cell struct {
	r     rune
	style tcell.Style
}

type recordingCanvas struct {
	w, h  int
	cells map[[2]int]cell
}

func newCanvas(w, h int) *recordingCanvas {
	return &recordingCanvas{w: w, h: h, cells: map[[2]int]cell{}}
}

func (c *recordingCanvas) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	c.cells[[2]int{x, y}] = cell{r: primary, style: style}
}

func (c *recordingCanvas) Size() (int, int) { return c.w, c.h }

func (c *recordingCanvas) at(x, y int) (cell, bool) {
	v, ok := c.cells[[2]int{x, y}]
	return v, ok
}

func TestNewSprite(t *testing.T) {
	s := NewSprite(data.SpriteEntry{Frames: "ab", Color: "red"})
	assert.Equal(t, []rune{'a', 'b'}, s.Frames)
	assert.Equal(t, tcell.StyleDefault.Foreground(tcell.ColorRed), s.Style)
	assert.Equal(t, 'a', s.Glyph(0))
	assert.Equal(t, 'b', s.Glyph(3))

	def := NewSprite(data.SpriteEntry{Color: "not-a-color"})
	assert.Equal(t, []rune{'*'}, def.Frames)
	assert.Equal(t, tcell.StyleDefault, def.Style)

	all := Sprites(map[string]data.SpriteEntry{"fx": {Frames: "x"}})
	assert.Equal(t, 'x', all["fx"].Glyph(0))
}

func TestLoader(t *testing.T) {
	lib := scene.NewLibrary("fx/spark")
	l := NewLoader(lib, map[string]Sprite{"fx/spark": {Frames: []rune("+x")}})

	tmpl, err := l.Load("fx/spark")
	require.NoError(t, err)
	h, err := tmpl.Instantiate()
	require.NoError(t, err)

	inst, ok := h.(*Instance)
	require.True(t, ok)
	assert.Equal(t, 'x', inst.Sprite().Glyph(1))
	assert.Equal(t, []*Instance{inst}, l.Instances())

	_, err = l.Load("fx/missing")
	require.ErrorIs(t, err, scene.ErrResourceNotFound)
}

func TestViewport(t *testing.T) {
	v := Viewport{OriginX: 10, OriginY: 5, CellsPerUnit: 2}
	x, y := v.Cell(scene.Vec3{X: 1.5, Y: 1})
	assert.Equal(t, 13, x)
	assert.Equal(t, 3, y)

	x, y = Viewport{}.Cell(scene.Vec3{X: 2, Y: -3})
	assert.Equal(t, 2, x)
	assert.Equal(t, 3, y)
}

func TestRenderer_DrawsPooledEffects(t *testing.T) {
	lib := scene.NewLibrary("fx/spark")
	loader := NewLoader(lib, map[string]Sprite{"fx/spark": {Frames: []rune("+x"), Style: tcell.StyleDefault}})
	reg := effect.NewRegistry()
	reg.MustRegister(effect.Definition{Name: "spark", Resource: "fx/spark", Lifetime: 500 * time.Millisecond, Category: effect.Impact})
	sched := schedule.New()
	m := vfx.NewManager(reg, loader, sched, scene.NewNode("stage", scene.Zero), vfx.WithInitialPoolSize(2))

	canvas := newCanvas(40, 10)
	r := NewRenderer(canvas, loader, Viewport{OriginX: 0, OriginY: 9})
	r.FramesPerGlyph = 1
	r.SetStatus("fx")

	assert.Equal(t, 0, r.Draw(), "prewarmed instances are hidden")

	_, err := m.SpawnAt("spark", scene.At(scene.Vec3{X: 3, Y: 2}), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Draw())
	c, ok := canvas.at(3, 7)
	require.True(t, ok)
	assert.Equal(t, '+', c.r)

	r.Draw()
	c, _ = canvas.at(3, 7)
	assert.Equal(t, 'x', c.r, "animation advances per frame")

	status, ok := canvas.at(0, 0)
	require.True(t, ok)
	assert.Equal(t, 'f', status.r)

	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, r.Draw(), "expired effect is hidden")
}

func TestRenderer_RestartResetsAnimation(t *testing.T) {
	lib := scene.NewLibrary("fx/a")
	loader := NewLoader(lib, map[string]Sprite{"fx/a": {Frames: []rune("123"), Style: tcell.StyleDefault}})
	tmpl, err := loader.Load("fx/a")
	require.NoError(t, err)
	h, err := tmpl.Instantiate()
	require.NoError(t, err)
	h.SetVisible(true)
	h.SetEmitting(true)
	h.SetTransform(scene.At(scene.Vec3{X: 1, Y: -1}))

	canvas := newCanvas(5, 5)
	r := NewRenderer(canvas, loader, Viewport{OriginY: 1})
	r.FramesPerGlyph = 1

	r.Draw()
	r.Draw()
	c, _ := canvas.at(1, 2)
	assert.Equal(t, '2', c.r)
	assert.Equal(t, tcell.StyleDefault, c.style, "emitting is not dim")

	h.Restart()
	r.Draw()
	c, _ = canvas.at(1, 2)
	assert.Equal(t, '1', c.r)

	h.SetEmitting(false)
	r.Draw()
	c, _ = canvas.at(1, 2)
	assert.Equal(t, tcell.StyleDefault.Dim(true), c.style)
}

func TestRenderer_ClipsOffscreen(t *testing.T) {
	lib := scene.NewLibrary("fx/a")
	loader := NewLoader(lib, nil)
	tmpl, err := loader.Load("fx/a")
	require.NoError(t, err)
	for _, pos := range []scene.Vec3{{X: -1, Y: -1}, {X: 100, Y: -1}, {X: 1, Y: 1}} {
		h, err := tmpl.Instantiate()
		require.NoError(t, err)
		h.SetVisible(true)
		h.SetTransform(scene.At(pos))
	}

	r := NewRenderer(newCanvas(10, 5), loader, Viewport{OriginY: 1})
	assert.Zero(t, r.Draw(), "off-screen and status-row cells are skipped")
}

func TestRenderer_FrameOnSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 6)

	lib := scene.NewLibrary("fx/a")
	loader := NewLoader(lib, nil)
	p, err := pool.New("a", mustTemplate(t, loader, "fx/a"), nil, 1)
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)

	r := NewRenderer(screen, loader, Viewport{OriginY: 3})
	assert.NotPanics(t, func() { r.Frame(time.Second / 60) })
}

func mustTemplate(t *testing.T, l *Loader, ref string) pool.Template {
	t.Helper()
	tmpl, err := l.Load(ref)
	require.NoError(t, err)
	return tmpl
}
