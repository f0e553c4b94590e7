package terminal

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/fxpool/internal/scene"
)

// Canvas is the part of tcell.Screen the renderer draws through.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// presenter is implemented by tcell.Screen.
type presenter interface {
	Clear()
	Show()
}

// Viewport maps world X/Y to terminal cells. Y grows upward in the world
// and downward on screen.
type Viewport struct {
	OriginX, OriginY int
	CellsPerUnit     float64
}

// Cell returns the cell for a world position.
func (v Viewport) Cell(p scene.Vec3) (x, y int) {
	s := v.CellsPerUnit
	if s <= 0 {
		s = 1
	}
	return v.OriginX + int(math.Round(p.X*s)), v.OriginY - int(math.Round(p.Y*s))
}

type animState struct {
	restarts int
	start    uint64
}

// Renderer draws every visible instance known to a Loader. Not safe for
// concurrent use; call it from the frame loop only.
type Renderer struct {
	canvas Canvas
	source *Loader
	view   Viewport

	// FramesPerGlyph slows the sprite animation down.
	FramesPerGlyph uint64

	frame  uint64
	anim   map[*Instance]animState
	status string
}

// NewRenderer creates a renderer over canvas.
func NewRenderer(canvas Canvas, source *Loader, view Viewport) *Renderer {
	return &Renderer{
		canvas:         canvas,
		source:         source,
		view:           view,
		FramesPerGlyph: 4,
		anim:           make(map[*Instance]animState),
	}
}

// SetStatus sets the text drawn on the top row.
func (r *Renderer) SetStatus(s string) { r.status = s }

// Frame is a schedule.FrameHook: it clears, draws and presents.
func (r *Renderer) Frame(time.Duration) {
	p, ok := r.canvas.(presenter)
	if ok {
		p.Clear()
	}
	r.Draw()
	if ok {
		p.Show()
	}
}

// Draw paints visible instances and the status line and returns how many
// instances landed on screen. Stopped instances are drawn dim.
func (r *Renderer) Draw() int {
	w, h := r.canvas.Size()
	drawn := 0
	for _, inst := range r.source.Instances() {
		if !inst.Visible() || !inst.Valid() {
			continue
		}
		st, ok := r.anim[inst]
		if !ok || st.restarts != inst.Restarts() {
			st = animState{restarts: inst.Restarts(), start: r.frame}
			r.anim[inst] = st
		}

		x, y := r.view.Cell(inst.WorldPosition())
		if x < 0 || y < 1 || x >= w || y >= h {
			continue
		}
		fpg := max(r.FramesPerGlyph, 1)
		style := inst.sprite.Style
		if !inst.Emitting() {
			style = style.Dim(true)
		}
		r.canvas.SetContent(x, y, inst.sprite.Glyph((r.frame-st.start)/fpg), nil, style)
		drawn++
	}
	r.drawText(0, 0, r.status, tcell.StyleDefault.Reverse(true))
	r.frame++
	return drawn
}

func (r *Renderer) drawText(x, y int, s string, style tcell.Style) {
	w, _ := r.canvas.Size()
	for _, ch := range s {
		if x >= w {
			return
		}
		r.canvas.SetContent(x, y, ch, nil, style)
		x++
	}
}
