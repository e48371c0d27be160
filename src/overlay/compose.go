package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"screen-capper/src/geometry"
	"screen-capper/src/selection"
)

// BorderWidth is the selection outline thickness in pixels.
const BorderWidth = 5

// Colors are premultiplied, as image.RGBA stores them.
var (
	DimColor      = color.RGBA{A: 51}
	SelectedColor = color.RGBA{R: 255, A: 255}
	LockedColor   = color.RGBA{G: 255, A: 255}
	hintBackdrop  = color.RGBA{A: 170}
	hintText      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// A fully transparent pixel of a layered window does not receive pointer
// input, so the hole keeps alpha 1 while the surface is capturing.
const capturingHoleAlpha = 1

// Frame is everything needed to draw one overlay image.
type Frame struct {
	Bounds     geometry.Rect // global area covered by the surface
	Selection  geometry.Rect // global selection rectangle
	State      selection.State
	Hint       string
	HintOrigin geometry.Point // global position of the hint bar
}

// HintFor is the hint bar text for state.
func HintFor(state selection.State) string {
	switch state {
	case selection.Locked:
		return "LOCKED | Ctrl+P / Pause capture | Ctrl+L unlock | Ctrl+Q quit"
	case selection.SelectedUnlocked:
		return "Ctrl+L lock | Ctrl+P / Pause capture | drag to reselect | Ctrl+Q quit"
	default:
		return "Drag to select | Ctrl+L lock | Ctrl+P / Pause capture | Ctrl+Q quit"
	}
}

// ComposeInto renders f into dst in surface-local coordinates. dst must be
// sized to f.Bounds.
func ComposeInto(dst *image.RGBA, f Frame) {
	canvas := dst.Bounds()
	fill(dst, canvas, DimColor)

	if f.State != selection.Inactive && !f.Selection.Empty() {
		local := geometry.Translate(f.Selection, f.Bounds).Image()
		border := SelectedColor
		hole := color.RGBA{A: capturingHoleAlpha}
		if f.State == selection.Locked {
			border = LockedColor
			hole = color.RGBA{}
		}
		fill(dst, local.Inset(-BorderWidth).Intersect(canvas), border)
		fill(dst, local.Intersect(canvas), hole)
	}

	if f.Hint != "" {
		drawHint(dst, f.Hint, geometry.ToLocal(f.HintOrigin, f.Bounds))
	}
}

// painter holds the most recent frame until the window thread is ready to
// draw it. Storing is cheap; the image is built only in take, into a buffer
// that is reused while the bounds stay the same.
type painter struct {
	mu      sync.Mutex
	frame   Frame
	pending bool

	// Owned by the goroutine calling take.
	buf    *image.RGBA
	builds int
}

// store replaces any unpainted frame with f. It reports true when no paint
// was queued yet, meaning the caller should schedule one.
func (p *painter) store(f Frame) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	first := !p.pending
	p.frame = f
	p.pending = true
	return first
}

// take composes the latest stored frame. ok is false when nothing changed
// since the previous take.
func (p *painter) take() (img *image.RGBA, f Frame, ok bool) {
	p.mu.Lock()
	f, ok = p.frame, p.pending
	p.pending = false
	p.mu.Unlock()
	if !ok {
		return nil, Frame{}, false
	}
	size := image.Rect(0, 0, f.Bounds.Width, f.Bounds.Height)
	if p.buf == nil || p.buf.Rect != size {
		p.buf = image.NewRGBA(size)
	}
	ComposeInto(p.buf, f)
	p.builds++
	return p.buf, f, true
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawHint(dst *image.RGBA, text string, at geometry.Point) {
	face := basicfont.Face7x13
	const pad = 6
	width := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()

	box := image.Rect(at.X+pad, at.Y+pad, at.X+pad+width+2*pad, at.Y+pad+height+2*pad).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	fill(dst, box, hintBackdrop)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(hintText),
		Face: face,
		Dot:  fixed.P(at.X+2*pad, at.Y+2*pad+m.Ascent.Ceil()),
	}
	d.DrawString(text)
}
