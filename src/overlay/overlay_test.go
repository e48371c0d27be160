package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-capper/src/geometry"
	"screen-capper/src/selection"
)

type fakeSurface struct {
	shown  bool
	bounds geometry.Rect
	mode   InputMode
	modes  []InputMode
	frames []Frame
	events chan PointerEvent
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{events: make(chan PointerEvent, 8)}
}

func (f *fakeSurface) Show(b geometry.Rect) error {
	f.shown, f.bounds = true, b
	return nil
}
func (f *fakeSurface) Hide() error { f.shown = false; return nil }
func (f *fakeSurface) SetInputMode(m InputMode) error {
	f.mode = m
	f.modes = append(f.modes, m)
	return nil
}
func (f *fakeSurface) Render(fr Frame) error {
	f.frames = append(f.frames, fr)
	return nil
}
func (f *fakeSurface) Events() <-chan PointerEvent { return f.events }
func (f *fakeSurface) ExcludedFromCapture() bool    { return true }
func (f *fakeSurface) Release() error               { f.shown = false; return nil }

func (f *fakeSurface) last() Frame { return f.frames[len(f.frames)-1] }

// The virtual desktop starts left of the primary monitor.
var desktop = geometry.Rect{X: -1920, Y: 0, Width: 3840, Height: 1080}

func newOverlay(t *testing.T) (*Overlay, *fakeSurface, *selection.Model) {
	t.Helper()
	s := newFakeSurface()
	m := selection.New(desktop)
	o := New(s, m)
	require.NoError(t, o.Show(desktop))
	return o, s, m
}

func local(x, y int) geometry.Point {
	return geometry.ToLocal(geometry.Point{X: x, Y: y}, desktop)
}

func drag(o *Overlay, from, to geometry.Point) {
	o.HandlePointer(PointerEvent{Kind: PointerDown, Pos: from})
	o.HandlePointer(PointerEvent{Kind: PointerMove, Pos: geometry.Point{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}})
	o.HandlePointer(PointerEvent{Kind: PointerUp, Pos: to})
}

func TestOverlayDragMapsToGlobal(t *testing.T) {
	o, s, m := newOverlay(t)
	drag(o, local(10, 10), local(110, 60))

	assert.Equal(t, selection.SelectedUnlocked, m.State())
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 100, Height: 50}, m.Rect())
	assert.Equal(t, selection.SelectedUnlocked, s.last().State)
	assert.Equal(t, m.Rect(), s.last().Selection)
}

func TestOverlayLockSwitchesToPassThrough(t *testing.T) {
	o, s, m := newOverlay(t)
	drag(o, local(-100, 100), local(-300, 20))
	require.NoError(t, m.ToggleLock())

	assert.Equal(t, PassThrough, s.mode)
	assert.Equal(t, PassThrough, o.Mode())
	assert.Equal(t, selection.Locked, s.last().State)

	require.NoError(t, m.ToggleLock())
	assert.Equal(t, Capturing, s.mode)
	assert.Equal(t, []InputMode{PassThrough, Capturing}, s.modes)
}

func TestOverlayLockedIgnoresPointer(t *testing.T) {
	o, _, m := newOverlay(t)
	drag(o, local(10, 10), local(110, 60))
	require.NoError(t, m.ToggleLock())
	locked := m.Rect()

	for _, p := range []geometry.Point{local(500, 500), local(20, 20), local(-1000, 5)} {
		drag(o, p, local(900, 900))
		assert.Equal(t, locked, m.Rect())
		assert.Equal(t, selection.Locked, m.State())
	}
}

func TestOverlayNewDragReplacesUnlockedSelection(t *testing.T) {
	o, _, m := newOverlay(t)
	drag(o, local(10, 10), local(110, 60))
	drag(o, local(300, 300), local(200, 250))
	assert.Equal(t, geometry.Rect{X: 200, Y: 250, Width: 100, Height: 50}, m.Rect())
}

func TestOverlayHiddenIgnoresInput(t *testing.T) {
	o, s, m := newOverlay(t)
	require.NoError(t, o.Hide())
	n := len(s.frames)
	drag(o, local(10, 10), local(110, 60))
	assert.Equal(t, selection.Inactive, m.State())
	assert.Len(t, s.frames, n)
}

func compose(f Frame) *image.RGBA {
	var p painter
	p.store(f)
	img, _, _ := p.take()
	return img
}

// paintingSurface defers composition to a painter the way the native surface
// does.
type paintingSurface struct {
	*fakeSurface
	painter painter
	queued  int
}

func (p *paintingSurface) Render(f Frame) error {
	if p.painter.store(f) {
		p.queued++
	}
	return nil
}

func TestPointerBurstComposesOnce(t *testing.T) {
	wide := geometry.Rect{X: -3840, Y: 0, Width: 7680, Height: 2160}
	s := &paintingSurface{fakeSurface: newFakeSurface()}
	m := selection.New(wide)
	o := New(s, m)
	require.NoError(t, o.Show(wide))

	o.HandlePointer(PointerEvent{Kind: PointerDown, Pos: geometry.Point{X: 100, Y: 100}})
	for i := 0; i < 60; i++ {
		o.HandlePointer(PointerEvent{Kind: PointerMove, Pos: geometry.Point{X: 200 + 10*i, Y: 150 + 5*i}})
	}
	assert.Equal(t, 0, s.painter.builds)
	assert.Equal(t, 1, s.queued)

	img, f, ok := s.painter.take()
	require.True(t, ok)
	assert.Equal(t, 1, s.painter.builds)
	assert.Equal(t, m.Rect(), f.Selection)
	assert.Equal(t, 7680, img.Bounds().Dx())

	_, _, ok = s.painter.take()
	assert.False(t, ok, "nothing new to paint")
	assert.Equal(t, 1, s.painter.builds)

	o.HandlePointer(PointerEvent{Kind: PointerUp, Pos: geometry.Point{X: 900, Y: 500}})
	again, _, ok := s.painter.take()
	require.True(t, ok)
	assert.Same(t, img, again, "buffer is reused")
	assert.Equal(t, 2, s.painter.builds)
	assert.Equal(t, 2, s.queued)
}

func TestComposeDimAndHole(t *testing.T) {
	f := Frame{
		Bounds:    geometry.Rect{X: -100, Y: 0, Width: 200, Height: 100},
		Selection: geometry.Rect{X: 0, Y: 20, Width: 40, Height: 30},
		State:     selection.SelectedUnlocked,
	}
	img := compose(f)
	require.Equal(t, 200, img.Bounds().Dx())

	assert.Equal(t, DimColor, img.RGBAAt(5, 95), "outside is dimmed")
	assert.Equal(t, color.RGBA{A: capturingHoleAlpha}, img.RGBAAt(110, 30), "selection is clear")
	assert.Equal(t, SelectedColor, img.RGBAAt(100-1, 30), "border left of selection")
	assert.Equal(t, SelectedColor, img.RGBAAt(120, 20-BorderWidth), "border above selection")
	assert.Equal(t, DimColor, img.RGBAAt(100-BorderWidth-1, 30))

	f.State = selection.Locked
	img = compose(f)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(110, 30))
	assert.Equal(t, LockedColor, img.RGBAAt(140, 30), "border right of selection")
}

func TestComposeInactiveHasNoBorder(t *testing.T) {
	img := compose(Frame{
		Bounds:    geometry.Rect{Width: 50, Height: 50},
		Selection: geometry.Rect{X: 10, Y: 10, Width: 10, Height: 10},
		State:     selection.Inactive,
	})
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			require.Equal(t, DimColor, img.RGBAAt(x, y))
		}
	}
}

func TestComposeDrawsHint(t *testing.T) {
	f := Frame{
		Bounds: geometry.Rect{Width: 800, Height: 100},
		State:  selection.Inactive,
		Hint:   HintFor(selection.Inactive),
	}
	img := compose(f)
	bright := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 600; x++ {
			if img.RGBAAt(x, y).R > 200 {
				bright++
			}
		}
	}
	assert.Greater(t, bright, 0, "hint text should be drawn")
	assert.Contains(t, HintFor(selection.Locked), "unlock")
}

func TestOverlayYieldPassesInputThrough(t *testing.T) {
	o, s, m := newOverlay(t)
	drag(o, local(10, 10), local(110, 60))

	require.NoError(t, o.Yield(true))
	assert.Equal(t, PassThrough, s.mode)
	drag(o, local(300, 300), local(400, 400))
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 100, Height: 50}, m.Rect())
	assert.Equal(t, selection.SelectedUnlocked, s.last().State)

	require.NoError(t, o.Yield(false))
	assert.Equal(t, Capturing, s.mode)
}
