// Package overlay draws the dimmed full-desktop surface and turns raw pointer
// input into selection model operations.
package overlay

import (
	"errors"
	"log"

	"screen-capper/src/geometry"
	"screen-capper/src/selection"
)

// ErrOverlayUnsupported is returned when no topmost transparent surface can
// be created on this platform.
var ErrOverlayUnsupported = errors.New("overlay unsupported")

// InputMode controls whether the surface intercepts pointer input.
type InputMode int

const (
	// Capturing intercepts every pointer event over the virtual desktop.
	Capturing InputMode = iota
	// PassThrough lets pointer input reach the windows underneath.
	PassThrough
)

func (m InputMode) String() string {
	if m == PassThrough {
		return "pass-through"
	}
	return "capturing"
}

// PointerKind is the kind of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is raw pointer input in surface-local coordinates.
type PointerEvent struct {
	Kind PointerKind
	Pos  geometry.Point
}

// Surface is a topmost, per-pixel transparent window spanning the virtual
// desktop. Events are delivered on the returned channel from the surface's
// own thread; every other method may be called from any goroutine.
type Surface interface {
	Show(bounds geometry.Rect) error
	Hide() error
	SetInputMode(mode InputMode) error
	Render(f Frame) error
	Events() <-chan PointerEvent
	// ExcludedFromCapture reports whether screen grabs skip this surface.
	// When false the caller must hide it before grabbing pixels.
	ExcludedFromCapture() bool
	Release() error
}

// Overlay binds a Surface to a selection model. It must be driven from the
// goroutine that owns the model.
type Overlay struct {
	surface Surface
	model   *selection.Model
	bounds  geometry.Rect
	visible bool
	yielded bool
	mode    InputMode
}

// New wires surface to model and re-renders on every model transition.
func New(surface Surface, model *selection.Model) *Overlay {
	o := &Overlay{surface: surface, model: model}
	model.Subscribe(func(selection.Transition) {
		if err := o.Refresh(); err != nil {
			log.Printf("OVERLAY: refresh failed: %v", err)
		}
	})
	return o
}

// Show places the surface over bounds and makes it visible.
func (o *Overlay) Show(bounds geometry.Rect) error {
	o.bounds = bounds
	if err := o.surface.Show(bounds); err != nil {
		return err
	}
	o.visible = true
	log.Printf("OVERLAY: shown over %s", bounds)
	return o.Refresh()
}

// Hide removes the surface from the screen without releasing it.
func (o *Overlay) Hide() error {
	if !o.visible {
		return nil
	}
	o.visible = false
	return o.surface.Hide()
}

// Visible reports whether the surface is on screen.
func (o *Overlay) Visible() bool { return o.visible }

// Bounds returns the global rectangle the surface covers.
func (o *Overlay) Bounds() geometry.Rect { return o.bounds }

// Mode returns the current input mode.
func (o *Overlay) Mode() InputMode { return o.mode }

// Events forwards the surface's pointer channel.
func (o *Overlay) Events() <-chan PointerEvent { return o.surface.Events() }

// ExcludedFromCapture mirrors the surface capability.
func (o *Overlay) ExcludedFromCapture() bool { return o.surface.ExcludedFromCapture() }

// HandlePointer maps a surface-local event to the model. Input while locked
// never reaches the model: the surface should be in pass-through mode then,
// and stray events that slip through are dropped here.
func (o *Overlay) HandlePointer(ev PointerEvent) {
	if !o.visible || o.yielded || o.model.State() == selection.Locked {
		return
	}
	p := geometry.ToGlobal(ev.Pos, o.bounds)
	var err error
	switch ev.Kind {
	case PointerDown:
		err = o.model.BeginSelection(p)
	case PointerMove:
		if o.model.State() != selection.Selecting {
			return
		}
		err = o.model.UpdateSelection(p)
	case PointerUp:
		if o.model.State() != selection.Selecting {
			return
		}
		if err = o.model.UpdateSelection(p); err == nil {
			err = o.model.EndSelection()
		}
	}
	if err != nil {
		log.Printf("OVERLAY: pointer %d at %v ignored: %v", ev.Kind, p, err)
	}
}

// Yield lets pointer input through while another window, such as the
// session name dialog, needs it. The selection stays drawn.
func (o *Overlay) Yield(yield bool) error {
	if o.yielded == yield {
		return nil
	}
	o.yielded = yield
	return o.Refresh()
}

// Refresh pushes the model's current state to the surface: input mode first,
// then a new frame.
func (o *Overlay) Refresh() error {
	if !o.visible {
		return nil
	}
	state := o.model.State()
	mode := Capturing
	if state == selection.Locked || o.yielded {
		mode = PassThrough
	}
	if mode != o.mode {
		if err := o.surface.SetInputMode(mode); err != nil {
			return err
		}
		log.Printf("OVERLAY: input mode %s", mode)
		o.mode = mode
	}
	return o.surface.Render(Frame{
		Bounds:     o.bounds,
		Selection:  o.model.Rect(),
		State:      state,
		Hint:       HintFor(state),
		HintOrigin: geometry.Point{},
	})
}

// Release hides the surface and frees its native resources.
func (o *Overlay) Release() error {
	o.visible = false
	return o.surface.Release()
}
