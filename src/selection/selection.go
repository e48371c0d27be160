// Package selection holds the single live capture rectangle and its lock
// state. It does no rendering and no locking: all calls must come from the
// event-loop goroutine.
package selection

import (
	"errors"
	"fmt"

	"screen-capper/src/geometry"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state. The model is left untouched.
var ErrInvalidTransition = errors.New("invalid selection transition")

// State is the lifecycle of the selection.
type State int

const (
	Inactive State = iota
	Selecting
	SelectedUnlocked
	Locked
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Selecting:
		return "selecting"
	case SelectedUnlocked:
		return "selected"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition describes one state change. Rect is the rectangle after it.
type Transition struct {
	From State
	To   State
	Rect geometry.Rect
}

// Model is the selection state machine.
type Model struct {
	bounds      geometry.Rect
	anchor      geometry.Point
	rect        geometry.Rect
	state       State
	subscribers []func(Transition)
}

// New returns an Inactive model confined to bounds.
func New(bounds geometry.Rect) *Model {
	return &Model{bounds: bounds}
}

// Subscribe registers fn to run after every transition, including updates
// that only move the rectangle while Selecting.
func (m *Model) Subscribe(fn func(Transition)) {
	m.subscribers = append(m.subscribers, fn)
}

func (m *Model) State() State { return m.state }

func (m *Model) Rect() geometry.Rect { return m.rect }

func (m *Model) Bounds() geometry.Rect { return m.bounds }

// HasRegion reports whether a finished, non-empty selection exists.
func (m *Model) HasRegion() bool {
	return (m.state == SelectedUnlocked || m.state == Locked) && !m.rect.Empty()
}

// Activate installs freshly computed virtual bounds. A finished selection
// survives when it still has area inside the new bounds; anything else is
// reset.
func (m *Model) Activate(bounds geometry.Rect) {
	m.bounds = bounds
	switch m.state {
	case SelectedUnlocked, Locked:
		clipped := geometry.ClampToBounds(m.rect, bounds)
		if clipped.Empty() {
			m.Reset()
			return
		}
		m.rect = clipped
		m.emit(m.state)
	default:
		m.Reset()
	}
}

// BeginSelection starts a drag at p.
func (m *Model) BeginSelection(p geometry.Point) error {
	if m.state != Inactive && m.state != SelectedUnlocked {
		return m.invalid("begin")
	}
	m.anchor = geometry.ClampPoint(p, m.bounds)
	m.rect = geometry.Rect{X: m.anchor.X, Y: m.anchor.Y}
	m.emit(Selecting)
	return nil
}

// UpdateSelection stretches the rectangle between the anchor and p.
func (m *Model) UpdateSelection(p geometry.Point) error {
	if m.state != Selecting {
		return m.invalid("update")
	}
	r := geometry.Normalize(m.anchor, geometry.ClampPoint(p, m.bounds))
	m.rect = geometry.ClampToBounds(r, m.bounds)
	m.emit(Selecting)
	return nil
}

// EndSelection finishes the drag. A zero-area drag leaves no selection.
func (m *Model) EndSelection() error {
	if m.state != Selecting {
		return m.invalid("end")
	}
	if m.rect.Empty() {
		m.rect = geometry.Rect{}
		m.emit(Inactive)
		return nil
	}
	m.emit(SelectedUnlocked)
	return nil
}

// ToggleLock freezes or releases a finished selection.
func (m *Model) ToggleLock() error {
	switch m.state {
	case SelectedUnlocked:
		m.emit(Locked)
	case Locked:
		m.emit(SelectedUnlocked)
	default:
		return m.invalid("toggle lock")
	}
	return nil
}

// Lock installs r as a locked selection without a drag. It is used for
// preset regions when no overlay is available.
func (m *Model) Lock(r geometry.Rect) error {
	if m.state == Selecting {
		return m.invalid("lock")
	}
	r = geometry.ClampToBounds(r, m.bounds)
	if r.Empty() {
		return fmt.Errorf("%w: region %s has no area inside %s", ErrInvalidTransition, r, m.bounds)
	}
	m.rect = r
	m.emit(Locked)
	return nil
}

// Reset drops any selection.
func (m *Model) Reset() {
	m.rect = geometry.Rect{}
	m.anchor = geometry.Point{}
	m.emit(Inactive)
}

func (m *Model) emit(to State) {
	t := Transition{From: m.state, To: to, Rect: m.rect}
	m.state = to
	for _, fn := range m.subscribers {
		fn(t)
	}
}

func (m *Model) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, m.state)
}
