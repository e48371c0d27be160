// Package geometry maps between monitors, the virtual desktop that spans
// them, and rectangles expressed in global (cross-monitor) pixel coordinates.
package geometry

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoDisplaysAvailable is returned when no monitor is attached.
var ErrNoDisplaysAvailable = errors.New("no displays available")

// Point is a position in global pixel coordinates unless stated otherwise.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle. Width and Height are never negative for
// values produced by this package.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Right is the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom is the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Image converts r into an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// FromImage converts an image.Rectangle, canonicalizing it first.
func FromImage(ir image.Rectangle) Rect {
	ir = ir.Canon()
	return Rect{X: ir.Min.X, Y: ir.Min.Y, Width: ir.Dx(), Height: ir.Dy()}
}

// Displays enumerates attached monitors in global coordinates.
type Displays interface {
	NumActiveDisplays() int
	DisplayBounds(i int) image.Rectangle
}

// Service answers geometry questions against the live monitor topology.
type Service struct {
	displays Displays
}

// NewService returns a Service backed by d. A nil d uses the real monitors.
func NewService(d Displays) *Service {
	if d == nil {
		d = KbinaniDisplays{}
	}
	return &Service{displays: d}
}

// VirtualBounds returns the union of all monitor bounds. It is recomputed on
// every call so hot-plugged monitors are picked up on the next activation.
func (s *Service) VirtualBounds() (Rect, error) {
	return VirtualBounds(s.displays)
}

// Monitors returns the bounds of every attached monitor.
func (s *Service) Monitors() []Rect {
	n := s.displays.NumActiveDisplays()
	out := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FromImage(s.displays.DisplayBounds(i)))
	}
	return out
}

// Split returns the non-empty intersections of r with each monitor, tagged
// with the monitor index and expressed both globally and monitor-locally.
func (s *Service) Split(r Rect) []Piece {
	var pieces []Piece
	for i, m := range s.Monitors() {
		in := ClampToBounds(r, m)
		if in.Empty() {
			continue
		}
		pieces = append(pieces, Piece{
			Display: i,
			Global:  in,
			Local:   Rect{X: in.X - m.X, Y: in.Y - m.Y, Width: in.Width, Height: in.Height},
		})
	}
	return pieces
}

// Piece is the part of a global rectangle that falls on one monitor.
type Piece struct {
	Display int
	Global  Rect
	Local   Rect
}

// VirtualBounds computes the union bounding box of every display in d.
func VirtualBounds(d Displays) (Rect, error) {
	n := d.NumActiveDisplays()
	if n <= 0 {
		return Rect{}, ErrNoDisplaysAvailable
	}
	union := d.DisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(d.DisplayBounds(i))
	}
	return FromImage(union), nil
}

// ClampToBounds clips r to bounds. A rectangle entirely outside bounds
// collapses to a zero-area rectangle on the nearest edge.
func ClampToBounds(r, bounds Rect) Rect {
	x0 := clamp(r.X, bounds.X, bounds.Right())
	y0 := clamp(r.Y, bounds.Y, bounds.Bottom())
	x1 := clamp(r.Right(), bounds.X, bounds.Right())
	y1 := clamp(r.Bottom(), bounds.Y, bounds.Bottom())
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// ClampPoint moves p onto bounds. The exclusive right/bottom edges are valid
// positions so a drag can reach the last pixel column and row.
func ClampPoint(p Point, bounds Rect) Point {
	return Point{
		X: clamp(p.X, bounds.X, bounds.Right()),
		Y: clamp(p.Y, bounds.Y, bounds.Bottom()),
	}
}

// Normalize returns the rectangle spanned by two corners in any order.
func Normalize(a, b Point) Rect {
	x0, x1 := a.X, b.X
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 := a.Y, b.Y
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// ToGlobal converts a point relative to origin's top-left corner into global
// coordinates.
func ToGlobal(p Point, origin Rect) Point { return Point{X: p.X + origin.X, Y: p.Y + origin.Y} }

// ToLocal is the inverse of ToGlobal.
func ToLocal(p Point, origin Rect) Point { return Point{X: p.X - origin.X, Y: p.Y - origin.Y} }

// Translate moves r by (-origin.X, -origin.Y).
func Translate(r Rect, origin Rect) Rect {
	return Rect{X: r.X - origin.X, Y: r.Y - origin.Y, Width: r.Width, Height: r.Height}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
