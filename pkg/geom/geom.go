// Package geom holds the small 2D vocabulary shared by the index, viewport
// and hit-testing packages: points, sizes, screen rectangles and
// axis-aligned boxes.
//
// Two rectangle flavours exist on purpose. [Rect] is origin+extent and is
// what the viewport reports ("x, y, w, h"). [Box] is min/max corners and is
// what the spatial index stores. Convert with [Rect.Box] and [Box.Rect].
//
// Arithmetic runs on [vector.Vector]; Point stays a comparable value so it
// can be used with == and as a map value.
package geom

import (
	"math"

	"github.com/quartercastle/vector"
)

// Point is a position in either screen or graph space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Vec returns p as a 2D vector.
func (p Point) Vec() vector.Vector { return vector.Vector{p.X, p.Y} }

// FromVec converts the first two components of v to a Point.
func FromVec(v vector.Vector) Point {
	var p Point
	if len(v) > 0 {
		p.X = v[0]
	}
	if len(v) > 1 {
		p.Y = v[1]
	}
	return p
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return FromVec(p.Vec().Add(q.Vec())) }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return FromVec(p.Vec().Sub(q.Vec())) }

// Scale returns p*s.
func (p Point) Scale(s float64) Point { return FromVec(p.Vec().Scale(s)) }

// Size is a width/height pair, usually a container size in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Rect is an origin+extent rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Box converts r to corner form.
func (r Rect) Box() Box {
	return Box{MinX: r.X, MinY: r.Y, MaxX: r.X + r.W, MaxY: r.Y + r.H}
}

// Center returns the centre of r.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Pad grows r by d on every side.
func (r Rect) Pad(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Box is an axis-aligned bounding box in corner form.
type Box struct {
	MinX float64 `json:"x0"`
	MinY float64 `json:"y0"`
	MaxX float64 `json:"x1"`
	MaxY float64 `json:"y1"`
}

// PointBox returns the zero-area box at p.
func PointBox(p Point) Box { return Box{p.X, p.Y, p.X, p.Y} }

// NormalBox returns the bounding box of the two points a and b regardless
// of their order.
func NormalBox(a, b Point) Box {
	return Box{
		MinX: math.Min(a.X, b.X),
		MinY: math.Min(a.Y, b.Y),
		MaxX: math.Max(a.X, b.X),
		MaxY: math.Max(a.Y, b.Y),
	}
}

// Around returns the square box of half-side r centred on p.
func Around(p Point, r float64) Box {
	return Box{p.X - r, p.Y - r, p.X + r, p.Y + r}
}

// Rect converts b to origin+extent form.
func (b Box) Rect() Rect {
	return Rect{X: b.MinX, Y: b.MinY, W: b.MaxX - b.MinX, H: b.MaxY - b.MinY}
}

// Center returns the centre of b.
func (b Box) Center() Point {
	return Point{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside b (edges inclusive).
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Intersects reports whether b and o overlap (touching counts).
func (b Box) Intersects(o Box) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Extent returns the bounding box of pts. ok is false when pts is empty.
func Extent(pts []Point) (b Box, ok bool) {
	if len(pts) == 0 {
		return Box{}, false
	}
	b = PointBox(pts[0])
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b, true
}

// Dist is the Euclidean distance between a and b.
func Dist(a, b Point) float64 { return a.Vec().Sub(b.Vec()).Magnitude() }

// Mid returns the midpoint of a and b.
func Mid(a, b Point) Point { return FromVec(a.Vec().Add(b.Vec()).Scale(0.5)) }

// LineDist is the perpendicular distance from p to the infinite line
// through a and b. It is not clamped to the segment: callers bound-check
// with the segment box first. A degenerate segment (a == b) falls back to
// the point distance.
func LineDist(p, a, b Point) float64 {
	ab := b.Vec().Sub(a.Vec())
	ap := p.Vec().Sub(a.Vec())
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return ap.Magnitude()
	}
	return ap.Sub(ab.Scale(ap.Dot(ab) / l2)).Magnitude()
}
