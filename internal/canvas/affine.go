package canvas

import (
	"math"

	"github.com/kimhsiao/daycanvas/internal/models"
)

// Rect is an axis-aligned box.
type Rect struct {
	Min, Max models.Point
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p models.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// BoundingBox returns the stored box of o, before scale and rotation.
func BoundingBox(o models.CanvasObject) Rect {
	return Rect{
		Min: o.Position,
		Max: models.Point{X: o.Position.X + o.Size.Width, Y: o.Position.Y + o.Size.Height},
	}
}

// Center returns the centre of o's box, the origin of its scale and rotation.
func Center(o models.CanvasObject) models.Point {
	return models.Point{X: o.Position.X + o.Size.Width/2, Y: o.Position.Y + o.Size.Height/2}
}

// Affine is the 2D transform
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Affine{A: 1, E: 1}

// Translate returns a translation by (dx, dy).
func Translate(dx, dy float64) Affine {
	return Affine{A: 1, C: dx, E: 1, F: dy}
}

// Scale returns a uniform scale about the origin.
func Scale(s float64) Affine {
	return Affine{A: s, E: s}
}

// Rotate returns a rotation about the origin. With y pointing down, positive
// angles turn clockwise on screen.
func Rotate(degrees float64) Affine {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return Affine{A: cos, B: -sin, D: sin, E: cos}
}

// Mul returns the transform that applies n first, then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// Apply transforms p.
func (m Affine) Apply(p models.Point) models.Point {
	return models.Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Invert returns the inverse transform, or ok=false if m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.E - m.B*m.D
	if det == 0 || math.IsNaN(det) {
		return Affine{}, false
	}
	inv := Affine{
		A: m.E / det,
		B: -m.B / det,
		D: -m.D / det,
		E: m.A / det,
	}
	inv.C = -(inv.A*m.C + inv.B*m.F)
	inv.F = -(inv.D*m.C + inv.E*m.F)
	return inv, true
}

// Transform returns the render-time transform of o: scale, then rotate,
// both about the box centre.
func Transform(o models.CanvasObject) Affine {
	c := Center(o)
	return Translate(c.X, c.Y).
		Mul(Rotate(o.Rotation)).
		Mul(Scale(o.Scale)).
		Mul(Translate(-c.X, -c.Y))
}

// Corners returns the on-screen corners of o, clockwise from top-left.
func Corners(o models.CanvasObject) [4]models.Point {
	m := Transform(o)
	b := BoundingBox(o)
	return [4]models.Point{
		m.Apply(b.Min),
		m.Apply(models.Point{X: b.Max.X, Y: b.Min.Y}),
		m.Apply(b.Max),
		m.Apply(models.Point{X: b.Min.X, Y: b.Max.Y}),
	}
}

// VisualBounds returns the axis-aligned box enclosing o as rendered.
func VisualBounds(o models.CanvasObject) Rect {
	pts := Corners(o)
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// HitTest reports whether the screen point p falls on o as rendered.
func HitTest(o models.CanvasObject, p models.Point) bool {
	inv, ok := Transform(o).Invert()
	if !ok {
		return false
	}
	return BoundingBox(o).Contains(inv.Apply(p))
}
