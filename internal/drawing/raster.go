package drawing

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/kimhsiao/daycanvas/internal/models"
)

// polygon is a closed outline in surface coordinates.
type polygon []models.Point

// signedArea is positive for counter-clockwise outlines in a y-up frame.
func (p polygon) signedArea() float64 {
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

func (p polygon) bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := minX, minY
	for _, q := range p[1:] {
		minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
		minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	)
}

// fill adds p to z, offset by (ox, oy). Every outline is emitted with the
// same orientation so overlapping shapes union instead of cancelling.
func (p polygon) fill(z *vector.Rasterizer, ox, oy float32) {
	if len(p) < 3 {
		return
	}
	pts := p
	if p.signedArea() < 0 {
		pts = make(polygon, len(p))
		for i, q := range p {
			pts[len(p)-1-i] = q
		}
	}
	z.MoveTo(float32(pts[0].X)-ox, float32(pts[0].Y)-oy)
	for _, q := range pts[1:] {
		z.LineTo(float32(q.X)-ox, float32(q.Y)-oy)
	}
	z.ClosePath()
}

// disc approximates a filled circle. The vertex count grows with the radius
// so large brushes stay round.
func disc(c models.Point, r float64) polygon {
	n := int(math.Ceil(r * math.Pi))
	n = min(max(n, 12), 96)
	out := make(polygon, n)
	for i := range out {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		out[i] = models.Point{X: c.X + r*cos, Y: c.Y + r*sin}
	}
	return out
}

// capsule returns the outline pieces of a round-capped, round-joined line
// segment of width 2r from a to b.
func capsule(a, b models.Point, r float64) []polygon {
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return []polygon{disc(a, r)}
	}
	nx, ny := -d.Y/length*r, d.X/length*r
	body := polygon{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
	return []polygon{disc(a, r), body, disc(b, r)}
}

// polyline returns the outline pieces of a whole stroke: a dot for a single
// point, otherwise one capsule per segment.
func polyline(points []models.Point, r float64) []polygon {
	switch len(points) {
	case 0:
		return nil
	case 1:
		return []polygon{disc(points[0], r)}
	}
	out := make([]polygon, 0, 2*len(points))
	out = append(out, disc(points[0], r))
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if a == b {
			continue
		}
		pieces := capsule(a, b, r)
		// Each capsule's start disc duplicates the previous end disc.
		out = append(out, pieces[1:]...)
	}
	return out
}

// brushRadius converts a stroke width into the radius used for rasterising.
func brushRadius(size float64) float64 {
	return math.Max(size/2, 0.5)
}
