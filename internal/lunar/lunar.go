// Package lunar computes the moon phase shown in the day header and the
// outline used to draw it.
package lunar

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	epochJD     = 2451550.1
	synodicDays = 29.530588853
)

// Phase returns the moon phase of t's calendar date in [0,1): 0 is new
// moon, 0.5 full moon. Only the year, month and day of t are used.
func Phase(t time.Time) float64 {
	year, month, day := t.Date()
	c, e := year, int(month)
	if e < 3 {
		c--
		e += 12
	}
	jd := math.Floor(365.25*float64(c+4716)) + math.Floor(30.6001*float64(e+1)) + float64(day) - 1524.5
	b := (jd - epochJD) / synodicDays
	return b - math.Floor(b)
}

// IsWaxing reports whether the lit part is growing.
func IsWaxing(phase float64) bool {
	return phase <= 0.5
}

var names = [...]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// Name returns the conventional name of the eighth of the cycle phase
// falls in, each centred on its principal phase.
func Name(phase float64) string {
	phase -= math.Floor(phase)
	return names[int(math.Floor(phase*8+0.5))%len(names)]
}

// Shape is the geometry of a moon icon of a given size. The lit region runs
// from the top along the outer arc to the bottom and back along the inner
// ellipse (or a straight line near the quarters).
type Shape struct {
	Size   float64
	Radius float64
	CX, CY float64

	InnerRX    float64
	SweepOuter bool
	SweepInner bool
	Straight   bool

	// Lit is false near new moon where nothing is drawn over the dark disc.
	Lit bool
	// Full is true near full moon where the whole disc is lit.
	Full bool
}

// ShapeOf lays out a moon of phase within a size×size box, leaving a
// two-unit margin for the outline.
func ShapeOf(phase, size float64) Shape {
	r := (size - 4) / 2
	waxing := IsWaxing(phase)
	cosP := math.Cos(phase * 2 * math.Pi)
	gibbous := cosP < 0
	rx := r * math.Abs(cosP)

	return Shape{
		Size:       size,
		Radius:     r,
		CX:         size / 2,
		CY:         size / 2,
		InnerRX:    rx,
		SweepOuter: waxing,
		SweepInner: waxing == gibbous,
		Straight:   rx < 0.5,
		Lit:        phase > 0.02 && phase < 0.98,
		Full:       phase >= 0.48 && phase <= 0.52,
	}
}

// SVGPath renders the lit region as an SVG path.
func (s Shape) SVGPath() string {
	var b strings.Builder
	b.WriteString("M " + num(s.CX) + " " + num(s.CY-s.Radius))
	b.WriteString(" A " + num(s.Radius) + " " + num(s.Radius) + " 0 0 " + flag(s.SweepOuter) + " " + num(s.CX) + " " + num(s.CY+s.Radius))
	if s.Straight {
		b.WriteString(" L " + num(s.CX) + " " + num(s.CY-s.Radius))
	} else {
		b.WriteString(" A " + num(s.InnerRX) + " " + num(s.Radius) + " 0 0 " + flag(s.SweepInner) + " " + num(s.CX) + " " + num(s.CY-s.Radius))
	}
	b.WriteString(" Z")
	return b.String()
}

// SVG renders a complete moon icon: dark disc, lit region and outline.
func (s Shape) SVG(dark, light, outline string) string {
	size, cx, cy, r := num(s.Size), num(s.CX), num(s.CY), num(s.Radius)
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + size + `" height="` + size + `" viewBox="0 0 ` + size + " " + size + `">`)
	b.WriteString(`<circle cx="` + cx + `" cy="` + cy + `" r="` + r + `" fill="` + dark + `" stroke="none"/>`)
	if s.Lit {
		b.WriteString(`<path d="` + s.SVGPath() + `" fill="` + light + `" stroke="none"/>`)
	}
	if s.Full {
		b.WriteString(`<circle cx="` + cx + `" cy="` + cy + `" r="` + r + `" fill="` + light + `" stroke="none"/>`)
	}
	b.WriteString(`<circle cx="` + cx + `" cy="` + cy + `" r="` + r + `" fill="none" stroke="` + outline + `" stroke-width="2"/>`)
	b.WriteString(`</svg>`)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
