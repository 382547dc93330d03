package models

import "fmt"

// StrokeMode selects how a stroke composites onto the surface.
type StrokeMode string

const (
	ModePen    StrokeMode = "pen"
	ModeEraser StrokeMode = "eraser"
)

// Valid reports whether m is a known mode.
func (m StrokeMode) Valid() bool {
	return m == ModePen || m == ModeEraser
}

// Stroke is one continuous pen or eraser drag.
type Stroke struct {
	Points []Point    `json:"points"`
	Color  string     `json:"color"`
	Size   float64    `json:"size"`
	Mode   StrokeMode `json:"mode"`

	// Surface dimensions at capture time. Zero for strokes recorded before
	// they were tracked.
	CanvasWidth  int `json:"canvasWidth,omitempty"`
	CanvasHeight int `json:"canvasHeight,omitempty"`
}

// Validate checks that the stroke can be replayed.
func (s *Stroke) Validate() error {
	if len(s.Points) == 0 {
		return fmt.Errorf("stroke: no points")
	}
	if !(s.Size > 0) {
		return fmt.Errorf("stroke: size must be positive, got %v", s.Size)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("stroke: unknown mode %q", s.Mode)
	}
	return nil
}

// Clone returns a copy of s that shares no memory with it.
func (s Stroke) Clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

// CloneStrokes deep-copies a stroke list.
func CloneStrokes(in []Stroke) []Stroke {
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
