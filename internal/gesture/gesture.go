// Package gesture turns press, drag and release pointer sequences into
// move, resize and rotate transforms of canvas objects.
package gesture

import (
	"math"

	"github.com/kimhsiao/daycanvas/internal/canvas"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// EventType is the phase of a pointer event.
type EventType int

const (
	Down EventType = iota
	Move
	Up
)

// Button identifies the pressed pointer button. Values follow the DOM numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

// PointerEvent is one sample from the pointer device, in surface coordinates.
type PointerEvent struct {
	Type   EventType
	Pos    models.Point
	Button Button
}

// Target is the in-memory object list a gesture mutates.
type Target interface {
	Find(id string) (models.CanvasObject, bool)
	Update(id string, fn func(o *models.CanvasObject)) error
}

var _ Target = (*canvas.Layer)(nil)

// Gesture is a single press, drag and release interaction on one object.
//
// Drag only records the latest pointer sample. Frame applies it to the
// target, so any number of Drag calls between frames cost one update.
// Release applies a pending sample and reports whether the gesture changed
// the object and should be persisted.
type Gesture interface {
	Press(o models.CanvasObject, ev PointerEvent) bool
	Drag(ev PointerEvent)
	Frame(t Target) error
	Release(t Target) (bool, error)
	ObjectID() string
}

// MoveDelta returns the position of an object dragged from start to now.
func MoveDelta(initial, start, now models.Point) models.Point {
	return initial.Add(now.Sub(start))
}

// ResizeScale returns the scale after a vertical drag from startY to nowY.
// Dragging up enlarges.
func ResizeScale(initial, startY, nowY, sensitivity float64) float64 {
	return canvas.ClampScale(initial + (startY-nowY)*sensitivity)
}

// RotateDegrees returns the rotation after the pointer swept from start to
// now around center. The result is not normalised.
func RotateDegrees(initial float64, center, start, now models.Point) float64 {
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(now.Y-center.Y, now.X-center.X)
	return initial + (a1-a0)*180/math.Pi
}
