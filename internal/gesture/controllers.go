package gesture

import (
	"github.com/kimhsiao/daycanvas/internal/canvas"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// DefaultMoveThreshold is the pointer travel, in pixels, that turns a click
// into a drag.
const DefaultMoveThreshold = 3.0

// DefaultResizeSensitivity is the scale change per pixel of vertical drag.
const DefaultResizeSensitivity = 0.01

// pending tracks the most recent unapplied pointer sample.
type pending struct {
	pos models.Point
	set bool
}

func (p *pending) put(pos models.Point) { p.pos, p.set = pos, true }

func (p *pending) take() (models.Point, bool) {
	pos, ok := p.pos, p.set
	p.set = false
	return pos, ok
}

// MoveGesture drags an object by its body.
type MoveGesture struct {
	Threshold float64

	id       string
	initial  models.Point
	start    models.Point
	dragging bool
	next     pending
}

// NewMove returns a move gesture with the given threshold.
func NewMove(threshold float64) *MoveGesture {
	return &MoveGesture{Threshold: threshold}
}

// Press starts the gesture. Only the primary button starts a move.
func (g *MoveGesture) Press(o models.CanvasObject, ev PointerEvent) bool {
	if ev.Button != ButtonPrimary {
		return false
	}
	*g = MoveGesture{Threshold: g.Threshold, id: o.ID, initial: o.Position, start: ev.Pos}
	return true
}

// Drag records a pointer sample. Samples within the threshold of the press
// point are ignored until the threshold has been crossed once.
func (g *MoveGesture) Drag(ev PointerEvent) {
	if !g.dragging && ev.Pos.Dist(g.start) <= g.Threshold {
		return
	}
	g.dragging = true
	g.next.put(ev.Pos)
}

// Frame moves the object to follow the latest sample.
func (g *MoveGesture) Frame(t Target) error {
	pos, ok := g.next.take()
	if !ok {
		return nil
	}
	return t.Update(g.id, func(o *models.CanvasObject) {
		o.Position = MoveDelta(g.initial, g.start, pos)
	})
}

// Release ends the gesture. It reports false for a click that never crossed
// the threshold.
func (g *MoveGesture) Release(t Target) (bool, error) {
	if err := g.Frame(t); err != nil {
		return false, err
	}
	return g.dragging, nil
}

// ObjectID returns the id of the object being moved.
func (g *MoveGesture) ObjectID() string { return g.id }

// ResizeGesture scales an object by dragging its handle vertically.
type ResizeGesture struct {
	Sensitivity float64

	id      string
	initial float64
	start   models.Point
	moved   bool
	next    pending
}

// NewResize returns a resize gesture with the given sensitivity.
func NewResize(sensitivity float64) *ResizeGesture {
	return &ResizeGesture{Sensitivity: sensitivity}
}

// Press starts the gesture.
func (g *ResizeGesture) Press(o models.CanvasObject, ev PointerEvent) bool {
	*g = ResizeGesture{Sensitivity: g.Sensitivity, id: o.ID, initial: o.Scale, start: ev.Pos}
	return true
}

// Drag records a pointer sample.
func (g *ResizeGesture) Drag(ev PointerEvent) {
	if !g.moved && ev.Pos == g.start {
		return
	}
	g.moved = true
	g.next.put(ev.Pos)
}

// Frame rescales the object for the latest sample.
func (g *ResizeGesture) Frame(t Target) error {
	pos, ok := g.next.take()
	if !ok {
		return nil
	}
	return t.Update(g.id, func(o *models.CanvasObject) {
		o.Scale = ResizeScale(g.initial, g.start.Y, pos.Y, g.Sensitivity)
	})
}

// Release ends the gesture.
func (g *ResizeGesture) Release(t Target) (bool, error) {
	if err := g.Frame(t); err != nil {
		return false, err
	}
	return g.moved, nil
}

// ObjectID returns the id of the object being resized.
func (g *ResizeGesture) ObjectID() string { return g.id }

// RotateGesture turns an object around its centre.
type RotateGesture struct {
	id      string
	initial float64
	center  models.Point
	start   models.Point
	moved   bool
	next    pending
}

// NewRotate returns a rotate gesture.
func NewRotate() *RotateGesture {
	return &RotateGesture{}
}

// Press starts the gesture. The pivot is the centre of the object's box.
func (g *RotateGesture) Press(o models.CanvasObject, ev PointerEvent) bool {
	*g = RotateGesture{id: o.ID, initial: o.Rotation, center: canvas.Center(o), start: ev.Pos}
	return true
}

// Drag records a pointer sample.
func (g *RotateGesture) Drag(ev PointerEvent) {
	if !g.moved && ev.Pos == g.start {
		return
	}
	g.moved = true
	g.next.put(ev.Pos)
}

// Frame rotates the object for the latest sample.
func (g *RotateGesture) Frame(t Target) error {
	pos, ok := g.next.take()
	if !ok {
		return nil
	}
	return t.Update(g.id, func(o *models.CanvasObject) {
		o.Rotation = RotateDegrees(g.initial, g.center, g.start, pos)
	})
}

// Release ends the gesture.
func (g *RotateGesture) Release(t Target) (bool, error) {
	if err := g.Frame(t); err != nil {
		return false, err
	}
	return g.moved, nil
}

// ObjectID returns the id of the object being rotated.
func (g *RotateGesture) ObjectID() string { return g.id }
