package session

import (
	"github.com/kimhsiao/daycanvas/internal/drawing"
	"github.com/kimhsiao/daycanvas/internal/gesture"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// PressMove starts dragging the object by its body and selects it.
func (s *Session) PressMove(id string, ev gesture.PointerEvent) error {
	return s.press(gesture.NewMove(s.cfg.MoveThreshold), id, ev, true)
}

// PressResize starts resizing the object from its handle.
func (s *Session) PressResize(id string, ev gesture.PointerEvent) error {
	return s.press(gesture.NewResize(s.cfg.ResizeSensitivity), id, ev, false)
}

// PressRotate starts rotating the object from its handle.
func (s *Session) PressRotate(id string, ev gesture.PointerEvent) error {
	return s.press(gesture.NewRotate(), id, ev, false)
}

func (s *Session) press(g gesture.Gesture, id string, ev gesture.PointerEvent, selects bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if selects && ev.Button == gesture.ButtonPrimary {
		if _, ok := s.layer.Find(id); ok {
			s.selected = id
		}
	}
	return s.tracker.Start(g, id, ev)
}

// Pointer feeds a pointer sample to the active gesture. An Up event ends the
// gesture and, if the object changed, persists the day once.
func (s *Session) Pointer(ev gesture.PointerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.tracker.Dispatch(ev)
	if err != nil {
		return err
	}
	if changed != "" {
		s.persistLocked()
	}
	return nil
}

// Frame applies the latest pointer sample of the active gesture. Call it
// once per rendered frame.
func (s *Session) Frame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Frame()
}

// Release ends the active gesture as if the pointer had been lifted where
// it last was.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.tracker.Release()
	if err != nil {
		return err
	}
	if changed != "" {
		s.persistLocked()
	}
	return nil
}

// GestureActive reports whether a gesture is in progress.
func (s *Session) GestureActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Active()
}

// EnableDrawing toggles drawing mode.
func (s *Session) EnableDrawing(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetEnabled(on)
}

// SetPen configures the pen for the next stroke.
func (s *Session) SetPen(t drawing.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetTool(t)
}

// PointerDown starts a stroke at p when drawing is enabled.
func (s *Session) PointerDown(p models.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyLocked() != nil || s.tracker.Active() {
		return false
	}
	return s.engine.BeginStroke(p)
}

// PointerMove extends the stroke in progress.
func (s *Session) PointerMove(p models.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ExtendStroke(p)
}

// PointerUp commits the stroke in progress and persists the day.
func (s *Session) PointerUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.engine.EndStroke()
	return ok
}

// Undo removes the last stroke and persists the day.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyLocked() != nil {
		return false
	}
	return s.engine.UndoLast()
}

// ClearDrawing removes every stroke and persists the day.
func (s *Session) ClearDrawing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	s.engine.ClearAll()
	return nil
}

// Strokes returns the committed strokes of the active day.
func (s *Session) Strokes() []models.Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Strokes()
}
