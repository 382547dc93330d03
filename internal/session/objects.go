package session

import (
	"github.com/kimhsiao/daycanvas/internal/canvas"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// Objects returns the active day's objects in z-order.
func (s *Session) Objects() []models.CanvasObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.Objects()
}

// AddMedia places an image or video centred on anchor and persists the day.
func (s *Session) AddMedia(ref string, kind models.ObjectKind, anchor models.Point, naturalWidth, naturalHeight float64) (models.CanvasObject, error) {
	o, err := canvas.CreateFromMedia(ref, kind, anchor, naturalWidth, naturalHeight)
	if err != nil {
		return models.CanvasObject{}, err
	}
	return o, s.add(o)
}

// AddPreset places a text or post-it note centred on anchor and persists the day.
func (s *Session) AddPreset(kind models.ObjectKind, anchor models.Point) (models.CanvasObject, error) {
	o, err := canvas.CreatePreset(kind, anchor)
	if err != nil {
		return models.CanvasObject{}, err
	}
	return o, s.add(o)
}

func (s *Session) add(o models.CanvasObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.layer.Add(o); err != nil {
		return err
	}
	s.selected = o.ID
	s.persistLocked()
	return nil
}

// RemoveObject deletes an object. Removing an unknown id changes nothing and
// reports false.
func (s *Session) RemoveObject(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return false, err
	}
	if !s.layer.Remove(id) {
		return false, nil
	}
	if s.selected == id {
		s.selected = ""
	}
	s.persistLocked()
	return true, nil
}

// EditText replaces the text of a note and persists the day.
func (s *Session) EditText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.layer.SetText(id, text); err != nil {
		return err
	}
	s.persistLocked()
	return nil
}

// EditStyle replaces the style of a note and persists the day.
func (s *Session) EditStyle(id string, style models.NoteStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.layer.SetStyle(id, style); err != nil {
		return err
	}
	s.persistLocked()
	return nil
}

// BringToFront raises an object above all others and persists the day.
func (s *Session) BringToFront(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.layer.BringToFront(id); err != nil {
		return err
	}
	s.persistLocked()
	return nil
}

// SelectAt selects the topmost object under p, or clears the selection.
func (s *Session) SelectAt(p models.Point) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.layer.TopmostAt(p)
	s.selected = id
	return id, ok
}

// Selected returns the selected object id, or "".
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}
