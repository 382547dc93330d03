package canvas

import (
	"fmt"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// Layer is the ordered object list of one day. Later objects draw on top.
type Layer struct {
	objects []models.CanvasObject
}

// NewLayer creates a layer holding copies of objects.
func NewLayer(objects []models.CanvasObject) *Layer {
	l := &Layer{}
	l.Reset(objects)
	return l
}

// Reset replaces the contents of the layer with copies of objects.
func (l *Layer) Reset(objects []models.CanvasObject) {
	l.objects = make([]models.CanvasObject, len(objects))
	for i, o := range objects {
		l.objects[i] = o.Clone()
	}
}

// Objects returns a copy of the objects in z-order.
func (l *Layer) Objects() []models.CanvasObject {
	out := make([]models.CanvasObject, len(l.objects))
	for i, o := range l.objects {
		out[i] = o.Clone()
	}
	return out
}

// Len returns the number of objects.
func (l *Layer) Len() int {
	return len(l.objects)
}

func (l *Layer) index(id string) int {
	for i := range l.objects {
		if l.objects[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return apperrors.New(apperrors.ErrRecordNotFound, fmt.Sprintf("no object %q on this day", id))
}

// Add appends o on top of the existing objects.
func (l *Layer) Add(o models.CanvasObject) error {
	if err := o.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "invalid canvas object", err)
	}
	if l.index(o.ID) >= 0 {
		return apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("duplicate object id %q", o.ID))
	}
	l.objects = append(l.objects, o.Clone())
	return nil
}

// Find returns a copy of the object with the given id.
func (l *Layer) Find(id string) (models.CanvasObject, bool) {
	if i := l.index(id); i >= 0 {
		return l.objects[i].Clone(), true
	}
	return models.CanvasObject{}, false
}

// Update applies fn to the object in place. The id and kind are restored
// afterwards and the scale re-clamped, so fn cannot break the invariants.
func (l *Layer) Update(id string, fn func(o *models.CanvasObject)) error {
	i := l.index(id)
	if i < 0 {
		return notFound(id)
	}
	o := &l.objects[i]
	kind, size := o.Kind, o.Size
	fn(o)
	o.ID, o.Kind, o.Size = id, kind, size
	o.Scale = ClampScale(o.Scale)
	return nil
}

// Remove deletes the object with the given id. Removing a missing id is a no-op
// and reports false.
func (l *Layer) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.objects = append(l.objects[:i], l.objects[i+1:]...)
	return true
}

// SetText replaces the text of a note object.
func (l *Layer) SetText(id, text string) error {
	i := l.index(id)
	if i < 0 {
		return notFound(id)
	}
	o := &l.objects[i]
	if !o.Kind.IsNote() || o.Note == nil {
		return apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("object %q of kind %s has no text", id, o.Kind))
	}
	o.Note.Text = text
	return nil
}

// SetStyle replaces the style of a note object.
func (l *Layer) SetStyle(id string, style models.NoteStyle) error {
	i := l.index(id)
	if i < 0 {
		return notFound(id)
	}
	o := &l.objects[i]
	if !o.Kind.IsNote() || o.Note == nil {
		return apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("object %q of kind %s has no style", id, o.Kind))
	}
	o.Note.Style = style
	return nil
}

// BringToFront moves the object to the top of the z-order.
func (l *Layer) BringToFront(id string) error {
	i := l.index(id)
	if i < 0 {
		return notFound(id)
	}
	o := l.objects[i]
	l.objects = append(append(l.objects[:i], l.objects[i+1:]...), o)
	return nil
}

// TopmostAt returns the id of the highest object under p.
func (l *Layer) TopmostAt(p models.Point) (string, bool) {
	for i := len(l.objects) - 1; i >= 0; i-- {
		if HitTest(l.objects[i], p) {
			return l.objects[i].ID, true
		}
	}
	return "", false
}
