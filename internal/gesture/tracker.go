package gesture

import (
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// Tracker owns the single active gesture of a day view.
type Tracker struct {
	target Target
	active Gesture
}

// NewTracker creates an idle tracker over target.
func NewTracker(target Target) *Tracker {
	return &Tracker{target: target}
}

// Active reports whether a gesture is in progress.
func (tr *Tracker) Active() bool { return tr.active != nil }

// Start presses g on the object with the given id. It fails while another
// gesture is active, for unknown objects, and when g declines the press.
func (tr *Tracker) Start(g Gesture, id string, ev PointerEvent) error {
	if tr.active != nil {
		return apperrors.New(apperrors.ErrInvalid, "another gesture is already in progress")
	}
	o, ok := tr.target.Find(id)
	if !ok {
		return apperrors.New(apperrors.ErrRecordNotFound, "no object "+id+" to manipulate")
	}
	if !g.Press(o, ev) {
		return apperrors.New(apperrors.ErrInvalid, "gesture declined the press")
	}
	tr.active = g
	return nil
}

// Dispatch feeds a pointer event to the active gesture. An Up event releases
// it; the returned id is non-empty when the release changed the object.
func (tr *Tracker) Dispatch(ev PointerEvent) (string, error) {
	if tr.active == nil {
		return "", nil
	}
	switch ev.Type {
	case Move:
		tr.active.Drag(ev)
	case Up:
		tr.active.Drag(ev)
		return tr.Release()
	}
	return "", nil
}

// Frame applies the coalesced pointer position to the target.
func (tr *Tracker) Frame() error {
	if tr.active == nil {
		return nil
	}
	return tr.active.Frame(tr.target)
}

// Release ends the active gesture. The returned id is non-empty when the
// object changed and must be persisted.
func (tr *Tracker) Release() (string, error) {
	g := tr.active
	if g == nil {
		return "", nil
	}
	tr.active = nil
	changed, err := g.Release(tr.target)
	if err != nil || !changed {
		return "", err
	}
	return g.ObjectID(), nil
}

// Cancel drops the active gesture without applying pending samples. Updates
// already applied by Frame stay in place.
func (tr *Tracker) Cancel() {
	tr.active = nil
}

// Current returns the object the active gesture manipulates.
func (tr *Tracker) Current() (models.CanvasObject, bool) {
	if tr.active == nil {
		return models.CanvasObject{}, false
	}
	return tr.target.Find(tr.active.ObjectID())
}
