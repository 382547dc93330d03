package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// ObjectKind is the variant of a CanvasObject.
type ObjectKind string

const (
	KindImage  ObjectKind = "image"
	KindVideo  ObjectKind = "video"
	KindText   ObjectKind = "text"
	KindPostit ObjectKind = "postit"
)

// Scale limits for placed objects.
const (
	MinScale = 0.2
	MaxScale = 3.0
)

// legacyObjectSide is the box side assumed for records written without a size.
const legacyObjectSide = 96

// Valid reports whether k is a known kind.
func (k ObjectKind) Valid() bool {
	return k.IsMedia() || k.IsNote()
}

// IsMedia reports whether objects of this kind reference external media.
func (k ObjectKind) IsMedia() bool {
	return k == KindImage || k == KindVideo
}

// IsNote reports whether objects of this kind carry editable text.
func (k ObjectKind) IsNote() bool {
	return k == KindText || k == KindPostit
}

// MediaBody is the payload of image and video objects.
type MediaBody struct {
	// Ref is a data URI or URL. It is never resolved by the core.
	Ref string
}

// NoteStyle is the optional styling of text and post-it objects.
type NoteStyle struct {
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	TextColor       string  `json:"color,omitempty"`
	FontSize        float64 `json:"fontSize,omitempty"`
	FontFamily      string  `json:"fontFamily,omitempty"`
}

// NoteBody is the payload of text and post-it objects.
type NoteBody struct {
	Text  string
	Style NoteStyle
}

// CanvasObject is a decorative element placed on one day's canvas.
//
// Exactly one of Media and Note is set, matching Kind. Position is the
// top-left corner of the unrotated, unscaled box; scale and rotation are
// applied around the box centre at render time only.
type CanvasObject struct {
	ID       string
	Kind     ObjectKind
	Position Point
	Scale    float64
	Rotation float64 // degrees, not normalised
	Size     Size
	Media    *MediaBody
	Note     *NoteBody
}

// Validate checks the variant invariants of the object.
func (o *CanvasObject) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("canvas object: empty id")
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("canvas object %s: unknown kind %q", o.ID, o.Kind)
	}
	if o.Kind.IsMedia() {
		if o.Media == nil || o.Media.Ref == "" {
			return fmt.Errorf("canvas object %s: %s requires a media reference", o.ID, o.Kind)
		}
		if o.Note != nil {
			return fmt.Errorf("canvas object %s: %s cannot carry text", o.ID, o.Kind)
		}
	} else {
		if o.Note == nil {
			return fmt.Errorf("canvas object %s: %s requires a note body", o.ID, o.Kind)
		}
		if o.Media != nil {
			return fmt.Errorf("canvas object %s: %s cannot carry media", o.ID, o.Kind)
		}
	}
	if !(o.Size.Width > 0) || !(o.Size.Height > 0) {
		return fmt.Errorf("canvas object %s: size must be positive, got %vx%v", o.ID, o.Size.Width, o.Size.Height)
	}
	if math.IsNaN(o.Scale) || o.Scale < MinScale || o.Scale > MaxScale {
		return fmt.Errorf("canvas object %s: scale %v outside [%v, %v]", o.ID, o.Scale, MinScale, MaxScale)
	}
	return nil
}

// Clone returns a deep copy of o.
func (o CanvasObject) Clone() CanvasObject {
	if o.Media != nil {
		m := *o.Media
		o.Media = &m
	}
	if o.Note != nil {
		n := *o.Note
		o.Note = &n
	}
	return o
}

// canvasObjectJSON is the persisted record shape. It is flat so that records
// written by the browser version of the app decode unchanged.
type canvasObjectJSON struct {
	ID       string     `json:"id"`
	Type     ObjectKind `json:"type"`
	Src      string     `json:"src,omitempty"`
	Content  *string    `json:"content,omitempty"`
	Style    *NoteStyle `json:"style,omitempty"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Scale    float64    `json:"scale"`
	Rotation float64    `json:"rotation"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
}

// MarshalJSON implements json.Marshaler.
func (o CanvasObject) MarshalJSON() ([]byte, error) {
	w := canvasObjectJSON{
		ID:       o.ID,
		Type:     o.Kind,
		X:        o.Position.X,
		Y:        o.Position.Y,
		Scale:    o.Scale,
		Rotation: o.Rotation,
		Width:    o.Size.Width,
		Height:   o.Size.Height,
	}
	if o.Media != nil {
		w.Src = o.Media.Ref
	}
	if o.Note != nil {
		text := o.Note.Text
		style := o.Note.Style
		w.Content = &text
		w.Style = &style
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *CanvasObject) UnmarshalJSON(data []byte) error {
	var w canvasObjectJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = CanvasObject{
		ID:       w.ID,
		Kind:     w.Type,
		Position: Point{X: w.X, Y: w.Y},
		Scale:    w.Scale,
		Rotation: w.Rotation,
		Size:     Size{Width: w.Width, Height: w.Height},
	}
	// Older records may omit scale and size.
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Size.Width == 0 {
		o.Size.Width = legacyObjectSide
	}
	if o.Size.Height == 0 {
		o.Size.Height = legacyObjectSide
	}
	switch {
	case w.Type.IsMedia():
		o.Media = &MediaBody{Ref: w.Src}
	case w.Type.IsNote():
		body := &NoteBody{}
		if w.Content != nil {
			body.Text = *w.Content
		}
		if w.Style != nil {
			body.Style = *w.Style
		}
		o.Note = body
	default:
		return fmt.Errorf("canvas object %s: unknown kind %q", w.ID, w.Type)
	}
	return nil
}
