package models

import (
	"fmt"
	"time"
)

// DateLayout is the key format of a calendar day.
const DateLayout = "2006-01-02"

// ValidateDate returns an error unless s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return nil
}

// DayContent is the persisted bundle of objects and strokes for one date.
// Objects are in z-order (last on top); strokes are in replay order.
type DayContent struct {
	Date    string         `json:"date"`
	Objects []CanvasObject `json:"stickers"`
	Strokes []Stroke       `json:"drawings"`
}

// EmptyDayContent returns the aggregate of a date that has never been saved.
func EmptyDayContent(date string) DayContent {
	return DayContent{
		Date:    date,
		Objects: []CanvasObject{},
		Strokes: []Stroke{},
	}
}

// Normalize replaces nil slices with empty ones.
func (d *DayContent) Normalize() {
	if d.Objects == nil {
		d.Objects = []CanvasObject{}
	}
	if d.Strokes == nil {
		d.Strokes = []Stroke{}
	}
}

// Clone returns a deep copy of d.
func (d DayContent) Clone() DayContent {
	objects := make([]CanvasObject, len(d.Objects))
	for i, o := range d.Objects {
		objects[i] = o.Clone()
	}
	return DayContent{
		Date:    d.Date,
		Objects: objects,
		Strokes: CloneStrokes(d.Strokes),
	}
}

// IsEmpty reports whether the day holds no objects and no strokes.
func (d DayContent) IsEmpty() bool {
	return len(d.Objects) == 0 && len(d.Strokes) == 0
}
