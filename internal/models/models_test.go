// Package models provides unit tests for data model definitions.
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasObject_legacyRecordDecodes(t *testing.T) {
	raw := `{"id":"1767312000000","type":"postit","content":"Write something...",
		"style":{"backgroundColor":"#fef3c7","color":"#000000","fontSize":18},
		"x":565,"y":325,"scale":1,"rotation":0,"width":150,"height":150}`

	var obj CanvasObject
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))

	assert.Equal(t, KindPostit, obj.Kind)
	assert.Nil(t, obj.Media)
	require.NotNil(t, obj.Note)
	assert.Equal(t, "Write something...", obj.Note.Text)
	assert.Equal(t, "#fef3c7", obj.Note.Style.BackgroundColor)
	assert.Equal(t, "#000000", obj.Note.Style.TextColor)
	assert.Equal(t, Point{X: 565, Y: 325}, obj.Position)
	assert.NoError(t, obj.Validate())
}

func TestCanvasObject_missingScaleAndSize(t *testing.T) {
	var obj CanvasObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"image","src":"data:image/png;base64,AA","x":1,"y":2}`), &obj))

	assert.Equal(t, 1.0, obj.Scale)
	assert.Equal(t, Size{Width: 96, Height: 96}, obj.Size)
	require.NotNil(t, obj.Media)
	assert.Equal(t, "data:image/png;base64,AA", obj.Media.Ref)
}

func TestCanvasObject_unknownKindRejected(t *testing.T) {
	var obj CanvasObject
	assert.Error(t, json.Unmarshal([]byte(`{"id":"a","type":"hologram"}`), &obj))
}

func TestCanvasObject_Validate(t *testing.T) {
	base := func() CanvasObject {
		return CanvasObject{
			ID: "a", Kind: KindImage, Scale: 1,
			Size:  Size{Width: 120, Height: 80},
			Media: &MediaBody{Ref: "https://example.com/a.png"},
		}
	}
	tests := []struct {
		name   string
		mutate func(o *CanvasObject)
		ok     bool
	}{
		{"valid", func(o *CanvasObject) {}, true},
		{"missing ref", func(o *CanvasObject) { o.Media = nil }, false},
		{"media with note", func(o *CanvasObject) { o.Note = &NoteBody{} }, false},
		{"note kind without body", func(o *CanvasObject) { o.Kind = KindText; o.Media = nil }, false},
		{"note kind with body", func(o *CanvasObject) { o.Kind = KindText; o.Media = nil; o.Note = &NoteBody{Text: "hi"} }, true},
		{"scale too small", func(o *CanvasObject) { o.Scale = 0.1 }, false},
		{"scale too large", func(o *CanvasObject) { o.Scale = 3.5 }, false},
		{"zero width", func(o *CanvasObject) { o.Size.Width = 0 }, false},
		{"empty id", func(o *CanvasObject) { o.ID = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := base()
			tt.mutate(&o)
			if tt.ok {
				assert.NoError(t, o.Validate())
			} else {
				assert.Error(t, o.Validate())
			}
		})
	}
}

func TestCanvasObject_CloneIsDeep(t *testing.T) {
	o := CanvasObject{ID: "a", Kind: KindText, Note: &NoteBody{Text: "hello"}}
	c := o.Clone()
	c.Note.Text = "changed"
	assert.Equal(t, "hello", o.Note.Text)
}

func TestDayContent_legacyShape(t *testing.T) {
	raw := `{"date":"2026-03-14","stickers":[],"drawings":[{"points":[{"x":1,"y":2}],"color":"#ff0000","size":5,"mode":"pen"}]}`
	var d DayContent
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	d.Normalize()

	assert.Equal(t, "2026-03-14", d.Date)
	assert.Empty(t, d.Objects)
	require.Len(t, d.Strokes, 1)
	assert.Equal(t, ModePen, d.Strokes[0].Mode)
	assert.NoError(t, d.Strokes[0].Validate())
}

func TestEmptyDayContent(t *testing.T) {
	d := EmptyDayContent("2026-01-01")
	assert.NotNil(t, d.Objects)
	assert.NotNil(t, d.Strokes)
	assert.True(t, d.IsEmpty())
}

func TestStroke_Validate(t *testing.T) {
	s := Stroke{Points: []Point{{X: 1, Y: 1}}, Size: 5, Mode: ModeEraser}
	assert.NoError(t, s.Validate())

	s.Points = nil
	assert.Error(t, s.Validate())

	s.Points = []Point{{}}
	s.Size = 0
	assert.Error(t, s.Validate())

	s.Size = 1
	s.Mode = "marker"
	assert.Error(t, s.Validate())
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2026-02-28"))
	assert.Error(t, ValidateDate("2026-02-30"))
	assert.Error(t, ValidateDate("2026/02/01"))
	assert.Error(t, ValidateDate(""))
}

func TestJournalEvent_Validate(t *testing.T) {
	e := JournalEvent{ID: "1", EventType: EventSoSo, Date: "2026-05-01"}
	assert.NoError(t, e.Validate())
	e.EventType = "bored"
	assert.Error(t, e.Validate())
}

func TestMediaKind_ObjectKind(t *testing.T) {
	assert.Equal(t, KindVideo, MediaVideo.ObjectKind())
	assert.Equal(t, KindImage, MediaImage.ObjectKind())
}
