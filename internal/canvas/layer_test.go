package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/models"
)

func note(t *testing.T, id string, at models.Point) models.CanvasObject {
	t.Helper()
	o, err := CreatePreset(models.KindPostit, at)
	require.NoError(t, err)
	o.ID = id
	return o
}

func ids(objs []models.CanvasObject) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.ID
	}
	return out
}

func TestLayer_AddAndOrder(t *testing.T) {
	l := NewLayer(nil)
	require.NoError(t, l.Add(note(t, "a", models.Point{})))
	require.NoError(t, l.Add(note(t, "b", models.Point{})))

	err := l.Add(note(t, "a", models.Point{}))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalid), "duplicate id must be rejected")

	bad := note(t, "c", models.Point{})
	bad.Scale = 9
	assert.Error(t, l.Add(bad))

	assert.Equal(t, []string{"a", "b"}, ids(l.Objects()))
}

func TestLayer_ObjectsReturnsCopies(t *testing.T) {
	l := NewLayer([]models.CanvasObject{note(t, "a", models.Point{})})
	objs := l.Objects()
	objs[0].Note.Text = "mutated"

	got, ok := l.Find("a")
	require.True(t, ok)
	assert.Equal(t, "Write something...", got.Note.Text)
}

func TestLayer_UpdateKeepsInvariants(t *testing.T) {
	l := NewLayer([]models.CanvasObject{note(t, "a", models.Point{})})
	require.NoError(t, l.Update("a", func(o *models.CanvasObject) {
		o.ID = "hijack"
		o.Kind = models.KindImage
		o.Size = models.Size{Width: 1, Height: 1}
		o.Scale = 10
		o.Rotation = 720
	}))

	got, ok := l.Find("a")
	require.True(t, ok)
	assert.Equal(t, models.KindPostit, got.Kind)
	assert.Equal(t, models.Size{Width: 150, Height: 150}, got.Size)
	assert.Equal(t, 3.0, got.Scale)
	assert.Equal(t, 720.0, got.Rotation)

	assert.True(t, apperrors.Is(l.Update("zzz", func(*models.CanvasObject) {}), apperrors.ErrRecordNotFound))
}

func TestLayer_RemoveAndSetText(t *testing.T) {
	l := NewLayer([]models.CanvasObject{note(t, "a", models.Point{}), note(t, "b", models.Point{})})

	require.NoError(t, l.SetText("b", "groceries"))
	got, _ := l.Find("b")
	assert.Equal(t, "groceries", got.Note.Text)

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))
	assert.Equal(t, []string{"b"}, ids(l.Objects()))

	img, err := CreateFromMedia("x.png", models.KindImage, models.Point{}, 1, 1)
	require.NoError(t, err)
	require.NoError(t, l.Add(img))
	assert.True(t, apperrors.Is(l.SetText(img.ID, "nope"), apperrors.ErrInvalid))
	assert.True(t, apperrors.Is(l.SetStyle(img.ID, models.NoteStyle{}), apperrors.ErrInvalid))
}

func TestLayer_BringToFrontAndTopmost(t *testing.T) {
	l := NewLayer([]models.CanvasObject{
		note(t, "a", models.Point{X: 100, Y: 100}),
		note(t, "b", models.Point{X: 120, Y: 120}),
		note(t, "c", models.Point{X: 900, Y: 900}),
	})

	top, ok := l.TopmostAt(models.Point{X: 110, Y: 110})
	require.True(t, ok)
	assert.Equal(t, "b", top)

	require.NoError(t, l.BringToFront("a"))
	assert.Equal(t, []string{"b", "c", "a"}, ids(l.Objects()))

	top, _ = l.TopmostAt(models.Point{X: 110, Y: 110})
	assert.Equal(t, "a", top)

	_, ok = l.TopmostAt(models.Point{X: 5000, Y: 5000})
	assert.False(t, ok)
}
