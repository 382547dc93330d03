package canvas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/models"
)

const eps = 1e-9

func assertPoint(t *testing.T, want, got models.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-6, "y")
}

func TestClampScale(t *testing.T) {
	inputs := []float64{-1, 0, 0.1, 0.2, 1, 2.999, 3, 7, math.Inf(1), math.Inf(-1)}
	for _, s := range inputs {
		once := ClampScale(s)
		assert.Equal(t, once, ClampScale(once), "clamp must be idempotent for %v", s)
		assert.GreaterOrEqual(t, once, models.MinScale)
		assert.LessOrEqual(t, once, models.MaxScale)
	}
	assert.Equal(t, 1.0, ClampScale(math.NaN()))
	assert.Equal(t, 0.2, ClampScale(0.1))
	assert.Equal(t, 3.0, ClampScale(7))
}

func TestCreatePreset_textCenteredOnAnchor(t *testing.T) {
	o, err := CreatePreset(models.KindText, models.Point{X: 500, Y: 300})
	require.NoError(t, err)

	assert.Equal(t, models.Point{X: 400, Y: 275}, o.Position)
	assert.Equal(t, models.Size{Width: 200, Height: 50}, o.Size)
	assert.Equal(t, 1.0, o.Scale)
	assert.Zero(t, o.Rotation)
	require.NotNil(t, o.Note)
	assert.Equal(t, "Double tap to edit", o.Note.Text)
	assert.Equal(t, 24.0, o.Note.Style.FontSize)
	assert.NoError(t, o.Validate())
}

func TestCreatePreset_postit(t *testing.T) {
	o, err := CreatePreset(models.KindPostit, models.Point{X: 100, Y: 100})
	require.NoError(t, err)
	assert.Equal(t, models.Point{X: 25, Y: 25}, o.Position)
	assert.Equal(t, "#fef3c7", o.Note.Style.BackgroundColor)
}

func TestCreatePreset_rejectsMediaKinds(t *testing.T) {
	_, err := CreatePreset(models.KindImage, models.Point{})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalid))
}

func TestCreateFromMedia(t *testing.T) {
	tests := []struct {
		name     string
		w, h     float64
		wantSize models.Size
	}{
		{"wide", 400, 200, models.Size{Width: 120, Height: 60}},
		{"tall", 100, 400, models.Size{Width: 30, Height: 120}},
		{"square", 50, 50, models.Size{Width: 120, Height: 120}},
		{"undecoded", 0, 0, models.Size{Width: 120, Height: 120}},
		{"negative", -3, 10, models.Size{Width: 120, Height: 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor := models.Point{X: 640, Y: 400}
			o, err := CreateFromMedia("https://example.com/cat.png", "", anchor, tt.w, tt.h)
			require.NoError(t, err)

			assert.Equal(t, models.KindImage, o.Kind)
			assert.InDelta(t, tt.wantSize.Width, o.Size.Width, eps)
			assert.InDelta(t, tt.wantSize.Height, o.Size.Height, eps)
			assertPoint(t, anchor, Center(o))
			assert.NoError(t, o.Validate())
		})
	}
}

func TestCreateFromMedia_deterministicGeometry(t *testing.T) {
	a, err := CreateFromMedia("data:image/png;base64,AA", models.KindImage, models.Point{X: 3, Y: 4}, 16, 9)
	require.NoError(t, err)
	b, err := CreateFromMedia("data:image/png;base64,AA", models.KindImage, models.Point{X: 3, Y: 4}, 16, 9)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	b.ID = a.ID
	assert.Equal(t, a, b)
}

func TestCreateFromMedia_errors(t *testing.T) {
	_, err := CreateFromMedia("", models.KindImage, models.Point{}, 1, 1)
	assert.Error(t, err)
	_, err = CreateFromMedia("x.png", models.KindText, models.Point{}, 1, 1)
	assert.Error(t, err)
}

func TestDetectMediaKind(t *testing.T) {
	assert.Equal(t, models.KindVideo, DetectMediaKind("data:video/mp4;base64,AAAA"))
	assert.Equal(t, models.KindVideo, DetectMediaKind("https://cdn.example.com/clip.MP4"))
	assert.Equal(t, models.KindImage, DetectMediaKind("data:image/jpeg;base64,AAAA"))
	assert.Equal(t, models.KindImage, DetectMediaKind("https://robohash.org/cat.png?set=set4"))
}

func TestBoundingBoxIgnoresTransform(t *testing.T) {
	o := models.CanvasObject{
		Position: models.Point{X: 10, Y: 20},
		Size:     models.Size{Width: 100, Height: 50},
		Scale:    2.5,
		Rotation: 45,
	}
	b := BoundingBox(o)
	assert.Equal(t, models.Point{X: 10, Y: 20}, b.Min)
	assert.Equal(t, models.Point{X: 110, Y: 70}, b.Max)
	assert.Equal(t, models.Point{X: 60, Y: 45}, Center(o))
}

func TestTransform_keepsCenterFixed(t *testing.T) {
	o := models.CanvasObject{
		Position: models.Point{X: 10, Y: 20},
		Size:     models.Size{Width: 100, Height: 50},
		Scale:    1.7,
		Rotation: 123,
	}
	assertPoint(t, Center(o), Transform(o).Apply(Center(o)))
}

func TestTransform_rotate90(t *testing.T) {
	o := models.CanvasObject{
		Position: models.Point{X: 0, Y: 0},
		Size:     models.Size{Width: 100, Height: 100},
		Scale:    1,
		Rotation: 90,
	}
	// The top-left corner swings to the top-right on screen.
	corners := Corners(o)
	assertPoint(t, models.Point{X: 100, Y: 0}, corners[0])
}

func TestTransform_scaleDoublesExtent(t *testing.T) {
	o := models.CanvasObject{
		Position: models.Point{X: 0, Y: 0},
		Size:     models.Size{Width: 100, Height: 40},
		Scale:    2,
	}
	vb := VisualBounds(o)
	assert.InDelta(t, 200, vb.Width(), 1e-6)
	assert.InDelta(t, 80, vb.Height(), 1e-6)
	assertPoint(t, models.Point{X: -50, Y: -20}, vb.Min)
}

func TestAffine_Invert(t *testing.T) {
	m := Translate(5, -3).Mul(Rotate(30)).Mul(Scale(2))
	inv, ok := m.Invert()
	require.True(t, ok)
	p := models.Point{X: 7, Y: 11}
	assertPoint(t, p, inv.Apply(m.Apply(p)))

	_, ok = Scale(0).Invert()
	assert.False(t, ok)
}

func TestHitTest(t *testing.T) {
	o := models.CanvasObject{
		Position: models.Point{X: 0, Y: 0},
		Size:     models.Size{Width: 100, Height: 10},
		Scale:    1,
		Rotation: 90,
	}
	// Rotated upright around (50, 5): occupies x in [45, 55], y in [-45, 55].
	assert.True(t, HitTest(o, models.Point{X: 50, Y: -40}))
	assert.False(t, HitTest(o, models.Point{X: 90, Y: 5}))
}
