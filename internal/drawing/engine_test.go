package drawing

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhsiao/daycanvas/internal/models"
)

func pt(x, y float64) models.Point { return models.Point{X: x, Y: y} }

func newEngine(t *testing.T, opts ...Option) (*Engine, *[][]models.Stroke) {
	t.Helper()
	var changes [][]models.Stroke
	opts = append(opts, WithOnChange(func(s []models.Stroke) {
		changes = append(changes, s)
	}))
	e := NewEngine(NewSurface(100, 100), opts...)
	e.SetEnabled(true)
	return e, &changes
}

func draw(e *Engine, points ...models.Point) models.Stroke {
	e.BeginStroke(points[0])
	for _, p := range points[1:] {
		e.ExtendStroke(p)
	}
	s, _ := e.EndStroke()
	return s
}

func TestEngine_disabledIgnoresInput(t *testing.T) {
	e := NewEngine(NewSurface(10, 10))
	assert.False(t, e.BeginStroke(pt(1, 1)))
	assert.False(t, e.ExtendStroke(pt(2, 2)))
	_, ok := e.EndStroke()
	assert.False(t, ok)
	assert.Empty(t, e.Strokes())
}

func TestEngine_tapPaintsDot(t *testing.T) {
	e, changes := newEngine(t)
	e.SetTool(Tool{Color: "#ff0000", Size: 6, Mode: models.ModePen})

	require.True(t, e.BeginStroke(pt(50, 50)))
	assert.True(t, e.Capturing())
	assert.Equal(t, uint8(0xff), e.Surface().At(50, 50).A, "dot must be visible before release")

	s, ok := e.EndStroke()
	require.True(t, ok)
	assert.False(t, e.Capturing())
	assert.Len(t, s.Points, 1)
	assert.Equal(t, 100, s.CanvasWidth)
	assert.Len(t, *changes, 1)

	px := e.Surface().At(50, 50)
	assert.Equal(t, uint8(0xff), px.R)
	assert.Equal(t, uint8(0), px.G)
}

func TestEngine_secondBeginWhileCapturing(t *testing.T) {
	e, _ := newEngine(t)
	require.True(t, e.BeginStroke(pt(1, 1)))
	assert.False(t, e.BeginStroke(pt(5, 5)))
}

func TestEngine_strokeKeepsStartingTool(t *testing.T) {
	e, _ := newEngine(t)
	e.SetTool(Tool{Color: "#00ff00", Size: 4, Mode: models.ModePen})
	e.BeginStroke(pt(10, 10))
	e.SetTool(Tool{Color: "#0000ff", Size: 20, Mode: models.ModeEraser})
	e.ExtendStroke(pt(20, 10))
	s, _ := e.EndStroke()

	assert.Equal(t, "#00ff00", s.Color)
	assert.Equal(t, 4.0, s.Size)
	assert.Equal(t, models.ModePen, s.Mode)
}

func TestEngine_undoSequence(t *testing.T) {
	e, changes := newEngine(t)
	a := draw(e, pt(10, 10), pt(40, 10))
	b := draw(e, pt(10, 60), pt(40, 60))

	assert.Equal(t, []models.Stroke{a, b}, e.Strokes())

	require.True(t, e.UndoLast())
	assert.Equal(t, []models.Stroke{a}, e.Strokes())
	assert.Zero(t, e.Surface().At(25, 60).A, "undone stroke must be gone from the surface")
	assert.NotZero(t, e.Surface().At(25, 10).A)

	require.True(t, e.UndoLast())
	assert.Empty(t, e.Strokes())

	assert.False(t, e.UndoLast())
	assert.Empty(t, e.Strokes())
	assert.Len(t, *changes, 4, "two commits and two undos")
}

func TestEngine_clearAll(t *testing.T) {
	e, changes := newEngine(t)
	draw(e, pt(10, 10), pt(90, 90))
	e.ClearAll()

	assert.Empty(t, e.Strokes())
	assert.Empty(t, (*changes)[len(*changes)-1])
	for _, v := range e.Surface().Image().Pix {
		require.Zero(t, v)
	}
}

func TestEngine_eraserPunchesTransparency(t *testing.T) {
	e, _ := newEngine(t)
	e.SetTool(Tool{Color: "#123456", Size: 10, Mode: models.ModePen})
	draw(e, pt(10, 50), pt(90, 50))
	require.Equal(t, uint8(0xff), e.Surface().At(50, 50).A)

	e.SetTool(Tool{Color: "#ff0000", Size: 10, Mode: models.ModeEraser})
	draw(e, pt(50, 20), pt(50, 80))

	assert.Zero(t, e.Surface().At(50, 50).A)
	assert.Equal(t, uint8(0xff), e.Surface().At(20, 50).A)
	assert.Zero(t, e.Surface().At(50, 25).A, "eraser never paints its colour")
}

func TestEngine_interleavedModesReplayPerStroke(t *testing.T) {
	strokes := []models.Stroke{
		{Points: []models.Point{pt(10, 50), pt(90, 50)}, Color: "#000000", Size: 10, Mode: models.ModePen},
		{Points: []models.Point{pt(50, 20), pt(50, 80)}, Color: "#000000", Size: 10, Mode: models.ModeEraser},
		{Points: []models.Point{pt(50, 50)}, Color: "#0000ff", Size: 4, Mode: models.ModePen},
	}
	e, changes := newEngine(t)
	e.Load(strokes)

	assert.Empty(t, *changes, "loading never persists")
	px := e.Surface().At(50, 50)
	assert.Equal(t, uint8(0xff), px.A)
	assert.Equal(t, uint8(0xff), px.B)
	assert.Zero(t, e.Surface().At(50, 45).A)
	assert.Equal(t, uint8(0xff), e.Surface().At(20, 50).A)
}

func TestEngine_replayDeterministic(t *testing.T) {
	strokes := []models.Stroke{
		{Points: []models.Point{pt(3.5, 7.25), pt(60.1, 80.9), pt(90, 12)}, Color: "#aa3366", Size: 7, Mode: models.ModePen},
		{Points: []models.Point{pt(40, 40), pt(45.5, 70)}, Color: "#000", Size: 12, Mode: models.ModeEraser},
		{Points: []models.Point{pt(70, 70)}, Color: "#22cc88", Size: 9, Mode: models.ModePen},
	}
	e, _ := newEngine(t)

	e.Replay(strokes)
	first := e.Surface().Image()
	e.Replay(strokes)
	second := e.Surface().Image()

	assert.Equal(t, first.Pix, second.Pix)
	assert.NotEqual(t, make([]byte, len(first.Pix)), first.Pix)
}

func TestEngine_rescalePolicy(t *testing.T) {
	s := models.Stroke{
		Points:       []models.Point{pt(50, 50)},
		Color:        "#000000",
		Size:         4,
		Mode:         models.ModePen,
		CanvasWidth:  100,
		CanvasHeight: 100,
	}

	abs := NewEngine(NewSurface(200, 200))
	abs.Load([]models.Stroke{s})
	assert.NotZero(t, abs.Surface().At(50, 50).A)
	assert.Zero(t, abs.Surface().At(100, 100).A)

	scaled := NewEngine(NewSurface(200, 200), WithReplayPolicy(ReplayRescale))
	scaled.Load([]models.Stroke{s})
	assert.Zero(t, scaled.Surface().At(50, 50).A)
	assert.NotZero(t, scaled.Surface().At(100, 100).A)
}

func TestEngine_resizeRepaints(t *testing.T) {
	e, _ := newEngine(t)
	draw(e, pt(10, 10), pt(30, 10))
	e.Resize(40, 40)

	assert.Equal(t, 40, e.Surface().Width())
	assert.NotZero(t, e.Surface().At(20, 10).A)
	assert.Len(t, e.Strokes(), 1)
}

func TestEngine_resizeMidStrokeCommits(t *testing.T) {
	e, changes := newEngine(t)
	e.BeginStroke(pt(10, 10))
	e.ExtendStroke(pt(30, 10))
	e.Resize(60, 60)

	assert.False(t, e.Capturing())
	require.Len(t, e.Strokes(), 1)
	assert.Equal(t, []models.Point{pt(10, 10), pt(30, 10)}, e.Strokes()[0].Points)
	assert.Len(t, *changes, 1)
	assert.NotZero(t, e.Surface().At(20, 10).A)
}

func TestEngine_disableMidStrokeCommits(t *testing.T) {
	e, changes := newEngine(t)
	e.BeginStroke(pt(1, 1))
	e.ExtendStroke(pt(9, 9))
	e.SetEnabled(false)

	assert.False(t, e.Capturing())
	assert.Len(t, e.Strokes(), 1)
	assert.Len(t, *changes, 1)
}

func TestParseReplayPolicy(t *testing.T) {
	p, err := ParseReplayPolicy("Rescale")
	require.NoError(t, err)
	assert.Equal(t, ReplayRescale, p)

	p, err = ParseReplayPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ReplayAbsolute, p)

	_, err = ParseReplayPolicy("stretch")
	assert.Error(t, err)
}

func TestSurface_PNGAndThumbnail(t *testing.T) {
	e, _ := newEngine(t)
	draw(e, pt(0, 0), pt(100, 100))

	var buf bytes.Buffer
	require.NoError(t, e.Surface().PNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())

	thumb := e.Surface().Thumbnail(25)
	assert.Equal(t, 25, thumb.Bounds().Dx())
	assert.Equal(t, 25, thumb.Bounds().Dy())
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, uint8(0xff), parseColor("#ff0000").R)
	assert.Equal(t, uint8(0xff), parseColor("#0f0").G)
	assert.Equal(t, uint8(0xff), parseColor("not-a-colour").A)
	assert.Zero(t, parseColor("not-a-colour").R)
}
