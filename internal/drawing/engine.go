package drawing

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// ReplayPolicy decides how strokes captured on a surface of a different size
// are replayed.
type ReplayPolicy string

const (
	// ReplayAbsolute replays points at their stored pixel coordinates.
	ReplayAbsolute ReplayPolicy = "absolute"
	// ReplayRescale maps points from the capture surface onto the current one.
	ReplayRescale ReplayPolicy = "rescale"
)

// ParseReplayPolicy validates a policy name.
func ParseReplayPolicy(s string) (ReplayPolicy, error) {
	switch p := ReplayPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ReplayAbsolute, ReplayRescale:
		return p, nil
	case "":
		return ReplayAbsolute, nil
	default:
		return "", fmt.Errorf("unknown replay policy %q", s)
	}
}

// Tool is the pen configuration used for the next stroke.
type Tool struct {
	Color string
	Size  float64
	Mode  models.StrokeMode
}

// DefaultTool is a thin black pen.
var DefaultTool = Tool{Color: "#000000", Size: 3, Mode: models.ModePen}

// Option configures an Engine.
type Option func(*Engine)

// WithReplayPolicy sets the replay policy. The default is ReplayAbsolute.
func WithReplayPolicy(p ReplayPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithOnChange registers a hook called with a copy of the history after every
// commit, undo and clear. The engine never waits on or inspects its outcome.
func WithOnChange(fn func(strokes []models.Stroke)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine captures strokes from pointer input and keeps the surface in sync
// with the committed history. It is Idle until BeginStroke succeeds and
// Capturing until EndStroke.
//
// Engine is not safe for concurrent use.
type Engine struct {
	surface  *Surface
	policy   ReplayPolicy
	onChange func([]models.Stroke)

	enabled bool
	tool    Tool
	strokes []models.Stroke
	current *models.Stroke
}

// NewEngine creates an idle engine painting onto surface.
func NewEngine(surface *Surface, opts ...Option) *Engine {
	e := &Engine{
		surface: surface,
		policy:  ReplayAbsolute,
		tool:    DefaultTool,
		strokes: []models.Stroke{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Surface returns the surface the engine paints onto.
func (e *Engine) Surface() *Surface { return e.surface }

// Enabled reports whether drawing mode is on.
func (e *Engine) Enabled() bool { return e.enabled }

// SetEnabled toggles drawing mode. Turning it off mid-stroke commits the
// stroke captured so far.
func (e *Engine) SetEnabled(on bool) {
	if !on && e.current != nil {
		e.EndStroke()
	}
	e.enabled = on
}

// Tool returns the current pen configuration.
func (e *Engine) Tool() Tool { return e.tool }

// SetTool changes the pen for subsequent strokes. A stroke in progress keeps
// the configuration it started with.
func (e *Engine) SetTool(t Tool) {
	if !t.Mode.Valid() {
		t.Mode = models.ModePen
	}
	if !(t.Size > 0) {
		t.Size = DefaultTool.Size
	}
	e.tool = t
}

// Capturing reports whether a stroke is in progress.
func (e *Engine) Capturing() bool { return e.current != nil }

// BeginStroke starts a stroke at p and paints a dot there. It does nothing
// unless drawing is enabled and the engine is idle.
func (e *Engine) BeginStroke(p models.Point) bool {
	if !e.enabled || e.current != nil {
		return false
	}
	e.current = &models.Stroke{
		Points:       []models.Point{p},
		Color:        e.tool.Color,
		Size:         e.tool.Size,
		Mode:         e.tool.Mode,
		CanvasWidth:  e.surface.Width(),
		CanvasHeight: e.surface.Height(),
	}
	e.paintShapes([]polygon{disc(p, brushRadius(e.current.Size))}, e.current)
	return true
}

// ExtendStroke appends p to the stroke in progress and paints only the new
// segment.
func (e *Engine) ExtendStroke(p models.Point) bool {
	if e.current == nil {
		return false
	}
	prev := e.current.Points[len(e.current.Points)-1]
	e.current.Points = append(e.current.Points, p)
	e.paintShapes(capsule(prev, p, brushRadius(e.current.Size)), e.current)
	return true
}

// EndStroke commits the stroke in progress and returns to Idle.
func (e *Engine) EndStroke() (models.Stroke, bool) {
	if e.current == nil {
		return models.Stroke{}, false
	}
	s := *e.current
	e.current = nil
	if len(s.Points) == 0 {
		return models.Stroke{}, false
	}
	e.strokes = append(e.strokes, s)
	e.changed()
	return s.Clone(), true
}

// UndoLast drops the most recent committed stroke and repaints the rest.
// With no history, or while capturing, it does nothing and reports false.
func (e *Engine) UndoLast() bool {
	if e.current != nil || len(e.strokes) == 0 {
		return false
	}
	e.strokes = e.strokes[:len(e.strokes)-1]
	e.Replay(e.strokes)
	e.changed()
	return true
}

// ClearAll empties the history and the surface. A stroke in progress is
// discarded.
func (e *Engine) ClearAll() {
	e.current = nil
	e.strokes = []models.Stroke{}
	e.surface.Clear()
	e.changed()
}

// Load replaces the history without notifying the change hook, then repaints.
func (e *Engine) Load(strokes []models.Stroke) {
	e.current = nil
	e.strokes = models.CloneStrokes(strokes)
	e.Replay(e.strokes)
}

// Strokes returns a copy of the committed history.
func (e *Engine) Strokes() []models.Stroke {
	return models.CloneStrokes(e.strokes)
}

// Resize reallocates the surface and repaints the history onto it. A stroke
// in progress is committed first.
func (e *Engine) Resize(width, height int) {
	if e.current != nil {
		e.EndStroke()
	}
	e.surface.Resize(width, height)
	e.Replay(e.strokes)
}

// Replay clears the surface and paints strokes in order, each with its own
// colour, width and mode. It does not touch the history.
func (e *Engine) Replay(strokes []models.Stroke) {
	e.surface.Clear()
	for i := range strokes {
		s := &strokes[i]
		if len(s.Points) == 0 {
			continue
		}
		points, size := e.project(s)
		e.paintShapes(polyline(points, brushRadius(size)), s)
	}
}

// project maps a stored stroke onto the current surface.
func (e *Engine) project(s *models.Stroke) ([]models.Point, float64) {
	if e.policy != ReplayRescale || s.CanvasWidth <= 0 || s.CanvasHeight <= 0 {
		return s.Points, s.Size
	}
	sx := float64(e.surface.Width()) / float64(s.CanvasWidth)
	sy := float64(e.surface.Height()) / float64(s.CanvasHeight)
	if sx == 1 && sy == 1 {
		return s.Points, s.Size
	}
	out := make([]models.Point, len(s.Points))
	for i, p := range s.Points {
		out[i] = models.Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out, s.Size * (sx + sy) / 2
}

func (e *Engine) paintShapes(shapes []polygon, s *models.Stroke) {
	mask := e.surface.rasterize(shapes)
	eraser := s.Mode == models.ModeEraser
	var col color.NRGBA
	if !eraser {
		col = parseColor(s.Color)
	}
	e.surface.paint(mask, col, eraser)
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange(models.CloneStrokes(e.strokes))
	}
}

// parseColor reads a #rgb or #rrggbb colour. Anything else paints black.
func parseColor(s string) color.NRGBA {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		logging.Debug("unparseable stroke colour, using black", map[string]interface{}{
			"color": s,
		})
		return color.NRGBA{A: 0xff}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
