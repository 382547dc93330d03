// Package session binds the object layer, drawing engine and gesture tracker
// of the day currently on screen to its persisted content.
package session

import (
	"context"
	"sync"

	"github.com/kimhsiao/daycanvas/internal/canvas"
	"github.com/kimhsiao/daycanvas/internal/drawing"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/gesture"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// Loader reads the saved content of a date.
type Loader interface {
	Load(ctx context.Context, date string) (models.DayContent, error)
}

// Persister accepts snapshots to write. It must not block on storage.
type Persister interface {
	Submit(content models.DayContent) error
}

// Config holds the interaction tunables of a session.
type Config struct {
	MoveThreshold     float64
	ResizeSensitivity float64
	ReplayPolicy      drawing.ReplayPolicy
}

// DefaultConfig returns the standard interaction tunables.
func DefaultConfig() Config {
	return Config{
		MoveThreshold:     gesture.DefaultMoveThreshold,
		ResizeSensitivity: gesture.DefaultResizeSensitivity,
		ReplayPolicy:      drawing.ReplayAbsolute,
	}
}

// Session is the state of one day view. Every mutation updates memory first
// and then hands a snapshot to the persister; a failed write never rolls the
// in-memory state back.
type Session struct {
	mu sync.Mutex

	loader Loader
	writer Persister
	cfg    Config

	date     string
	gen      uint64
	loading  bool
	loadErr  error // last load of date failed; edits are refused
	selected string

	layer   *canvas.Layer
	engine  *drawing.Engine
	tracker *gesture.Tracker
}

// New creates a session with no active date. The surface is owned by the
// session from here on.
func New(loader Loader, writer Persister, surface *drawing.Surface, cfg Config) *Session {
	s := &Session{
		loader: loader,
		writer: writer,
		cfg:    cfg,
		layer:  canvas.NewLayer(nil),
	}
	s.engine = drawing.NewEngine(surface,
		drawing.WithReplayPolicy(cfg.ReplayPolicy),
		drawing.WithOnChange(func([]models.Stroke) { s.persistLocked() }),
	)
	s.tracker = gesture.NewTracker(s.layer)
	return s
}

// SwitchDate makes date the active day. The previous day's objects, strokes
// and pixels are cleared before the load starts, and a load that resolves
// after a newer SwitchDate is discarded.
func (s *Session) SwitchDate(ctx context.Context, date string) error {
	if err := models.ValidateDate(date); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}

	s.mu.Lock()
	s.finishInteractionsLocked()
	s.gen++
	gen := s.gen
	s.date = date
	s.loading = true
	s.loadErr = nil
	s.selected = ""
	s.layer.Reset(nil)
	s.engine.Load(nil)
	s.mu.Unlock()

	content, err := s.loader.Load(ctx, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		logging.Debug("Discarding stale day load", map[string]interface{}{
			"requested": date,
			"active":    s.date,
		})
		return nil
	}
	s.loading = false
	if err != nil {
		s.loadErr = err
		logging.Error("Failed to load day content", err, map[string]interface{}{
			"date": date,
		})
		return err
	}
	s.layer.Reset(content.Objects)
	s.engine.Load(content.Strokes)
	return nil
}

// Date returns the active date, or "" before the first SwitchDate.
func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Loading reports whether the active date's content is still being read.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Snapshot returns the current content of the active day.
func (s *Session) Snapshot() models.DayContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.DayContent {
	return models.DayContent{
		Date:    s.date,
		Objects: s.layer.Objects(),
		Strokes: s.engine.Strokes(),
	}
}

// Surface returns the raster the strokes are painted on.
func (s *Session) Surface() *drawing.Surface {
	return s.engine.Surface()
}

// Resize changes the surface size and repaints the strokes.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Resize(width, height)
}

// LoadErr returns the error of the active date's load, or nil once it loaded.
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// readyLocked fails mutations until a date is active and loaded. A date whose
// load failed stays read-only so an empty canvas never overwrites its record.
func (s *Session) readyLocked() error {
	if s.date == "" {
		return apperrors.New(apperrors.ErrInvalid, "no day is active")
	}
	if s.loading {
		return apperrors.New(apperrors.ErrInvalid, "day "+s.date+" is still loading")
	}
	if s.loadErr != nil {
		return apperrors.Wrap(apperrors.CodeOf(s.loadErr), "day "+s.date+" failed to load", s.loadErr)
	}
	return nil
}

func (s *Session) persistLocked() {
	if err := s.writer.Submit(s.snapshotLocked()); err != nil {
		logging.Error("Failed to queue day content", err, map[string]interface{}{
			"date": s.date,
		})
	}
}

// finishInteractionsLocked commits a gesture or stroke still in progress to
// the day it started on.
func (s *Session) finishInteractionsLocked() {
	if id, err := s.tracker.Release(); err != nil {
		logging.Warn("Dropping unfinished gesture", map[string]interface{}{
			"date":  s.date,
			"error": err.Error(),
		})
	} else if id != "" {
		s.persistLocked()
	}
	if s.engine.Capturing() {
		s.engine.EndStroke()
	}
}
