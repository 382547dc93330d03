package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/kimhsiao/daycanvas/internal/canvas"
	"github.com/kimhsiao/daycanvas/internal/daycontent"
	"github.com/kimhsiao/daycanvas/internal/drawing"
	"github.com/kimhsiao/daycanvas/internal/gesture"
	"github.com/kimhsiao/daycanvas/internal/journal"
	"github.com/kimhsiao/daycanvas/internal/lunar"
	"github.com/kimhsiao/daycanvas/internal/models"
	"github.com/kimhsiao/daycanvas/internal/session"
)

// dayView is what `day show` prints.
type dayView struct {
	Date       string                `json:"date"`
	Moon       string                `json:"moon"`
	Indicators []models.EventType    `json:"indicators"`
	Objects    []models.CanvasObject `json:"stickers"`
	Strokes    []models.Stroke       `json:"drawings"`
}

// openSession activates date in a fresh session persisting through a
// writer. finish flushes the writer and reports the first failed write.
func (a *app) openSession(ctx context.Context, date string) (s *session.Session, finish func() error, err error) {
	var (
		mu     sync.Mutex
		failed error
	)
	writer := daycontent.NewWriter(a.days, func(_ string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if failed == nil {
			failed = err
		}
	})
	surface := drawing.NewSurface(a.cfg.CanvasWidth, a.cfg.CanvasHeight)
	s = session.New(a.days, writer, surface, a.cfg.Session())
	if err := s.SwitchDate(ctx, date); err != nil {
		writer.Close()
		return nil, nil, err
	}

	finish = func() error {
		if err := writer.Flush(ctx); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		return failed
	}
	return s, finish, nil
}

// inSession runs fn against date's session and waits for its writes.
func (a *app) inSession(ctx context.Context, date string, fn func(s *session.Session) error) error {
	s, finish, err := a.openSession(ctx, date)
	if err != nil {
		return err
	}
	fnErr := fn(s)
	if err := finish(); err != nil {
		return err
	}
	return fnErr
}

func newDayCmd(opts *rootOptions) *cobra.Command {
	dayCmd := &cobra.Command{Use: "day", Short: "Per-day canvas operations"}

	dayCmd.AddCommand(&cobra.Command{
		Use:   "dates",
		Short: "List dates that have saved canvas content",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			dates, err := a.days.Dates(ctx)
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		}),
	})

	dayCmd.AddCommand(&cobra.Command{
		Use:   "show DATE",
		Short: "Print a day's objects, strokes, event indicators and moon phase",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			date := args[0]
			content, err := a.days.Load(ctx, date)
			if err != nil {
				return err
			}
			events, err := a.journal.ForDate(ctx, date)
			if err != nil {
				return err
			}
			t, _ := time.Parse(models.DateLayout, date)
			return printJSON(cmd.OutOrStdout(), dayView{
				Date:       date,
				Moon:       lunar.Name(lunar.Phase(t)),
				Indicators: journal.Indicators(events, date),
				Objects:    content.Objects,
				Strokes:    content.Strokes,
			})
		}),
	})

	var out string
	var thumb int
	renderCmd := &cobra.Command{
		Use:   "render DATE",
		Short: "Rasterize a day's drawing layer to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			content, err := a.days.Load(ctx, args[0])
			if err != nil {
				return err
			}
			engine := drawing.NewEngine(
				drawing.NewSurface(a.cfg.CanvasWidth, a.cfg.CanvasHeight),
				drawing.WithReplayPolicy(a.cfg.Session().ReplayPolicy),
			)
			engine.Load(content.Strokes)

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			if thumb > 0 {
				if err := imaging.Encode(f, engine.Surface().Thumbnail(thumb), imaging.PNG); err != nil {
					return fmt.Errorf("failed to encode thumbnail: %w", err)
				}
			} else if err := engine.Surface().PNG(f); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d strokes to %s\n", len(content.Strokes), out)
			return nil
		}),
	}
	renderCmd.Flags().StringVarP(&out, "out", "o", "", "Output PNG file (required)")
	renderCmd.Flags().IntVar(&thumb, "thumb", 0, "Downscale so the longer side is at most N pixels")
	_ = renderCmd.MarkFlagRequired("out")
	dayCmd.AddCommand(renderCmd)

	dayCmd.AddCommand(&cobra.Command{
		Use:   "clear-drawing DATE",
		Short: "Remove every stroke of a day",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				return s.ClearDrawing()
			})
		}),
	})

	var noteKind, at, text, bg, textColor string
	addNoteCmd := &cobra.Command{
		Use:   "add-note DATE",
		Short: "Place a text or post-it note",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			anchor, err := parsePoint(at)
			if err != nil {
				return err
			}
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				o, err := s.AddPreset(models.ObjectKind(noteKind), anchor)
				if err != nil {
					return err
				}
				if text != "" {
					if err := s.EditText(o.ID, text); err != nil {
						return err
					}
				}
				if bg != "" || textColor != "" {
					style := o.Note.Style
					if bg != "" {
						style.BackgroundColor = bg
					}
					if textColor != "" {
						style.TextColor = textColor
					}
					if err := s.EditStyle(o.ID, style); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), o.ID)
				return nil
			})
		}),
	}
	addNoteCmd.Flags().StringVar(&noteKind, "kind", string(models.KindPostit), "Note kind: text or postit")
	addNoteCmd.Flags().StringVar(&at, "at", "200,200", "Centre of the note as x,y")
	addNoteCmd.Flags().StringVar(&text, "text", "", "Initial text")
	addNoteCmd.Flags().StringVar(&bg, "bg", "", "Background colour")
	addNoteCmd.Flags().StringVar(&textColor, "color", "", "Text colour")
	dayCmd.AddCommand(addNoteCmd)

	var mediaAt string
	addMediaCmd := &cobra.Command{
		Use:   "add-media DATE LIBRARY_ID",
		Short: "Place a media library item on a day",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			anchor, err := parsePoint(mediaAt)
			if err != nil {
				return err
			}
			item, ok, err := a.library.Get(ctx, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("library item %s not found", args[1])
			}
			kind := models.KindImage
			if item.Kind == models.MediaVideo {
				kind = models.KindVideo
			}
			w, h := mediaDimensions(item.Data)
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				o, err := s.AddMedia(item.Data, kind, anchor, w, h)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), o.ID)
				return nil
			})
		}),
	}
	addMediaCmd.Flags().StringVar(&mediaAt, "at", "200,200", "Centre of the object as x,y")
	dayCmd.AddCommand(addMediaCmd)

	dayCmd.AddCommand(&cobra.Command{
		Use:   "remove DATE OBJECT_ID",
		Short: "Remove an object from a day",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				removed, err := s.RemoveObject(args[1])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("object %s not found on %s", args[1], args[0])
				}
				return nil
			})
		}),
	})

	dayCmd.AddCommand(&cobra.Command{
		Use:   "front DATE OBJECT_ID",
		Short: "Bring an object to the top of the z-order",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				return s.BringToFront(args[1])
			})
		}),
	})

	var points, penColor string
	var penSize float64
	var eraser bool
	drawCmd := &cobra.Command{
		Use:   "draw DATE",
		Short: "Append one freehand stroke",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(points)
			if err != nil {
				return err
			}
			if len(pts) == 0 {
				return fmt.Errorf("--points needs at least one x,y pair")
			}
			tool := drawing.Tool{Color: penColor, Size: penSize, Mode: models.ModePen}
			if eraser {
				tool.Mode = models.ModeEraser
			}
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				s.EnableDrawing(true)
				s.SetPen(tool)
				if !s.PointerDown(pts[0]) {
					return fmt.Errorf("day %s is not ready for drawing", args[0])
				}
				for _, p := range pts[1:] {
					s.PointerMove(p)
				}
				s.PointerUp()
				return nil
			})
		}),
	}
	drawCmd.Flags().StringVar(&points, "points", "", "Stroke points as \"x,y;x,y;...\" (required)")
	drawCmd.Flags().StringVar(&penColor, "color", drawing.DefaultTool.Color, "Pen colour")
	drawCmd.Flags().Float64Var(&penSize, "size", drawing.DefaultTool.Size, "Pen width")
	drawCmd.Flags().BoolVar(&eraser, "eraser", false, "Erase instead of paint")
	_ = drawCmd.MarkFlagRequired("points")
	dayCmd.AddCommand(drawCmd)

	dayCmd.AddCommand(&cobra.Command{
		Use:   "undo DATE",
		Short: "Remove the most recent stroke",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				if !s.Undo() {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to undo")
				}
				return nil
			})
		}),
	})

	var gestureKind, drag string
	gestureCmd := &cobra.Command{
		Use:   "gesture DATE OBJECT_ID",
		Short: "Move, resize or rotate an object by dragging from its centre",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			delta, err := parsePoint(drag)
			if err != nil {
				return err
			}
			return a.inSession(ctx, args[0], func(s *session.Session) error {
				return runGesture(s, args[1], gestureKind, delta)
			})
		}),
	}
	gestureCmd.Flags().StringVar(&gestureKind, "kind", "move", "Gesture: move, resize or rotate")
	gestureCmd.Flags().StringVar(&drag, "drag", "", "Pointer displacement as dx,dy (required)")
	_ = gestureCmd.MarkFlagRequired("drag")
	dayCmd.AddCommand(gestureCmd)

	return dayCmd
}

// runGesture presses on the object's centre, or just right of it for
// rotation so the start angle is defined, and drags by delta.
func runGesture(s *session.Session, id, kind string, delta models.Point) error {
	var target models.CanvasObject
	found := false
	for _, o := range s.Objects() {
		if o.ID == id {
			target, found = o, true
			break
		}
	}
	if !found {
		return fmt.Errorf("object %s not found", id)
	}

	start := canvas.Center(target)
	var press func(string, gesture.PointerEvent) error
	switch strings.ToLower(kind) {
	case "move":
		press = s.PressMove
	case "resize":
		press = s.PressResize
	case "rotate":
		start = start.Add(models.Point{X: target.Size.Width / 2})
		press = s.PressRotate
	default:
		return fmt.Errorf("unknown gesture %q", kind)
	}

	end := start.Add(delta)
	if err := press(id, gesture.PointerEvent{Type: gesture.Down, Pos: start, Button: gesture.ButtonPrimary}); err != nil {
		return err
	}
	if err := s.Pointer(gesture.PointerEvent{Type: gesture.Move, Pos: end}); err != nil {
		return err
	}
	return s.Pointer(gesture.PointerEvent{Type: gesture.Up, Pos: end})
}

// mediaDimensions decodes the natural size of a base64 image data URI. Other
// references report 0x0 and get the default box.
func mediaDimensions(data string) (float64, float64) {
	_, payload, ok := strings.Cut(data, ";base64,")
	if !ok {
		return 0, 0
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, 0
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0
	}
	return float64(cfg.Width), float64(cfg.Height)
}
