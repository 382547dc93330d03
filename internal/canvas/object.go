// Package canvas implements placement and transform math for objects on a
// day's canvas.
package canvas

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/models"
	"github.com/kimhsiao/daycanvas/internal/uuid"
)

// BaseMediaSize is the length the longer side of new media is fitted to.
const BaseMediaSize = 120.0

const defaultFontFamily = "'PP Neue Montreal', sans-serif"

// Preset describes the creation defaults of a note kind.
type Preset struct {
	Size  models.Size
	Text  string
	Style models.NoteStyle
}

// Presets holds the defaults for text and post-it objects.
var Presets = map[models.ObjectKind]Preset{
	models.KindText: {
		Size: models.Size{Width: 200, Height: 50},
		Text: "Double tap to edit",
		Style: models.NoteStyle{
			TextColor:  "#000000",
			FontSize:   24,
			FontFamily: defaultFontFamily,
		},
	},
	models.KindPostit: {
		Size: models.Size{Width: 150, Height: 150},
		Text: "Write something...",
		Style: models.NoteStyle{
			BackgroundColor: "#fef3c7",
			TextColor:       "#000000",
			FontSize:        18,
		},
	},
}

// ClampScale limits s to [MinScale, MaxScale]. NaN becomes 1.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Max(models.MinScale, math.Min(models.MaxScale, s))
}

// DetectMediaKind guesses whether ref points at a video or an image.
func DetectMediaKind(ref string) models.ObjectKind {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "data:video") || strings.HasSuffix(lower, ".mp4") {
		return models.KindVideo
	}
	return models.KindImage
}

// FitMediaSize fits the longer natural side to BaseMediaSize, keeping the
// aspect ratio. Unknown dimensions are treated as square.
func FitMediaSize(naturalWidth, naturalHeight float64) models.Size {
	aspect := 1.0
	if naturalWidth > 0 && naturalHeight > 0 && !math.IsInf(naturalWidth, 0) && !math.IsInf(naturalHeight, 0) {
		aspect = naturalWidth / naturalHeight
	}
	if aspect > 1 {
		return models.Size{Width: BaseMediaSize, Height: BaseMediaSize / aspect}
	}
	return models.Size{Width: BaseMediaSize * aspect, Height: BaseMediaSize}
}

// centeredAt returns the top-left corner of a box of size s centred on anchor.
func centeredAt(anchor models.Point, s models.Size) models.Point {
	return models.Point{X: anchor.X - s.Width/2, Y: anchor.Y - s.Height/2}
}

// CreateFromMedia places new image or video content centred on anchor.
// An empty kind is detected from the reference.
func CreateFromMedia(ref string, kind models.ObjectKind, anchor models.Point, naturalWidth, naturalHeight float64) (models.CanvasObject, error) {
	if ref == "" {
		return models.CanvasObject{}, apperrors.New(apperrors.ErrInvalid, "media reference must not be empty")
	}
	if kind == "" {
		kind = DetectMediaKind(ref)
	}
	if !kind.IsMedia() {
		return models.CanvasObject{}, apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("%q is not a media kind", kind))
	}

	size := FitMediaSize(naturalWidth, naturalHeight)
	return models.CanvasObject{
		ID:       uuid.New(),
		Kind:     kind,
		Position: centeredAt(anchor, size),
		Scale:    1,
		Size:     size,
		Media:    &models.MediaBody{Ref: ref},
	}, nil
}

// CreatePreset places a new text or post-it note centred on anchor.
func CreatePreset(kind models.ObjectKind, anchor models.Point) (models.CanvasObject, error) {
	preset, ok := Presets[kind]
	if !ok {
		return models.CanvasObject{}, apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("no preset for kind %q", kind))
	}
	return models.CanvasObject{
		ID:       uuid.New(),
		Kind:     kind,
		Position: centeredAt(anchor, preset.Size),
		Scale:    1,
		Size:     preset.Size,
		Note:     &models.NoteBody{Text: preset.Text, Style: preset.Style},
	}, nil
}
