// Package drawing implements freehand stroke capture and replay onto a raster
// surface owned by the active day.
package drawing

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"io"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
)

// Surface is the raster a day's strokes are painted onto. Pixels start fully
// transparent; the canvas objects render underneath it.
type Surface struct {
	img *image.NRGBA
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Bounds returns the pixel rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Resize reallocates the surface. The contents are discarded; callers replay
// their history afterwards.
func (s *Surface) Resize(width, height int) {
	s.img = image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() *image.NRGBA {
	return imaging.Clone(s.img)
}

// At returns the colour of one pixel.
func (s *Surface) At(x, y int) color.NRGBA {
	return s.img.NRGBAAt(x, y)
}

// PNG writes the surface as a PNG image.
func (s *Surface) PNG(w io.Writer) error {
	if err := imaging.Encode(w, s.img, imaging.PNG); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, "failed to encode drawing", err)
	}
	return nil
}

// Thumbnail returns a copy scaled down to fit a maxSide square.
func (s *Surface) Thumbnail(maxSide int) *image.NRGBA {
	if maxSide <= 0 || s.img.Rect.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	return imaging.Fit(s.img, maxSide, maxSide, imaging.Lanczos)
}

// paint composites mask onto the surface. Pen strokes draw col over the
// existing pixels; eraser strokes remove coverage (destination-out) and ignore col.
func (s *Surface) paint(mask *image.Alpha, col color.NRGBA, eraser bool) {
	r := mask.Rect.Intersect(s.img.Rect)
	if r.Empty() {
		return
	}
	if !eraser {
		imagedraw.DrawMask(s.img, r, image.NewUniform(col), image.Point{}, mask, r.Min, imagedraw.Over)
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		mi := mask.PixOffset(r.Min.X, y)
		di := s.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, mi, di = x+1, mi+1, di+4 {
			m := uint32(mask.Pix[mi])
			if m == 0 {
				continue
			}
			a := uint32(s.img.Pix[di+3])
			s.img.Pix[di+3] = uint8((a*(255-m) + 127) / 255)
		}
	}
}

// rasterize fills the union of shapes into an alpha mask clipped to the surface.
func (s *Surface) rasterize(shapes []polygon) *image.Alpha {
	var bounds image.Rectangle
	for _, p := range shapes {
		bounds = bounds.Union(p.bounds())
	}
	bounds = bounds.Intersect(s.img.Rect)
	mask := image.NewAlpha(bounds)
	if bounds.Empty() {
		return mask
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.DrawOp = imagedraw.Src
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
	for _, p := range shapes {
		p.fill(z, ox, oy)
	}
	z.Draw(mask, bounds, image.Opaque, image.Point{})
	return mask
}
