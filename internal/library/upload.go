package library

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// MaxImageSide bounds the longer side of uploaded images.
const MaxImageSide = 1200

// JPEGQuality is the quality uploaded images are re-encoded with.
const JPEGQuality = 70

// Upload prepares a file's bytes for the library and adds it. Images are
// downscaled to MaxImageSide and re-encoded as JPEG; videos are stored as-is
// after the size check. An empty mimeType is sniffed from the content.
func (l *Library) Upload(ctx context.Context, raw []byte, mimeType string) (models.MediaLibraryItem, error) {
	if len(raw) == 0 {
		return models.MediaLibraryItem{}, apperrors.New(apperrors.ErrInvalid, "empty upload")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		data, err := CompressImage(raw)
		if err != nil {
			return models.MediaLibraryItem{}, err
		}
		return l.Add(ctx, data, models.MediaImage)
	case strings.HasPrefix(mimeType, "video/"):
		if int64(len(raw)) > l.maxVideoBytes {
			return models.MediaLibraryItem{}, apperrors.New(apperrors.ErrMediaTooLarge,
				fmt.Sprintf("video is %d bytes, limit is %d", len(raw), l.maxVideoBytes))
		}
		return l.Add(ctx, DataURI(mimeType, raw), models.MediaVideo)
	default:
		return models.MediaLibraryItem{}, apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("unsupported media type %q", mimeType))
	}
}

// CompressImage decodes an image, fits it within MaxImageSide and returns it
// as a JPEG data URI.
func CompressImage(raw []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalid, "failed to decode image", err)
	}
	b := img.Bounds()
	if b.Dx() > MaxImageSide || b.Dy() > MaxImageSide {
		img = imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "failed to encode image", err)
	}
	return DataURI("image/jpeg", buf.Bytes()), nil
}

// DataURI encodes raw as a base64 data URI.
func DataURI(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
