package models

import "time"

// MediaKind is the type of a media library asset.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// ObjectKind returns the canvas object kind used when placing this media.
func (k MediaKind) ObjectKind() ObjectKind {
	if k == MediaVideo {
		return KindVideo
	}
	return KindImage
}

// MediaLibraryItem is a reusable sticker asset, independent of any day.
// Placed objects copy Data by value, so deleting an item leaves them intact.
type MediaLibraryItem struct {
	ID        string    `json:"id"`
	Data      string    `json:"data"`
	Kind      MediaKind `json:"type"`
	CreatedAt int64     `json:"timestamp"` // unix milliseconds
}

// CreatedAtTime returns CreatedAt as time.Time.
func (m *MediaLibraryItem) CreatedAtTime() time.Time {
	return time.UnixMilli(m.CreatedAt)
}
