// Package library manages the reusable media assets a user can place on any day.
package library

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
	"github.com/kimhsiao/daycanvas/internal/uuid"
)

// DefaultMaxVideoBytes is the largest video accepted into the library.
const DefaultMaxVideoBytes = 10 * 1024 * 1024

// Library stores MediaLibraryItems in the media-library collection.
type Library struct {
	store         db.RecordStore
	maxVideoBytes int64
	now           func() time.Time
}

// New creates a library over store. A non-positive maxVideoBytes selects
// DefaultMaxVideoBytes.
func New(store db.RecordStore, maxVideoBytes int64) *Library {
	if maxVideoBytes <= 0 {
		maxVideoBytes = DefaultMaxVideoBytes
	}
	return &Library{store: store, maxVideoBytes: maxVideoBytes, now: time.Now}
}

// Add saves data as a new library item. Videos larger than the configured
// limit are rejected with MEDIA_TOO_LARGE; storage failures surface as
// WRITE_FAILED so the caller can notify the user.
func (l *Library) Add(ctx context.Context, data string, kind models.MediaKind) (models.MediaLibraryItem, error) {
	if data == "" {
		return models.MediaLibraryItem{}, apperrors.New(apperrors.ErrInvalid, "media data must not be empty")
	}
	if !kind.Valid() {
		return models.MediaLibraryItem{}, apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("unknown media kind %q", kind))
	}
	if kind == models.MediaVideo {
		if n := PayloadSize(data); n > l.maxVideoBytes {
			return models.MediaLibraryItem{}, apperrors.New(apperrors.ErrMediaTooLarge,
				fmt.Sprintf("video is %d bytes, limit is %d", n, l.maxVideoBytes))
		}
	}

	now := l.now()
	item := models.MediaLibraryItem{
		ID:        uuid.NewAt(now),
		Data:      data,
		Kind:      kind,
		CreatedAt: now.UnixMilli(),
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return models.MediaLibraryItem{}, apperrors.Wrap(apperrors.ErrInternal, "failed to encode media item", err)
	}
	if err := l.store.Put(ctx, db.MediaLibrary, item.ID, raw); err != nil {
		logging.Error("Failed to save media item", err, map[string]interface{}{
			"kind": string(kind),
		})
		if apperrors.Is(err, apperrors.ErrWriteFailed) {
			return models.MediaLibraryItem{}, err
		}
		return models.MediaLibraryItem{}, apperrors.Wrap(apperrors.ErrWriteFailed, "failed to save media item", err)
	}
	return item, nil
}

// List returns every item in the order the store returns them, which is
// insertion order for the bundled stores. Undecodable records are skipped.
func (l *Library) List(ctx context.Context) ([]models.MediaLibraryItem, error) {
	raws, err := l.store.GetAll(ctx, db.MediaLibrary)
	if err != nil {
		return nil, err
	}
	items := make([]models.MediaLibraryItem, 0, len(raws))
	for _, raw := range raws {
		var item models.MediaLibraryItem
		if err := json.Unmarshal(raw, &item); err != nil {
			logging.Warn("Skipping undecodable media item", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Get returns one item.
func (l *Library) Get(ctx context.Context, id string) (models.MediaLibraryItem, bool, error) {
	raw, ok, err := l.store.Get(ctx, db.MediaLibrary, id)
	if err != nil || !ok {
		return models.MediaLibraryItem{}, false, err
	}
	var item models.MediaLibraryItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return models.MediaLibraryItem{}, false, apperrors.Wrap(apperrors.ErrInternal, "corrupted media item "+id, err)
	}
	return item, true, nil
}

// Delete removes an item. Objects already placed from it keep their copy
// of the data. Deleting a missing id is a no-op.
func (l *Library) Delete(ctx context.Context, id string) error {
	return l.store.Delete(ctx, db.MediaLibrary, id)
}

// PayloadSize returns the decoded size of a base64 data URI, or the length
// of any other reference.
func PayloadSize(data string) int64 {
	if !strings.HasPrefix(data, "data:") {
		return int64(len(data))
	}
	meta, payload, ok := strings.Cut(data, ",")
	if !ok {
		return int64(len(data))
	}
	if !strings.HasSuffix(meta, ";base64") {
		return int64(len(payload))
	}
	return int64(base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload[max(len(payload)-2, 0):], "="))
}
