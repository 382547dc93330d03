// Package legacy imports journal events from the flat key-value blob used by
// early versions of the app into the record store.
package legacy

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// DefaultBlobName is the name the browser app stored its events under.
const DefaultBlobName = "calendarEvents"

// BlobSource is a simple named key-value store holding legacy blobs.
type BlobSource interface {
	// Load returns the blob, or ok=false if it does not exist.
	Load(name string) (data []byte, ok bool, err error)
	// Remove deletes the blob. Removing an absent blob is not an error.
	Remove(name string) error
}

var blobNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileBlobSource keeps each blob as <dir>/<name>.json.
type FileBlobSource struct {
	dir string
}

// NewFileBlobSource creates a FileBlobSource rooted at dir.
func NewFileBlobSource(dir string) *FileBlobSource {
	return &FileBlobSource{dir: dir}
}

func (s *FileBlobSource) path(name string) (string, error) {
	if !blobNameRegex.MatchString(name) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Load implements BlobSource.
func (s *FileBlobSource) Load(name string) ([]byte, bool, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read legacy blob: %w", err)
	}
	return data, true, nil
}

// Remove implements BlobSource.
func (s *FileBlobSource) Remove(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove legacy blob: %w", err)
	}
	return nil
}

// Store writes a blob. It exists for tooling and tests that seed legacy data.
func (s *FileBlobSource) Store(name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create legacy directory: %w", err)
	}
	return os.WriteFile(p, data, 0644)
}

// Import copies every event in the named blob into the journal-events
// collection and then removes the blob.
//
// The presence of the blob is the trigger, so a successful import never runs
// twice. If anything fails before the last record is written the blob is left
// in place and the next start retries; records already written are simply
// overwritten with the same values.
func Import(ctx context.Context, src BlobSource, store db.RecordStore, name string) (int, error) {
	data, ok, err := src.Load(name)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrMigrationPartialFailure, "failed to load legacy events", err)
	}
	if !ok {
		return 0, nil
	}

	var events []json.RawMessage
	if err := json.Unmarshal(data, &events); err != nil {
		return 0, partial(name, 0, fmt.Errorf("legacy blob is not a JSON list: %w", err))
	}

	for i, raw := range events {
		var ev models.JournalEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return i, partial(name, i, fmt.Errorf("event %d: %w", i, err))
		}
		if ev.ID == "" {
			return i, partial(name, i, fmt.Errorf("event %d has no id", i))
		}
		// Store the original bytes so fields this version does not know survive.
		if err := store.Put(ctx, db.JournalEvents, ev.ID, raw); err != nil {
			return i, partial(name, i, err)
		}
	}

	if err := src.Remove(name); err != nil {
		// Everything is imported; a retry would only rewrite the same records.
		return len(events), partial(name, len(events), err)
	}

	logging.Info("Migrated legacy events", map[string]interface{}{
		"blob":  name,
		"count": len(events),
	})
	return len(events), nil
}

func partial(name string, imported int, err error) error {
	logging.Error("Legacy event migration incomplete, blob kept for retry", err, map[string]interface{}{
		"blob":     name,
		"imported": imported,
	})
	return apperrors.Wrap(apperrors.ErrMigrationPartialFailure, "legacy event migration incomplete", err)
}
