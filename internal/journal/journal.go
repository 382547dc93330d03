// Package journal stores emotion-tagged events and free-text entries per date.
package journal

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
	"github.com/kimhsiao/daycanvas/internal/uuid"
)

// TimeLayout is the wall-clock format of JournalEntry.Time.
const TimeLayout = "15:04"

// Journal reads and writes the journal-events and journal-entries collections.
type Journal struct {
	store db.RecordStore
	now   func() time.Time
}

// New creates a journal over store.
func New(store db.RecordStore) *Journal {
	return &Journal{store: store, now: time.Now}
}

// NewEventID returns a fresh identifier for an event or entry.
func NewEventID() string {
	return uuid.New()
}

// Save inserts or overwrites an event. An empty ID is assigned.
func (j *Journal) Save(ctx context.Context, e models.JournalEvent) (models.JournalEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewAt(j.now())
	}
	if e.Blocks == nil {
		e.Blocks = []models.ContentBlock{}
	}
	if err := e.Validate(); err != nil {
		return models.JournalEvent{}, apperrors.Wrap(apperrors.ErrInvalid, "invalid journal event", err)
	}
	if err := j.put(ctx, db.JournalEvents, e.ID, e); err != nil {
		return models.JournalEvent{}, err
	}
	return e, nil
}

// Delete removes an event. Missing ids are ignored.
func (j *Journal) Delete(ctx context.Context, id string) error {
	return j.store.Delete(ctx, db.JournalEvents, id)
}

// All returns every event in store order.
func (j *Journal) All(ctx context.Context) ([]models.JournalEvent, error) {
	raws, err := j.store.GetAll(ctx, db.JournalEvents)
	if err != nil {
		return nil, err
	}
	return decodeEvents(raws), nil
}

// ForDate returns the events of one date using the by-date index.
func (j *Journal) ForDate(ctx context.Context, date string) ([]models.JournalEvent, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}
	raws, err := j.store.QueryByIndex(ctx, db.JournalEvents, db.IndexByDate, date)
	if err != nil {
		return nil, err
	}
	return decodeEvents(raws), nil
}

// SaveEntry inserts or overwrites an entry. Empty ID, Time and CreatedAt
// are filled from the current time.
func (j *Journal) SaveEntry(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	if err := models.ValidateDate(e.Date); err != nil {
		return models.JournalEntry{}, apperrors.Wrap(apperrors.ErrInvalid, "invalid journal entry", err)
	}
	now := j.now()
	if e.ID == "" {
		e.ID = uuid.NewAt(now)
	}
	if e.Time == "" {
		e.Time = now.Format(TimeLayout)
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = now.UnixMilli()
	}
	if err := j.put(ctx, db.JournalEntries, e.ID, e); err != nil {
		return models.JournalEntry{}, err
	}
	return e, nil
}

// EntriesForDate returns the entries of one date, oldest first.
func (j *Journal) EntriesForDate(ctx context.Context, date string) ([]models.JournalEntry, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}
	raws, err := j.store.QueryByIndex(ctx, db.JournalEntries, db.IndexByDate, date)
	if err != nil {
		return nil, err
	}
	entries := make([]models.JournalEntry, 0, len(raws))
	for _, raw := range raws {
		var e models.JournalEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			logging.Warn("Skipping undecodable journal entry", map[string]interface{}{
				"date":  date,
				"error": err.Error(),
			})
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].CreatedAt < entries[b].CreatedAt
	})
	return entries, nil
}

// DeleteEntry removes an entry. Missing ids are ignored.
func (j *Journal) DeleteEntry(ctx context.Context, id string) error {
	return j.store.Delete(ctx, db.JournalEntries, id)
}

func (j *Journal) put(ctx context.Context, c db.Collection, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "failed to encode record", err)
	}
	return j.store.Put(ctx, c, key, raw)
}

// decodeEvents skips records that fail to decode. Unknown fields are ignored.
func decodeEvents(raws [][]byte) []models.JournalEvent {
	events := make([]models.JournalEvent, 0, len(raws))
	for _, raw := range raws {
		var e models.JournalEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			logging.Warn("Skipping undecodable journal event", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if e.Blocks == nil {
			e.Blocks = []models.ContentBlock{}
		}
		events = append(events, e)
	}
	return events
}
