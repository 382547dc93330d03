// Package daycontent loads and saves the per-date bundle of canvas objects
// and strokes.
package daycontent

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// Repository persists DayContent records keyed by date. Writes to the same
// date are serialised; the last one to finish wins.
type Repository struct {
	store db.RecordStore
	locks *KeyedMutex
}

// NewRepository creates a repository over store.
func NewRepository(store db.RecordStore) *Repository {
	return &Repository{store: store, locks: NewKeyedMutex()}
}

// Load returns the content saved for date. A date that was never saved
// yields an empty aggregate, not an error.
func (r *Repository) Load(ctx context.Context, date string) (models.DayContent, error) {
	if err := models.ValidateDate(date); err != nil {
		return models.DayContent{}, apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}

	raw, ok, err := r.store.Get(ctx, db.DayContent, date)
	if err != nil {
		return models.DayContent{}, err
	}
	if !ok {
		return models.EmptyDayContent(date), nil
	}

	content, err := decodeDayContent(date, raw)
	if err != nil {
		logging.Error("Failed to decode day content", err, map[string]interface{}{
			"date": date,
		})
		return models.DayContent{}, apperrors.Wrap(apperrors.ErrInternal, "corrupted day content for "+date, err)
	}
	return content, nil
}

// rawDayContent defers decoding of the individual objects and strokes.
type rawDayContent struct {
	Stickers []json.RawMessage `json:"stickers"`
	Drawings []json.RawMessage `json:"drawings"`
}

// decodeDayContent fails only when the record as a whole is unreadable.
// Single objects or strokes that do not decode are skipped with a warning so
// the rest of the day still loads.
func decodeDayContent(date string, raw []byte) (models.DayContent, error) {
	var rec rawDayContent
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.DayContent{}, err
	}

	content := models.EmptyDayContent(date)
	for i, item := range rec.Stickers {
		var o models.CanvasObject
		if err := json.Unmarshal(item, &o); err != nil {
			logging.Warn("Skipping undecodable canvas object", map[string]interface{}{
				"date":  date,
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		content.Objects = append(content.Objects, o)
	}
	for i, item := range rec.Drawings {
		var st models.Stroke
		if err := json.Unmarshal(item, &st); err != nil {
			logging.Warn("Skipping undecodable stroke", map[string]interface{}{
				"date":  date,
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		content.Strokes = append(content.Strokes, st)
	}
	return content, nil
}

// Save overwrites the record for date with objects and strokes.
func (r *Repository) Save(ctx context.Context, date string, objects []models.CanvasObject, strokes []models.Stroke) error {
	if err := models.ValidateDate(date); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}

	content := models.DayContent{Date: date, Objects: objects, Strokes: strokes}
	content.Normalize()
	raw, err := json.Marshal(content)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "failed to encode day content", err)
	}

	unlock := r.locks.Lock(date)
	defer unlock()
	return r.store.Put(ctx, db.DayContent, date, raw)
}

// SaveContent is Save for an assembled aggregate.
func (r *Repository) SaveContent(ctx context.Context, content models.DayContent) error {
	return r.Save(ctx, content.Date, content.Objects, content.Strokes)
}

// Delete removes the record for date. Deleting an unsaved date is a no-op.
func (r *Repository) Delete(ctx context.Context, date string) error {
	if err := models.ValidateDate(date); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}
	unlock := r.locks.Lock(date)
	defer unlock()
	return r.store.Delete(ctx, db.DayContent, date)
}

// Dates returns every date with saved content, oldest first. Records that
// fail to decode are skipped.
func (r *Repository) Dates(ctx context.Context) ([]string, error) {
	raws, err := r.store.GetAll(ctx, db.DayContent)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(raws))
	for _, raw := range raws {
		var head struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || models.ValidateDate(head.Date) != nil {
			continue
		}
		dates = append(dates, head.Date)
	}
	sort.Strings(dates)
	return dates, nil
}
