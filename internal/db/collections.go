package db

import (
	"fmt"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
)

// Collection names a keyed set of records.
type Collection string

const (
	MediaLibrary   Collection = "media-library"
	DayContent     Collection = "day-content"
	JournalEvents  Collection = "journal-events"
	JournalEntries Collection = "journal-entries"
)

// IndexByDate is the secondary index on a record's "date" field.
const IndexByDate = "by-date"

// Collections lists every collection in schema order.
var Collections = []Collection{MediaLibrary, DayContent, JournalEvents, JournalEntries}

type collectionDef struct {
	table string
	// index name -> top-level JSON field
	indexes map[string]string
}

var collectionTables = map[Collection]collectionDef{
	MediaLibrary: {table: "media_library"},
	DayContent:   {table: "day_content"},
	JournalEvents: {
		table:   "journal_events",
		indexes: map[string]string{IndexByDate: "date"},
	},
	JournalEntries: {
		table:   "journal_entries",
		indexes: map[string]string{IndexByDate: "date"},
	},
}

func lookupCollection(c Collection) (collectionDef, error) {
	def, ok := collectionTables[c]
	if !ok {
		return collectionDef{}, apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("unknown collection %q", c))
	}
	return def, nil
}

func lookupIndex(c Collection, index string) (collectionDef, string, error) {
	def, err := lookupCollection(c)
	if err != nil {
		return def, "", err
	}
	field, ok := def.indexes[index]
	if !ok {
		return def, "", apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("collection %q has no index %q", c, index))
	}
	return def, field, nil
}
