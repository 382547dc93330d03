package db

import (
	"context"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
)

// OpenStore opens and migrates the SQLite store in dataDir.
//
// If the database cannot be opened or migrated, OpenStore still returns a
// usable MemoryStore together with a STORAGE_UNAVAILABLE error: persistence
// is lost for this run, but callers keep working in memory.
func OpenStore(ctx context.Context, dataDir string) (RecordStore, error) {
	database, err := Open(dataDir)
	if err != nil {
		return degraded(apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to open database", err), dataDir)
	}

	if _, err := NewMigrator(database.DB).Up(ctx); err != nil {
		database.Close()
		return degraded(apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to migrate database", err), dataDir)
	}

	return NewSQLiteStore(database), nil
}

func degraded(err error, dataDir string) (RecordStore, error) {
	logging.Warn("Record store unavailable, continuing in memory", map[string]interface{}{
		"data_dir": dataDir,
		"error":    err.Error(),
	})
	return NewMemoryStore(), err
}
