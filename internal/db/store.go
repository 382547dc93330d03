package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
)

// RecordStore is durable key-value persistence over named collections.
//
// Values are JSON documents. Put overwrites the whole record; there is no
// partial merge. Get reports absence with ok=false rather than an error.
type RecordStore interface {
	// Put inserts or fully overwrites the record at key.
	Put(ctx context.Context, c Collection, key string, value []byte) error

	// Get returns the record at key, or ok=false if there is none.
	Get(ctx context.Context, c Collection, key string) (value []byte, ok bool, err error)

	// GetAll returns every record of the collection. Implementations return
	// first-insertion order, but callers other than the media library must
	// not depend on it.
	GetAll(ctx context.Context, c Collection) ([][]byte, error)

	// Delete removes the record at key. Deleting an absent key is not an error.
	Delete(ctx context.Context, c Collection, key string) error

	// QueryByIndex returns the records whose indexed field equals value.
	QueryByIndex(ctx context.Context, c Collection, index, value string) ([][]byte, error)

	// Close releases the underlying resources.
	Close() error
}

// Ensure both implementations satisfy the interface at compile time.
var (
	_ RecordStore = (*SQLiteStore)(nil)
	_ RecordStore = (*MemoryStore)(nil)
)

// SQLiteStore is the durable RecordStore. Each collection is a table of
// (key, value, seq) where seq keeps first-insertion order across overwrites.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore wraps an opened and migrated database.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *DB {
	return s.db
}

func validateRecord(key string, value []byte) error {
	if key == "" {
		return apperrors.New(apperrors.ErrInvalid, "record key must not be empty")
	}
	if !json.Valid(value) {
		return apperrors.New(apperrors.ErrInvalid, fmt.Sprintf("record %q is not valid JSON", key))
	}
	return nil
}

// Put implements RecordStore.
func (s *SQLiteStore) Put(ctx context.Context, c Collection, key string, value []byte) error {
	def, err := lookupCollection(c)
	if err != nil {
		return err
	}
	if err := validateRecord(key, value); err != nil {
		return err
	}

	query := fmt.Sprintf(`
	INSERT INTO %[1]s (key, value, seq)
	VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM %[1]s))
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, def.table)
	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return apperrors.Wrap(apperrors.ErrWriteFailed, fmt.Sprintf("put %s/%s", c, key), err)
	}
	return nil
}

// Get implements RecordStore.
func (s *SQLiteStore) Get(ctx context.Context, c Collection, key string) ([]byte, bool, error) {
	def, err := lookupCollection(c)
	if err != nil {
		return nil, false, err
	}

	var value string
	query := fmt.Sprintf("SELECT value FROM %s WHERE key = ?", def.table)
	err = s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrStorageUnavailable, fmt.Sprintf("get %s/%s", c, key), err)
	}
	return []byte(value), true, nil
}

// GetAll implements RecordStore.
func (s *SQLiteStore) GetAll(ctx context.Context, c Collection) ([][]byte, error) {
	def, err := lookupCollection(c)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT value FROM %s ORDER BY seq", def.table)
	values, err := s.queryValues(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, fmt.Sprintf("get all %s", c), err)
	}
	return values, nil
}

// Delete implements RecordStore.
func (s *SQLiteStore) Delete(ctx context.Context, c Collection, key string) error {
	def, err := lookupCollection(c)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE key = ?", def.table)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return apperrors.Wrap(apperrors.ErrWriteFailed, fmt.Sprintf("delete %s/%s", c, key), err)
	}
	return nil
}

// QueryByIndex implements RecordStore.
func (s *SQLiteStore) QueryByIndex(ctx context.Context, c Collection, index, value string) ([][]byte, error) {
	def, field, err := lookupIndex(c, index)
	if err != nil {
		return nil, err
	}
	// The expression must match the CREATE INDEX expression for SQLite to use it.
	query := fmt.Sprintf("SELECT value FROM %s WHERE json_extract(value, '$.%s') = ? ORDER BY seq", def.table, field)
	values, err := s.queryValues(ctx, query, value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, fmt.Sprintf("query %s by %s", c, index), err)
	}
	return values, nil
}

func (s *SQLiteStore) queryValues(ctx context.Context, query string, args ...interface{}) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := [][]byte{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, []byte(v))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
