// Package backup writes every record collection to a single archive and
// restores it.
//
// Archive layout:
//
//	magic "DAYCNV" | version (1 byte) | flags (1 byte) | blake3-256 of payload (32 bytes) | body
//
// The payload is a deterministic CBOR document. The body is the payload
// compressed with zstd and, when a password is given, sealed with
// AES-256-GCM.
package backup

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
)

const (
	magic = "DAYCNV"

	// FormatVersion is the archive layout version written by Export.
	FormatVersion uint8 = 1

	flagEncrypted byte = 1 << 0

	checksumSize = 32
	headerSize   = len(magic) + 2 + checksumSize
)

// keyFields names the top-level JSON field holding each collection's key.
var keyFields = map[db.Collection]string{
	db.MediaLibrary:   "id",
	db.DayContent:     "date",
	db.JournalEvents:  "id",
	db.JournalEntries: "id",
}

var (
	encMode     cbor.EncMode
	decMode     cbor.DecMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("backup: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("backup: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("backup: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("backup: zstd decoder initialization failed: " + err.Error())
	}
}

// Record is one stored record as carried in an archive.
type Record struct {
	Key   string `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint"`
}

type payload struct {
	ExportedAt  int64               `cbor:"1,keyasint"`
	Collections map[string][]Record `cbor:"2,keyasint"`
}

// Manifest describes an archive.
type Manifest struct {
	Version    uint8
	ExportedAt time.Time
	Counts     map[db.Collection]int
	Checksum   string
	Encrypted  bool
}

// ExportResult represents the result of an export.
type ExportResult struct {
	Manifest
	SizeBytes int64
	Skipped   int
	Duration  time.Duration
}

// ImportResult represents the result of an import.
type ImportResult struct {
	Manifest
	ImportedCount int
	SkippedCount  int
	Duration      time.Duration
}

type options struct {
	password string
	now      func() time.Time
}

// Option configures Export, Import and ReadManifest.
type Option func(*options)

// WithPassword encrypts the archive on export and decrypts it on import.
func WithPassword(password string) Option {
	return func(o *options) { o.password = password }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Export writes every collection of store to w.
func Export(ctx context.Context, store db.RecordStore, w io.Writer, opts ...Option) (*ExportResult, error) {
	start := time.Now()
	o := buildOptions(opts)
	if o.password != "" {
		if err := ValidatePassword(o.password); err != nil {
			return nil, err
		}
	}

	exportedAt := o.now()
	p := payload{
		ExportedAt:  exportedAt.UnixMilli(),
		Collections: make(map[string][]Record, len(db.Collections)),
	}
	counts := make(map[db.Collection]int, len(db.Collections))
	skipped := 0
	for _, c := range db.Collections {
		values, err := store.GetAll(ctx, c)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrExportFailed, fmt.Sprintf("failed to read %s", c), err)
		}
		records := make([]Record, 0, len(values))
		for _, v := range values {
			key, err := recordKey(c, v)
			if err != nil {
				logging.Warn("Skipping record without key", map[string]interface{}{
					"collection": string(c),
					"error":      err.Error(),
				})
				skipped++
				continue
			}
			records = append(records, Record{Key: key, Value: v})
		}
		p.Collections[string(c)] = records
		counts[c] = len(records)
	}

	raw, err := encMode.Marshal(p)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to encode archive", err)
	}
	sum := blake3.Sum256(raw)
	body := zstdEncoder.EncodeAll(raw, nil)

	var flags byte
	if o.password != "" {
		body, err = seal(body, o.password)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to encrypt archive", err)
		}
		flags |= flagEncrypted
	}

	header := make([]byte, 0, headerSize)
	header = append(header, magic...)
	header = append(header, FormatVersion, flags)
	header = append(header, sum[:]...)
	if _, err := w.Write(header); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to write archive", err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to write archive", err)
	}

	result := &ExportResult{
		Manifest: Manifest{
			Version:    FormatVersion,
			ExportedAt: time.UnixMilli(p.ExportedAt),
			Counts:     counts,
			Checksum:   hex.EncodeToString(sum[:]),
			Encrypted:  o.password != "",
		},
		SizeBytes: int64(len(header) + len(body)),
		Skipped:   skipped,
		Duration:  time.Since(start),
	}
	logging.Info("Backup exported", map[string]interface{}{
		"size_bytes": result.SizeBytes,
		"skipped":    skipped,
		"encrypted":  result.Encrypted,
	})
	return result, nil
}

// ReadManifest decodes and verifies an archive without importing it.
func ReadManifest(r io.Reader, opts ...Option) (*Manifest, error) {
	o := buildOptions(opts)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, "failed to read archive", err)
	}
	m, _, err := decode(data, o.password)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Import verifies the archive read from r and writes every record into
// store, overwriting records with the same key. Nothing is written unless
// the whole archive verifies.
func Import(ctx context.Context, store db.RecordStore, r io.Reader, opts ...Option) (*ImportResult, error) {
	start := time.Now()
	o := buildOptions(opts)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, "failed to read archive", err)
	}
	m, p, err := decode(data, o.password)
	if err != nil {
		return nil, err
	}

	skipped := 0
	for name, records := range p.Collections {
		if _, known := keyFields[db.Collection(name)]; !known {
			logging.Warn("Skipping unknown collection in archive", map[string]interface{}{
				"collection": name,
				"records":    len(records),
			})
			skipped += len(records)
		}
	}
	for _, c := range db.Collections {
		for _, rec := range p.Collections[string(c)] {
			if rec.Key == "" || !json.Valid(rec.Value) {
				return nil, apperrors.New(apperrors.ErrCorruptedArchive,
					fmt.Sprintf("malformed record %q in %s", rec.Key, c))
			}
		}
	}

	imported := 0
	for _, c := range db.Collections {
		for _, rec := range p.Collections[string(c)] {
			if err := store.Put(ctx, c, rec.Key, rec.Value); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrImportFailed,
					fmt.Sprintf("failed to restore %s/%s after %d records", c, rec.Key, imported), err)
			}
			imported++
		}
	}

	logging.Info("Backup imported", map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
	})
	return &ImportResult{
		Manifest:      *m,
		ImportedCount: imported,
		SkippedCount:  skipped,
		Duration:      time.Since(start),
	}, nil
}

func decode(data []byte, password string) (*Manifest, *payload, error) {
	if len(data) < headerSize || string(data[:len(magic)]) != magic {
		return nil, nil, apperrors.New(apperrors.ErrCorruptedArchive, "not a backup archive")
	}
	version := data[len(magic)]
	if version != FormatVersion {
		return nil, nil, apperrors.New(apperrors.ErrCorruptedArchive, fmt.Sprintf("unsupported archive version %d", version))
	}
	flags := data[len(magic)+1]
	want := data[len(magic)+2 : headerSize]
	body := data[headerSize:]

	encrypted := flags&flagEncrypted != 0
	if encrypted {
		if password == "" {
			return nil, nil, apperrors.New(apperrors.ErrInvalidPassword, "archive is encrypted")
		}
		var err error
		body, err = open(body, password)
		if err != nil {
			return nil, nil, err
		}
	}

	raw, err := zstdDecoder.DecodeAll(body, nil)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCorruptedArchive, "failed to decompress archive", err)
	}
	sum := blake3.Sum256(raw)
	if !bytes.Equal(sum[:], want) {
		return nil, nil, apperrors.New(apperrors.ErrCorruptedArchive, "checksum mismatch")
	}

	var p payload
	if err := decMode.Unmarshal(raw, &p); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCorruptedArchive, "failed to decode archive", err)
	}

	counts := make(map[db.Collection]int, len(p.Collections))
	for name, records := range p.Collections {
		counts[db.Collection(name)] = len(records)
	}
	return &Manifest{
		Version:    version,
		ExportedAt: time.UnixMilli(p.ExportedAt),
		Counts:     counts,
		Checksum:   hex.EncodeToString(sum[:]),
		Encrypted:  encrypted,
	}, &p, nil
}

func recordKey(c db.Collection, value []byte) (string, error) {
	field := keyFields[c]
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(value, &doc); err != nil {
		return "", err
	}
	raw, ok := doc[field]
	if !ok {
		return "", fmt.Errorf("missing %q", field)
	}
	var key string
	if err := json.Unmarshal(raw, &key); err == nil && key != "" {
		return key, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%q is neither a non-empty string nor a number", field)
}
