package backup

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/kimhsiao/daycanvas/internal/db"
	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
)

func withClock(t time.Time) Option {
	return func(o *options) { o.now = func() time.Time { return t } }
}

var fixedTime = time.UnixMilli(1718000000000)

type unreadableStore struct {
	*db.MemoryStore
}

func (unreadableStore) GetAll(context.Context, db.Collection) ([][]byte, error) {
	return nil, apperrors.New(apperrors.ErrStorageUnavailable, "disk gone")
}

func seededStore(t *testing.T) db.RecordStore {
	t.Helper()
	ctx := context.Background()
	s := db.NewMemoryStore()
	require.NoError(t, s.Put(ctx, db.MediaLibrary, "m1", []byte(`{"id":"m1","data":"x.png","type":"image","createdAt":1}`)))
	require.NoError(t, s.Put(ctx, db.DayContent, "2024-06-10", []byte(`{"date":"2024-06-10","stickers":[],"drawings":[]}`)))
	require.NoError(t, s.Put(ctx, db.JournalEvents, "e1", []byte(`{"id":"e1","eventType":"fear","title":"exam","date":"2024-06-10"}`)))
	require.NoError(t, s.Put(ctx, db.JournalEvents, "7", []byte(`{"id":7,"eventType":"idk","title":"old","date":"2024-06-11"}`)))
	require.NoError(t, s.Put(ctx, db.JournalEntries, "n1", []byte(`{"id":"n1","date":"2024-06-10","content":"hi","time":"09:00","createdAt":5}`)))
	return s
}

func TestExportImport_roundTrip(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t)

	var buf bytes.Buffer
	res, err := Export(ctx, src, &buf, withClock(fixedTime))
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), res.SizeBytes)
	assert.Equal(t, 0, res.Skipped)
	assert.False(t, res.Encrypted)
	assert.Equal(t, 2, res.Counts[db.JournalEvents])
	assert.Len(t, res.Checksum, 64)

	dst, err := db.OpenStore(ctx, t.TempDir())
	require.NoError(t, err)
	defer dst.Close()

	imp, err := Import(ctx, dst, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 5, imp.ImportedCount)
	assert.Equal(t, res.Checksum, imp.Checksum)
	assert.True(t, fixedTime.Equal(imp.ExportedAt))

	for _, c := range db.Collections {
		want, err := src.GetAll(ctx, c)
		require.NoError(t, err)
		got, err := dst.GetAll(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, want, got, "collection %s", c)
	}

	raw, ok, err := dst.Get(ctx, db.JournalEvents, "7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"old"`)
}

func TestImport_overwrites(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	_, err := Export(ctx, seededStore(t), &buf)
	require.NoError(t, err)

	dst := db.NewMemoryStore()
	require.NoError(t, dst.Put(ctx, db.MediaLibrary, "m1", []byte(`{"id":"m1","data":"stale"}`)))
	require.NoError(t, dst.Put(ctx, db.MediaLibrary, "keep", []byte(`{"id":"keep"}`)))

	_, err = Import(ctx, dst, &buf)
	require.NoError(t, err)

	raw, _, err := dst.Get(ctx, db.MediaLibrary, "m1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "x.png")
	_, ok, err := dst.Get(ctx, db.MediaLibrary, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExport_deterministic(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	var a, b bytes.Buffer
	_, err := Export(ctx, store, &a, withClock(fixedTime))
	require.NoError(t, err)
	_, err = Export(ctx, store, &b, withClock(fixedTime))
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestExport_skipsRecordsWithoutKey(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	require.NoError(t, store.Put(ctx, db.MediaLibrary, "x", []byte(`{"data":"orphan"}`)))
	require.NoError(t, store.Put(ctx, db.MediaLibrary, "y", []byte(`{"id":"y"}`)))

	res, err := Export(ctx, store, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Counts[db.MediaLibrary])
}

func TestExport_storeFailure(t *testing.T) {
	_, err := Export(context.Background(), unreadableStore{db.NewMemoryStore()}, &bytes.Buffer{})
	assert.True(t, apperrors.Is(err, apperrors.ErrExportFailed))
}

func TestEncrypted(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	res, err := Export(ctx, seededStore(t), &buf, WithPassword("correct horse"))
	require.NoError(t, err)
	assert.True(t, res.Encrypted)
	assert.NotContains(t, buf.String(), "correct horse")
	archive := buf.Bytes()

	_, err = Import(ctx, db.NewMemoryStore(), bytes.NewReader(archive))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPassword))

	_, err = Import(ctx, db.NewMemoryStore(), bytes.NewReader(archive), WithPassword("wrong horse"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPassword))

	m, err := ReadManifest(bytes.NewReader(archive), WithPassword("correct horse"))
	require.NoError(t, err)
	assert.True(t, m.Encrypted)
	assert.Equal(t, res.Checksum, m.Checksum)

	dst := db.NewMemoryStore()
	imp, err := Import(ctx, dst, bytes.NewReader(archive), WithPassword("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, 5, imp.ImportedCount)
}

func TestExport_shortPassword(t *testing.T) {
	_, err := Export(context.Background(), db.NewMemoryStore(), &bytes.Buffer{}, WithPassword("short"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalid))
}

func TestImport_corrupted(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	_, err := Export(ctx, seededStore(t), &buf)
	require.NoError(t, err)
	good := buf.Bytes()

	tamper := func(i int) []byte {
		out := append([]byte(nil), good...)
		out[i] ^= 0xff
		return out
	}

	cases := map[string][]byte{
		"empty":        nil,
		"bad magic":    tamper(0),
		"bad version":  tamper(len(magic)),
		"bad checksum": tamper(len(magic) + 2),
		"bad body":     tamper(len(good) - 1),
		"truncated":    good[:len(good)-4],
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			dst := db.NewMemoryStore()
			_, err := Import(ctx, dst, bytes.NewReader(data))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrCorruptedArchive), "got %v", err)

			all, err := dst.GetAll(ctx, db.MediaLibrary)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func buildArchive(t *testing.T, p payload) []byte {
	t.Helper()
	raw, err := encMode.Marshal(p)
	require.NoError(t, err)
	sum := blake3.Sum256(raw)
	out := append([]byte(magic), FormatVersion, 0)
	out = append(out, sum[:]...)
	return append(out, zstdEncoder.EncodeAll(raw, nil)...)
}

func TestImport_unknownCollectionSkipped(t *testing.T) {
	archive := buildArchive(t, payload{Collections: map[string][]Record{
		"media-library": {{Key: "m1", Value: []byte(`{"id":"m1"}`)}},
		"stickers-v0":   {{Key: "a", Value: []byte(`{}`)}, {Key: "b", Value: []byte(`{}`)}},
	}})

	res, err := Import(context.Background(), db.NewMemoryStore(), bytes.NewReader(archive))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Equal(t, 2, res.SkippedCount)
}

func TestImport_malformedRecordWritesNothing(t *testing.T) {
	ctx := context.Background()
	archive := buildArchive(t, payload{Collections: map[string][]Record{
		"media-library":   {{Key: "m1", Value: []byte(`{"id":"m1"}`)}},
		"journal-entries": {{Key: "n1", Value: []byte(`{not json`)}},
	}})

	dst := db.NewMemoryStore()
	_, err := Import(ctx, dst, bytes.NewReader(archive))
	assert.True(t, apperrors.Is(err, apperrors.ErrCorruptedArchive))
	all, err := dst.GetAll(ctx, db.MediaLibrary)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReadPrefixed(t *testing.T) {
	field, rest, err := readPrefixed([]byte{2, 'a', 'b', 'c'})
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), field)
	assert.Equal(t, []byte("c"), rest)

	_, _, err = readPrefixed([]byte{3, 'a'})
	assert.Error(t, err)
	_, _, err = readPrefixed(nil)
	assert.Error(t, err)
}
