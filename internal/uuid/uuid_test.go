// Package uuid provides unit tests for identifier generation.
package uuid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	assert.True(t, IsValid(id), "generated id %q has unexpected shape", id)
	assert.NoError(t, Validate(id))
}

func TestNewUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	at := time.UnixMilli(1767312000000)
	for i := 0; i < 1000; i++ {
		id := NewAt(at)
		require.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
}

func TestTimestamp(t *testing.T) {
	at := time.UnixMilli(1767312000123)
	got, err := Timestamp(NewAt(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	_, err = Timestamp("abc")
	assert.Error(t, err)
}

func TestValidate_rejects(t *testing.T) {
	for _, s := range []string{"", "1767312000000", "1767312000000ABCDEFGHI", "x767312000000abcdefghi"} {
		assert.Error(t, Validate(s), s)
	}
}

func TestSuffix_skipsFixedAndBiasedBytes(t *testing.T) {
	first := uuid.UUID{0, 1, 2, 3, 4, 5, 0x4f, 255, 0xbf, 252, 35, 36, 37, 71, 251, 253}
	second := uuid.UUID{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25}
	calls := 0
	next := func() uuid.UUID {
		calls++
		if calls == 1 {
			return first
		}
		return second
	}

	assert.Equal(t, "012345z01", suffix(next))
	assert.Equal(t, 1, calls)

	calls = 0
	first = uuid.UUID{0, 1, 2, 3, 0x40, 0x41, 0x4f, 255, 0x80, 252, 253, 254, 255, 255, 255, 255}
	got := suffix(next)
	assert.Len(t, got, SuffixLen)
	assert.Equal(t, "0123stabc", got)
	assert.Equal(t, 2, calls)
}

func TestSuffix_uniformCharacters(t *testing.T) {
	counts := make(map[rune]int)
	const n = 20000
	for i := 0; i < n; i++ {
		for _, r := range Suffix() {
			counts[r]++
		}
	}
	require.Len(t, counts, 36)
	expected := float64(n*SuffixLen) / 36
	for r, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.15, "character %q", r)
	}
}
