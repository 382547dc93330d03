// Package uuid generates record identifiers.
//
// Identifiers are a millisecond timestamp followed by a random base-36 suffix,
// e.g. "1767312000000k3j9x0q2a". They sort roughly by creation time and stay
// compatible with identifiers written by earlier versions of the app.
package uuid

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SuffixLen is the length of the random part of an identifier.
const SuffixLen = 9

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var idRegex = regexp.MustCompile(`^[0-9]{13}[0-9a-z]{9}$`)

// New generates an identifier stamped with the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt generates an identifier stamped with t.
func NewAt(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + Suffix()
}

// Suffix returns SuffixLen uniformly random base-36 characters drawn from v4
// UUIDs.
func Suffix() string {
	return suffix(uuid.New)
}

// acceptBelow is the largest multiple of 36 that fits in a byte; bytes at or
// above it are rejected so every character is equally likely.
const acceptBelow = 252

// suffix skips byte 6 (version nibble) and byte 8 (variant bits) of each
// UUID, which are not fully random.
func suffix(next func() uuid.UUID) string {
	out := make([]byte, 0, SuffixLen)
	for len(out) < SuffixLen {
		u := next()
		for i, b := range u {
			if i == 6 || i == 8 || b >= acceptBelow {
				continue
			}
			out = append(out, base36[int(b)%len(base36)])
			if len(out) == SuffixLen {
				break
			}
		}
	}
	return string(out)
}

// IsValid reports whether s has the shape produced by New.
func IsValid(s string) bool {
	return idRegex.MatchString(s)
}

// Validate returns an error if s was not produced by New.
func Validate(s string) error {
	if !IsValid(s) {
		return fmt.Errorf("invalid record id: %q", s)
	}
	return nil
}

// Timestamp extracts the creation time from an identifier produced by New.
func Timestamp(s string) (time.Time, error) {
	if len(s) < 13 {
		return time.Time{}, fmt.Errorf("record id too short: %q", s)
	}
	ms, err := strconv.ParseInt(s[:13], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("record id has no timestamp: %w", err)
	}
	return time.UnixMilli(ms), nil
}
