// Package errors tests for error code definitions and error handling.
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", New(ErrInvalid, "bad date"), "[INVALID_INPUT] bad date"},
		{"with cause", Wrap(ErrWriteFailed, "put day", errors.New("disk full")), "[WRITE_FAILED] put day: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIs_walksChain(t *testing.T) {
	inner := Wrap(ErrStorageUnavailable, "open", errors.New("corrupt"))
	outer := Wrap(ErrMigrationPartialFailure, "import", inner)
	wrapped := fmt.Errorf("startup: %w", outer)

	assert.True(t, Is(wrapped, ErrMigrationPartialFailure))
	assert.True(t, Is(wrapped, ErrStorageUnavailable))
	assert.False(t, Is(wrapped, ErrWriteFailed))
	assert.False(t, Is(errors.New("plain"), ErrInternal))
	assert.False(t, Is(nil, ErrInternal))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(ErrInternal, "boom", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrMediaTooLarge, CodeOf(fmt.Errorf("x: %w", New(ErrMediaTooLarge, "video"))))
	assert.Equal(t, ErrInternal, CodeOf(errors.New("plain")))
}

func TestUserVisible(t *testing.T) {
	assert.True(t, UserVisible(New(ErrMediaTooLarge, "too big")))
	assert.True(t, UserVisible(New(ErrWriteFailed, "save sticker")))
	assert.False(t, UserVisible(New(ErrMigrationPartialFailure, "legacy")))
	assert.False(t, UserVisible(errors.New("plain")))
}
