package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
)

const (
	// PasswordMinLength is the minimum accepted archive password length.
	PasswordMinLength = 8

	saltLength    = 32
	kdfIterations = 100000
	keyLength     = 32
)

// ValidatePassword checks a password against the minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return apperrors.New(apperrors.ErrInvalid,
			fmt.Sprintf("password must be at least %d characters", PasswordMinLength))
	}
	return nil
}

// seal encrypts data with AES-256-GCM under a key derived from password.
// The result is salt | nonce | ciphertext, each length-prefixed by one byte
// except the ciphertext. The password itself is never written.
func seal(data []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, 2+len(salt)+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, byte(len(salt)))
	out = append(out, salt...)
	out = append(out, byte(len(nonce)))
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// open reverses seal. A wrong password and a tampered body are
// indistinguishable and both report ErrInvalidPassword.
func open(body []byte, password string) ([]byte, error) {
	salt, rest, err := readPrefixed(body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCorruptedArchive, "failed to read salt", err)
	}
	nonce, ciphertext, err := readPrefixed(rest)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCorruptedArchive, "failed to read nonce", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, apperrors.New(apperrors.ErrCorruptedArchive, fmt.Sprintf("bad nonce length %d", len(nonce)))
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidPassword, "wrong password or damaged archive", err)
	}
	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, keyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to create cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to create GCM", err)
	}
	return gcm, nil
}

func readPrefixed(data []byte) (field, rest []byte, err error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("missing length byte")
	}
	n := int(data[0])
	if len(data) < 1+n {
		return nil, nil, fmt.Errorf("field of %d bytes truncated at %d", n, len(data)-1)
	}
	return data[1 : 1+n], data[1+n:], nil
}
