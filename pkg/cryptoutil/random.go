package cryptoutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrInvalidLength is returned when a caller asks for a negative number of
// random bytes.
var ErrInvalidLength = errors.New("cryptoutil: invalid length")

// DefaultSaltLen is the salt size used when callers have no reason to pick
// another one.
const DefaultSaltLen = 16

// RandomBytes returns n cryptographically secure random bytes. n == 0 yields
// an empty slice, not an error. Safe for concurrent use; every call draws
// fresh entropy.
func RandomBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("cryptoutil: read entropy: %w", err)
	}
	return buf, nil
}

// RandomHex returns the hex encoding of n random bytes (2n characters).
func RandomHex(n int) (string, error) {
	buf, err := RandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateSalt returns a fresh random salt of n bytes for key derivation.
// n == 0 selects DefaultSaltLen. Salts must be unique per derived secret;
// callers persist them alongside the ciphertext.
func GenerateSalt(n int) ([]byte, error) {
	if n == 0 {
		n = DefaultSaltLen
	}
	return RandomBytes(n)
}
