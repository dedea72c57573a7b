package cryptoutil

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the derived key length in bytes (AES-256).
	KeySize = 32

	// kdfIterations is fixed; changing it invalidates every previously
	// derived key, so it is not caller-configurable.
	kdfIterations = 100_000
)

// DeriveKey stretches a password into a 32-byte key with
// PBKDF2-HMAC-SHA512. Deterministic for a given (password, salt) pair;
// different salts yield unrelated keys. The salt must come from
// GenerateSalt (or equivalent CSPRNG output) and be unique per secret.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIterations, KeySize, sha512.New)
}
