package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeySize is returned when a key is not 32 bytes.
	ErrInvalidKeySize = errors.New("cryptoutil: key must be 32 bytes")

	// ErrAuthFailed is returned when GCM authentication fails. The
	// ciphertext, IV, or tag was modified, or the key is wrong — no
	// plaintext is ever returned in that case.
	ErrAuthFailed = errors.New("cryptoutil: authentication failed")

	// ErrMalformed is returned when an encrypted payload cannot even be
	// decoded (bad hex, truncated fields).
	ErrMalformed = errors.New("cryptoutil: malformed encrypted payload")
)

const (
	ivSize  = 12 // 96-bit GCM nonce
	tagSize = 16 // 128-bit auth tag
)

// Encrypted is an AES-256-GCM ciphertext with its IV and authentication tag
// held separately, each hex-encoded.
type Encrypted struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	AuthTag    string `json:"auth_tag"`
}

// Encrypt seals plaintext under key with AES-256-GCM. A fresh random 96-bit
// IV is drawn per call; two encryptions of the same plaintext never share an
// IV or ciphertext, including under concurrent calls.
func Encrypt(plaintext, key []byte) (Encrypted, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return Encrypted{}, err
	}

	iv, err := RandomBytes(ivSize)
	if err != nil {
		return Encrypted{}, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	split := len(sealed) - tagSize

	return Encrypted{
		Ciphertext: hex.EncodeToString(sealed[:split]),
		IV:         hex.EncodeToString(iv),
		AuthTag:    hex.EncodeToString(sealed[split:]),
	}, nil
}

// Decrypt opens an Encrypted payload. Any single-bit change to the
// ciphertext, IV, or tag yields ErrAuthFailed, never partial plaintext.
func Decrypt(enc Encrypted, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext, err := hex.DecodeString(enc.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", ErrMalformed, err)
	}
	iv, err := hex.DecodeString(enc.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrMalformed, err)
	}
	if len(iv) != ivSize {
		return nil, fmt.Errorf("%w: iv is %d bytes, want %d", ErrMalformed, len(iv), ivSize)
	}
	tag, err := hex.DecodeString(enc.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("%w: auth tag: %v", ErrMalformed, err)
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: cipher init: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: gcm init: %w", err)
	}
	return gcm, nil
}
