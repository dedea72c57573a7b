// Package cryptoutil provides the keyed-hash, key-derivation, randomness,
// and authenticated-encryption primitives the evidence ledger is built on.
// Everything here is deterministic given its inputs except the random
// generators, which draw from crypto/rand.
package cryptoutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HMACHex computes the hex-encoded HMAC-SHA256 of data under key.
func HMACHex(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// ConstantTimeEqual compares two byte slices in constant time. When the
// lengths differ it still burns a full comparison pass over one of the
// buffers so the early return does not leak where the mismatch is.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		longer := a
		if len(b) > len(a) {
			longer = b
		}
		subtle.ConstantTimeCompare(longer, longer)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ConstantTimeEqualHex is ConstantTimeEqual over two hex strings.
func ConstantTimeEqualHex(a, b string) bool {
	return ConstantTimeEqual([]byte(a), []byte(b))
}
