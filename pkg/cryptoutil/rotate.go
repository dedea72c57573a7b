package cryptoutil

import "fmt"

// RotateKey re-encrypts every item from oldKey to newKey, drawing a fresh IV
// for each. The first item that fails to decrypt aborts the whole rotation —
// callers never receive a partially rotated list presented as success.
func RotateKey(items []Encrypted, oldKey, newKey []byte) ([]Encrypted, error) {
	rotated := make([]Encrypted, 0, len(items))
	for i, item := range items {
		plaintext, err := Decrypt(item, oldKey)
		if err != nil {
			return nil, fmt.Errorf("cryptoutil: rotate item %d: %w", i, err)
		}
		reEnc, err := Encrypt(plaintext, newKey)
		if err != nil {
			return nil, fmt.Errorf("cryptoutil: rotate item %d: %w", i, err)
		}
		rotated = append(rotated, reEnc)
	}
	return rotated, nil
}
