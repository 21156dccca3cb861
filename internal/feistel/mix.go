package feistel

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned by Mix when value and key cannot be brought to the same length.
var ErrLengthMismatch = errors.New("value and key lengths differ")

// Mix derives 64 pseudorandom bytes from value and key.
//
// The key is doubled until it is at least as long as value, value is NUL padded to the key's
// length, the two are XORed and hashed with SHA-256. The result is the lowercase hexadecimal
// text of the digest, which is exactly 64 bytes long.
func Mix(value, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrLengthMismatch)
	}

	expanded := append([]byte(nil), key...)
	for len(value) > len(expanded) {
		expanded = append(expanded, expanded...)
	}

	padded := make([]byte, max(len(value), len(expanded)))
	copy(padded, value)

	if len(padded) != len(expanded) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(padded), len(expanded))
	}

	for i := range padded {
		padded[i] ^= expanded[i]
	}

	digest := sha256.Sum256(padded)

	out := make([]byte, hex.EncodedLen(len(digest)))
	hex.Encode(out, digest[:])

	return out, nil
}
