// Package feistel implements the fixed-width keystream primitive used by the counter-block engine.
//
// The network operates on 128-byte blocks split into two 64-byte halves, with a 64-byte key
// whose bytes are incremented once per round. The round function is a hash of the right half
// XORed with the round key, see Mix.
//
// Only the forward direction exists: the counter-block mode never inverts the primitive.
package feistel

import (
	"fmt"
)

const (
	// BlockSize is the width of the primitive's input and output.
	BlockSize = 128
	// HalfSize is the width of each Feistel half.
	HalfSize = BlockSize / 2
	// KeySize is the width of the round key.
	KeySize = 64
)

// Encrypt runs rounds Feistel rounds over input and returns the 128-byte result.
//
// input is padded with trailing NULs to BlockSize; key is expanded by self-concatenation and
// truncated to KeySize. Encrypt panics if input is longer than BlockSize or key is empty,
// both of which are programming errors in the caller.
func Encrypt(input, key []byte, rounds int) ([]byte, error) {
	if len(input) > BlockSize {
		panic(fmt.Sprintf("feistel: input is %d bytes, want at most %d", len(input), BlockSize))
	}

	block := make([]byte, BlockSize)
	copy(block, input)

	roundKey := ExpandKey(key, KeySize)

	for range rounds {
		if err := round(block, roundKey); err != nil {
			return nil, err
		}

		incrementKey(roundKey)
	}

	return block, nil
}

// round performs a single round in place:
//
//	[ left | right ] -> [ right | left ^ Mix(right, k) ]
func round(block, roundKey []byte) error {
	left, right := block[:HalfSize], block[HalfSize:]

	f, err := Mix(right, roundKey)
	if err != nil {
		return err
	}

	next := make([]byte, BlockSize)
	copy(next, right)

	for i := range HalfSize {
		next[HalfSize+i] = left[i] ^ f[i]
	}

	copy(block, next)

	return nil
}

// incrementKey adds one to every key byte, wrapping at 256.
func incrementKey(key []byte) {
	for i := range key {
		key[i]++
	}
}

// ExpandKey repeats key by doubling until it is at least size bytes long and truncates the result.
// The returned slice never aliases key. ExpandKey panics on an empty key.
func ExpandKey(key []byte, size int) []byte {
	if len(key) == 0 {
		panic("feistel: empty key")
	}

	out := append(make([]byte, 0, max(size, len(key))), key...)
	for len(out) < size {
		out = append(out, out...)
	}

	return out[:size]
}
