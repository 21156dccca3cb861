// Package container holds the in-memory and on-disk form of an encrypted message.
//
// The on-disk layout is a fixed header followed by the payload, all integers little-endian int32:
//
//	[block_size][nonce_size][rounds][nonce: nonce_size bytes][block 0][block 1]...[block n]
//
// There is no message length, version tag or checksum: the plaintext length is only known up to
// the padding of the final block.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tomerhc/broken/internal/crypterr"
)

// HeaderSize is the size of the fixed header preceding the nonce.
const HeaderSize = 3 * 4

var (
	// ErrCorrupted marks input that is not an encrypted container or has been damaged.
	ErrCorrupted = errors.New("file not encrypted or corrupted")
	// ErrOutOfRange is returned when a window asks for more blocks than the container holds.
	ErrOutOfRange = errors.New("block window out of range")
	// ErrBlockSize is returned when a block's length differs from the container's block size.
	ErrBlockSize = errors.New("block length differs from block size")
)

// Container is an encrypted message: the nonce, the round count used to derive its keystream and
// the ordered ciphertext blocks, each exactly BlockSize bytes long.
//
// A Container is owned by whoever produced it; decrypting or writing it may reuse its buffers.
type Container struct {
	BlockSize int
	Nonce     []byte
	Rounds    int
	Blocks    [][]byte
}

// Len returns the number of blocks.
func (c *Container) Len() int {
	return len(c.Blocks)
}

// PayloadSize returns the number of ciphertext bytes.
func (c *Container) PayloadSize() int64 {
	return int64(c.BlockSize) * int64(len(c.Blocks))
}

// Validate checks the structural invariants required for serialization.
func (c *Container) Validate() error {
	if c.BlockSize <= 0 || c.BlockSize > math.MaxInt32 {
		return fmt.Errorf("%w: block size %d", ErrBlockSize, c.BlockSize)
	}

	if len(c.Nonce) > math.MaxInt32 {
		return fmt.Errorf("nonce of %d bytes does not fit the header", len(c.Nonce))
	}

	if c.Rounds < math.MinInt32 || c.Rounds > math.MaxInt32 {
		return fmt.Errorf("round count %d does not fit the header", c.Rounds)
	}

	for i, block := range c.Blocks {
		if len(block) != c.BlockSize {
			return fmt.Errorf("%w: block %d is %d bytes, want %d", ErrBlockSize, i, len(block), c.BlockSize)
		}
	}

	return nil
}

// WriteTo serializes the container to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, crypterr.Encrypt(crypterr.KindArgument, err)
	}

	hdr := header{
		BlockSize: int32(c.BlockSize),  //nolint:gosec // bounded by Validate
		NonceSize: int32(len(c.Nonce)), //nolint:gosec // bounded by Validate
		Rounds:    int32(c.Rounds),     //nolint:gosec // bounded by Validate
	}

	var written int64

	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return written, crypterr.Encrypt(crypterr.KindIO, fmt.Errorf("writing header: %w", err))
	}

	written += HeaderSize

	n, err := w.Write(c.Nonce)
	written += int64(n)

	if err != nil {
		return written, crypterr.Encrypt(crypterr.KindIO, fmt.Errorf("writing nonce: %w", err))
	}

	for i, block := range c.Blocks {
		n, err := w.Write(block)
		written += int64(n)

		if err != nil {
			return written, crypterr.Encrypt(crypterr.KindIO, fmt.Errorf("writing block %d: %w", i, err))
		}
	}

	return written, nil
}

// MarshalBinary returns the serialized container.
func (c *Container) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.Grow(HeaderSize + len(c.Nonce) + int(c.PayloadSize()))

	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary parses a serialized container.
func (c *Container) UnmarshalBinary(data []byte) error {
	parsed, err := Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	*c = *parsed

	return nil
}

// Parse reads a whole container of the given total size from r.
func Parse(r io.Reader, size int64) (*Container, error) {
	lay, err := readLayout(r, size)
	if err != nil {
		return nil, err
	}

	blocks, err := readBlocks(r, lay.BlockSize, lay.Blocks)
	if err != nil {
		return nil, err
	}

	return &Container{BlockSize: lay.BlockSize, Nonce: lay.Nonce, Rounds: lay.Rounds, Blocks: blocks}, nil
}

// readBlocks reads count blocks of blockSize bytes from r.
func readBlocks(r io.Reader, blockSize, count int) ([][]byte, error) {
	payload := make([]byte, blockSize*count)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, crypterr.Decrypt(crypterr.KindIO, fmt.Errorf("reading blocks: %w", err))
	}

	blocks := make([][]byte, count)
	for i := range blocks {
		blocks[i] = payload[i*blockSize : (i+1)*blockSize : (i+1)*blockSize]
	}

	return blocks, nil
}
