// Package ctr turns the fixed-width Feistel primitive into a counter-block mode over messages of
// any length.
//
// Each block's keystream is the primitive applied to nonce||counter (little-endian uint64),
// expanded to the block size by repetition. Keystream blocks are a pure function of
// (nonce, counter, key, rounds), so blocks are computed independently on a worker pool and
// recombined by index.
package ctr

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/tomerhc/broken/internal/container"
	"github.com/tomerhc/broken/internal/crypterr"
	"github.com/tomerhc/broken/internal/feistel"
)

const (
	// CounterSize is the width of the block counter appended to the nonce.
	CounterSize = 8
	// NonceSize is the width of the per-message nonce.
	NonceSize = feistel.BlockSize - CounterSize

	// DefaultBlockSize is the block size used when none is configured.
	DefaultBlockSize = 100
	// DefaultRounds is the Feistel round count used when none is configured.
	DefaultRounds = 5
)

var (
	// ErrEmptyKey is returned when encrypting or decrypting with an empty key.
	ErrEmptyKey = errors.New("key must not be empty")
	// ErrBlockSize is returned for a block size below one.
	ErrBlockSize = errors.New("block size must be at least 1")
	// ErrRounds is returned for a negative round count.
	ErrRounds = errors.New("round count must not be negative")
	// ErrStartBlock is returned for a negative start block.
	ErrStartBlock = errors.New("start block must not be negative")
	// ErrNonceSize is returned when a container's nonce leaves no room for the counter.
	ErrNonceSize = errors.New("nonce too long for the primitive")
)

// Engine encrypts and decrypts messages in counter-block mode.
// An Engine is safe for concurrent use.
type Engine struct {
	blockSize int
	rounds    int
	workers   int
	random    io.Reader
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of blocks computed concurrently. Values below 2 select the
// sequential path.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithRandom replaces the nonce source, which defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		e.random = r
	}
}

// New returns an engine producing blocks of blockSize bytes with the given number of rounds.
func New(blockSize, rounds int, opts ...Option) (*Engine, error) {
	if blockSize < 1 {
		return nil, crypterr.Encrypt(crypterr.KindArgument, fmt.Errorf("%w: %d", ErrBlockSize, blockSize))
	}

	if rounds < 0 {
		return nil, crypterr.Encrypt(crypterr.KindArgument, fmt.Errorf("%w: %d", ErrRounds, rounds))
	}

	engine := &Engine{
		blockSize: blockSize,
		rounds:    rounds,
		workers:   1,
		random:    rand.Reader,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine, nil
}

// BlockSize returns the configured block size.
func (e *Engine) BlockSize() int { return e.blockSize }

// Rounds returns the configured round count.
func (e *Engine) Rounds() int { return e.rounds }

// Workers returns the configured block-level concurrency.
func (e *Engine) Workers() int { return e.workers }

// NewNonce reads a fresh NonceSize-byte nonce from the engine's random source.
func (e *Engine) NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(e.random, nonce); err != nil {
		return nil, crypterr.Encrypt(crypterr.KindIO, fmt.Errorf("generating nonce: %w", err))
	}

	return nonce, nil
}

// Encrypt encrypts msg under key with a fresh nonce.
func (e *Engine) Encrypt(msg, key []byte) (*container.Container, error) {
	if len(key) == 0 {
		return nil, crypterr.Encrypt(crypterr.KindArgument, ErrEmptyKey)
	}

	nonce, err := e.NewNonce()
	if err != nil {
		return nil, err
	}

	return e.EncryptWithNonce(msg, key, nonce)
}

// EncryptWithNonce encrypts msg under key using the supplied nonce.
// The final chunk is padded with NULs to the block size. Either every block is produced or an
// error is returned.
func (e *Engine) EncryptWithNonce(msg, key, nonce []byte) (*container.Container, error) {
	if len(key) == 0 {
		return nil, crypterr.Encrypt(crypterr.KindArgument, ErrEmptyKey)
	}

	if len(nonce)+CounterSize > feistel.BlockSize {
		return nil, crypterr.Encrypt(crypterr.KindArgument, fmt.Errorf("%w: %d bytes", ErrNonceSize, len(nonce)))
	}

	count := (len(msg) + e.blockSize - 1) / e.blockSize
	blocks := make([][]byte, count)

	err := e.forEach(count, func(i int) error {
		chunk := msg[i*e.blockSize : min((i+1)*e.blockSize, len(msg))]

		block := make([]byte, e.blockSize)
		copy(block, chunk)

		if err := e.xorKeystream(block, nonce, uint64(i), key); err != nil { //nolint:gosec // i is non-negative
			return err
		}

		blocks[i] = block

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &container.Container{
		BlockSize: e.blockSize,
		Nonce:     append([]byte(nil), nonce...),
		Rounds:    e.rounds,
		Blocks:    blocks,
	}, nil
}

// Decrypt recovers the bytes of c, treating its first block as counter startBlock.
//
// The result is a whole number of blocks and may carry up to BlockSize-1 trailing NULs from the
// final block's padding. A wrong key is not detected: it yields unrelated bytes.
// Decrypt uses c's block size and round count; the engine contributes only its concurrency.
func (e *Engine) Decrypt(c *container.Container, key []byte, startBlock int64) ([]byte, error) {
	switch {
	case len(key) == 0:
		return nil, crypterr.Decrypt(crypterr.KindArgument, ErrEmptyKey)
	case startBlock < 0:
		return nil, crypterr.Decrypt(crypterr.KindArgument, fmt.Errorf("%w: %d", ErrStartBlock, startBlock))
	case len(c.Nonce)+CounterSize > feistel.BlockSize:
		return nil, crypterr.Decrypt(crypterr.KindFormat, fmt.Errorf("%w: %d bytes", ErrNonceSize, len(c.Nonce)))
	case c.Rounds < 0:
		return nil, crypterr.Decrypt(crypterr.KindFormat, fmt.Errorf("%w: %d", ErrRounds, c.Rounds))
	}

	if err := c.Validate(); err != nil {
		return nil, crypterr.Decrypt(crypterr.KindFormat, err)
	}

	out := make([]byte, c.PayloadSize())
	reader := &Engine{blockSize: c.BlockSize, rounds: c.Rounds, workers: e.workers}

	err := reader.forEach(len(c.Blocks), func(i int) error {
		dst := out[i*c.BlockSize : (i+1)*c.BlockSize]
		copy(dst, c.Blocks[i])

		return reader.xorKeystream(dst, c.Nonce, uint64(startBlock)+uint64(i), key) //nolint:gosec // both non-negative
	})
	if err != nil {
		return nil, crypterr.FromEncrypt(err)
	}

	return out, nil
}

// xorKeystream XORs the keystream block for counter into dst in place.
func (e *Engine) xorKeystream(dst, nonce []byte, counter uint64, key []byte) error {
	stream, err := Keystream(nonce, counter, key, e.rounds, len(dst))
	if err != nil {
		return err
	}

	for i := range dst {
		dst[i] ^= stream[i]
	}

	return nil
}

// forEach calls fn for every index in [0, count). With more than one worker the calls run on a
// bounded pool; the first error stops scheduling of further indices and is returned.
func (e *Engine) forEach(count int, fn func(i int) error) error {
	if e.workers < 2 || count < 2 {
		for i := range count {
			if err := fn(i); err != nil {
				return err
			}
		}

		return nil
	}

	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(e.workers)

	for i := range count {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			if ctx.Err() != nil {
				return nil //nolint:nilerr // the failing task reports the error
			}

			return fn(i)
		})
	}

	return group.Wait() //nolint:wrapcheck // errors are already classified
}

// Keystream derives size keystream bytes for the given nonce and counter.
func Keystream(nonce []byte, counter uint64, key []byte, rounds, size int) ([]byte, error) {
	input := make([]byte, len(nonce)+CounterSize)
	copy(input, nonce)
	binary.LittleEndian.PutUint64(input[len(nonce):], counter)

	block, err := feistel.Encrypt(input, key, rounds)
	if err != nil {
		return nil, crypterr.Encrypt(crypterr.KindLengthMismatch, err)
	}

	return expand(block, size), nil
}

// expand repeats b by doubling until it reaches size bytes, then truncates.
func expand(b []byte, size int) []byte {
	for len(b) < size {
		b = append(b, b...)
	}

	return b[:size]
}
