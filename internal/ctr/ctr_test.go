package ctr_test

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerhc/broken/internal/container"
	"github.com/tomerhc/broken/internal/crypterr"
	"github.com/tomerhc/broken/internal/ctr"
)

const (
	scenarioMessage = "hello world, this is my string! it may contain אותיות בעברית"
	scenarioKey     = "super_secret123!@#"
)

// countingNonce returns 0, 1, 2, ... NonceSize-1.
func countingNonce() []byte {
	nonce := make([]byte, ctr.NonceSize)
	for i := range nonce {
		nonce[i] = byte(i)
	}

	return nonce
}

func newEngine(t *testing.T, blockSize, rounds, workers int) *ctr.Engine {
	t.Helper()

	engine, err := ctr.New(blockSize, rounds, ctr.WithWorkers(workers))
	require.NoError(t, err)

	return engine
}

func TestEncryptWithNonceKnownAnswer(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, 8, 3, 1)

	c, err := engine.EncryptWithNonce([]byte("attack at dawn"), []byte("k"), countingNonce())
	require.NoError(t, err)

	require.Len(t, c.Blocks, 2)
	assert.Equal(t, "19030f1517185012", hex.EncodeToString(c.Blocks[0]))
	assert.Equal(t, "0407134107182525", hex.EncodeToString(c.Blocks[1]))
	assert.Equal(t, 3, c.Rounds)
	assert.Equal(t, 8, c.BlockSize)
}

func TestKeystreamExpandsBeyondPrimitiveWidth(t *testing.T) {
	t.Parallel()

	stream, err := ctr.Keystream(countingNonce(), 0, []byte("password"), 2, 300)
	require.NoError(t, err)

	require.Len(t, stream, 300)
	assert.Equal(t, stream[:128], stream[128:256])
	assert.Equal(t, stream[:44], stream[256:])
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size      int
		blockSize int
		rounds    int
	}{
		{size: 0, blockSize: 15, rounds: 5},
		{size: 1, blockSize: 1, rounds: 1},
		{size: 15, blockSize: 15, rounds: 5},
		{size: 16, blockSize: 15, rounds: 5},
		{size: 1000, blockSize: 100, rounds: 3},
		{size: 1001, blockSize: 128, rounds: 2},
		{size: 777, blockSize: 300, rounds: 4},
	}

	for _, tt := range tests {
		for _, workers := range []int{1, 4} {
			name := fmt.Sprintf("size=%d/block=%d/rounds=%d/workers=%d", tt.size, tt.blockSize, tt.rounds, workers)

			t.Run(name, func(t *testing.T) {
				t.Parallel()

				msg := make([]byte, tt.size)
				_, err := rand.Read(msg)
				require.NoError(t, err)

				engine := newEngine(t, tt.blockSize, tt.rounds, workers)
				key := []byte("correct horse battery staple")

				c, err := engine.Encrypt(msg, key)
				require.NoError(t, err)

				wantBlocks := (tt.size + tt.blockSize - 1) / tt.blockSize
				require.Len(t, c.Blocks, wantBlocks)

				plain, err := engine.Decrypt(c, key, 0)
				require.NoError(t, err)

				require.Len(t, plain, wantBlocks*tt.blockSize)
				assert.Equal(t, msg, plain[:tt.size])
				assert.Equal(t, make([]byte, len(plain)-tt.size), plain[tt.size:])
			})
		}
	}
}

func TestScenario(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, 15, 5, 4)

	c, err := engine.Encrypt([]byte(scenarioMessage), []byte(scenarioKey))
	require.NoError(t, err)

	plain, err := engine.Decrypt(c, []byte(scenarioKey), 0)
	require.NoError(t, err)
	assert.Equal(t, scenarioMessage, string(bytes.TrimRight(plain, "\x00")))

	wrong, err := engine.Decrypt(c, []byte("incorrect!"), 0)
	require.NoError(t, err, "a wrong key must not be reported as an error")
	assert.NotEqual(t, []byte(scenarioMessage), wrong)
	assert.NotEqual(t, scenarioMessage, string(bytes.TrimRight(wrong, "\x00")))
}

func TestNonceFreshness(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, 15, 5, 2)

	first, err := engine.Encrypt([]byte(scenarioMessage), []byte(scenarioKey))
	require.NoError(t, err)

	second, err := engine.Encrypt([]byte(scenarioMessage), []byte(scenarioKey))
	require.NoError(t, err)

	assert.Len(t, first.Nonce, ctr.NonceSize)
	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.Blocks, second.Blocks)
}

func TestWindowedDecryptMatchesFull(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, 7, 4, 3)
	key := []byte("window")
	msg := bytes.Repeat([]byte("the quick brown fox "), 20)

	c, err := engine.Encrypt(msg, key)
	require.NoError(t, err)

	full, err := engine.Decrypt(c, key, 0)
	require.NoError(t, err)

	total := c.Len()

	for _, n := range []int{0, 1, 5, total} {
		t.Run(fmt.Sprintf("last=%d", n), func(t *testing.T) {
			t.Parallel()

			tail := &container.Container{
				BlockSize: c.BlockSize,
				Nonce:     c.Nonce,
				Rounds:    c.Rounds,
				Blocks:    c.Blocks[total-n:],
			}

			got, err := engine.Decrypt(tail, key, int64(total-n))
			require.NoError(t, err)
			assert.Equal(t, full[len(full)-n*c.BlockSize:], got)
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	msg := bytes.Repeat([]byte{0xAB, 0x00, 0x17}, 5000)
	key := []byte("equivalence")
	nonce := countingNonce()

	sequential, err := newEngine(t, 33, 5, 1).EncryptWithNonce(msg, key, nonce)
	require.NoError(t, err)

	parallel, err := newEngine(t, 33, 5, 16).EncryptWithNonce(msg, key, nonce)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestInjectedRandomSource(t *testing.T) {
	t.Parallel()

	nonce := countingNonce()

	engine, err := ctr.New(8, 3, ctr.WithRandom(bytes.NewReader(nonce)))
	require.NoError(t, err)

	c, err := engine.Encrypt([]byte("attack at dawn"), []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, nonce, c.Nonce)
	assert.Equal(t, "19030f1517185012", hex.EncodeToString(c.Blocks[0]))

	_, err = engine.Encrypt([]byte("again"), []byte("k"))
	require.Error(t, err, "an exhausted random source must fail the encryption")
	assert.Equal(t, crypterr.KindIO, crypterr.KindOf(err))
}

func TestArgumentErrors(t *testing.T) {
	t.Parallel()

	_, err := ctr.New(0, 5)
	assert.True(t, crypterr.Is(err, crypterr.KindArgument))

	_, err = ctr.New(10, -1)
	assert.True(t, crypterr.Is(err, crypterr.KindArgument))

	engine := newEngine(t, 10, 2, 1)

	_, err = engine.Encrypt([]byte("msg"), nil)
	assert.ErrorIs(t, err, ctr.ErrEmptyKey)
	assert.True(t, crypterr.Is(err, crypterr.KindArgument))

	c, err := engine.Encrypt([]byte("msg"), []byte("k"))
	require.NoError(t, err)

	_, err = engine.Decrypt(c, []byte("k"), -1)
	assert.ErrorIs(t, err, ctr.ErrStartBlock)

	_, err = engine.Decrypt(c, nil, 0)
	assert.ErrorIs(t, err, ctr.ErrEmptyKey)

	long := &container.Container{BlockSize: 10, Nonce: make([]byte, 121), Rounds: 2}
	_, err = engine.Decrypt(long, []byte("k"), 0)
	assert.True(t, crypterr.Is(err, crypterr.KindFormat))
}

func TestDecryptUsesContainerParameters(t *testing.T) {
	t.Parallel()

	c, err := newEngine(t, 9, 7, 1).Encrypt([]byte(scenarioMessage), []byte(scenarioKey))
	require.NoError(t, err)

	plain, err := newEngine(t, 100, 1, 4).Decrypt(c, []byte(scenarioKey), 0)
	require.NoError(t, err)
	assert.Equal(t, scenarioMessage, string(bytes.TrimRight(plain, "\x00")))
}
