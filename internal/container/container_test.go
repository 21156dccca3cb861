package container_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerhc/broken/internal/container"
	"github.com/tomerhc/broken/internal/crypterr"
)

// sample builds a container with count blocks whose bytes encode their index.
func sample(blockSize, count int) *container.Container {
	c := &container.Container{
		BlockSize: blockSize,
		Nonce:     bytes.Repeat([]byte{0x5A}, 120),
		Rounds:    5,
		Blocks:    make([][]byte, count),
	}

	for i := range c.Blocks {
		c.Blocks[i] = bytes.Repeat([]byte{byte(i)}, blockSize)
	}

	return c
}

func writeSample(t *testing.T, c *container.Container) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample_enc")
	require.NoError(t, container.WriteFile(path, c))

	return path
}

func TestLayout(t *testing.T) {
	t.Parallel()

	c := &container.Container{
		BlockSize: 2,
		Nonce:     []byte{0xAA, 0xBB, 0xCC},
		Rounds:    -3,
		Blocks:    [][]byte{{1, 2}, {3, 4}},
	}

	data, err := c.MarshalBinary()
	require.NoError(t, err)

	want := []byte{
		2, 0, 0, 0,
		3, 0, 0, 0,
		0xFD, 0xFF, 0xFF, 0xFF,
		0xAA, 0xBB, 0xCC,
		1, 2, 3, 4,
	}
	assert.Equal(t, want, data)
}

func TestSerializationRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []*container.Container{
		sample(15, 0),
		sample(1, 1),
		sample(100, 37),
		{BlockSize: 4, Nonce: nil, Rounds: 0, Blocks: [][]byte{{9, 9, 9, 9}}},
	} {
		data, err := c.MarshalBinary()
		require.NoError(t, err)

		var parsed container.Container
		require.NoError(t, parsed.UnmarshalBinary(data))

		assert.Equal(t, c.BlockSize, parsed.BlockSize)
		assert.Equal(t, c.Rounds, parsed.Rounds)
		assert.Equal(t, len(c.Nonce), len(parsed.Nonce))
		assert.True(t, bytes.Equal(c.Nonce, parsed.Nonce))
		require.Equal(t, c.Len(), parsed.Len())

		for i := range c.Blocks {
			assert.Equal(t, c.Blocks[i], parsed.Blocks[i])
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	c := sample(30, 12)
	path := writeSample(t, c)

	got, err := container.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestReadHead(t *testing.T) {
	t.Parallel()

	c := sample(10, 8)
	path := writeSample(t, c)

	head, err := container.ReadHead(path, 3)
	require.NoError(t, err)

	assert.Equal(t, c.Nonce, head.Nonce)
	assert.Equal(t, c.Rounds, head.Rounds)
	assert.Equal(t, c.Blocks[:3], head.Blocks)

	all, err := container.ReadHead(path, 8)
	require.NoError(t, err)
	assert.Equal(t, c.Blocks, all.Blocks)

	_, err = container.ReadHead(path, 9)
	require.ErrorIs(t, err, container.ErrOutOfRange)
	assert.True(t, crypterr.Is(err, crypterr.KindArgument))
}

func TestReadTail(t *testing.T) {
	t.Parallel()

	c := sample(10, 8)
	path := writeSample(t, c)

	tail, start, err := container.ReadTail(path, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(5), start)
	assert.Equal(t, c.Blocks[5:], tail.Blocks)

	none, start, err := container.ReadTail(path, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(8), start)
	assert.Empty(t, none.Blocks)

	_, _, err = container.ReadTail(path, 9)
	require.ErrorIs(t, err, container.ErrOutOfRange)
}

func TestCorruptedInput(t *testing.T) {
	t.Parallel()

	header := func(blockSize, nonceSize, rounds int32) []byte {
		var buf bytes.Buffer
		_ = binary.Write(&buf, binary.LittleEndian, []int32{blockSize, nonceSize, rounds})

		return buf.Bytes()
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short header", data: []byte{1, 0, 0}},
		{name: "nonce larger than file", data: append(header(4, 500, 5), make([]byte, 20)...)},
		{name: "negative nonce", data: header(4, -1, 5)},
		{name: "zero block size", data: append(header(0, 2, 5), 1, 2)},
		{name: "partial block", data: append(header(4, 2, 5), 1, 2, 3, 4, 5)},
		{name: "plain text", data: []byte("this is not an encrypted file at all")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "corrupt")
			require.NoError(t, os.WriteFile(path, tt.data, 0o600))

			_, err := container.ReadFile(path)
			require.Error(t, err)
			assert.True(t, crypterr.Is(err, crypterr.KindFormat), "got %v", err)

			_, err = container.ReadHead(path, 0)
			assert.True(t, crypterr.Is(err, crypterr.KindFormat), "got %v", err)

			_, _, err = container.ReadTail(path, 0)
			assert.True(t, crypterr.Is(err, crypterr.KindFormat), "got %v", err)
		})
	}
}

func TestMissingFile(t *testing.T) {
	t.Parallel()

	_, err := container.ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, crypterr.Is(err, crypterr.KindIO))
}

func TestWriteRejectsRaggedBlocks(t *testing.T) {
	t.Parallel()

	c := sample(4, 2)
	c.Blocks[1] = []byte{1}

	_, err := c.MarshalBinary()
	require.ErrorIs(t, err, container.ErrBlockSize)
	assert.True(t, crypterr.Is(err, crypterr.KindArgument))
}
