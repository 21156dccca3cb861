package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tomerhc/broken/internal/crypterr"
)

// header is the fixed prefix of a serialized container.
type header struct {
	BlockSize int32
	NonceSize int32
	Rounds    int32
}

// layout describes a container whose header and nonce have been consumed.
type layout struct {
	BlockSize int
	Nonce     []byte
	Rounds    int
	// Blocks is the number of whole blocks following the nonce.
	Blocks int
}

// dataOffset is the file offset of the first block.
func (l layout) dataOffset() int64 {
	return HeaderSize + int64(len(l.Nonce))
}

// readLayout consumes the header and nonce from r and derives the block count from size,
// the total length of the serialized container.
func readLayout(r io.Reader, size int64) (layout, error) {
	if size < HeaderSize {
		return layout{}, corrupted("file is %d bytes, shorter than the header", size)
	}

	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return layout{}, corrupted("truncated header")
		}

		return layout{}, crypterr.Decrypt(crypterr.KindIO, fmt.Errorf("reading header: %w", err))
	}

	remaining := size - HeaderSize

	switch {
	case hdr.BlockSize <= 0:
		return layout{}, corrupted("block size %d", hdr.BlockSize)
	case hdr.NonceSize < 0 || int64(hdr.NonceSize) > remaining:
		return layout{}, corrupted("nonce size %d exceeds remaining %d bytes", hdr.NonceSize, remaining)
	}

	payload := remaining - int64(hdr.NonceSize)
	if payload%int64(hdr.BlockSize) != 0 {
		return layout{}, corrupted("payload of %d bytes is not a multiple of block size %d", payload, hdr.BlockSize)
	}

	nonce := make([]byte, hdr.NonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return layout{}, crypterr.Decrypt(crypterr.KindIO, fmt.Errorf("reading nonce: %w", err))
	}

	return layout{
		BlockSize: int(hdr.BlockSize),
		Nonce:     nonce,
		Rounds:    int(hdr.Rounds),
		Blocks:    int(payload / int64(hdr.BlockSize)),
	}, nil
}

func corrupted(format string, args ...any) error {
	return crypterr.Decrypt(crypterr.KindFormat, fmt.Errorf("%w: "+format, append([]any{ErrCorrupted}, args...)...))
}
