package container

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tomerhc/broken/internal/crypterr"
)

// ReadFile parses the whole container stored at path.
func ReadFile(path string) (c *Container, err error) {
	err = withFile(path, func(f *os.File, size int64) error {
		c, err = Parse(f, size)

		return err
	})

	return c, err
}

// ReadHead parses the header and nonce of the container at path and reads only its first n blocks.
// The blocks start at counter 0.
func ReadHead(path string, n int) (c *Container, err error) {
	err = withFile(path, func(f *os.File, size int64) error {
		lay, err := readLayout(f, size)
		if err != nil {
			return err
		}

		if n < 0 || n > lay.Blocks {
			return outOfRange(n, lay.Blocks)
		}

		blocks, err := readBlocks(f, lay.BlockSize, n)
		if err != nil {
			return err
		}

		c = &Container{BlockSize: lay.BlockSize, Nonce: lay.Nonce, Rounds: lay.Rounds, Blocks: blocks}

		return nil
	})

	return c, err
}

// ReadTail parses the header and nonce of the container at path, seeks past all but the last n
// blocks and reads them. It also returns the counter of the first returned block, which must be
// passed as the start block when decrypting.
func ReadTail(path string, n int) (c *Container, start int64, err error) {
	err = withFile(path, func(f *os.File, size int64) error {
		lay, err := readLayout(f, size)
		if err != nil {
			return err
		}

		if n < 0 || n > lay.Blocks {
			return outOfRange(n, lay.Blocks)
		}

		skip := lay.Blocks - n
		offset := lay.dataOffset() + int64(skip)*int64(lay.BlockSize)

		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return crypterr.Decrypt(crypterr.KindIO, fmt.Errorf("seeking to block %d: %w", skip, err))
		}

		blocks, err := readBlocks(f, lay.BlockSize, n)
		if err != nil {
			return err
		}

		c = &Container{BlockSize: lay.BlockSize, Nonce: lay.Nonce, Rounds: lay.Rounds, Blocks: blocks}
		start = int64(skip)

		return nil
	})

	return c, start, err
}

// WriteFile serializes c to path, creating or truncating it.
func WriteFile(path string, c *Container) (err error) {
	const ownerReadWrite = 0o600

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, ownerReadWrite)
	if err != nil {
		return crypterr.Encrypt(crypterr.KindIO, fmt.Errorf("creating %q: %w", path, err))
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = crypterr.Encrypt(crypterr.KindIO, fmt.Errorf("closing %q: %w", path, cerr))
		}
	}()

	if _, err := c.WriteTo(f); err != nil {
		return crypterr.WithPath(err, path)
	}

	return nil
}

// withFile opens path for reading, passes it with its size to fn and always closes it.
func withFile(path string, fn func(f *os.File, size int64) error) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return crypterr.Decrypt(crypterr.KindIO, fmt.Errorf("opening %q: %w", path, err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return crypterr.Decrypt(crypterr.KindIO, fmt.Errorf("stat %q: %w", path, err))
	}

	return crypterr.WithPath(fn(f, info.Size()), path)
}

func outOfRange(n, total int) error {
	return crypterr.Decrypt(crypterr.KindArgument, fmt.Errorf("%w: %d blocks requested, %d present", ErrOutOfRange, n, total))
}
