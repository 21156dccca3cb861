package encryption

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tomerhc/broken/internal/container"
	"github.com/tomerhc/broken/internal/crypterr"
	"github.com/tomerhc/broken/internal/fileutil"
)

// encryptFile encrypts file into a container written atomically next to it.
func (p *Processor) encryptFile(file string) (Result, error) {
	outPath, err := p.outputPath(file)
	if err != nil {
		return Result{}, crypterr.Encrypt(crypterr.KindArgument, err)
	}

	data, err := fileutil.ReadFile(file)
	if err != nil {
		return Result{}, crypterr.Encrypt(crypterr.KindIO, err)
	}

	c, err := p.engine.Encrypt(data, p.key)
	if err != nil {
		return Result{}, fmt.Errorf("encrypting file: %w", err)
	}

	size, err := fileutil.WriteAtomic(file, outPath, p.cfg.PreserveTimestamps, func(w io.Writer) error {
		_, err := c.WriteTo(w)

		return err
	})
	if err != nil {
		return Result{}, encryptErr(err)
	}

	return Result{Output: outPath, OutputSize: size, Blocks: c.Len()}, nil
}

// decryptFile decrypts file, or the configured window of it, and writes the plaintext atomically.
func (p *Processor) decryptFile(file string) (Result, error) {
	outPath, err := p.outputPath(file)
	if err != nil {
		return Result{}, crypterr.Decrypt(crypterr.KindArgument, err)
	}

	plain, blocks, err := p.open(file, p.cfg.Trim)
	if err != nil {
		return Result{}, err
	}

	size, err := fileutil.WriteAtomic(file, outPath, p.cfg.PreserveTimestamps, func(w io.Writer) error {
		_, err := w.Write(plain)

		return err
	})
	if err != nil {
		return Result{}, decryptErr(err)
	}

	return Result{Output: outPath, OutputSize: size, Blocks: blocks}, nil
}

// grepFile decrypts file in memory and collects the lines matching the search pattern.
func (p *Processor) grepFile(file string) (Result, error) {
	plain, blocks, err := p.open(file, true)
	if err != nil {
		return Result{}, err
	}

	return Result{Blocks: blocks, Matches: matchLines(p.search, plain)}, nil
}

// open reads the container at file, honoring --head and --tail, and decrypts it in memory.
func (p *Processor) open(file string, trim bool) ([]byte, int, error) {
	var (
		c     *container.Container
		start int64
		err   error
	)

	switch {
	case p.cfg.Head > 0:
		c, err = container.ReadHead(file, p.cfg.Head)
	case p.cfg.Tail > 0:
		c, start, err = container.ReadTail(file, p.cfg.Tail)
	default:
		c, err = container.ReadFile(file)
	}

	if err != nil {
		return nil, 0, decryptErr(err)
	}

	plain, err := p.engine.Decrypt(c, p.key, start)
	if err != nil {
		return nil, 0, decryptErr(err)
	}

	if trim {
		plain = bytes.TrimRight(plain, "\x00")
	}

	return plain, c.Len(), nil
}
