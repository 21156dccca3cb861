package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"
)

// ErrNoKey is returned when no key was given and none can be prompted for.
var ErrNoKey = errors.New("no key given: use --key, --key-file or run interactively")

// Terminal is the input a key can be prompted from.
type Terminal interface {
	io.Reader
	Fd() uintptr
}

// LoadKey returns the key bytes from --key, --key-file, or, when in is a terminal,
// a prompt written to out and read without echo. Trailing newlines of key files are dropped.
func (c *Config) LoadKey(in Terminal, out io.Writer) ([]byte, error) {
	switch {
	case c.Key != "":
		return []byte(c.Key), nil
	case c.KeyFile != "":
		data, err := os.ReadFile(filepath.Clean(c.KeyFile))
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		key := bytes.TrimRight(data, "\r\n")
		if len(key) == 0 {
			return nil, fmt.Errorf("key file %q is empty", c.KeyFile)
		}

		return key, nil
	}

	if in == nil || !term.IsTerminal(int(in.Fd())) { //nolint:gosec // fd fits in int
		return nil, ErrNoKey
	}

	fmt.Fprint(out, "Key: ")

	key, err := term.ReadPassword(int(in.Fd())) //nolint:gosec // fd fits in int

	fmt.Fprintln(out)

	if err != nil {
		return nil, fmt.Errorf("reading key from terminal: %w", err)
	}

	if len(key) == 0 {
		return nil, ErrNoKey
	}

	return key, nil
}
