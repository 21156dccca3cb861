package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile returns the whole contents of path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	return data, nil
}

// WriteFile writes data to path with owner read/write permissions, replacing any existing file.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(filepath.Clean(path), data, ownerReadWrite); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}
