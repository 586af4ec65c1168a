package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const DefaultResultPath = "output.xlsx"

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	d := filepath.Dir(path)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", d, err)
	}
	return nil
}

// Exists reports whether path exists; stat errors other than not-exist are
// returned as is.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
