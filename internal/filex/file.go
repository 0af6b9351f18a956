// Package filex contains filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the directory for path (including parents) if it does
// not exist and returns the cleaned absolute path.
func EnsureDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// EnsureParentDir creates the parent directory of a file path so the file
// can be created afterwards. Returns the file path unchanged.
func EnsureParentDir(path string) (string, error) {
	if _, err := EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	return path, nil
}
