package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveSearchDir validates that dir exists and is a directory, returning its
// cleaned absolute form
func ResolveSearchDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve directory '%s': %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory does not exist: %s", dir)
		}
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path '%s' exists but is not a directory", dir)
	}
	return abs, nil
}
