package outdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Ensure creates dir, including any missing parents, and returns its
// absolute path. An existing non-directory at dir is an error.
func Ensure(dir string) (string, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return "", fmt.Errorf("output path '%s' is not a directory", path)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}

	return path, nil
}

// FilePath returns the destination path for filename inside dir
func FilePath(dir, filename string) string {
	return filepath.Join(dir, filename)
}

// FileExists checks if a regular file named filename exists in dir
func FileExists(dir, filename string) bool {
	info, err := os.Stat(FilePath(dir, filename))
	if err != nil {
		return false
	}
	return !info.IsDir()
}
