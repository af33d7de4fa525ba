// Package filex resolves and creates the client's local data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir makes sure dir exists and returns its absolute path.
//
// A relative dir is resolved against the working directory, and a leading
// "~/" against the user's home directory.
func EnsureDir(dir string) (string, error) {
	path, err := Resolve(dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", path, err)
	}

	return path, nil
}

// Resolve turns dir into an absolute path without touching the filesystem.
func Resolve(dir string) (string, error) {
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		return filepath.Join(home, rest), nil
	}

	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(cwd, dir), nil
}
