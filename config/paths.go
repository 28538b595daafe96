package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvHome overrides the ola home directory (default ~/.ola).
const EnvHome = "OLA_HOME"

// HomeDir returns the directory holding ola's config, settings and data.
func HomeDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ola"), nil
}

// HomePath joins elem onto HomeDir.
func HomePath(elem ...string) (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0700)
}
