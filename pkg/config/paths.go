package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvHome relocates the state directory, mainly for tests and CI.
const EnvHome = "SIHIRI_HOME"

// ConfigDir returns the directory holding the config file and the session:
// $SIHIRI_HOME when set, ~/.sihiri otherwise.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".sihiri"), nil
}

// EnsureConfigDir returns ConfigDir, creating it owner-only when missing.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath resolves name inside ConfigDir. Absolute names are returned
// unchanged.
func DefaultPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
