package store

import (
	"fmt"
	"os"
	"path/filepath"

	"dock/internal/config"
)

// RootPath returns the filesystem root for a container. Pure function of
// the name.
func (s *Store) RootPath(name string) string {
	return filepath.Join(s.root, config.RootfsDir, name)
}

// LogPath returns the log file path for a container. Pure function of the
// name.
func (s *Store) LogPath(name string) string {
	return filepath.Join(s.root, config.LogDir, name+".log")
}

// EnsureRoot creates the container's filesystem root if it is absent.
func (s *Store) EnsureRoot(name string) error {
	if err := os.MkdirAll(s.RootPath(name), 0o755); err != nil {
		return fmt.Errorf("creating container root: %w", err)
	}
	return nil
}

// DestroyRoot removes the container's filesystem root and its log file.
// Failures are surfaced, not swallowed; a missing log file is fine.
func (s *Store) DestroyRoot(name string) error {
	if err := os.RemoveAll(s.RootPath(name)); err != nil {
		return fmt.Errorf("removing container root: %w", err)
	}
	if err := os.Remove(s.LogPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing log file: %w", err)
	}
	return nil
}
