package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dock/internal/config"
)

// ErrNotFound is returned when no record exists for a container name.
var ErrNotFound = errors.New("container not found")

// Store persists one JSON record per container under <root>/containers.
// It is constructed once with a resolved state root and passed to every
// operation; there is no package-level state.
type Store struct {
	root string
}

// New returns a Store rooted at the given state directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the state root the store was constructed with.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) recordPath(name string) string {
	return filepath.Join(s.root, config.ContainerDir, name+".json")
}

// Exists reports whether a record exists for name. No side effects.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.recordPath(name))
	return err == nil
}

// Save creates or overwrites the record for cfg.Name. The write goes to a
// temp file in the same directory followed by a rename, so a concurrent
// reader never observes a partial record.
func (s *Store) Save(cfg *ContainerConfig) error {
	dir := filepath.Join(s.root, config.ContainerDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating container dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, cfg.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.recordPath(cfg.Name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming record: %w", err)
	}
	return nil
}

// Load reads the record for name. Returns ErrNotFound if none exists.
func (s *Store) Load(name string) (*ContainerConfig, error) {
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var cfg ContainerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing record for %s: %w", name, err)
	}
	return &cfg, nil
}

// Delete removes the record for name. Returns ErrNotFound if absent.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.recordPath(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// ListAll returns every persisted record in directory order. Callers sort
// if they need a stable display order.
func (s *Store) ListAll() ([]*ContainerConfig, error) {
	dir := filepath.Join(s.root, config.ContainerDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading container dir: %w", err)
	}

	var configs []*ContainerConfig
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		cfg, err := s.Load(name[:len(name)-len(".json")])
		if err != nil {
			// One unreadable record must not take down the whole
			// listing; the container is still reachable by name.
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
