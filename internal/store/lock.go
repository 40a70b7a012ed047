package store

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"dock/internal/config"
)

// Lock is a per-container advisory file lock. It serializes the
// load-mutate-save window of start/stop/remove across separate dock
// invocations; two commands racing on the same name queue up instead of
// both observing the same status.
type Lock struct {
	f *os.File
}

// LockName takes an exclusive flock on <root>/locks/<name>.lock, blocking
// until it is available.
func (s *Store) LockName(name string) (*Lock, error) {
	dir := filepath.Join(s.root, config.LockDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name+".lock"), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", name, err)
	}
	return &Lock{f: f}, nil
}

// Unlock releases the lock. The lock file itself is left in place; it is
// cheap and removing it would race with another locker.
func (l *Lock) Unlock() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return fmt.Errorf("unlocking: %w", err)
	}
	return l.f.Close()
}
