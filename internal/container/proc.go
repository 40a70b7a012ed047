package container

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// Environment variables stamped onto every launched container process.
// TagVar is the sole link between a container name and its process: no PID
// is ever persisted, so lookup works across engine restarts.
const (
	TagVar     = "DOCK_CONTAINER"
	PortMapVar = "DOCK_PORT_MAP"
	RootVar    = "DOCK_ROOT"
)

// ProcessTable locates and signals container processes by their
// environment tag.
type ProcessTable interface {
	// TerminateByTag signals every process tagged with name. Zero
	// matches is success; a stopped-vs-running check belongs one layer
	// up, against the persisted status.
	TerminateByTag(name string) (int, error)

	// AliveByTag reports whether any process carries the tag.
	AliveByTag(name string) (bool, error)
}

// procTable walks /proc and matches the tag as an exact
// DOCK_CONTAINER=<name> entry in each process's environment block. Exact
// entry equality means a container whose name is a prefix of another's
// can't be killed collaterally.
type procTable struct {
	dir string
}

// NewProcessTable returns a ProcessTable backed by /proc.
func NewProcessTable() ProcessTable {
	return &procTable{dir: "/proc"}
}

func (p *procTable) pidsByTag(name string) ([]int, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("reading process table: %w", err)
	}

	var pids []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		// Unreadable environ means the process died or belongs to
		// another user; either way it isn't ours to signal.
		environ, err := os.ReadFile(filepath.Join(p.dir, e.Name(), "environ"))
		if err != nil {
			continue
		}
		if hasTag(environ, name) {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

func (p *procTable) TerminateByTag(name string) (int, error) {
	pids, err := p.pidsByTag(name)
	if err != nil {
		return 0, err
	}
	for _, pid := range pids {
		// ESRCH just means it exited between scan and signal.
		if err := unix.Kill(pid, unix.SIGTERM); err != nil && err != unix.ESRCH {
			return len(pids), fmt.Errorf("signaling pid %d: %w", pid, err)
		}
	}
	return len(pids), nil
}

func (p *procTable) AliveByTag(name string) (bool, error) {
	pids, err := p.pidsByTag(name)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// hasTag reports whether a NUL-separated environ block contains the exact
// entry DOCK_CONTAINER=<name>.
func hasTag(environ []byte, name string) bool {
	want := []byte(TagVar + "=" + name)
	for _, entry := range bytes.Split(environ, []byte{0}) {
		if bytes.Equal(entry, want) {
			return true
		}
	}
	return false
}
