package container

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"dock/internal/runtime"
	"dock/internal/store"
)

// Launcher spawns a container's sandboxed process. The returned PID is
// ephemeral operator feedback; it is never persisted.
type Launcher interface {
	Launch(cfg *store.ContainerConfig, root, logPath, portMapping string) (int, error)
}

// sandboxLauncher confines the runtime process with an external isolation
// tool (proot by default): <tool> -r <root> <interpreter> <script>.
type sandboxLauncher struct {
	tool     string
	runtimes map[string]string
}

// NewLauncher returns a Launcher that invokes the given sandbox tool.
// runtimes optionally overrides the interpreter per runtime tag.
func NewLauncher(tool string, runtimes map[string]string) Launcher {
	return &sandboxLauncher{tool: tool, runtimes: runtimes}
}

func (l *sandboxLauncher) interpreter(tag string) string {
	if exe, ok := l.runtimes[tag]; ok {
		return exe
	}
	return runtime.Parse(tag).Executable()
}

func (l *sandboxLauncher) Launch(cfg *store.ContainerConfig, root, logPath, portMapping string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating log dir: %w", err)
	}
	// One combined stream for stdout and stderr, truncating the previous
	// run's output.
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(l.tool, "-r", root, l.interpreter(cfg.Runtime), cfg.Script)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = append(os.Environ(), TagVar+"="+cfg.Name)
	if portMapping != "" {
		cmd.Env = append(cmd.Env, PortMapVar+"="+portMapping)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: spawning %s: %v", ErrLaunch, l.tool, err)
	}

	// Detach: the workload keeps running in the background and is only
	// ever found again through its environment tag.
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("detaching process: %w", err)
	}
	return pid, nil
}
