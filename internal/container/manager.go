package container

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"dock/internal/config"
	"dock/internal/runtime"
	"dock/internal/store"
)

// Manager is the container lifecycle engine. All durable state lives in
// the Store and the OS process table; each operation reloads fresh state,
// so the Manager itself carries no per-container memory between calls.
type Manager struct {
	store    *store.Store
	settings config.Settings
	launcher Launcher
	procs    ProcessTable
	logger   *log.Logger
}

// NewManager wires the engine with its default collaborators.
func NewManager(st *store.Store, settings config.Settings, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		store:    st,
		settings: settings,
		launcher: NewLauncher(settings.SandboxTool, settings.Runtimes),
		procs:    NewProcessTable(),
		logger:   logger,
	}
}

// WithLauncher swaps the process launcher. Used by tests.
func (m *Manager) WithLauncher(l Launcher) *Manager {
	m.launcher = l
	return m
}

// WithProcessTable swaps the process table. Used by tests.
func (m *Manager) WithProcessTable(p ProcessTable) *Manager {
	m.procs = p
	return m
}

// Store exposes the underlying config store for read-side callers.
func (m *Manager) Store() *store.Store {
	return m.store
}

// validName keeps container names safe to use as path components: record
// files, roots, logs, and locks are all derived from the name.
var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// ValidName reports whether name is acceptable for a container.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Create registers a new container: detects the runtime tag, persists the
// record with status stopped, and allocates an empty filesystem root.
func (m *Manager) Create(name, script string) (*store.ContainerConfig, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if m.store.Exists(name) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, script)
	}

	tag, err := runtime.Detect(script)
	if err != nil {
		return nil, err
	}

	cfg := &store.ContainerConfig{
		ID:      uuid.NewString(),
		Name:    name,
		Script:  script,
		Runtime: string(tag),
		Status:  store.StatusStopped,
	}
	if err := m.store.Save(cfg); err != nil {
		return nil, err
	}
	if err := m.store.EnsureRoot(name); err != nil {
		return nil, err
	}

	m.logger.Debug("container created", "name", name, "id", cfg.ID, "runtime", cfg.Runtime)
	return cfg, nil
}

// Start transitions a container to running and launches its sandboxed
// process. The status flip is persisted before the spawn is attempted:
// the record tracks last requested state, not observed process state. A
// spawn failure therefore leaves the record claiming running; the repair
// path is an explicit stop/start cycle (see Verify).
func (m *Manager) Start(name, portMapping string) (int, error) {
	lock, err := m.store.LockName(name)
	if err != nil {
		return 0, err
	}
	defer lock.Unlock()

	cfg, err := m.store.Load(name)
	if err != nil {
		return 0, err
	}
	if cfg.Status == store.StatusRunning {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}
	if _, err := os.Stat(cfg.Script); err != nil {
		return 0, fmt.Errorf("%w: %s (container may be corrupted)", ErrScriptNotFound, cfg.Script)
	}

	cfg.Status = store.StatusRunning
	cfg.PortMapping = portMapping
	if err := m.store.Save(cfg); err != nil {
		return 0, err
	}

	pid, err := m.launcher.Launch(cfg, m.store.RootPath(name), m.store.LogPath(name), portMapping)
	if err != nil {
		m.logger.Warn("launch failed after status write; record still says running",
			"name", name, "err", err)
		return 0, err
	}

	m.logger.Debug("container started", "name", name, "pid", pid)
	return pid, nil
}

// Stop transitions a container to stopped and terminates every process
// carrying its tag. As with Start, the status write comes first; zero
// matching processes is not an error here.
func (m *Manager) Stop(name string) error {
	lock, err := m.store.LockName(name)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	cfg, err := m.store.Load(name)
	if err != nil {
		return err
	}
	if cfg.Status == store.StatusStopped {
		return fmt.Errorf("%w: %s", ErrAlreadyStopped, name)
	}

	cfg.Status = store.StatusStopped
	if err := m.store.Save(cfg); err != nil {
		return err
	}

	n, err := m.procs.TerminateByTag(name)
	if err != nil {
		return err
	}
	m.logger.Debug("container stopped", "name", name, "signaled", n)
	return nil
}

// List returns all containers sorted by name.
func (m *Manager) List() ([]*store.ContainerConfig, error) {
	configs, err := m.store.ListAll()
	if err != nil {
		return nil, err
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}

// Logs returns the full log contents for a container. The second return is
// false when no log file exists yet, which is not an error.
func (m *Manager) Logs(name string) (string, bool, error) {
	data, err := os.ReadFile(m.store.LogPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading log: %w", err)
	}
	return string(data), true, nil
}

// EnterCmd builds the interactive shell command for a container: the
// preferred available shell, rooted at the container's filesystem root,
// with the container name and root exposed in the environment. The caller
// attaches stdio and waits.
func (m *Manager) EnterCmd(name string) (*exec.Cmd, error) {
	if !m.store.Exists(name) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}

	root := m.store.RootPath(name)
	cmd := exec.Command(ResolveShell(m.settings.Shells))
	cmd.Dir = root
	cmd.Env = append(os.Environ(),
		TagVar+"="+name,
		RootVar+"="+root,
	)
	return cmd, nil
}

// Remove deletes a stopped container: its filesystem root, log file, and
// record. Running containers must be stopped first.
func (m *Manager) Remove(name string) error {
	lock, err := m.store.LockName(name)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	cfg, err := m.store.Load(name)
	if err != nil {
		return err
	}
	if cfg.Status == store.StatusRunning {
		return fmt.Errorf("%w: %s (stop it first)", ErrRemoveRunning, name)
	}

	if err := m.store.DestroyRoot(name); err != nil {
		return err
	}
	if err := m.store.Delete(name); err != nil {
		return err
	}

	m.logger.Debug("container removed", "name", name)
	return nil
}
