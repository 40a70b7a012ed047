package container

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"dock/internal/config"
	"dock/internal/store"
)

type fakeLauncher struct {
	pid   int
	err   error
	calls int
}

func (f *fakeLauncher) Launch(cfg *store.ContainerConfig, root, logPath, port string) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.pid, nil
}

type fakeProcs struct {
	alive      map[string]bool
	terminated []string
}

func (f *fakeProcs) TerminateByTag(name string) (int, error) {
	f.terminated = append(f.terminated, name)
	if f.alive[name] {
		delete(f.alive, name)
		return 1, nil
	}
	return 0, nil
}

func (f *fakeProcs) AliveByTag(name string) (bool, error) {
	return f.alive[name], nil
}

func newTestManager(t *testing.T) (*Manager, *fakeLauncher, *fakeProcs) {
	t.Helper()
	st := store.New(t.TempDir())
	launcher := &fakeLauncher{pid: 4242}
	procs := &fakeProcs{alive: make(map[string]bool)}
	mgr := NewManager(st, config.Default(), log.New(io.Discard)).
		WithLauncher(launcher).
		WithProcessTable(procs)
	return mgr, launcher, procs
}

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.py")
	if err := os.WriteFile(path, []byte("#!/usr/bin/env python3\nprint('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreate(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	cfg, err := mgr.Create("web", script)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cfg.ID == "" {
		t.Error("Create should assign an id")
	}
	if cfg.Runtime != "python3" {
		t.Errorf("Runtime = %q, want python3", cfg.Runtime)
	}
	if cfg.Status != store.StatusStopped {
		t.Errorf("Status = %q, want stopped", cfg.Status)
	}
	if !mgr.Store().Exists("web") {
		t.Error("record should exist after create")
	}
	if _, err := os.Stat(mgr.Store().RootPath("web")); err != nil {
		t.Errorf("root directory not created: %v", err)
	}

	if _, err := mgr.Create("web", script); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("second Create error = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateRejectsUnsafeNames(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	for _, name := range []string{"../evil", "a/b", "", ".hidden", "-dash"} {
		if _, err := mgr.Create(name, script); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Create(%q) error = %v, want ErrInvalidName", name, err)
		}
	}

	// Nothing may escape or land in the state tree
	if _, err := os.Stat(mgr.Store().RootPath("../evil")); !os.IsNotExist(err) {
		t.Error("rejected name left a root directory behind")
	}
	all, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("rejected names persisted records: %+v", all)
	}
}

func TestCreateMissingScript(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.Create("web", filepath.Join(t.TempDir(), "nope.py"))
	if !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("Create error = %v, want ErrScriptNotFound", err)
	}
	if mgr.Store().Exists("web") {
		t.Error("no record should be left behind")
	}
	if _, err := os.Stat(mgr.Store().RootPath("web")); !os.IsNotExist(err) {
		t.Error("no root directory should be left behind")
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	a, err := mgr.Create("a", script)
	if err != nil {
		t.Fatal(err)
	}
	b, err := mgr.Create("b", script)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Errorf("ids should be unique, both = %q", a.ID)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	mgr, launcher, procs := newTestManager(t)
	script := writeScript(t)

	if _, err := mgr.Create("web", script); err != nil {
		t.Fatal(err)
	}

	pid, err := mgr.Start("web", "8080:80")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}
	if launcher.calls != 1 {
		t.Errorf("launcher calls = %d, want 1", launcher.calls)
	}

	cfg, err := mgr.Store().Load("web")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Status != store.StatusRunning {
		t.Errorf("Status = %q, want running", cfg.Status)
	}
	if cfg.PortMapping != "8080:80" {
		t.Errorf("PortMapping = %q, want 8080:80", cfg.PortMapping)
	}

	// Second start must fail without re-launching
	if _, err := mgr.Start("web", ""); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start error = %v, want ErrAlreadyRunning", err)
	}
	if launcher.calls != 1 {
		t.Errorf("launcher calls after failed start = %d, want 1", launcher.calls)
	}

	procs.alive["web"] = true
	if err := mgr.Stop("web"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	cfg, err = mgr.Store().Load("web")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Status != store.StatusStopped {
		t.Errorf("Status after stop = %q, want stopped", cfg.Status)
	}
	if len(procs.terminated) != 1 || procs.terminated[0] != "web" {
		t.Errorf("terminated = %v, want [web]", procs.terminated)
	}

	if err := mgr.Stop("web"); !errors.Is(err, ErrAlreadyStopped) {
		t.Errorf("second Stop error = %v, want ErrAlreadyStopped", err)
	}
}

func TestStartNotFound(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	if _, err := mgr.Start("ghost", ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Start error = %v, want ErrNotFound", err)
	}
}

func TestStartStaleScript(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	if _, err := mgr.Create("web", script); err != nil {
		t.Fatal(err)
	}
	os.Remove(script)

	if _, err := mgr.Start("web", ""); !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Start error = %v, want ErrScriptNotFound", err)
	}
}

func TestStartLaunchFailureLeavesRunning(t *testing.T) {
	mgr, launcher, _ := newTestManager(t)
	script := writeScript(t)

	if _, err := mgr.Create("web", script); err != nil {
		t.Fatal(err)
	}

	launcher.err = ErrLaunch
	if _, err := mgr.Start("web", ""); !errors.Is(err, ErrLaunch) {
		t.Fatalf("Start error = %v, want ErrLaunch", err)
	}

	// The status flip is persisted before the spawn; a failed launch
	// leaves the record claiming running. Reconciliation is stop/start.
	cfg, err := mgr.Store().Load("web")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Status != store.StatusRunning {
		t.Errorf("Status after failed launch = %q, want running", cfg.Status)
	}

	if err := mgr.Stop("web"); err != nil {
		t.Fatalf("reconciling Stop: %v", err)
	}
	launcher.err = nil
	if _, err := mgr.Start("web", ""); err != nil {
		t.Fatalf("Start after reconcile: %v", err)
	}
}

func TestStopNotFound(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	if err := mgr.Stop("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Stop error = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	if _, err := mgr.Create("web", script); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Start("web", ""); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Remove("web"); !errors.Is(err, ErrRemoveRunning) {
		t.Fatalf("Remove on running container = %v, want ErrRemoveRunning", err)
	}

	if err := mgr.Stop("web"); err != nil {
		t.Fatal(err)
	}

	// Leave a log file behind so Remove has to clean it up
	logPath := mgr.Store().LogPath("web")
	os.MkdirAll(filepath.Dir(logPath), 0o755)
	os.WriteFile(logPath, []byte("output\n"), 0o644)

	if err := mgr.Remove("web"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if mgr.Store().Exists("web") {
		t.Error("record should be gone after remove")
	}
	if _, err := os.Stat(mgr.Store().RootPath("web")); !os.IsNotExist(err) {
		t.Error("root directory should be gone after remove")
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Error("log file should be gone after remove")
	}

	if err := mgr.Remove("web"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	for _, name := range []string{"web", "api", "worker"} {
		if _, err := mgr.Create(name, script); err != nil {
			t.Fatal(err)
		}
	}

	containers, err := mgr.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := make([]string, len(containers))
	for i, c := range containers {
		got[i] = c.Name
	}
	want := []string{"api", "web", "worker"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List order = %v, want %v", got, want)
		}
	}
}

func TestLogs(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	// No prior start: explicit no-logs result, not an error
	content, ok, err := mgr.Logs("web")
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if ok || content != "" {
		t.Errorf("Logs = (%q, %v), want empty no-logs result", content, ok)
	}

	logPath := mgr.Store().LogPath("web")
	os.MkdirAll(filepath.Dir(logPath), 0o755)
	os.WriteFile(logPath, []byte("line one\nline two\n"), 0o644)

	content, ok, err = mgr.Logs("web")
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if !ok {
		t.Fatal("Logs should report the file as present")
	}
	if content != "line one\nline two\n" {
		t.Errorf("Logs content = %q", content)
	}
}

func TestEnterCmd(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	script := writeScript(t)

	if _, err := mgr.EnterCmd("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("EnterCmd error = %v, want ErrNotFound", err)
	}

	if _, err := mgr.Create("web", script); err != nil {
		t.Fatal(err)
	}
	cmd, err := mgr.EnterCmd("web")
	if err != nil {
		t.Fatalf("EnterCmd: %v", err)
	}
	if cmd.Dir != mgr.Store().RootPath("web") {
		t.Errorf("Dir = %q, want container root", cmd.Dir)
	}

	env := strings.Join(cmd.Env, "\n")
	if !strings.Contains(env, TagVar+"=web") {
		t.Errorf("env missing %s=web", TagVar)
	}
	if !strings.Contains(env, RootVar+"="+mgr.Store().RootPath("web")) {
		t.Errorf("env missing %s", RootVar)
	}
}

func TestVerify(t *testing.T) {
	mgr, _, procs := newTestManager(t)
	script := writeScript(t)

	if _, err := mgr.Create("web", script); err != nil {
		t.Fatal(err)
	}

	// Stopped with no process: no drift
	report, err := mgr.Verify("web")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if report.Drift() {
		t.Error("stopped container with no process should not drift")
	}

	// Stopped record but a live tagged process: drift
	procs.alive["web"] = true
	report, err = mgr.Verify("web")
	if err != nil {
		t.Fatal(err)
	}
	if !report.Drift() {
		t.Error("stopped record with live process should drift")
	}

	// Running record with no process: drift
	delete(procs.alive, "web")
	if _, err := mgr.Start("web", ""); err != nil {
		t.Fatal(err)
	}
	report, err = mgr.Verify("web")
	if err != nil {
		t.Fatal(err)
	}
	if !report.Drift() {
		t.Error("running record with no process should drift")
	}

	if _, err := mgr.Verify("ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Verify error = %v, want ErrNotFound", err)
	}
}
