package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the state directory under the user's home, unless
	// DOCK_HOME points somewhere else.
	DirName = ".dock"

	SettingsFile = "config.yaml"
	ContainerDir = "containers"
	RootfsDir    = "rootfs"
	LogDir       = "logs"
	LockDir      = "locks"
)

// Settings holds the operator-editable tool configuration. Everything has a
// working default; the file is only written when the operator wants to
// override something.
type Settings struct {
	// SandboxTool is the isolation tool invoked to confine container
	// processes.
	SandboxTool string `yaml:"sandbox_tool"`

	// Shells is the preference order for `dock enter`.
	Shells []string `yaml:"shells"`

	// Runtimes overrides the executable used for a runtime tag,
	// e.g. python3: /usr/local/bin/python3.12.
	Runtimes map[string]string `yaml:"runtimes,omitempty"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		SandboxTool: "proot",
		Shells:      []string{"bash", "sh"},
	}
}

// Home resolves the dock state root: $DOCK_HOME if set, otherwise ~/.dock.
func Home() (string, error) {
	if dir := os.Getenv("DOCK_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads settings from <root>/config.yaml. A missing file yields the
// defaults.
func Load(root string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(filepath.Join(root, SettingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings: %w", err)
	}
	if s.SandboxTool == "" {
		s.SandboxTool = "proot"
	}
	if len(s.Shells) == 0 {
		s.Shells = []string{"bash", "sh"}
	}
	return s, nil
}

// Save writes settings to <root>/config.yaml, creating the root if needed.
func Save(root string, s Settings) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating state root: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	return os.WriteFile(filepath.Join(root, SettingsFile), data, 0o644)
}

// Exists reports whether a settings file has been written under root.
func Exists(root string) bool {
	_, err := os.Stat(filepath.Join(root, SettingsFile))
	return err == nil
}
