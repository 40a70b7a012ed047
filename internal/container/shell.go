package container

import "os/exec"

// ResolveShell returns the first shell from the preference list found on
// PATH. Falls back to /bin/sh when nothing matches.
func ResolveShell(prefs []string) string {
	for _, shell := range prefs {
		if path, err := exec.LookPath(shell); err == nil {
			return path
		}
	}
	return "/bin/sh"
}
