package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// updateCmd pulls the latest dock sources and rebuilds the binary in
// place. Container records, roots, and logs are untouched. This is glue
// around git and build.sh, nothing more; the engine has no part in it.
func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update dock from git and rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Checking for updates...")

			if err := exec.Command("git", "status").Run(); err != nil {
				return fmt.Errorf("not in a git repository")
			}

			current, err := exec.Command("git", "log", "-1", "--oneline").Output()
			if err == nil {
				fmt.Printf("Current: %s\n", strings.TrimSpace(string(current)))
			}

			fmt.Println("Pulling latest changes...")
			if out, err := exec.Command("git", "pull").CombinedOutput(); err != nil {
				return fmt.Errorf("git pull failed: %s", strings.TrimSpace(string(out)))
			}
			fmt.Println("✓ Pulled latest changes")

			fmt.Println("Rebuilding dock...")
			if out, err := exec.Command("bash", "build.sh").CombinedOutput(); err != nil {
				return fmt.Errorf("build failed: %s", strings.TrimSpace(string(out)))
			}
			fmt.Println("✓ Build successful")
			fmt.Println("✓ Dock updated! Containers and data preserved.")
			return nil
		},
	}
}
