package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dock/internal/config"
	"dock/internal/container"
	"dock/internal/store"
	"dock/internal/tui"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	var verbose bool
	root := &cobra.Command{
		Use:   "dock",
		Short: "Lightweight sandboxed container manager",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, settings, err := newManager(logger)
			if err != nil {
				return err
			}
			return tui.Run(mgr, settings)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		createCmd(logger),
		startCmd(logger),
		stopCmd(logger),
		listCmd(logger),
		enterCmd(logger),
		logsCmd(logger),
		removeCmd(logger),
		statusCmd(logger),
		updateCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newManager(logger *log.Logger) (*container.Manager, config.Settings, error) {
	home, err := config.Home()
	if err != nil {
		return nil, config.Settings{}, err
	}
	settings, err := config.Load(home)
	if err != nil {
		return nil, config.Settings{}, err
	}
	return container.NewManager(store.New(home), settings, logger), settings, nil
}

func createCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <script>",
		Short: "Create a new container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			cfg, err := mgr.Create(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("✓ Container '%s' created (runtime: %s)\n", cfg.Name, cfg.Runtime)
			return nil
		},
	}
}

func startCmd(logger *log.Logger) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "start <name>",
		Short: "Start a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			pid, err := mgr.Start(args[0], port)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Container '%s' started (PID: %d)\n", args[0], pid)
			if port != "" {
				fmt.Printf("  Port mapping: %s\n", port)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port mapping (host:container)")
	return cmd
}

func stopCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <name>",
		Short: "Stop a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			if err := mgr.Stop(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Container '%s' stopped\n", args[0])
			return nil
		},
	}
}

func listCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			containers, err := mgr.List()
			if err != nil {
				return err
			}
			if len(containers) == 0 {
				fmt.Println("No containers found")
				return nil
			}

			fmt.Printf("%-20s %-15s %-20s %-15s\n", "NAME", "STATUS", "RUNTIME", "PORT")
			fmt.Println(strings.Repeat("-", 70))
			for _, c := range containers {
				port := c.PortMapping
				if port == "" {
					port = "-"
				}
				fmt.Printf("%-20s %-15s %-20s %-15s\n", c.Name, c.Status, c.Runtime, port)
			}
			return nil
		},
	}
}

func enterCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "enter <name>",
		Short: "Enter a container shell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			shell, err := mgr.EnterCmd(args[0])
			if err != nil {
				return err
			}
			shell.Stdin = os.Stdin
			shell.Stdout = os.Stdout
			shell.Stderr = os.Stderr
			return shell.Run()
		},
	}
}

func logsCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <name>",
		Short: "View container logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			content, ok, err := mgr.Logs(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("No logs available for container '%s'\n", args[0])
				return nil
			}
			fmt.Print(content)
			return nil
		},
	}
}

func removeCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}
			if err := mgr.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Container '%s' removed\n", args[0])
			return nil
		},
	}
}

func statusCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status [name]",
		Short: "Compare persisted status against live processes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := newManager(logger)
			if err != nil {
				return err
			}

			var reports []container.Report
			if len(args) == 1 {
				report, err := mgr.Verify(args[0])
				if err != nil {
					return err
				}
				reports = []container.Report{report}
			} else {
				reports, err = mgr.VerifyAll()
				if err != nil {
					return err
				}
			}

			if len(reports) == 0 {
				fmt.Println("No containers found")
				return nil
			}
			for _, r := range reports {
				fmt.Printf("%-20s %s\n", r.Name, describeReport(r))
			}
			return nil
		},
	}
}

func describeReport(r container.Report) string {
	switch {
	case r.Status == store.StatusRunning && !r.Alive:
		return "running (no process — run stop, then start)"
	case r.Status == store.StatusStopped && r.Alive:
		return "stopped (process still alive — run stop)"
	default:
		return string(r.Status)
	}
}
