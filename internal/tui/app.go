package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dock/internal/config"
	"dock/internal/container"
)

// Run starts the dashboard loop. It cycles between the Bubble Tea view and
// interactive shell sessions (dock enter) until the user quits.
func Run(mgr *container.Manager, settings config.Settings) error {
	for {
		m := newModel(mgr, settings)
		p := tea.NewProgram(m, tea.WithAltScreen())
		result, err := p.Run()
		if err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}

		final := result.(model)

		if final.quitting {
			return nil
		}

		if final.enterName != "" {
			shell, err := mgr.EnterCmd(final.enterName)
			if err != nil {
				fmt.Fprintf(os.Stderr, "enter failed: %v\n", err)
				continue
			}
			fmt.Printf("Entering %s... (exit the shell to return)\n", final.enterName)
			shell.Stdin = os.Stdin
			shell.Stdout = os.Stdout
			shell.Stderr = os.Stderr
			shell.Run()

			// Reset terminal after the shell so Bubble Tea starts clean
			fmt.Print("\033c")
		}
	}
}
