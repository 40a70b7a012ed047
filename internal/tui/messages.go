package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// actionDoneMsg is sent when a lifecycle operation finishes.
type actionDoneMsg struct {
	verb string // "created", "started", "stopped", "removed"
	name string
	err  error
}

// statusTickMsg triggers a refresh poll.
type statusTickMsg time.Time

// confirmExpiredMsg cancels a pending remove confirmation.
type confirmExpiredMsg struct{}

// tickCmd returns a command that sends a tick every 2 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}
