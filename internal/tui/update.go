package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dock/internal/container"
	"dock/internal/store"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 6 // account for "  > /" prefix
		return m, nil

	case statusTickMsg:
		m.refresh()
		// Pull the log tail for each running container so the preview
		// pane stays current.
		for _, c := range m.containers {
			if c.Status != store.StatusRunning {
				continue
			}
			if content, ok, err := m.manager.Logs(c.Name); err == nil && ok {
				m.logs[c.Name] = content
			}
		}
		return m, tickCmd()

	case actionDoneMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error: %v", msg.err)
			m.isError = true
		} else {
			m.message = fmt.Sprintf("Container '%s' %s", msg.name, msg.verb)
			m.isError = false
		}
		if msg.verb == "removed" {
			delete(m.logs, msg.name)
			delete(m.alive, msg.name)
		}
		m.refresh()
		return m, tea.ClearScreen

	case confirmExpiredMsg:
		m.confirmRemove = false
		m.confirmRemoveName = ""
		return m, nil

	case tea.KeyMsg:
		if m.commanding {
			return m.handleCommandMode(msg)
		}
		return m.handleNormalMode(msg)
	}

	// Forward to input if in command mode
	if m.commanding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleNormalMode handles keys when navigating the container list.
func (m model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Dismiss help modal
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// If confirming a remove, second d confirms, anything else cancels
	if m.confirmRemove {
		m.confirmRemove = false
		if msg.String() == "d" {
			name := m.confirmRemoveName
			m.confirmRemoveName = ""
			return m, m.removeCmd(name)
		}
		m.confirmRemoveName = ""
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.commanding = true
		m.input.Focus()
		m.input.SetValue("")
		return m, textinput.Blink

	case "s":
		if c := m.selected(); c != nil {
			return m, m.startCmd(c.Name, "")
		}
		return m, nil

	case "x":
		if c := m.selected(); c != nil {
			return m, m.stopCmd(c.Name)
		}
		return m, nil

	case "d":
		if c := m.selected(); c != nil {
			m.confirmRemove = true
			m.confirmRemoveName = c.Name
			return m, tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
				return confirmExpiredMsg{}
			})
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else if len(m.containers) > 0 {
			m.cursor = len(m.containers) - 1
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.containers)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if c := m.selected(); c != nil {
			m.enterName = c.Name
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// handleCommandMode handles keys when the command input is active.
func (m model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.commanding = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil

	case "enter":
		m.commanding = false
		m.input.Blur()
		return m.processInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) processInput() (tea.Model, tea.Cmd) {
	command := ParseCommand(m.input.Value())
	m.input.SetValue("")
	if command == nil {
		return m, nil
	}

	switch command.Name {
	case "create":
		if len(command.Args) < 2 {
			m.message = "Usage: /create <name> <script>"
			m.isError = true
			return m, nil
		}
		name, script := command.Args[0], command.Args[1]
		if !container.ValidName(name) {
			m.message = "Name must be alphanumeric (hyphens ok, e.g. my-app)"
			m.isError = true
			return m, nil
		}
		return m, func() tea.Msg {
			_, err := m.manager.Create(name, script)
			return actionDoneMsg{verb: "created", name: name, err: err}
		}

	case "start":
		if len(command.Args) < 1 {
			m.message = "Usage: /start <name> [host:container]"
			m.isError = true
			return m, nil
		}
		port := ""
		if len(command.Args) > 1 {
			port = command.Args[1]
		}
		return m, m.startCmd(command.Args[0], port)

	case "stop":
		if len(command.Args) < 1 {
			m.message = "Usage: /stop <name>"
			m.isError = true
			return m, nil
		}
		return m, m.stopCmd(command.Args[0])

	case "remove":
		if len(command.Args) < 1 {
			m.message = "Usage: /remove <name>"
			m.isError = true
			return m, nil
		}
		return m, m.removeCmd(command.Args[0])

	case "enter":
		if len(command.Args) < 1 {
			m.message = "Usage: /enter <name>"
			m.isError = true
			return m, nil
		}
		m.enterName = command.Args[0]
		return m, tea.Quit

	case "quit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.message = fmt.Sprintf("Unknown command: %s", command.Name)
		m.isError = true
		return m, nil
	}
}

func (m model) startCmd(name, port string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.manager.Start(name, port)
		return actionDoneMsg{verb: "started", name: name, err: err}
	}
}

func (m model) stopCmd(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.manager.Stop(name)
		return actionDoneMsg{verb: "stopped", name: name, err: err}
	}
}

func (m model) removeCmd(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.manager.Remove(name)
		return actionDoneMsg{verb: "removed", name: name, err: err}
	}
}
