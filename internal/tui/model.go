package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"dock/internal/config"
	"dock/internal/container"
	"dock/internal/store"
)

// model is the Bubble Tea model for the dock dashboard.
type model struct {
	manager  *container.Manager
	settings config.Settings

	containers []*store.ContainerConfig
	alive      map[string]bool   // live tag presence per container
	logs       map[string]string // cached log tail per container

	input      textinput.Model
	cursor     int
	message    string
	isError    bool
	commanding bool // true when the command bar is active (/ pressed)
	quitting   bool
	enterName  string // container to enter after tea quits
	width      int
	height     int

	// Help modal
	showHelp bool

	// Double-press remove confirmation
	confirmRemove     bool
	confirmRemoveName string
}

func newModel(mgr *container.Manager, settings config.Settings) model {
	ti := textinput.New()
	ti.Placeholder = "create <name> <script> | start, stop, remove, enter <name> | quit"
	ti.CharLimit = 256
	ti.Width = 80
	ti.Blur()

	// Get initial terminal size so the first render isn't at width=0
	w, h, _ := term.GetSize(int(os.Stdout.Fd()))
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	m := model{
		manager:  mgr,
		settings: settings,
		alive:    make(map[string]bool),
		logs:     make(map[string]string),
		input:    ti,
		width:    w,
		height:   h,
	}
	m.refresh()
	return m
}

// refresh reloads the container list and liveness from the engine.
func (m *model) refresh() {
	containers, err := m.manager.List()
	if err != nil {
		m.message = err.Error()
		m.isError = true
		return
	}
	m.containers = containers

	reports, err := m.manager.VerifyAll()
	if err == nil {
		for _, r := range reports {
			m.alive[r.Name] = r.Alive
		}
	}

	if m.cursor >= len(m.containers) && m.cursor > 0 {
		m.cursor = len(m.containers) - 1
	}
}

func (m model) selected() *store.ContainerConfig {
	if m.cursor < len(m.containers) {
		return m.containers[m.cursor]
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}
