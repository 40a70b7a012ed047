package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dock/internal/store"
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	// Header — always shown
	title := "dock v0.1.0"
	header := headerStyle.Width(m.width).Render(title)

	if len(m.containers) == 0 {
		return m.renderEmptyState(header)
	}

	return m.renderDashboard(header)
}

func (m model) renderEmptyState(header string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(emptyStyle.Render("No containers. Press / and type: create <name> <script>"))
	b.WriteString("\n\n")

	if m.commanding {
		b.WriteString(hotkeysStyle.Render("[enter] execute  [esc] cancel"))
	} else {
		b.WriteString(hotkeysStyle.Render("[/] command  [?] help  [q] quit"))
	}
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	m.renderStatusAndInput(&b)

	if m.showHelp {
		return m.renderHelpOverlay(b.String())
	}
	return b.String()
}

func (m model) renderDashboard(header string) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n")

	// Container list — one line per container
	for i, c := range m.containers {
		b.WriteString(m.renderContainer(i, c))
		b.WriteString("\n")
	}

	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// Log preview pane — fill remaining vertical space
	footerLines := 4 // hotkeys + divider + status + possible input
	if m.commanding {
		footerLines++
	}
	previewHeight := max(3, m.height-1-len(m.containers)-1-1-footerLines)

	b.WriteString(m.renderPreview(previewHeight))

	b.WriteString(dividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	// Hotkeys
	if m.commanding {
		b.WriteString(hotkeysStyle.Render("[enter] execute  [esc] cancel"))
	} else if m.confirmRemove {
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Remove %s? Press d again to confirm, any other key to cancel", m.confirmRemoveName)))
	} else {
		b.WriteString(hotkeysStyle.Render("[↑↓] select  [enter] shell  [s]tart  [x] stop  [d] remove  [?] help"))
	}
	b.WriteString("\n")

	m.renderStatusAndInput(&b)

	if m.showHelp {
		return m.renderHelpOverlay(b.String())
	}
	return b.String()
}

func (m model) renderContainer(index int, c *store.ContainerConfig) string {
	cursor := "  "
	nStyle := nameStyle
	if index == m.cursor {
		cursor = "▸ "
		nStyle = selectedNameStyle
	}

	icon, iStyle := m.statusIcon(c)

	parts := []string{
		fmt.Sprintf("  %s%s %s", cursor, iStyle.Render(icon), nStyle.Render(c.Name)),
		runtimeStyle.Render(c.Runtime),
	}

	if c.Status == store.StatusRunning && c.PortMapping != "" {
		parts = append(parts, portStyle.Render(":"+c.PortMapping))
	}

	// Flag records that disagree with the process table
	if (c.Status == store.StatusRunning) != m.alive[c.Name] {
		parts = append(parts, statusDrift.Render("drift"))
	}

	return strings.Join(parts, "  ")
}

// statusIcon returns the icon and style for a container's persisted status.
func (m model) statusIcon(c *store.ContainerConfig) (string, lipgloss.Style) {
	if c.Status == store.StatusRunning {
		if !m.alive[c.Name] {
			return "◌", statusDrift
		}
		return "●", statusRunning
	}
	if m.alive[c.Name] {
		return "◍", statusDrift
	}
	return "○", statusStopped
}

func (m model) renderPreview(height int) string {
	var b strings.Builder

	selected := m.selected()
	if selected == nil {
		b.WriteString(previewEmptyStyle.Render("No container selected"))
		b.WriteString(strings.Repeat("\n", height))
		return b.String()
	}

	content, ok := m.logs[selected.Name]
	if !ok {
		if logContent, found, err := m.manager.Logs(selected.Name); err == nil && found {
			content = logContent
		}
	}
	if strings.TrimSpace(content) == "" {
		b.WriteString(previewEmptyStyle.Render(fmt.Sprintf("No logs for %s yet", selected.Name)))
		b.WriteString(strings.Repeat("\n", height))
		return b.String()
	}

	// Take last N lines to fit the preview height
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}

	for _, line := range lines {
		if lipgloss.Width(line) > m.width-4 {
			line = line[:m.width-4]
		}
		b.WriteString(previewStyle.Render(line))
		b.WriteString("\n")
	}

	// Pad remaining lines
	b.WriteString(strings.Repeat("\n", max(0, height-len(lines))))

	return b.String()
}

func (m model) renderStatusAndInput(b *strings.Builder) {
	if m.message != "" {
		if m.isError {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(messageStyle.Render(m.message))
		}
		b.WriteString("\n")
	}
	if m.commanding {
		b.WriteString("  ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
}

func (m model) renderHelpOverlay(base string) string {
	help := strings.Join([]string{
		helpHeaderStyle.Render("Navigation"),
		helpKeyStyle.Render("  ↑/k  ↓/j") + helpDescStyle.Render("   Select container"),
		helpKeyStyle.Render("  Enter") + helpDescStyle.Render("       Enter container shell"),
		"",
		helpHeaderStyle.Render("Actions"),
		helpKeyStyle.Render("  s") + helpDescStyle.Render("           Start selected container"),
		helpKeyStyle.Render("  x") + helpDescStyle.Render("           Stop selected container"),
		helpKeyStyle.Render("  d") + helpDescStyle.Render("           Remove selected container"),
		"",
		helpHeaderStyle.Render("Commands"),
		helpKeyStyle.Render("  /") + helpDescStyle.Render("           Open command bar"),
		helpDescStyle.Render("  /create <name> <script>"),
		helpDescStyle.Render("  /start <name> [host:container]"),
		helpDescStyle.Render("  /stop <name>"),
		helpDescStyle.Render("  /remove <name>"),
		helpDescStyle.Render("  /enter <name>"),
		"",
		helpKeyStyle.Render("  q") + helpDescStyle.Render("  quit") + "     " + helpKeyStyle.Render("?") + helpDescStyle.Render("  close this help"),
	}, "\n")

	modal := helpStyle.Render(help)

	// Center the modal over the base view
	modalWidth := lipgloss.Width(modal)
	modalHeight := lipgloss.Height(modal)

	baseLines := strings.Split(base, "\n")

	xOffset := max(0, (m.width-modalWidth)/2)
	yOffset := max(0, (m.height-modalHeight)/2)

	modalLines := strings.Split(modal, "\n")
	for i, mLine := range modalLines {
		row := yOffset + i
		if row < len(baseLines) {
			padding := strings.Repeat(" ", xOffset)
			baseLines[row] = padding + mLine + strings.Repeat(" ", max(0, m.width-xOffset-lipgloss.Width(mLine)))
		}
	}

	return strings.Join(baseLines, "\n")
}
