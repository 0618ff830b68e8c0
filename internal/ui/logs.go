package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/seatlock/internal/logtail"
)

const (
	logPaneHeight = 10
	logTailLines  = 200
)

func (m *Model) resizeLogViewport() {
	width := max(m.width-4, 20)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, logPaneHeight)
	}
	m.logViewport.Width = width
	m.logViewport.Height = logPaneHeight
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.SurfaceAlt))
}

// readLogsCmd tails the client's own log file.
func (m Model) readLogsCmd() tea.Cmd {
	path := m.logFile
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logLinesMsg{"log unavailable: " + err.Error()}
		}
		return logLinesMsg(logtail.FormatLines(lines))
	}
}

func (m Model) renderLogs() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border))

	title := m.theme.Styles().AccentText.Bold(true).Render("Log")
	if m.logFile != "" {
		title += "  " + m.theme.Styles().FaintText.Render(truncate(m.logFile, 60))
	}
	return title + "\n" + box.Render(m.logViewport.View())
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		return styles.FaintText.Render("No log entries yet")
	}
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		out[i] = colorizeLogLine(line, styles)
	}
	return strings.Join(out, "\n")
}

// colorizeLogLine styles the level column of a formatted log line:
// "15:04:05 WARN  message ...".
func colorizeLogLine(line string, styles Styles) string {
	ts, rest, ok := strings.Cut(line, " ")
	if !ok {
		return styles.Text.Render(line)
	}
	level, msg, ok := strings.Cut(rest, " ")
	if !ok {
		return styles.Text.Render(line)
	}
	levelStyle, known := levelStyle(level, styles)
	if !known {
		return styles.Text.Render(line)
	}
	return styles.FaintText.Render(ts) + " " + levelStyle.Render(level) + " " + styles.Text.Render(msg)
}

func levelStyle(level string, styles Styles) (lipgloss.Style, bool) {
	switch level {
	case "INFO":
		return styles.SuccessText, true
	case "WARN":
		return styles.WarningText, true
	case "ERROR", "FATAL", "PANIC", "DPANIC":
		return styles.DangerText, true
	case "DEBUG":
		return styles.InfoText, true
	default:
		return styles.Text, false
	}
}
