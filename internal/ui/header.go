package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/seatlock/internal/channel"
	"github.com/five82/seatlock/internal/notify"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newPainter(m.theme.Surface)

	parts := []string{
		bg.paint("seatlock", styles.Logo),
		m.connectionIndicator(styles, bg),
	}

	if m.snapshot.Loaded() {
		counts := m.snapshot.Counts()
		parts = append(parts,
			bg.paint("Available:", styles.MutedText)+bg.gap(1)+
				bg.paint(fmt.Sprintf("%d", counts.Available), styles.SuccessText),
			bg.paint("Held:", styles.MutedText)+bg.gap(1)+
				bg.paint(fmt.Sprintf("%d", counts.Held), styles.WarningText),
			bg.paint("Sold:", styles.MutedText)+bg.gap(1)+
				bg.paint(fmt.Sprintf("%d", counts.Sold), styles.DangerText),
		)
	}

	parts = append(parts,
		bg.paint("User:", styles.MutedText)+bg.gap(1)+
			bg.paint(fmt.Sprintf("%d", m.userID), styles.AccentText),
	)

	if !m.snapshot.FetchedAt.IsZero() {
		parts = append(parts, bg.paint("updated "+humanize.Time(m.snapshot.FetchedAt), styles.FaintText))
	}

	if warning := m.formatHealthWarning(styles, bg); warning != "" {
		parts = append(parts, warning)
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, bg.gap(2)))
}

func (m Model) connectionIndicator(styles Styles, bg painter) string {
	switch m.conn {
	case channel.StateOpen:
		return bg.paint("● LIVE", styles.SuccessText)
	case channel.StateConnecting:
		return bg.paint("● CONNECTING", styles.WarningText)
	default:
		return bg.paint("● POLLING", styles.MutedText)
	}
}

// formatHealthWarning explains why refreshes are failing, if they are.
func (m Model) formatHealthWarning(styles Styles, bg painter) string {
	if !m.health.IsOffline() {
		return ""
	}
	return bg.paint(classifyConnectionError(m.health.LastError), styles.DangerText.Bold(true)) + bg.gap(1) +
		bg.paint("Retrying...", styles.WarningText.Bold(true))
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints plus the active theme.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newPainter(m.theme.Surface)

	colon := bg.sep(":")
	segments := make([]string, 0, len(m.keys.ShortHelp())+1)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		segments = append(segments, bg.paint(h.Key, styles.AccentText)+colon+bg.paint(h.Desc, styles.MutedText))
	}
	segments = append(segments,
		bg.paint("T", styles.AccentText)+colon+bg.paint(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.gap(2)))
}

// renderToasts renders live notices, newest last.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		var style lipgloss.Style
		icon := "•"
		switch t.Kind {
		case notify.KindSuccess:
			style, icon = styles.SuccessText, "✓"
		case notify.KindError:
			style, icon = styles.DangerText, "✗"
		default:
			style = styles.InfoText
		}
		lines = append(lines, style.Render(icon+" "+truncate(t.Message, max(m.width-4, 20))))
	}
	return strings.Join(lines, "\n")
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
