package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/seatlock/internal/seatapi"
)

const cellWidth = 5

// seatKind maps a seat to its color key from userID's point of view.
func seatKind(seat seatapi.Seat, userID int64) string {
	switch seat.Status {
	case seatapi.StatusSold:
		return seatSold
	case seatapi.StatusHeld:
		if seat.HeldBy == userID {
			return seatMine
		}
		return seatHeld
	default:
		return seatAvailable
	}
}

func (m Model) selectedSeat() (seatapi.Seat, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Seats) {
		return seatapi.Seat{}, false
	}
	return m.snapshot.Seats[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.snapshot.Seats)
	switch {
	case n == 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
}

// moveCursor walks the grid. Vertical moves that would leave the grid are ignored.
func (m *Model) moveCursor(msg tea.KeyMsg) {
	n := len(m.snapshot.Seats)
	if n == 0 {
		return
	}
	next := m.cursor
	switch {
	case key.Matches(msg, m.keys.Left):
		next--
	case key.Matches(msg, m.keys.Right):
		next++
	case key.Matches(msg, m.keys.Up):
		next -= m.columns
	case key.Matches(msg, m.keys.Down):
		next += m.columns
	case key.Matches(msg, m.keys.Home):
		next = 0
	case key.Matches(msg, m.keys.End):
		next = n - 1
	default:
		return
	}
	if next >= 0 && next < n {
		m.cursor = next
	}
}

func (m Model) renderGrid() string {
	styles := m.theme.Styles()
	if !m.snapshot.Loaded() {
		if m.health.ConsecutiveFailures > 0 {
			return styles.DangerText.Render("Failed to load seats") + "  " +
				styles.MutedText.Render("retrying...")
		}
		return styles.MutedText.Render("Loading seats...")
	}
	if len(m.snapshot.Seats) == 0 {
		return styles.MutedText.Render("No seats")
	}

	var rows []string
	var row []string
	for i, seat := range m.snapshot.Seats {
		style := styles.SeatStyle(seatKind(seat, m.userID), i == m.cursor)
		row = append(row, style.Render(fmt.Sprintf("%d", seat.ID)))
		if len(row) == m.columns {
			rows = append(rows, strings.Join(row, " "))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return grid + "\n\n" + m.renderLegend() + "\n" + m.renderSelection()
}

func (m Model) renderLegend() string {
	styles := m.theme.Styles()
	entries := []struct{ kind, label string }{
		{seatAvailable, "available"},
		{seatMine, "held by you"},
		{seatHeld, "held"},
		{seatSold, "sold"},
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.SeatColors[e.kind])).Render("  ")
		parts = append(parts, swatch+" "+styles.MutedText.Render(e.label))
	}
	return strings.Join(parts, "   ")
}

// renderSelection describes the seat under the cursor.
func (m Model) renderSelection() string {
	styles := m.theme.Styles()
	seat, ok := m.selectedSeat()
	if !ok {
		return ""
	}
	label := styles.Text.Bold(true).Render(fmt.Sprintf("Seat %d", seat.ID))
	var detail string
	switch kind := seatKind(seat, m.userID); kind {
	case seatMine:
		detail = styles.InfoText.Render("held by you") + styles.FaintText.Render("  enter to confirm")
	case seatHeld:
		detail = styles.WarningText.Render(fmt.Sprintf("held by user %d", seat.HeldBy))
	case seatSold:
		detail = styles.DangerText.Render("sold")
	default:
		detail = styles.SuccessText.Render("available") + styles.FaintText.Render("  enter to hold")
	}
	return label + "  " + detail
}
