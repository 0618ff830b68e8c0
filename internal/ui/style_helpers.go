package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// painter keeps one background colour under a run of differently styled
// segments. Lipgloss resets after every segment, so the gaps between words
// would otherwise show the terminal background through the header bar.
type painter struct {
	fill lipgloss.Style
}

func newPainter(bgColor string) painter {
	return painter{fill: lipgloss.NewStyle().Background(lipgloss.Color(bgColor))}
}

// paint renders text in style on the painter's background, word by word.
func (p painter) paint(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Inherit(p.fill)
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = style.Render(w)
	}
	return strings.Join(words, p.gap(1))
}

// gap returns n filled spaces.
func (p painter) gap(n int) string {
	return p.fill.Render(strings.Repeat(" ", n))
}

// sep renders a literal separator on the background.
func (p painter) sep(s string) string {
	return p.fill.Render(s)
}
