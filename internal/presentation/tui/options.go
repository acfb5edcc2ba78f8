package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var optionStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#2563eb")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#94a3b8")).
	Padding(0, 1).
	MarginRight(1)

// RenderOptions draws each label as a bordered button, one keyboard row per line.
func RenderOptions(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, label := range row {
			cells = append(cells, optionStyle.Render(label))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
