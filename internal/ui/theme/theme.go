// Package theme holds the colors and styles of CLI summaries.
package theme

import (
	"charm.land/lipgloss/v2"
)

var (
	Primary = lipgloss.Color("#8B5CF6")
	Accent  = lipgloss.Color("#14B8A6")
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#F43F5E")
	TextDim = lipgloss.Color("#94A3B8")
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(12)

	Value = lipgloss.NewStyle().
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Degraded = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Field renders a "label value" line.
func Field(label string, value any) string {
	return Label.Render(label) + " " + Value.Render(toString(value))
}

// Status picks a style for a count of problems: Good when zero.
func Status(problems int, style lipgloss.Style) lipgloss.Style {
	if problems == 0 {
		return Good
	}
	return style
}
