// Package components renders reusable pieces of CLI output.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/surveysim/internal/ui/theme"
)

// CoverageBar shows how much of something was completed, e.g. answered
// questions out of asked ones.
type CoverageBar struct {
	Label string
	Done  int
	Total int
	Width int
}

// NewCoverageBar creates a CoverageBar of the given bar width.
func NewCoverageBar(label string, done, total, width int) CoverageBar {
	return CoverageBar{Label: label, Done: done, Total: total, Width: width}
}

// Ratio returns Done/Total clamped to [0, 1]. An empty total counts as
// complete.
func (c CoverageBar) Ratio() float64 {
	if c.Total <= 0 {
		return 1
	}
	r := float64(c.Done) / float64(c.Total)
	return min(max(r, 0), 1)
}

// View renders the bar with a "done/total" suffix.
func (c CoverageBar) View() string {
	width := max(c.Width, 4)
	filled := int(float64(width) * c.Ratio())
	empty := width - filled

	color := theme.Success
	if c.Ratio() < 1 {
		color = theme.Warning
	}

	var b strings.Builder
	if c.Label != "" {
		b.WriteString(theme.Label.Render(c.Label))
		b.WriteString(" ")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", empty)))
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d/%d", c.Done, c.Total)))
	return b.String()
}
