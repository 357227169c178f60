package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	nodeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// Step formats the progress line of a completed step.
func Step(step int, node, detail string) string {
	line := fmt.Sprintf("%s %s", stepStyle.Render(fmt.Sprintf("[%02d]", step+1)), nodeStyle.Render(node))
	if detail != "" {
		line += " " + detailStyle.Render(detail)
	}
	return line
}

// Done formats the closing line of a successful run.
func Done(msg string) string {
	return doneStyle.Render("✓ " + msg)
}

// Failed formats the closing line of a failed run.
func Failed(err error) string {
	return errorStyle.Render("✗ " + err.Error())
}
