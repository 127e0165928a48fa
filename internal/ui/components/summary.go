package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/ui/style"
)

// RenderSummary frames the scrollable relocation summary.
func RenderSummary(theme style.Theme, body string, width, height int) string {
	footer := lipgloss.NewStyle().
		Foreground(theme.TextMuted).
		Render("  ↑/↓ scroll  enter/esc: close and rescan")

	box := theme.BorderStyle.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, box, footer))
}
