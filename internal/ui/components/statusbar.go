package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/ui/style"
)

// StatusInfo holds the current state for the status bar.
type StatusInfo struct {
	Cursor      int
	ItemCount   int
	MarkedCount int
	MarkedNoise int
	Message     string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(theme style.Theme, info StatusInfo, width int) string {
	if info.Message != "" {
		msgLine := " " + lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render(info.Message)
		return theme.StatusBarStyle.Width(width).Render(msgLine)
	}

	var parts []string
	if info.ItemCount > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", info.Cursor+1, info.ItemCount))
	} else {
		parts = append(parts, "0 folders")
	}

	if info.MarkedCount > 0 {
		marked := lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true).
			Render(fmt.Sprintf("* %d marked (%d noise files)", info.MarkedCount, info.MarkedNoise))
		parts = append(parts, marked)
	}

	left := " " + strings.Join(parts, " | ")

	hints := []struct{ key, desc string }{
		{"?", "help"},
		{"space", "mark"},
		{"d", "trash"},
		{"q", "quit"},
	}

	var rightParts []string
	for _, h := range hints {
		k := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(h.key)
		d := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" " + h.desc)
		rightParts = append(rightParts, k+d)
	}
	right := strings.Join(rightParts, "  ") + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return theme.StatusBarStyle.Width(width).Render(line)
}
