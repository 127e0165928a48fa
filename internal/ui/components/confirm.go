package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/ui/style"
	"github.com/sadopc/voidfinder/internal/util"
)

// ConfirmItem is a folder pending relocation.
type ConfirmItem struct {
	Path  string
	Noise int
}

// RenderConfirmDialog renders the move-to-trash confirmation modal.
func RenderConfirmDialog(theme style.Theme, items []ConfirmItem, root string, width, height int) string {
	boxWidth := style.ModalWidth(width, 64)

	var lines []string
	lines = append(lines, theme.ModalTitle.Render("  Move to Trash"))

	warning := lipgloss.NewStyle().
		Foreground(theme.Warning).
		Render(fmt.Sprintf("  %d empty folder(s) will be moved to Trash:", len(items)))
	lines = append(lines, warning, "")

	maxShow := min(10, len(items))
	var noise int
	for _, item := range items {
		noise += item.Noise
	}

	pathStyle := lipgloss.NewStyle().Foreground(theme.Accent)
	for _, item := range items[:maxShow] {
		rel := util.TruncateLeft(util.RelPath(root, item.Path), max(boxWidth-8, 4))
		lines = append(lines, pathStyle.Render("  - "+rel))
	}
	if len(items) > maxShow {
		more := fmt.Sprintf("  ... and %d more", len(items)-maxShow)
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(more))
	}

	lines = append(lines, "")
	muted := lipgloss.NewStyle().Foreground(theme.TextMuted)
	if noise > 0 {
		lines = append(lines, muted.Render(fmt.Sprintf("  %d ignored file(s) go with them.", noise)))
	}
	lines = append(lines, muted.Render("  Each folder is checked again before it is moved."), "")

	prompt := lipgloss.NewStyle().
		Foreground(theme.TextPrimary).
		Render("  Press ") +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Success).Render("y") +
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to confirm, ") +
		lipgloss.NewStyle().Bold(true).Foreground(theme.Error).Render("n/esc") +
		lipgloss.NewStyle().Foreground(theme.TextPrimary).Render(" to cancel")
	lines = append(lines, prompt)

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
