package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/voidfinder/internal/ops"
	"github.com/sadopc/voidfinder/internal/ui/style"
	"github.com/sadopc/voidfinder/internal/util"
)

// RenderDetails renders the folder details modal. Until loaded is set
// only the path is known.
func RenderDetails(theme style.Theme, d ops.Details, loaded bool, width, height int) string {
	boxWidth := style.ModalWidth(width, 64)
	inner := max(boxWidth-16, 4)

	label := lipgloss.NewStyle().Foreground(theme.TextMuted).Width(12)
	value := lipgloss.NewStyle().Foreground(theme.TextPrimary)
	row := func(k, v string) string { return "  " + label.Render(k) + value.Render(v) }

	var lines []string
	lines = append(lines, theme.ModalTitle.Render("  Folder Details"))
	lines = append(lines, row("Path", util.TruncateLeft(d.Path, inner)))

	if !loaded {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.TextMuted).Render("  Checking..."))
	} else {
		var status string
		switch {
		case !d.Exists:
			status = theme.ErrorText.Render("MISSING")
		case d.Empty:
			status = lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("EMPTY")
		default:
			status = lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render("NOT EMPTY")
		}
		lines = append(lines, "  "+label.Render("Status")+status)

		if d.HasSize {
			lines = append(lines, row("Size", util.FormatSize(d.Size)))
			lines = append(lines, row("Modified", humanize.Time(d.ModTime)))
		}

		ignored := "(none)"
		if len(d.Noise) > 0 {
			ignored = util.TruncateString(strings.Join(d.Noise, ", "), inner)
		}
		lines = append(lines, row("Ignored", ignored))
	}

	lines = append(lines, "", lipgloss.NewStyle().
		Foreground(theme.TextMuted).
		Render("  o: open  esc: close"))

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
