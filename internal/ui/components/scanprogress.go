package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/scanner"
	"github.com/sadopc/voidfinder/internal/ui/style"
	"github.com/sadopc/voidfinder/internal/util"
)

// RenderScanProgress renders the scanning overlay. With a known total it
// draws a gradient bar; otherwise the spinner carries the motion.
func RenderScanProgress(theme style.Theme, progress scanner.Progress, spin string, stopping bool, width, height int) string {
	boxWidth := style.ModalWidth(width, 56)
	inner := max(boxWidth-6, 1)

	title := "  Scanning..."
	if stopping {
		title = "  Stopping..."
	}
	var lines []string
	lines = append(lines,
		lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(spin+title),
		"",
	)

	if ratio := progress.Ratio(); ratio >= 0 {
		pct := fmt.Sprintf(" %3.0f%%", ratio*100)
		lines = append(lines, "  "+theme.BarGradient(max(inner-len(pct), 1), ratio)+pct, "")
	}

	statStyle := lipgloss.NewStyle().Foreground(theme.TextSecondary)
	folders := util.FormatCount(progress.Scanned)
	if progress.Total > 0 {
		folders += " / " + util.FormatCount(progress.Total)
	}
	lines = append(lines,
		statStyle.Render("  Folders: "+folders),
		statStyle.Render("  Empty:   "+util.FormatCount(progress.Found)),
		statStyle.Render(fmt.Sprintf("  Speed:   %s folders/s", util.FormatCount(int64(progress.ItemsPerSecond())))),
	)
	if progress.Errors > 0 {
		lines = append(lines, theme.ErrorText.Render(fmt.Sprintf("  Errors:  %d", progress.Errors)))
	}

	muted := lipgloss.NewStyle().Foreground(theme.TextMuted)
	if progress.CurrentPath != "" {
		lines = append(lines, "", muted.Render("  "+util.TruncateLeft(progress.CurrentPath, inner)))
	}

	elapsed := progress.Duration.Round(100 * time.Millisecond)
	lines = append(lines,
		"",
		muted.Render(fmt.Sprintf("  Elapsed: %s", elapsed)),
		muted.Render("  esc: stop and keep results so far"),
	)

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderBusy renders a spinner with a message, used while folders move.
func RenderBusy(theme style.Theme, spin, message string, width, height int) string {
	boxWidth := style.ModalWidth(width, 56)
	line := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(spin + "  " + message)
	box := theme.ModalStyle.Width(boxWidth).Render(line)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
