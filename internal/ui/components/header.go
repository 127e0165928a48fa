package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/ui/style"
	"github.com/sadopc/voidfinder/internal/util"
)

// HeaderInfo is what the header shows about the loaded scan.
type HeaderInfo struct {
	Root      string
	Target    string // user@host for remote scans
	Found     int
	Noise     int
	Cancelled bool
	Imported  bool
}

// RenderHeader renders the top header bar.
func RenderHeader(theme style.Theme, info HeaderInfo, width int) string {
	if width < 10 {
		return ""
	}

	titleStyled := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(" voidfinder")

	stats := fmt.Sprintf("%s empty  %s noise ",
		util.FormatCount(int64(info.Found)),
		util.FormatCount(int64(info.Noise)),
	)
	switch {
	case info.Cancelled:
		stats = "partial  " + stats
	case info.Imported:
		stats = "imported  " + stats
	}
	statsStyled := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(stats)

	titleW := lipgloss.Width(titleStyled)
	statsW := lipgloss.Width(statsStyled)

	root := info.Root
	if info.Target != "" {
		root = info.Target + ":" + root
	}
	pathMaxW := width - titleW - statsW - 3
	if pathMaxW > 5 {
		root = util.TruncateLeft(root, pathMaxW)
	} else {
		root = ""
	}

	pathStyled := lipgloss.NewStyle().Foreground(theme.TextPrimary).Render("  " + root)
	gap := width - titleW - lipgloss.Width(pathStyled) - statsW
	if gap < 1 {
		gap = 1
	}

	line := titleStyled + pathStyled + strings.Repeat(" ", gap) + statsStyled
	return theme.HeaderStyle.Width(width).Render(line)
}

// RenderInfoLine renders the line under the header: scan totals and the
// active noise names.
func RenderInfoLine(theme style.Theme, scanned int64, errors int, noise []string, width int) string {
	parts := []string{fmt.Sprintf("%s folders scanned", util.FormatCount(scanned))}
	if errors > 0 {
		parts = append(parts, theme.ErrorText.Render(fmt.Sprintf("%d unreadable", errors)))
	}
	if len(noise) > 0 {
		parts = append(parts, "ignoring "+strings.Join(noise, ", "))
	} else {
		parts = append(parts, "no ignored files")
	}

	sep := lipgloss.NewStyle().Foreground(theme.TextMuted).Render(" · ")
	line := " " + strings.Join(parts, sep)
	if lipgloss.Width(line) > width {
		line = util.TruncateString(line, width)
	}
	return theme.InfoStyle.Width(width).Render(line)
}
