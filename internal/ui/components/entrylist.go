package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/ui/style"
	"github.com/sadopc/voidfinder/internal/util"
)

// EntryList renders the empty folders of a scan, one per row.
type EntryList struct {
	Theme   style.Theme
	Layout  style.Layout
	Root    string
	Items   []model.DirectoryEntry
	Cursor  int
	Offset  int
	Marked  map[string]bool
	Message string // shown when Items is empty
}

// Render renders the visible window of rows.
func (el *EntryList) Render() string {
	width := el.Layout.ContentWidth()
	contentHeight := el.Layout.ContentHeight()

	var lines []string
	if len(el.Items) == 0 {
		msg := el.Message
		if msg == "" {
			msg = "No empty folders found."
		}
		lines = append(lines, style.FullWidth(
			lipgloss.NewStyle().Foreground(el.Theme.TextMuted).Render("  "+msg), width))
	}

	end := min(el.Offset+contentHeight, len(el.Items))
	for i := el.Offset; i < end; i++ {
		item := el.Items[i]
		lines = append(lines, el.renderRow(item, i == el.Cursor, el.Marked[item.Path], width))
	}

	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func (el *EntryList) renderRow(item model.DirectoryEntry, selected, marked bool, totalWidth int) string {
	pathWidth := el.Layout.PathWidth()

	indicator := "  "
	switch {
	case selected && marked:
		indicator = el.Theme.MarkedIndicator.Render("*") + el.Theme.CursorIndicator.Render(">")
	case selected:
		indicator = el.Theme.CursorIndicator.Render(" >")
	case marked:
		indicator = el.Theme.MarkedIndicator.Render("* ")
	}

	// Left truncation keeps the folder name visible.
	rel := util.TruncateLeft(util.RelPath(el.Root, item.Path), pathWidth)
	pathStyled := el.Theme.PathText.Render(style.FullWidth(rel, pathWidth))

	noise := "-"
	if item.NoiseCount > 0 {
		noise = util.FormatCount(int64(item.NoiseCount))
	}
	noiseStyled := el.Theme.NoiseText.Width(7).Render(noise)
	depthStyled := el.Theme.DepthText.Width(6).Render(fmt.Sprintf("%d", item.Depth))

	row := style.FullWidth(indicator+pathStyled+" "+noiseStyled+" "+depthStyled, totalWidth)
	if selected {
		return el.Theme.SelectedRow.Width(totalWidth).Render(row)
	}
	return row
}

// EnsureVisible adjusts offset to keep cursor visible.
func (el *EntryList) EnsureVisible() {
	contentHeight := el.Layout.ContentHeight()
	if el.Cursor < el.Offset {
		el.Offset = el.Cursor
	}
	if el.Cursor >= el.Offset+contentHeight {
		el.Offset = el.Cursor - contentHeight + 1
	}
	if el.Offset < 0 {
		el.Offset = 0
	}
}

// RenderColumns renders the column headings, highlighting the sort column.
func RenderColumns(theme style.Theme, layout style.Layout, sort model.SortConfig) string {
	width := layout.ContentWidth()
	arrow := "↑"
	if sort.Order == model.SortDesc {
		arrow = "↓"
	}

	label := func(name string, active bool, w int, right bool) string {
		s := theme.ColumnStyle
		if active {
			s = theme.ColumnActive
			name += arrow
		}
		s = s.Width(w)
		if right {
			s = s.Align(lipgloss.Right)
		}
		return s.Render(name)
	}

	pathName := "Path"
	if sort.Field == model.SortByName {
		pathName = "Name"
	}
	byPath := sort.Field == model.SortByPath || sort.Field == model.SortByName
	line := theme.ColumnStyle.Render("  ") +
		label(pathName, byPath, layout.PathWidth(), false) +
		theme.ColumnStyle.Render(" ") +
		label("Noise", sort.Field == model.SortByNoise, 7, true) +
		theme.ColumnStyle.Render(" ") +
		label("Depth", sort.Field == model.SortByDepth, 6, true)
	return theme.ColumnStyle.Width(width).Render(style.FullWidth(line, width))
}
