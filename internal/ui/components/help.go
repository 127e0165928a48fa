package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/voidfinder/internal/ui/style"
)

// RenderHelp renders the help overlay.
func RenderHelp(theme style.Theme, width, height int) string {
	boxWidth := style.ModalWidth(width, 60)

	title := theme.ModalTitle.Render("  voidfinder - Keyboard Shortcuts")

	sections := []struct {
		name  string
		binds []struct{ key, desc string }
	}{
		{
			name: "Navigation",
			binds: []struct{ key, desc string }{
				{"j/k", "Move down/up"},
				{"PgDn/PgUp", "Move one page"},
				{"g/G", "First / last folder"},
			},
		},
		{
			name: "Selection",
			binds: []struct{ key, desc string }{
				{"Space", "Mark/unmark folder"},
				{"a", "Mark all / clear marks"},
			},
		},
		{
			name: "Actions",
			binds: []struct{ key, desc string }{
				{"d", "Move marked/current to Trash"},
				{"Enter", "Folder details"},
				{"o", "Open in file manager"},
				{"E", "Export results to JSON"},
				{"r", "Rescan"},
			},
		},
		{
			name: "Sorting",
			binds: []struct{ key, desc string }{
				{"s", "Next sort column"},
				{"S", "Reverse sort order"},
			},
		},
		{
			name: "General",
			binds: []struct{ key, desc string }{
				{"Esc", "Stop scan / close dialog"},
				{"?", "Toggle help"},
				{"q", "Quit"},
			},
		},
	}

	var lines []string
	lines = append(lines, title, "")

	for _, sec := range sections {
		lines = append(lines, lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent).
			Render("  "+sec.name))

		for _, b := range sec.binds {
			key := theme.HelpKey.Width(14).Render("    " + b.key)
			desc := theme.HelpDesc.Render(b.desc)
			lines = append(lines, fmt.Sprintf("%s %s", key, desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines, lipgloss.NewStyle().
		Foreground(theme.TextMuted).
		Render("  Press ? or Esc to close"))

	box := theme.ModalStyle.
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
