package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/ops"
	"github.com/sadopc/voidfinder/internal/scanner"
	"github.com/sadopc/voidfinder/internal/ui/style"
)

func noPanic(t *testing.T, name string, fn func(w int)) {
	t.Helper()
	for _, w := range []int{0, 1, 2, 5} {
		t.Run("", func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("%s panicked at width=%d: %v", name, w, r)
				}
			}()
			fn(w)
		})
	}
}

func TestRenderHelp_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	noPanic(t, "RenderHelp", func(w int) { RenderHelp(theme, w, 10) })
}

func TestRenderConfirmDialog_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	items := []ConfirmItem{{Path: "/tmp/root/a/very/long/empty/folder", Noise: 2}}
	noPanic(t, "RenderConfirmDialog", func(w int) { RenderConfirmDialog(theme, items, "/tmp/root", w, 10) })
}

func TestRenderScanProgress_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	p := scanner.Progress{Scanned: 10, Total: 40, CurrentPath: "/tmp/root/x"}
	noPanic(t, "RenderScanProgress", func(w int) { RenderScanProgress(theme, p, "*", false, w, 10) })
}

func TestRenderDetails_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	d := ops.Details{Path: "/tmp/root/a", Exists: true, Empty: true, HasSize: true, ModTime: time.Now(), Noise: []string{".DS_Store"}}
	noPanic(t, "RenderDetails", func(w int) { RenderDetails(theme, d, true, w, 10) })
}

func TestRenderStatusBar_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	noPanic(t, "RenderStatusBar", func(w int) {
		RenderStatusBar(theme, StatusInfo{ItemCount: 3, MarkedCount: 1}, w)
	})
}

func TestRenderConfirmDialog_ListsFolders(t *testing.T) {
	theme := style.DefaultTheme()
	var items []ConfirmItem
	for i := 0; i < 12; i++ {
		items = append(items, ConfirmItem{Path: "/r/d" + string(rune('a'+i)), Noise: 1})
	}
	out := ansi.Strip(RenderConfirmDialog(theme, items, "/r", 100, 40))

	if !strings.Contains(out, "12 empty folder(s) will be moved to Trash") {
		t.Errorf("missing count line:\n%s", out)
	}
	if !strings.Contains(out, "- da") || strings.Contains(out, "- dk") {
		t.Errorf("expected first ten folders only:\n%s", out)
	}
	if !strings.Contains(out, "and 2 more") {
		t.Errorf("missing overflow line:\n%s", out)
	}
	if !strings.Contains(out, "12 ignored file(s)") {
		t.Errorf("missing noise total:\n%s", out)
	}
}

func TestRenderScanProgress_BarOnlyWithTotal(t *testing.T) {
	theme := style.DefaultTheme()

	unknown := ansi.Strip(RenderScanProgress(theme, scanner.Progress{Scanned: 5}, "", false, 80, 30))
	if strings.Contains(unknown, "%") {
		t.Errorf("no percentage expected without a total:\n%s", unknown)
	}

	known := ansi.Strip(RenderScanProgress(theme, scanner.Progress{Scanned: 5, Total: 10}, "", true, 80, 30))
	if !strings.Contains(known, "50%") || !strings.Contains(known, "5 / 10") {
		t.Errorf("expected ratio and counts:\n%s", known)
	}
	if !strings.Contains(known, "Stopping...") {
		t.Errorf("expected stopping title:\n%s", known)
	}
}

func TestRenderDetails_Status(t *testing.T) {
	theme := style.DefaultTheme()
	tests := []struct {
		d    ops.Details
		want string
	}{
		{ops.Details{Path: "/r/a", Exists: true, Empty: true}, "EMPTY"},
		{ops.Details{Path: "/r/a", Exists: true}, "NOT EMPTY"},
		{ops.Details{Path: "/r/a"}, "MISSING"},
	}
	for _, tt := range tests {
		out := ansi.Strip(RenderDetails(theme, tt.d, true, 80, 20))
		if !strings.Contains(out, tt.want) {
			t.Errorf("want %q in:\n%s", tt.want, out)
		}
	}

	loading := ansi.Strip(RenderDetails(theme, ops.Details{Path: "/r/a"}, false, 80, 20))
	if !strings.Contains(loading, "Checking...") {
		t.Errorf("expected loading text:\n%s", loading)
	}
}

func TestEntryList_RendersRelativePaths(t *testing.T) {
	theme := style.DefaultTheme()
	el := EntryList{
		Theme:  theme,
		Layout: style.NewLayout(80, 10),
		Root:   "/r",
		Items: []model.DirectoryEntry{
			{Path: "/r/a/b", IsEmpty: true, NoiseCount: 3, Depth: 2},
			{Path: "/r/c", IsEmpty: true, Depth: 1},
		},
		Marked: map[string]bool{"/r/c": true},
	}
	out := ansi.Strip(el.Render())
	lines := strings.Split(out, "\n")

	if len(lines) != el.Layout.ContentHeight() {
		t.Fatalf("got %d lines, want %d", len(lines), el.Layout.ContentHeight())
	}
	if !strings.Contains(lines[0], "a/b") || !strings.Contains(lines[0], "3") {
		t.Errorf("row 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "* c") {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestEntryList_EmptyMessage(t *testing.T) {
	el := EntryList{Theme: style.DefaultTheme(), Layout: style.NewLayout(80, 10)}
	if out := ansi.Strip(el.Render()); !strings.Contains(out, "No empty folders found.") {
		t.Errorf("missing empty message:\n%s", out)
	}
}

func TestEntryList_EnsureVisible(t *testing.T) {
	el := EntryList{Layout: style.NewLayout(80, 10), Items: make([]model.DirectoryEntry, 30), Cursor: 20}
	el.EnsureVisible()
	if el.Offset != 20-el.Layout.ContentHeight()+1 {
		t.Errorf("offset = %d", el.Offset)
	}
	el.Cursor = 2
	el.EnsureVisible()
	if el.Offset != 2 {
		t.Errorf("offset = %d", el.Offset)
	}
}

func TestRenderColumns_MarksSortColumn(t *testing.T) {
	theme := style.DefaultTheme()
	layout := style.NewLayout(80, 10)

	out := ansi.Strip(RenderColumns(theme, layout, model.SortConfig{Field: model.SortByNoise, Order: model.SortDesc}))
	if !strings.Contains(out, "Noise↓") {
		t.Errorf("expected noise arrow: %q", out)
	}
	out = ansi.Strip(RenderColumns(theme, layout, model.SortConfig{Field: model.SortByName, Order: model.SortAsc}))
	if !strings.Contains(out, "Name↑") {
		t.Errorf("expected name arrow: %q", out)
	}
}
