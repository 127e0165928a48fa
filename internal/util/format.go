package util

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// FormatSize returns a human-readable size string in binary units.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount returns n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// Percent returns the percentage of part relative to total.
func Percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// TruncateString truncates s to maxLen terminal cells, adding "..." when
// there is room for it.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}

// TruncateLeft keeps the end of s, which is the informative part of a path.
func TruncateLeft(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return ansi.TruncateLeft(s, w-maxLen, "")
	}
	return ansi.TruncateLeft(s, w-maxLen+3, "...")
}

// RelPath returns p relative to root for display. Both separators are
// accepted so remote paths work the same way.
func RelPath(root, p string) string {
	if p == root {
		return "."
	}
	trimmed := strings.TrimRight(root, `/\`)
	if !strings.HasPrefix(p, trimmed) {
		return p
	}
	rest := p[len(trimmed):]
	if rest == "" || (rest[0] != '/' && rest[0] != '\\') {
		return p
	}
	if rel := strings.TrimLeft(rest, `/\`); rel != "" {
		return rel
	}
	return "."
}
