package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row layout: mark(2) + path + " " + noise(7) + " " + depth(6).
const rowOverhead = 16

// Layout manages the arrangement of UI components within terminal dimensions.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentHeight returns the height available for the entry list.
func (l Layout) ContentHeight() int {
	h := l.Height - 4 // header + info line + column headings + statusbar
	if h < 1 {
		h = 1
	}
	return h
}

// ContentWidth returns the width available for the main content area.
func (l Layout) ContentWidth() int {
	if l.Width < 20 {
		return 20
	}
	return l.Width
}

// PathWidth returns the width of the path column.
func (l Layout) PathWidth() int {
	w := l.ContentWidth() - rowOverhead
	if w < 8 {
		w = 8
	}
	return w
}

// ModalWidth clamps limit to width minus a margin, never below zero.
func ModalWidth(width, limit int) int {
	w := limit
	if w > width-4 {
		w = width - 4
	}
	if w < 0 {
		w = 0
	}
	return w
}

// FullWidth pads a string with spaces to reach exactly the target visual width.
// If the string is already wider, it is returned as-is (no truncation).
func FullWidth(s string, width int) string {
	visLen := lipgloss.Width(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}
