package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds all the styled components for the UI.
type Theme struct {
	// Base colors
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color

	// Backgrounds
	BgMedium lipgloss.Color
	BgLight  lipgloss.Color

	// Text
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	// Gradient colors for bars
	GradientStart lipgloss.Color
	GradientEnd   lipgloss.Color

	// Styles
	HeaderStyle     lipgloss.Style
	InfoStyle       lipgloss.Style
	ColumnStyle     lipgloss.Style
	ColumnActive    lipgloss.Style
	StatusBarStyle  lipgloss.Style
	SelectedRow     lipgloss.Style
	NormalRow       lipgloss.Style
	MarkedIndicator lipgloss.Style
	CursorIndicator lipgloss.Style
	PathText        lipgloss.Style
	NoiseText       lipgloss.Style
	DepthText       lipgloss.Style
	ErrorText       lipgloss.Style
	HelpKey         lipgloss.Style
	HelpDesc        lipgloss.Style
	ModalStyle      lipgloss.Style
	ModalTitle      lipgloss.Style
	BorderStyle     lipgloss.Style
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#5E81AC"),
		Accent:  lipgloss.Color("#88C0D0"),
		Muted:   lipgloss.Color("#4C566A"),
		Error:   lipgloss.Color("#BF616A"),
		Warning: lipgloss.Color("#EBCB8B"),
		Success: lipgloss.Color("#A3BE8C"),

		BgMedium: lipgloss.Color("#2E3440"),
		BgLight:  lipgloss.Color("#3B4252"),

		TextPrimary:   lipgloss.Color("#ECEFF4"),
		TextSecondary: lipgloss.Color("#D8DEE9"),
		TextMuted:     lipgloss.Color("#7B88A1"),

		// Progress bar runs blue to green.
		GradientStart: lipgloss.Color("#5E81AC"),
		GradientEnd:   lipgloss.Color("#A3BE8C"),
	}

	// Header: no padding, spacing is laid out by the renderer
	t.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.TextPrimary).
		Background(t.BgMedium)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(t.TextMuted)

	t.ColumnStyle = lipgloss.NewStyle().
		Foreground(t.TextSecondary).
		Background(t.BgLight)

	t.ColumnActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.TextPrimary).
		Background(t.Primary)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextSecondary).
		Background(t.BgMedium)

	t.SelectedRow = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#4A4A6A"))

	t.NormalRow = lipgloss.NewStyle().
		Foreground(t.TextSecondary)

	t.MarkedIndicator = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	t.CursorIndicator = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.PathText = lipgloss.NewStyle().
		Foreground(t.Accent)

	t.NoiseText = lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Align(lipgloss.Right)

	t.DepthText = lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Align(lipgloss.Right)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(t.Error)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(t.TextMuted)

	t.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Background(t.BgMedium)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.TextPrimary).
		Padding(0, 0, 1, 0)

	t.BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted)

	return t
}

// GradientColor returns a color interpolated between gradient start and end.
func (t Theme) GradientColor(ratio float64) lipgloss.Color {
	if ratio <= 0 {
		return t.GradientStart
	}
	if ratio >= 1 {
		return t.GradientEnd
	}

	c1, _ := colorful.Hex(string(t.GradientStart))
	c2, _ := colorful.Hex(string(t.GradientEnd))
	blended := c1.BlendLab(c2, ratio)
	return lipgloss.Color(blended.Hex())
}

// BarGradient renders a per-character gradient progress bar. A negative
// ratio means the total is unknown and renders an empty track.
func (t Theme) BarGradient(width int, ratio float64) string {
	if width <= 0 {
		return ""
	}
	filled := int(ratio * float64(width))
	filled = min(max(filled, 0), width)

	var buf strings.Builder
	buf.Grow(width * 20) // rough estimate with ANSI codes

	c1, _ := colorful.Hex(string(t.GradientStart))
	c2, _ := colorful.Hex(string(t.GradientEnd))

	for i := 0; i < filled; i++ {
		// Each character gets its own gradient position
		charRatio := float64(i) / float64(max(width-1, 1))
		blended := c1.BlendLab(c2, charRatio)
		color := lipgloss.Color(blended.Hex())
		buf.WriteString(lipgloss.NewStyle().Foreground(color).Render("━"))
	}

	if filled < width {
		dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
		buf.WriteString(dimStyle.Render(strings.Repeat("─", width-filled)))
	}

	return buf.String()
}
