package cmd

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#8B5CF6") // violet
	colorValue   = lipgloss.Color("#06B6D4") // cyan
	colorError   = lipgloss.Color("#EF4444") // red
	colorMuted   = lipgloss.Color("#6B7280") // gray
)

// styles holds the terminal styles for one output stream.
type styles struct {
	Banner lipgloss.Style
	Value  lipgloss.Style
	Error  lipgloss.Style
	Muted  lipgloss.Style
}

// newStyles binds styles to w so color detection follows the actual stream.
// With color off every style renders text unchanged.
func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		plain := r.NewStyle()
		return styles{Banner: plain, Value: plain, Error: plain, Muted: plain}
	}
	return styles{
		Banner: r.NewStyle().Foreground(colorPrimary).Bold(true),
		Value:  r.NewStyle().Foreground(colorValue),
		Error:  r.NewStyle().Foreground(colorError),
		Muted:  r.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

// paint renders s line by line; lipgloss would otherwise pad every line of a
// block to the widest one.
func paint(st lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if ln != "" {
			lines[i] = st.Render(ln)
		}
	}
	return strings.Join(lines, "\n")
}
