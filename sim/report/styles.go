// Package report renders a simulation's event stream for people: a console
// view of Key-Dates and interval tables, and a mermaid Gantt diagram.
package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Gruvbox palette, shared with the rest of the CLI output.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorBlue   = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
)

// styles holds the lipgloss styles of one output. A zero value renders plain text.
type styles struct {
	enabled   bool
	milestone lipgloss.Style
	end       lipgloss.Style
	start     lipgloss.Style
	header    lipgloss.Style
	group     lipgloss.Style
	warn      lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	if !color {
		return styles{}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		enabled:   true,
		milestone: r.NewStyle().Foreground(colorHeader).Bold(true),
		end:       r.NewStyle().Foreground(colorGreen),
		start:     r.NewStyle().Foreground(colorDim),
		header:    r.NewStyle().Foreground(colorBlue).Bold(true),
		group:     r.NewStyle().Foreground(colorDim).Italic(true),
		warn:      r.NewStyle().Foreground(colorYellow),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}
