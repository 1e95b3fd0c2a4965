// Package display renders plans, profiles and live solve progress for
// the CLI. The planner core never imports it.
package display

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles contains all styling for plan and profile output.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Step     lipgloss.Style
	Ticks    lipgloss.Style
	Segment  lipgloss.Style
	Good     lipgloss.Style
	Bad      lipgloss.Style
	Dim      lipgloss.Style
	NoColour bool
}

// DefaultStyles returns the standard colour scheme, degrading to plain
// text when the terminal has no colour support.
func DefaultStyles() *Styles {
	if termenv.ColorProfile() == termenv.Ascii {
		return &Styles{NoColour: true}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Step:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Ticks:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Segment: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Italic(true),
		Good:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Dim:     lipgloss.NewStyle().Faint(true),
	}
}
