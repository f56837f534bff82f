package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorBlue   = lipgloss.Color("#4f8cff")
	colorGreen  = lipgloss.Color("#2fd576")
	colorYellow = lipgloss.Color("#f2c94c")
	colorRed    = lipgloss.Color("#ff6b6b")
	colorGray   = lipgloss.Color("#9aa4b2")
)

// Styles holds the lipgloss styles for the wizard.
type Styles struct {
	Header  lipgloss.Style
	Step    lipgloss.Style
	Done    lipgloss.Style
	Skipped lipgloss.Style
	Failed  lipgloss.Style
	Detail  lipgloss.Style
	Help    lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(colorBlue).MarginBottom(1),
		Step:    lipgloss.NewStyle(),
		Done:    lipgloss.NewStyle().Foreground(colorGreen),
		Skipped: lipgloss.NewStyle().Foreground(colorYellow),
		Failed:  lipgloss.NewStyle().Foreground(colorRed),
		Detail:  lipgloss.NewStyle().Foreground(colorGray),
		Help:    lipgloss.NewStyle().Foreground(colorGray).MarginTop(1),
	}
}
