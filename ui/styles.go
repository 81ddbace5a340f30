package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	Chat      lipgloss.Style
	Echo      lipgloss.Style
	Local     lipgloss.Style
	Roster    lipgloss.Style
	RosterHdr lipgloss.Style
	Input     lipgloss.Style
	StatusBar lipgloss.Style

	StatusOnline     lipgloss.Style
	StatusConnecting lipgloss.Style
	StatusOffline    lipgloss.Style

	Muted lipgloss.Style
	Error lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Chat: lipgloss.NewStyle(),
		Echo: lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")),
		Local: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		Roster: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			PaddingLeft(1),
		RosterHdr: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		Input: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		StatusOnline: lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")), // Muted green
		StatusConnecting: lipgloss.NewStyle().
			Foreground(lipgloss.Color("179")), // Muted yellow
		StatusOffline: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")), // Gray

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}
