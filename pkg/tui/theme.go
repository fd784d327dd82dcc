package tui

import "github.com/charmbracelet/lipgloss"

// Theme centralizes Lip Gloss styles for the page UI.
type Theme struct {
	Title    lipgloss.Style
	Count    lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	Cursor   lipgloss.Style
	Filters  lipgloss.Style
	Help     lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Modal    ModalTheme
	Selected lipgloss.Style
}

// ModalTheme styles the add/edit/delete/filter overlays.
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Label lipgloss.Style
	Error lipgloss.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Underline(true),
		Count:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		Row:      lipgloss.NewStyle(),
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Filters:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("70")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title: lipgloss.NewStyle().Bold(true),
			Label: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}
