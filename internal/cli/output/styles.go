package output

import "github.com/charmbracelet/lipgloss"

// Styles is the set of lipgloss styles shared across commands. Renderers
// hand out a plain set when color is off, so callers can style
// unconditionally.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	FilePath lipgloss.Style
}

// newColorStyles returns the styled set for interactive terminals.
func newColorStyles() *Styles {
	return &Styles{
		Header1:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12")),
		Header2:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:     lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		FilePath: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
	}
}

// newPlainStyles returns a pass-through set that renders text unchanged.
func newPlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1:  plain,
		Header2:  plain,
		Bold:     plain,
		Muted:    plain,
		Success:  plain,
		Warning:  plain,
		Error:    plain,
		Info:     plain,
		FilePath: plain,
	}
}
