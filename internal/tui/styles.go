package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles the picker renders with.
type Styles struct {
	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style
	Result   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Result: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
