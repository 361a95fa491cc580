package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all the styles used in the TUI.
type Styles struct {
	// Text styles
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Subtle lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Error   lipgloss.Style

	// Slider styles
	SliderFill  lipgloss.Style
	SliderEmpty lipgloss.Style
	SliderValue lipgloss.Style

	// Container styles
	Box lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("87")), // Cyan

		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red

		SliderFill: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),

		SliderEmpty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")),

		SliderValue: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2),
	}
}

// MinimalTheme returns a minimal style set with fewer colors.
func MinimalTheme() Styles {
	s := DefaultStyles()

	s.Title = lipgloss.NewStyle().Bold(true)
	s.Label = lipgloss.NewStyle()
	s.SliderFill = lipgloss.NewStyle()
	s.SliderValue = lipgloss.NewStyle().Bold(true)

	return s
}
