package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the panel on the terminal and blocks until the user quits.
func Run(accessor Accessor) error {
	p := tea.NewProgram(New(accessor), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
