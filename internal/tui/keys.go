package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the panel key bindings.
type keyMap struct {
	Down     key.Binding
	Up       key.Binding
	DownFast key.Binding
	UpFast   key.Binding
	Apply    key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down: key.NewBinding(
			key.WithKeys("left", "h", "down", "j"),
			key.WithHelp("←", "-1"),
		),
		Up: key.NewBinding(
			key.WithKeys("right", "l", "up", "k"),
			key.WithHelp("→", "+1"),
		),
		DownFast: key.NewBinding(
			key.WithKeys("shift+left", "pgdown"),
			key.WithHelp("pgdn", "-10"),
		),
		UpFast: key.NewBinding(
			key.WithKeys("shift+right", "pgup"),
			key.WithHelp("pgup", "+10"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "set new TTL"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpBindings lists the bindings shown in the footer, in order.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.DownFast, k.UpFast, k.Apply, k.Refresh, k.Quit}
}
