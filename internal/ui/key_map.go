package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the viewer.
type keyMap struct {
	refresh key.Binding
	open    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open lyrics")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.refresh, k.open, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.refresh, k.open},
		{k.quit},
	}
}
