package watcher

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the keys the watcher reacts to while the market view is shown.
type keyMap struct {
	Settings  key.Binding
	Interrupt key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Settings: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "open settings menu"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
