package model

import "charm.land/bubbles/v2/key"

type KeyMap struct {
	// Global key maps
	Quit key.Binding
	Help key.Binding

	// Navigation mode key maps
	Save        key.Binding
	Undo        key.Binding
	Sort        key.Binding
	ToggleGroup key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "more"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z", "u"),
			key.WithHelp("ctrl+z", "undo"),
		),
		Sort: key.NewBinding(
			key.WithKeys("ctrl+t", "s"),
			key.WithHelp("s", "sort column"),
		),
		ToggleGroup: key.NewBinding(
			key.WithKeys("ctrl+o", "o"),
			key.WithHelp("o", "toggle group"),
		),
	}
}
