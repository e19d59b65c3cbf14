package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browser keybindings.
type KeyMap struct {
	Quit      key.Binding
	Search    key.Binding
	Up        key.Binding
	Down      key.Binding
	Kind      key.Binding
	NewSearch key.Binding
	Resync    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Kind: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "kind"),
		),
		NewSearch: key.NewBinding(
			key.WithKeys("/", "esc"),
			key.WithHelp("/", "new search"),
		),
		Resync: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resync repo"),
		),
	}
}

// help returns the bindings shown in the status bar for the given mode.
func (k KeyMap) help(inputFocused bool) []key.Binding {
	if inputFocused {
		return []key.Binding{k.Search, k.Kind, k.Quit}
	}
	return []key.Binding{k.Up, k.Down, k.NewSearch, k.Resync, k.Quit}
}
