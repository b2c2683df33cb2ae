package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the browse view bindings. List navigation (arrows, j/k,
// pgup/pgdn, home/end) is handled by the list itself.
type KeyMap struct {
	Next   key.Binding
	Reload key.Binding
	Cancel key.Binding
	Open   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:   key.NewBinding(key.WithKeys("n", " "), key.WithHelp("n/space", "next page")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Cancel: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel fetch")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Open, k.Reload, k.Cancel, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Back}}
}
