// Package keymap holds the chat screen's key bindings.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap groups the bindings. Ask and Select share enter: which one
// applies depends on whether the input or the source list has focus.
type KeyMap struct {
	Quit, Help, Back key.Binding
	Ask, Sources     key.Binding
	Up, Down, Select key.Binding
}

func bind(help string, keys ...string) key.Binding {
	label := keys[0]
	switch keys[0] {
	case "up":
		label = "↑/k"
	case "down":
		label = "↓/j"
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, help))
}

// DefaultKeyMap returns the bindings. Quit is ctrl+c only so that every
// printable key reaches the question input.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:    bind("quit", "ctrl+c"),
		Help:    bind("help", "?"),
		Back:    bind("back", "esc"),
		Ask:     bind("ask", "enter"),
		Sources: bind("sources", "tab"),
		Up:      bind("up", "up", "k"),
		Down:    bind("down", "down", "j"),
		Select:  bind("open", "enter"),
	}
}

// ShortHelp is shown while typing a question.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Sources, k.Quit}
}

// SourcesHelp is shown while the source list has focus.
func (k *KeyMap) SourcesHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Sources, k.Help}
}

// FullHelp is the help overlay, one column per group.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Ask, k.Sources},
		{k.Up, k.Down, k.Select},
		{k.Back, k.Help, k.Quit},
	}
}
