package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings of the board UI.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Toggle   key.Binding
	Shuffle  key.Binding
	Replace  key.Binding
	Edit     key.Binding
	Featured key.Binding
	Wipe     key.Binding
	Reset    key.Binding
	Undo     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Shuffle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Replace:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replace")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "replace with…")),
		Featured: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "new featured")),
		Wipe:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wipe")),
		Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Confirm:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "n", "N"), key.WithHelp("esc", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpLine lists the main bindings.
func (k KeyMap) helpLine() []key.Binding {
	return []key.Binding{k.Toggle, k.Shuffle, k.Replace, k.Edit, k.Featured, k.Wipe, k.Reset, k.Undo, k.Quit}
}
