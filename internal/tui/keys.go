package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for prompts.
type KeyMap struct {
	// Menu commands
	Yes    key.Binding
	No     key.Binding
	Reroll key.Binding
	Long   key.Binding
	Short  key.Binding
	Edit   key.Binding
	Prompt key.Binding

	// Large diff confirmation
	Continue key.Binding
	Abort    key.Binding

	// Shared
	Default key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Yes:      key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "commit")),
		No:       key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "abort")),
		Reroll:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "reroll")),
		Long:     key.NewBinding(key.WithKeys("l", "L"), key.WithHelp("l", "multi-line")),
		Short:    key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "single line")),
		Edit:     key.NewBinding(key.WithKeys("e", "E"), key.WithHelp("e", "edit")),
		Prompt:   key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "add instructions")),
		Continue: key.NewBinding(key.WithKeys("c", "C"), key.WithHelp("c", "continue")),
		Abort:    key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "abort")),
		Default: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "first option"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("Esc", "cancel"),
		),
	}
}

// ShortHelp returns the key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Default, k.Cancel}
}

// FullHelp returns the key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Yes, k.No, k.Reroll, k.Long, k.Short, k.Edit, k.Prompt},
		{k.Default, k.Cancel},
	}
}
