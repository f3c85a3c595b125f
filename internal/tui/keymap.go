package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts of the review screen.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Category changes
	PrevCategory key.Binding
	NextCategory key.Binding

	// Actions
	ToggleFilter key.Binding
	Reclassify   key.Binding
	Save         key.Binding

	// Application
	Quit       key.Binding
	ForceQuit  key.Binding
	ToggleHelp key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn", "page down"),
		),

		PrevCategory: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "previous category"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "next category"),
		),

		ToggleFilter: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unclassified only"),
		),
		Reclassify: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rerun rules"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save and quit"),
		),

		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/Esc", "quit without saving"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevCategory, k.NextCategory, k.ToggleFilter, k.Save, k.Quit, k.ToggleHelp}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.PrevCategory, k.NextCategory},
		{k.ToggleFilter, k.Reclassify, k.Save},
		{k.Quit, k.ForceQuit, k.ToggleHelp},
	}
}
