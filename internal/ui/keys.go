package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the editor's global bindings.
type KeyMap struct {
	New       key.Binding
	Open      key.Binding
	Save      key.Binding
	SaveAs    key.Binding
	Undo      key.Binding
	Redo      key.Binding
	NextTheme key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		New:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^N", "new")),
		Open:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "open")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save")),
		SaveAs:    key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("M-s", "save as")),
		Undo:      key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("^Z", "undo")),
		Redo:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^Y", "redo")),
		NextTheme: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "theme")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("^Q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Open, k.Save, k.SaveAs, k.Undo, k.Redo, k.NextTheme, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// dialogKeys are active while a prompt is open.
type dialogKeys struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultDialogKeys() dialogKeys {
	return dialogKeys{
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
	}
}
