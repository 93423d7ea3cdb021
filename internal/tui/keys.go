package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the picker.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Actions
	Launch      key.Binding
	Details     key.Binding
	Back        key.Binding
	CopyExec    key.Binding
	CopyID      key.Binding
	CopyAllJSON key.Binding
	Search      key.Binding
	Refresh     key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Launch, k.Search, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Launch, k.Details, k.Back, k.Search, k.Refresh},
		{k.CopyExec, k.CopyID, k.CopyAllJSON},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Home:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "go to top")),
		End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "go to bottom")),
		Launch:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "launch")),
		Details:     key.NewBinding(key.WithKeys("i", "tab"), key.WithHelp("i", "details")),
		Back:        key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		CopyExec:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy command")),
		CopyID:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy desktop id")),
		CopyAllJSON: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "copy visible as JSON")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}
