package input

import (
	"github.com/charmbracelet/bubbles/key"
)

// Key is a key press as delivered by the toolkit. Named keys use lower-case
// names ("up", "enter", "esc"); printable keys carry their rune.
type Key struct {
	Name string
	Rune rune
}

// KeyRune returns the Key for a printable character.
func KeyRune(r rune) Key {
	return Key{Rune: r}
}

// Named returns the Key for a named key.
func Named(name string) Key {
	return Key{Name: name}
}

// String returns the name used by key bindings.
func (k Key) String() string {
	if k.Name != "" {
		return k.Name
	}
	if k.Rune != 0 {
		return string(k.Rune)
	}
	return ""
}

// Printable reports whether the key inserts text into the filter.
func (k Key) Printable() bool {
	return k.Name == "" && k.Rune >= ' ' && k.Rune != 0x7f
}

// KeyMap defines the drawer's key bindings.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	Activate  key.Binding
	Backspace key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the default key bindings. Letters are never bound
// so every printable key can reach the filter.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		Right:     key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "row up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "row down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
		End:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
		Activate:  key.NewBinding(key.WithKeys("enter", "kpenter"), key.WithHelp("enter", "launch")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear / hide")),
	}
}
