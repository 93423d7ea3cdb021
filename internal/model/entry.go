// Package model defines the core data structures for appdrawer.
package model

import (
	"errors"
	"strings"
	"time"
)

// Entry is a single launchable application.
// Entries are immutable once built; the inventory replaces them wholesale.
type Entry struct {
	// ID is the desktop file ID, e.g. "org.gnome.Calendar.desktop".
	ID string `json:"id" yaml:"id"`

	// Name is the display name (localised when available).
	Name string `json:"name" yaml:"name"`

	// Command is the argument vector with field codes removed.
	Command []string `json:"command" yaml:"command"`

	// Icon is an absolute path or an icon theme name.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Source is the descriptor file the entry was read from.
	Source string `json:"source" yaml:"source"`

	// Comment is the optional tooltip text of the descriptor.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Keywords are extra search terms from the descriptor.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Terminal reports whether the app expects to run in a terminal.
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`

	// Modified is the descriptor modification time.
	Modified time.Time `json:"modified" yaml:"modified"`
}

// Validation errors.
var (
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyCommand = errors.New("command cannot be empty")
)

// Validate checks that the entry has all required fields.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Name == "" {
		return ErrEmptyName
	}
	if len(e.Command) == 0 || e.Command[0] == "" {
		return ErrEmptyCommand
	}
	return nil
}

// CommandLine returns the command joined with single spaces.
// It is used for deterministic ordering and display, never for execution.
func (e *Entry) CommandLine() string {
	return strings.Join(e.Command, " ")
}

// Executable returns the first element of the command, or "" when empty.
func (e *Entry) Executable() string {
	if len(e.Command) == 0 {
		return ""
	}
	return e.Command[0]
}

// HasIcon reports whether the entry references an icon.
func (e *Entry) HasIcon() bool {
	return e.Icon != ""
}

// Initial returns the upper-cased first rune of the name, used by placeholders.
func (e *Entry) Initial() string {
	for _, r := range e.Name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
