package model

import (
	"errors"
	"time"
)

// Launch records one activation of an entry.
type Launch struct {
	// ID is the ULID of the launch.
	ID string `json:"id" yaml:"id"`

	// EntryID is the desktop file ID of the launched entry.
	EntryID string `json:"entry_id" yaml:"entry_id"`

	// Name is the entry name at launch time.
	Name string `json:"name" yaml:"name"`

	// Time is when the launch was attempted.
	Time time.Time `json:"time" yaml:"time"`

	// Failed is set when the process could not be started.
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// ErrEmptyEntryID is returned for a launch without an entry.
var ErrEmptyEntryID = errors.New("entry id cannot be empty")

// Validate checks that the launch has all required fields.
func (l *Launch) Validate() error {
	if l.ID == "" {
		return ErrEmptyID
	}
	if l.EntryID == "" {
		return ErrEmptyEntryID
	}
	return nil
}
