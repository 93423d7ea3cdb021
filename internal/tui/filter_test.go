package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/appdrawer/internal/model"
)

func TestIsFilterExpression(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{"name_contains", "name~term", true},
		{"exec_equal", "exec=firefox", true},
		{"exec_not_equal", "exec!=vim", true},
		{"id_regex", `id~=^org\.gnome\.`, true},
		{"terminal", "terminal=true", true},
		{"multiple", "terminal=false,name~fox", true},
		{"case_insensitive_field", "NAME~fox", true},

		{"plain_word", "calendar", false},
		{"plain_phrase", "web browser", false},
		{"unknown_field", "unknown=value", false},
		{"just_equals", "=value", false},
		{"bad_regex", "name~=(", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isFilterExpression(tt.query), "query: %q", tt.query)
		})
	}
}

func TestApplyQuery(t *testing.T) {
	entries := []model.Entry{
		{ID: "firefox.desktop", Name: "Firefox", Command: []string{"firefox"}, Keywords: []string{"browser"}},
		{ID: "htop.desktop", Name: "Htop", Command: []string{"htop"}, Terminal: true},
	}

	assert.Len(t, applyQuery(entries, ""), 2)
	assert.Equal(t, "firefox.desktop", applyQuery(entries, "BROWSER")[0].ID, "keywords are searched")
	assert.Equal(t, "htop.desktop", applyQuery(entries, "terminal=true")[0].ID)
	assert.Empty(t, applyQuery(entries, "nothing"))
}

func TestDetectClipboardCommand(t *testing.T) {
	only := func(name string) func(string) (string, error) {
		return func(file string) (string, error) {
			if file == name {
				return "/usr/bin/" + file, nil
			}
			return "", assert.AnError
		}
	}

	assert.Equal(t, "pbcopy", detectClipboardCommand("pbcopy", only("wl-copy")))
	assert.Equal(t, "wl-copy", detectClipboardCommand("", only("wl-copy")))
	assert.Equal(t, "xsel --clipboard --input", detectClipboardCommand("", only("xsel")))
	assert.Equal(t, "", detectClipboardCommand("", only("none")))
}
