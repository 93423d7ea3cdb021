package desktop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarDesktop = `# comment
[Desktop Entry]
Type=Application
Name=Calendar
Name[de]=Kalender
Name[pt_BR]=Calendário
Comment=Access and manage calendars
Exec=gnome-calendar --uuid %U
Icon=org.gnome.Calendar
Keywords=Calendar;Event;Reminder;
Terminal=false

[Desktop Action new]
Name=New Event
Exec=gnome-calendar --new
`

func TestParseKeyFile(t *testing.T) {
	kf, err := ParseKeyFile(strings.NewReader(calendarDesktop))
	require.NoError(t, err)

	assert.Equal(t, "Calendar", kf["Name"])
	assert.Equal(t, "gnome-calendar --uuid %U", kf["Exec"])
	assert.Equal(t, []string{"Calendar", "Event", "Reminder"}, kf.List("Keywords"))
	assert.False(t, kf.Bool("Terminal"))
}

func TestParseKeyFile_NoGroup(t *testing.T) {
	_, err := ParseKeyFile(strings.NewReader("Name=Orphan\n"))
	assert.ErrorIs(t, err, ErrNoDesktopGroup)
}

func TestParseKeyFile_Escapes(t *testing.T) {
	kf, err := ParseKeyFile(strings.NewReader("[Desktop Entry]\nComment=a\\sb\\tc\\\\d\n"))
	require.NoError(t, err)
	assert.Equal(t, "a b\tc\\d", kf["Comment"])
}

func TestKeyFile_Localized(t *testing.T) {
	kf, err := ParseKeyFile(strings.NewReader(calendarDesktop))
	require.NoError(t, err)

	tests := []struct {
		locale string
		want   string
	}{
		{"", "Calendar"},
		{"C", "Calendar"},
		{"de_DE.UTF-8", "Kalender"},
		{"de_AT@euro", "Kalender"},
		{"pt_BR.UTF-8", "Calendário"},
		{"pt_PT", "Calendar"},
		{"fr_FR", "Calendar"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, kf.Localized("Name", tt.locale))
		})
	}
}

func TestLocaleVariants(t *testing.T) {
	assert.Equal(t, []string{"sr_RS@latin", "sr_RS", "sr@latin", "sr"}, localeVariants("sr_RS.UTF-8@latin"))
	assert.Equal(t, []string{"de"}, localeVariants("de"))
	assert.Nil(t, localeVariants("POSIX"))
}

func TestKeyFile_ToEntry(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid", "[Desktop Entry]\nName=A\nExec=a\n", nil},
		{"link type", "[Desktop Entry]\nType=Link\nName=A\nExec=a\n", ErrNotApplication},
		{"no display", "[Desktop Entry]\nName=A\nExec=a\nNoDisplay=true\n", ErrHidden},
		{"hidden", "[Desktop Entry]\nName=A\nExec=a\nHidden=true\n", ErrHidden},
		{"no exec", "[Desktop Entry]\nName=A\n", ErrIncomplete},
		{"no name", "[Desktop Entry]\nExec=a\n", ErrIncomplete},
		{"only field code", "[Desktop Entry]\nName=A\nExec=%u\n", ErrIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kf, err := ParseKeyFile(strings.NewReader(tt.content))
			require.NoError(t, err)

			_, err = kf.ToEntry("a.desktop", "")
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsSkip(err))
			}
		})
	}
}

func TestKeyFile_ToEntryFields(t *testing.T) {
	kf, err := ParseKeyFile(strings.NewReader(calendarDesktop))
	require.NoError(t, err)

	e, err := kf.ToEntry("org.gnome.Calendar.desktop", "de_DE")
	require.NoError(t, err)
	assert.Equal(t, "org.gnome.Calendar.desktop", e.ID)
	assert.Equal(t, "Kalender", e.Name)
	assert.Equal(t, []string{"gnome-calendar", "--uuid"}, e.Command)
	assert.Equal(t, "org.gnome.Calendar", e.Icon)
	assert.Equal(t, "Access and manage calendars", e.Comment)
	assert.Len(t, e.Keywords, 3)
}

func TestKeyFile_BadExecIsNotSkip(t *testing.T) {
	kf, err := ParseKeyFile(strings.NewReader("[Desktop Entry]\nName=A\nExec=\"a\n"))
	require.NoError(t, err)

	_, err = kf.ToEntry("a.desktop", "")
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
	assert.False(t, IsSkip(err))
}
