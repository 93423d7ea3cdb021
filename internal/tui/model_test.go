package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/model"
)

func pickerEntries() []model.Entry {
	return []model.Entry{
		{ID: "org.gnome.Calendar.desktop", Name: "Calendar", Command: []string{"gnome-calendar"}, Comment: "Schedule events"},
		{ID: "htop.desktop", Name: "Htop", Command: []string{"htop"}, Terminal: true, Keywords: []string{"process", "monitor"}},
		{ID: "firefox.desktop", Name: "Firefox", Command: []string{"firefox", "--new-window"}},
	}
}

func ready(t *testing.T, load Loader) Model {
	t.Helper()
	m := New(load, "")
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return send(t, m, m.loadEntries())
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadsEntries(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })
	assert.Len(t, m.list.Items(), 3)
	assert.Equal(t, ModeList, m.mode)
	assert.Contains(t, m.View(), "Applications")
}

func TestModel_LoadErrorSetsStatus(t *testing.T) {
	m := New(func() ([]model.Entry, error) { return nil, errors.New("boom") }, "")
	next, cmd := m.Update(m.loadEntries())
	require.NotNil(t, cmd)
	m = send(t, next.(Model), cmd())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "boom")

	m = send(t, m, clearStatusMsg{})
	assert.Empty(t, m.statusMsg)
}

func TestModel_EnterChoosesSelected(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	chosen := next.(Model).Chosen()
	require.NotNil(t, chosen)
	assert.Equal(t, "org.gnome.Calendar.desktop", chosen.ID)
}

func TestModel_EnterOnEmptyListDoesNothing(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return nil, nil })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Nil(t, next.(Model).Chosen())
}

func TestModel_SearchNarrowsAndClears(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })

	m = send(t, m, runes("/"))
	require.Equal(t, ModeSearch, m.mode)

	m = send(t, m, runes("proc"))
	assert.Equal(t, "proc", m.searchQuery)
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "htop.desktop", m.list.Items()[0].(entryItem).entry.ID)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Empty(t, m.searchQuery)
	assert.Len(t, m.list.Items(), 3)
}

func TestModel_SearchFilterExpression(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })

	m = send(t, m, runes("/"))
	m = send(t, m, runes("terminal=true"))
	require.Len(t, m.list.Items(), 1)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.NotNil(t, next.(Model).Chosen())
	assert.Equal(t, "Htop", next.(Model).Chosen().Name)
}

func TestModel_DetailMode(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })

	m = send(t, m, runes("i"))
	require.Equal(t, ModeDetail, m.mode)
	require.NotNil(t, m.selected)
	assert.Contains(t, m.View(), "Application Detail")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selected)
}

func TestModel_HelpToggle(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })

	m = send(t, m, runes("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = send(t, m, runes("?"))
	assert.Equal(t, ModeList, m.mode)
}

func TestModel_QuitWithoutChoice(t *testing.T) {
	m := ready(t, func() ([]model.Entry, error) { return pickerEntries(), nil })

	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Nil(t, next.(Model).Chosen())
}

func TestModel_RefreshReloads(t *testing.T) {
	calls := 0
	load := func() ([]model.Entry, error) {
		calls++
		return pickerEntries()[:calls], nil
	}
	m := ready(t, load)
	require.Len(t, m.list.Items(), 1)

	next, cmd := m.Update(runes("r"))
	require.NotNil(t, cmd)
	m = send(t, next.(Model), cmd())
	assert.Len(t, m.list.Items(), 2)
}

func TestRenderDetail(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := pickerEntries()[1]
	e.Modified = now.Add(-2 * time.Hour)

	out := renderDetail(e, now)
	assert.Contains(t, out, "htop.desktop")
	assert.Contains(t, out, "process, monitor")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "yes")
}
