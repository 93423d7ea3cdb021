// Package tui provides the BubbleTea terminal picker for application entries.
package tui

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Loader returns the current inventory.
type Loader func() ([]model.Entry, error)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the picker model.
type Model struct {
	load      Loader
	clipboard string
	mode      Mode

	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model
	keys        KeyMap

	entries     []model.Entry
	selected    *model.Entry
	chosen      *model.Entry
	searchQuery string
	width       int
	height      int
	ready       bool

	statusMsg string
	statusErr bool
}

// entryItem wraps an entry for the list component.
type entryItem struct {
	entry model.Entry
}

func (i entryItem) Title() string {
	if i.entry.Terminal {
		return i.entry.Name + " [terminal]"
	}
	return i.entry.Name
}

func (i entryItem) Description() string {
	if i.entry.Comment != "" {
		return i.entry.Comment
	}
	return i.entry.CommandLine()
}

func (i entryItem) FilterValue() string {
	return i.entry.Name
}

// New creates a picker over load. clipboard overrides the detected
// clipboard command when set.
func New(load Loader, clipboard string) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Applications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "name, keyword or field=value..."
	searchInput.CharLimit = 100

	return Model{
		load:        load,
		clipboard:   clipboard,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}
}

// Chosen returns the entry picked with the launch key, or nil.
func (m Model) Chosen() *model.Entry {
	return m.chosen
}

type entriesMsg struct {
	entries []model.Entry
	err     error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Init loads the inventory.
func (m Model) Init() tea.Cmd {
	return m.loadEntries
}

func (m Model) loadEntries() tea.Msg {
	if m.load == nil {
		return entriesMsg{}
	}
	entries, err := m.load()
	return entriesMsg{entries: entries, err: err}
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isErr: isErr} }
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		return m, nil

	case entriesMsg:
		if msg.err != nil {
			return m, status("Scan failed: "+msg.err.Error(), true)
		}
		m.entries = msg.entries
		m.refreshItems()
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) refreshItems() {
	visible := applyQuery(m.entries, m.searchQuery)
	items := make([]list.Item, len(visible))
	for i, e := range visible {
		items[i] = entryItem{entry: e}
	}
	m.list.SetItems(items)
}

func (m Model) selectedEntry() (model.Entry, bool) {
	item, ok := m.list.SelectedItem().(entryItem)
	return item.entry, ok
}

func (m Model) visibleEntries() []model.Entry {
	items := m.list.Items()
	entries := make([]model.Entry, 0, len(items))
	for _, item := range items {
		if ei, ok := item.(entryItem); ok {
			entries = append(entries, ei.entry)
		}
	}
	return entries
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeSearch {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			if m.mode == ModeHelp {
				m.mode = ModeList
			} else {
				m.mode = ModeHelp
			}
			return m, nil
		}
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
	}
	return m, nil
}

func (m Model) choose() (tea.Model, tea.Cmd) {
	e, ok := m.selectedEntry()
	if !ok {
		return m, nil
	}
	m.chosen = &e
	return m, tea.Quit
}

func (m Model) copyCmd(text, what string) tea.Cmd {
	command := detectClipboardCommand(m.clipboard, exec.LookPath)
	return func() tea.Msg {
		if err := copyText(text, command); err != nil {
			return statusMsg{text: "Copy failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Copied " + what}
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Launch):
		return m.choose()

	case key.Matches(msg, m.keys.Details):
		if e, ok := m.selectedEntry(); ok {
			m.selected = &e
			m.mode = ModeDetail
			m.viewport.SetContent(renderDetail(e, time.Now()))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyExec):
		if e, ok := m.selectedEntry(); ok {
			return m, m.copyCmd(e.CommandLine(), "command")
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyID):
		if e, ok := m.selectedEntry(); ok {
			return m, m.copyCmd(e.ID, "desktop id")
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		data, err := json.MarshalIndent(m.visibleEntries(), "", "  ")
		if err != nil {
			return m, status("Failed to marshal JSON: "+err.Error(), true)
		}
		return m, m.copyCmd(string(data), fmt.Sprintf("%d entries", len(m.list.Items())))

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.searchInput.SetValue(m.searchQuery)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadEntries
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Launch):
		if m.selected != nil {
			m.chosen = m.selected
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyExec):
		if m.selected != nil {
			return m, m.copyCmd(m.selected.CommandLine(), "command")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.refreshItems()
		return m, nil

	case tea.KeyEnter:
		return m.choose()

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := m.searchInput.Value(); q != m.searchQuery {
		m.searchQuery = q
		m.refreshItems()
	}
	return m, cmd
}

// renderDetail renders the detail view for an entry.
func renderDetail(e model.Entry, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(e.Name) + "\n\n")

	field := func(label, value string) {
		if value != "" {
			sb.WriteString(labelStyle.Render(label+": ") + value + "\n")
		}
	}
	field("ID", e.ID)
	field("Exec", e.CommandLine())
	field("Icon", e.Icon)
	field("Source", e.Source)
	field("Keywords", strings.Join(e.Keywords, ", "))
	if e.Terminal {
		field("Terminal", "yes")
	}
	if !e.Modified.IsZero() {
		field("Modified", humanize.RelTime(e.Modified, now, "ago", "from now"))
	}
	if e.Comment != "" {
		sb.WriteString("\n" + e.Comment + "\n")
	}
	return sb.String()
}

// View renders the picker.
func (m Model) View() string {
	if !m.ready {
		return "Scanning applications..."
	}

	switch m.mode {
	case ModeDetail:
		header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Application Detail")
		return header + "\n" + m.viewport.View() + "\n" + m.footer()
	case ModeSearch:
		count := labelStyle.Render(fmt.Sprintf("(%d matches)", len(m.list.Items())))
		return "Search: " + m.searchInput.View() + " " + count + "\n" + m.list.View()
	case ModeHelp:
		return headerStyle.Render("Keyboard Shortcuts") + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()) +
			"\n\n" + labelStyle.Render("Press ? or esc to return")
	default:
		return m.list.View() + "\n" + m.footer()
	}
}

func (m Model) footer() string {
	if m.statusMsg != "" {
		if m.statusErr {
			return errorStyle.Render(m.statusMsg)
		}
		return m.statusMsg
	}
	m.help.Width = m.width
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// Run starts the picker and returns the chosen entry, nil when the user quit.
func Run(load Loader, clipboard string) (*model.Entry, error) {
	p := tea.NewProgram(New(load, clipboard), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(Model); ok {
		return m.Chosen(), nil
	}
	return nil, nil
}
