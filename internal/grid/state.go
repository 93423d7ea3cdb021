package grid

import (
	"log/slog"

	"github.com/jmylchreest/appdrawer/internal/core"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/surface"
)

// NoFocus is the focus index when no cell is focused.
const NoFocus = -1

// Direction is a keyboard navigation step.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	PageUp
	PageDown
	Home
	End
)

// Options configures a State.
type Options struct {
	// CellSize and IconSize are logical pixels.
	CellSize  int
	IconSize  int
	LabelFont string
	LabelSize int
	Palette   Palette
	Logger    *slog.Logger
}

// State is the filtered entry list, focus and scroll position.
// It is used from the loop goroutine only.
type State struct {
	opts   Options
	logger *slog.Logger

	all      []model.Entry
	filtered []model.Entry
	filter   string
	focus    int
	scroll   int

	layout Layout
}

// New creates an empty grid.
func New(opts Options) *State {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 96
	}
	if opts.IconSize <= 0 || opts.IconSize > opts.CellSize {
		opts.IconSize = opts.CellSize * 2 / 3
	}
	if opts.LabelSize <= 0 {
		opts.LabelSize = 11
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = LightPalette
	}
	return &State{
		opts:   opts,
		logger: opts.Logger,
		focus:  NoFocus,
		layout: NewLayout(surface.Size{W: opts.CellSize, H: opts.CellSize}, 1, opts.CellSize),
	}
}

// SetEntries replaces the inventory snapshot. The filter is re-applied and
// focus stays on the same entry when it is still listed.
func (s *State) SetEntries(entries []model.Entry) {
	focusedID := ""
	if e := s.Focused(); e != nil {
		focusedID = e.ID
	}

	s.all = entries
	s.filtered = core.Filter(s.all, s.filter)

	s.focus = NoFocus
	if focusedID != "" {
		s.focus = core.IndexOf(s.filtered, focusedID)
	}
	s.clampScroll()
	if s.focus != NoFocus {
		s.ensureVisible()
	}
	s.logger.Debug("grid entries replaced", "total", len(s.all), "shown", len(s.filtered))
}

// ApplyFilter filters the snapshot by case-insensitive substring of the
// display name. An empty text shows every entry. It reports whether the
// filter text changed.
func (s *State) ApplyFilter(text string) bool {
	if text == s.filter {
		return false
	}
	s.filter = text
	s.filtered = core.Filter(s.all, text)
	s.scroll = 0
	s.focus = NoFocus
	if text != "" && len(s.filtered) > 0 {
		s.focus = 0
	}
	return true
}

// Filter returns the current filter text.
func (s *State) Filter() string {
	return s.filter
}

// Entries returns the filtered entries in display order.
func (s *State) Entries() []model.Entry {
	return s.filtered
}

// Len returns the number of filtered entries.
func (s *State) Len() int {
	return len(s.filtered)
}

// SetLayout recomputes the geometry for a new surface configuration and
// keeps the focused row visible.
func (s *State) SetLayout(logical surface.Size, scale int) Layout {
	prev := s.layout
	s.layout = NewLayout(logical, scale, s.opts.CellSize)

	// keep the same first row under the viewport top across reflows
	if prev.Cell > 0 && prev.Columns > 0 {
		row := s.scroll / prev.Cell
		s.scroll = (row * prev.Columns / s.layout.Columns) * s.layout.Cell
	}
	s.clampScroll()
	if s.focus != NoFocus {
		s.ensureVisible()
	}
	return s.layout
}

// Layout returns the current geometry.
func (s *State) Layout() Layout {
	return s.layout
}

// Focus returns the focused index or NoFocus.
func (s *State) Focus() int {
	return s.focus
}

// Focused returns the focused entry, or nil.
func (s *State) Focused() *model.Entry {
	if s.focus < 0 || s.focus >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.focus]
}

// SetFocus focuses index i, clamped to the list. NoFocus clears the focus.
// Pointer focus does not move the scroll position.
func (s *State) SetFocus(i int) {
	if i < 0 || len(s.filtered) == 0 {
		s.focus = NoFocus
		return
	}
	s.focus = min(i, len(s.filtered)-1)
}

// Move steps the focus in dir, clamping at the edges, and snaps the scroll
// so the focused row is fully visible. With no focus any step focuses the
// first visible cell. It reports whether the focus changed.
func (s *State) Move(dir Direction) bool {
	n := len(s.filtered)
	if n == 0 {
		return false
	}
	prev := s.focus
	if s.focus == NoFocus {
		s.focus = min(n-1, s.firstVisibleRow()*s.layout.Columns)
		s.ensureVisible()
		return true
	}

	cols := s.layout.Columns
	page := max(1, s.layout.Size.H/s.layout.Cell) * cols
	next := s.focus
	switch dir {
	case Left:
		next--
	case Right:
		next++
	case Up:
		next -= cols
	case Down:
		next += cols
	case PageUp:
		next -= page
	case PageDown:
		next += page
	case Home:
		next = 0
	case End:
		next = n - 1
	}
	// moving up from the first row or down past the last one stays put
	if (dir == Up && next < 0) || (dir == Down && next >= n && s.focus/cols == (n-1)/cols) {
		next = s.focus
	}
	s.focus = max(0, min(next, n-1))
	s.ensureVisible()
	return s.focus != prev
}

// Scroll returns the vertical scroll offset in physical pixels.
func (s *State) Scroll() int {
	return s.scroll
}

// ScrollBy moves the viewport by dy physical pixels and reports whether it moved.
func (s *State) ScrollBy(dy int) bool {
	prev := s.scroll
	s.scroll += dy
	s.clampScroll()
	return s.scroll != prev
}

func (s *State) maxScroll() int {
	return max(0, s.layout.ContentHeight(len(s.filtered))-s.layout.Size.H)
}

func (s *State) clampScroll() {
	s.scroll = max(0, min(s.scroll, s.maxScroll()))
}

func (s *State) firstVisibleRow() int {
	return s.scroll / s.layout.Cell
}

func (s *State) ensureVisible() {
	r := s.layout.CellRect(s.focus)
	switch {
	case r.Min.Y < s.scroll:
		s.scroll = r.Min.Y
	case r.Max.Y > s.scroll+s.layout.Size.H:
		s.scroll = r.Max.Y - s.layout.Size.H
	}
	s.clampScroll()
}

// HitTest returns the entry index under the logical point, or NoFocus.
func (s *State) HitTest(x, y float64) int {
	if x < 0 || y < 0 {
		return NoFocus
	}
	l := s.layout
	px := int(x*float64(l.Scale)) - l.Inset
	py := int(y*float64(l.Scale)) + s.scroll
	if px < 0 {
		return NoFocus
	}
	col, row := px/l.Cell, py/l.Cell
	if col >= l.Columns {
		return NoFocus
	}
	i := row*l.Columns + col
	if i >= len(s.filtered) {
		return NoFocus
	}
	return i
}

// VisibleRange returns the half-open range of entry indices to draw: rows
// intersecting the viewport plus one prefetch row above and below.
func (s *State) VisibleRange() (int, int) {
	n := len(s.filtered)
	if n == 0 || s.layout.Size.H <= 0 {
		return 0, 0
	}
	rows := s.layout.Rows(n)
	first := s.scroll/s.layout.Cell - 1
	last := (s.scroll+s.layout.Size.H-1)/s.layout.Cell + 1
	first = max(0, first)
	last = min(rows-1, last)
	return first * s.layout.Columns, min(n, (last+1)*s.layout.Columns)
}

// SetMetrics changes the cell and label metrics and recomputes the layout
// at the current size and scale.
func (s *State) SetMetrics(cellSize, iconSize int, labelFont string, labelSize int) Layout {
	if cellSize > 0 {
		s.opts.CellSize = cellSize
	}
	if iconSize > 0 && iconSize <= s.opts.CellSize {
		s.opts.IconSize = iconSize
	}
	if labelFont != "" {
		s.opts.LabelFont = labelFont
	}
	if labelSize > 0 {
		s.opts.LabelSize = labelSize
	}
	scale := max(1, s.layout.Scale)
	logical := surface.Size{W: s.layout.Size.W / scale, H: s.layout.Size.H / scale}
	return s.SetLayout(logical, scale)
}
