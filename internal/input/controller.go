// Package input turns key and pointer events into grid changes and launches.
package input

import (
	"log/slog"
	"math"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jmylchreest/appdrawer/internal/grid"
	"github.com/jmylchreest/appdrawer/internal/model"
)

// DefaultTapSlop is how far a press may travel, in logical pixels, and
// still count as a tap.
const DefaultTapSlop = 8.0

// DefaultScrollStep is the wheel scroll distance per step in logical pixels.
const DefaultScrollStep = 48.0

// State is the controller's interaction state.
type State int

const (
	Idle State = iota
	Filtering
	Navigating
	Activating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Filtering:
		return "filtering"
	case Navigating:
		return "navigating"
	case Activating:
		return "activating"
	default:
		return "unknown"
	}
}

// Launcher starts an application.
type Launcher interface {
	Launch(entry model.Entry) error
}

// Result is what the loop must do after an event.
type Result struct {
	// Redraw is set when the grid changed.
	Redraw bool
	// Hide asks the loop to unmap the drawer.
	Hide bool
	// Launched is the entry that was activated, if any.
	Launched *model.Entry
	// Err is the launch error, if any.
	Err error
}

type press struct {
	startX, startY float64
	lastY          float64
	cell           int
	dragging       bool
}

// Options configures a Controller.
type Options struct {
	Keys       KeyMap
	TapSlop    float64
	ScrollStep float64
	Logger     *slog.Logger
}

// Controller is the input state machine. It is used from the loop goroutine only.
type Controller struct {
	grid     *grid.State
	launcher Launcher
	keys     KeyMap
	slop     float64
	step     float64
	logger   *slog.Logger

	state State
	text  []rune
	press *press
}

// New creates a controller over g.
func New(g *grid.State, launcher Launcher, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TapSlop <= 0 {
		opts.TapSlop = DefaultTapSlop
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = DefaultScrollStep
	}
	if len(opts.Keys.Activate.Keys()) == 0 {
		opts.Keys = DefaultKeyMap()
	}
	return &Controller{
		grid:     g,
		launcher: launcher,
		keys:     opts.Keys,
		slop:     opts.TapSlop,
		step:     opts.ScrollStep,
		logger:   opts.Logger,
	}
}

// State returns the interaction state.
func (c *Controller) State() State {
	return c.state
}

// Text returns the filter text being typed.
func (c *Controller) Text() string {
	return string(c.text)
}

// Key handles a key press.
func (c *Controller) Key(k Key) Result {
	switch {
	case key.Matches(k, c.keys.Activate):
		return c.activate(c.grid.Focus())
	case key.Matches(k, c.keys.Escape):
		return c.escape()
	case key.Matches(k, c.keys.Backspace):
		if len(c.text) == 0 {
			return Result{}
		}
		c.text = c.text[:len(c.text)-1]
		return c.refilter()
	case key.Matches(k, c.keys.Left):
		return c.navigate(grid.Left)
	case key.Matches(k, c.keys.Right):
		return c.navigate(grid.Right)
	case key.Matches(k, c.keys.Up):
		return c.navigate(grid.Up)
	case key.Matches(k, c.keys.Down):
		return c.navigate(grid.Down)
	case key.Matches(k, c.keys.PageUp):
		return c.navigate(grid.PageUp)
	case key.Matches(k, c.keys.PageDown):
		return c.navigate(grid.PageDown)
	case key.Matches(k, c.keys.Home):
		return c.navigate(grid.Home)
	case key.Matches(k, c.keys.End):
		return c.navigate(grid.End)
	case k.Printable():
		c.text = append(c.text, k.Rune)
		return c.refilter()
	}
	return Result{}
}

func (c *Controller) refilter() Result {
	changed := c.grid.ApplyFilter(string(c.text))
	c.state = Filtering
	if len(c.text) == 0 {
		c.state = Idle
	}
	return Result{Redraw: changed}
}

func (c *Controller) navigate(dir grid.Direction) Result {
	c.state = Navigating
	return Result{Redraw: c.grid.Move(dir)}
}

func (c *Controller) escape() Result {
	if len(c.text) == 0 {
		c.state = Idle
		return Result{Hide: true}
	}
	c.text = c.text[:0]
	c.state = Idle
	return Result{Redraw: c.grid.ApplyFilter("")}
}

func (c *Controller) activate(i int) Result {
	entries := c.grid.Entries()
	if i < 0 || i >= len(entries) {
		return Result{}
	}
	entry := entries[i]

	c.state = Activating
	defer func() { c.state = Idle }()

	res := Result{Launched: &entry}
	if c.launcher == nil {
		return res
	}
	if err := c.launcher.Launch(entry); err != nil {
		c.logger.Error("launch failed", "id", entry.ID, "command", entry.CommandLine(), "error", err)
		res.Err = err
		return res
	}

	c.logger.Info("launched", "id", entry.ID, "name", entry.Name)
	c.text = c.text[:0]
	c.grid.ApplyFilter("")
	res.Redraw = true
	res.Hide = true
	return res
}

// Motion moves pointer focus to the cell under (x, y) in logical pixels.
// A miss clears the focus.
func (c *Controller) Motion(x, y float64) Result {
	if c.press != nil && c.press.dragging {
		return Result{}
	}
	i := c.grid.HitTest(x, y)
	if i == c.grid.Focus() {
		return Result{}
	}
	c.grid.SetFocus(i)
	return Result{Redraw: true}
}

// Leave clears pointer focus when the pointer leaves the surface.
func (c *Controller) Leave() Result {
	if c.state == Navigating || c.grid.Focus() == grid.NoFocus {
		return Result{}
	}
	c.grid.SetFocus(grid.NoFocus)
	return Result{Redraw: true}
}

// PointerDown starts a press at (x, y).
func (c *Controller) PointerDown(x, y float64) Result {
	i := c.grid.HitTest(x, y)
	c.press = &press{startX: x, startY: y, lastY: y, cell: i}
	if i != grid.NoFocus && i != c.grid.Focus() {
		c.grid.SetFocus(i)
		return Result{Redraw: true}
	}
	return Result{}
}

// PointerMove tracks the press. Once it travels past the tap slop it
// becomes a drag and scrolls the grid.
func (c *Controller) PointerMove(x, y float64) Result {
	p := c.press
	if p == nil {
		return c.Motion(x, y)
	}
	if !p.dragging && math.Hypot(x-p.startX, y-p.startY) > c.slop {
		p.dragging = true
	}
	if !p.dragging {
		return Result{}
	}
	dy := p.lastY - y
	p.lastY = y
	scale := float64(c.grid.Layout().Scale)
	return Result{Redraw: c.grid.ScrollBy(int(math.Round(dy * scale)))}
}

// PointerUp ends the press. A tap on the cell it started on activates it.
func (c *Controller) PointerUp(x, y float64) Result {
	p := c.press
	c.press = nil
	if p == nil || p.dragging {
		return Result{}
	}
	i := c.grid.HitTest(x, y)
	if i == grid.NoFocus || i != p.cell {
		return Result{}
	}
	return c.activate(i)
}

// Cancel drops an active press without activating.
func (c *Controller) Cancel() {
	c.press = nil
}

// Scroll handles a wheel step of dy (positive scrolls down).
func (c *Controller) Scroll(dy float64) Result {
	scale := float64(c.grid.Layout().Scale)
	return Result{Redraw: c.grid.ScrollBy(int(math.Round(dy * c.step * scale)))}
}

// Reset clears the filter and any press, for when the drawer is shown again.
func (c *Controller) Reset() {
	c.text = c.text[:0]
	c.press = nil
	c.state = Idle
	c.grid.ApplyFilter("")
	c.grid.SetFocus(grid.NoFocus)
}
