package daemon

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/appdrawer/internal/config"
	"github.com/jmylchreest/appdrawer/internal/dbus"
	"github.com/jmylchreest/appdrawer/internal/grid"
	"github.com/jmylchreest/appdrawer/internal/input"
	"github.com/jmylchreest/appdrawer/internal/loop"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/raster"
	"github.com/jmylchreest/appdrawer/internal/render"
	"github.com/jmylchreest/appdrawer/internal/surface"
)

// Backend is the compositor side of the drawer: the layer surface and the
// GPU target it renders into.
type Backend interface {
	surface.Shell
	render.Target
}

// Options configures a Drawer.
type Options struct {
	Config   *config.Config
	Backend  Backend
	Loop     *loop.Loop
	Raster   *raster.Rasterizer
	Launcher input.Launcher
	Notifier *Notifier
	Logger   *slog.Logger

	// InitialSize is the logical size requested before the first configure.
	InitialSize surface.Size
	// IndexBuilder rebuilds the icon index when the icon theme changes.
	IndexBuilder func(theme string) *raster.IconIndex
	// Rescan asks the inventory to scan again.
	Rescan func()
	// OnVisibility is called whenever the drawer is mapped or unmapped.
	OnVisibility func(visible bool)
	// OnLaunch is called after every activation with the launch error, if any.
	OnLaunch func(e model.Entry, err error)
}

// Drawer is the loop-side state of the launcher.
// Every method runs on the loop goroutine.
type Drawer struct {
	cfg      *config.Config
	backend  Backend
	loop     *loop.Loop
	raster   *raster.Rasterizer
	notifier *Notifier
	logger   *slog.Logger

	surf   *surface.Manager
	render *render.Context
	grid   *grid.State
	input  *input.Controller

	initial      surface.Size
	indexBuilder func(string) *raster.IconIndex
	rescan       func()
	onVisibility func(bool)
	onLaunch     func(model.Entry, error)

	visible bool
}

// New creates a drawer. Start binds it to the backend.
func New(opts Options) *Drawer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Notifier == nil {
		opts.Notifier = NewNotifier(nil, opts.Logger)
	}
	if opts.InitialSize.Empty() {
		opts.InitialSize = surface.Size{W: 360, H: 640}
	}
	cfg := opts.Config

	g := grid.New(grid.Options{
		CellSize:  cfg.Grid.CellSize,
		IconSize:  cfg.Grid.IconSize,
		LabelFont: cfg.Grid.LabelFont,
		LabelSize: cfg.Grid.LabelSize,
		Logger:    opts.Logger,
	})

	d := &Drawer{
		cfg:          cfg,
		backend:      opts.Backend,
		loop:         opts.Loop,
		raster:       opts.Raster,
		notifier:     opts.Notifier,
		logger:       opts.Logger,
		surf:         surface.NewManager(opts.Backend, opts.Logger),
		render:       render.New(opts.Logger),
		grid:         g,
		initial:      opts.InitialSize,
		indexBuilder: opts.IndexBuilder,
		rescan:       opts.Rescan,
		onVisibility: opts.OnVisibility,
		onLaunch:     opts.OnLaunch,
	}
	d.input = input.New(g, opts.Launcher, input.Options{Logger: opts.Logger})
	d.loop.SetRenderer(d.queueDraw)
	return d
}

// Start binds the compositor globals and the GPU context and maps the
// drawer when show is set. Errors are fatal startup errors.
func (d *Drawer) Start(show bool) error {
	if err := d.surf.Initialize(); err != nil {
		return err
	}
	if err := d.render.Bind(d.backend); err != nil {
		return err
	}
	if show {
		return d.Show()
	}
	return nil
}

// Show maps the drawer with an empty filter.
func (d *Drawer) Show() error {
	if d.surf.Mapped() {
		return nil
	}
	d.input.Reset()

	timeout := d.cfg.Surface.HandshakeTimeout.Duration()
	err := d.surf.Create(d.initial, timeout, func() {
		d.loop.Post(d.surf.HandshakeExpired)
	})
	if err != nil {
		return err
	}
	d.setVisible(true)
	return nil
}

// Hide unmaps the drawer. The inventory and caches stay warm.
func (d *Drawer) Hide() {
	if !d.surf.Mapped() {
		return
	}
	d.surf.Unmap()
	d.setVisible(false)
}

// Toggle shows a hidden drawer and hides a visible one.
func (d *Drawer) Toggle() error {
	if d.visible {
		d.Hide()
		return nil
	}
	return d.Show()
}

// Visible reports whether the drawer is mapped.
func (d *Drawer) Visible() bool {
	return d.visible
}

func (d *Drawer) setVisible(v bool) {
	if d.visible == v {
		return
	}
	d.visible = v
	d.logger.Debug("drawer visibility changed", "visible", v)
	if d.onVisibility != nil {
		d.onVisibility(v)
	}
}

// Command runs a control command received over D-Bus.
func (d *Drawer) Command(cmd dbus.Command) error {
	switch cmd {
	case dbus.CommandShow:
		return d.Show()
	case dbus.CommandHide:
		d.Hide()
	case dbus.CommandToggle:
		return d.Toggle()
	case dbus.CommandRescan:
		if d.rescan != nil {
			d.rescan()
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// Configure applies a compositor configure: surface state first, then the
// drawable, then the grid layout, and only then the ack.
func (d *Drawer) Configure(c surface.Configure) error {
	changed, err := d.surf.HandleConfigure(c)
	if errors.Is(err, surface.ErrNotCreated) {
		d.logger.Debug("configure for unmapped surface ignored", "serial", c.Serial)
		return nil
	}
	if err != nil {
		return err
	}

	st := d.surf.State()
	if changed {
		if _, err := d.render.Resize(st.Physical()); err != nil {
			return err
		}
		d.raster.SetScale(st.Scale)
		d.grid.SetLayout(st.Logical, st.Scale)
	}
	if err := d.surf.Ack(d.render.Size()); err != nil {
		return err
	}
	d.loop.RequestFrame()
	return nil
}

// Closed handles the compositor closing the surface.
func (d *Drawer) Closed() {
	d.logger.Debug("surface closed by compositor")
	d.Hide()
}

// SetEntries replaces the inventory snapshot. The icon index is rebuilt
// with it, so icons installed alongside new applications resolve and
// earlier misses are retried.
func (d *Drawer) SetEntries(entries []model.Entry) {
	if d.indexBuilder != nil {
		d.raster.SetIndex(d.indexBuilder(d.cfg.Icons.Theme))
	}
	d.grid.SetEntries(entries)
	d.loop.RequestFrame()
}

// SetPalette changes the grid colours.
func (d *Drawer) SetPalette(p grid.Palette) {
	if d.grid.Palette() == p {
		return
	}
	d.grid.SetPalette(p)
	d.loop.RequestFrame()
}

// ApplyConfig applies a reloaded configuration. Surface settings take
// effect the next time the drawer is shown.
func (d *Drawer) ApplyConfig(cfg *config.Config) {
	prev := d.cfg
	d.cfg = cfg

	d.raster.SetCacheLimits(cfg.Icons.CacheSize, cfg.Icons.GlyphCacheSize)
	if cfg.Icons.Theme != prev.Icons.Theme && d.indexBuilder != nil {
		d.raster.SetIndex(d.indexBuilder(cfg.Icons.Theme))
		d.logger.Info("icon theme changed", "theme", cfg.Icons.Theme)
	}
	if cfg.Grid.LabelFont != prev.Grid.LabelFont || cfg.Grid.LabelSize != prev.Grid.LabelSize {
		d.raster.Invalidate()
	}
	d.grid.SetMetrics(cfg.Grid.CellSize, cfg.Grid.IconSize, cfg.Grid.LabelFont, cfg.Grid.LabelSize)
	d.loop.RequestFrame()
}

// Config returns the active configuration.
func (d *Drawer) Config() *config.Config {
	return d.cfg
}

func (d *Drawer) apply(res input.Result) {
	if res.Launched != nil {
		if res.Err != nil && d.cfg.Launch.Notify {
			d.notifier.NotifyLaunchFailed(res.Launched.Name, res.Err)
		}
		if d.onLaunch != nil {
			d.onLaunch(*res.Launched, res.Err)
		}
		if res.Err == nil && d.cfg.Launch.KeepOpen {
			res.Hide = false
		}
	}
	if res.Hide {
		d.Hide()
	}
	if res.Redraw {
		d.loop.RequestFrame()
	}
}

// Key handles a key press.
func (d *Drawer) Key(k input.Key) { d.apply(d.input.Key(k)) }

// Motion handles pointer motion in logical coordinates.
func (d *Drawer) Motion(x, y float64) { d.apply(d.input.Motion(x, y)) }

// Leave handles the pointer leaving the surface.
func (d *Drawer) Leave() { d.apply(d.input.Leave()) }

// PointerDown handles a press or touch down.
func (d *Drawer) PointerDown(x, y float64) { d.apply(d.input.PointerDown(x, y)) }

// PointerMove handles motion while pressed.
func (d *Drawer) PointerMove(x, y float64) { d.apply(d.input.PointerMove(x, y)) }

// PointerUp handles a release or touch up.
func (d *Drawer) PointerUp(x, y float64) { d.apply(d.input.PointerUp(x, y)) }

// PointerCancel drops the current press.
func (d *Drawer) PointerCancel() { d.input.Cancel() }

// Scroll handles a wheel step.
func (d *Drawer) Scroll(dy float64) { d.apply(d.input.Scroll(dy)) }

func (d *Drawer) queueDraw() error {
	if !d.surf.Configured() {
		return nil
	}
	d.backend.RequestFrame()
	return nil
}

// Paint draws one frame onto canvas. drawable is the canvas size in
// physical pixels; a frame that does not match the configured size is
// aborted and never presented. It reports whether canvas holds a complete
// frame; when it does not, the backend shows its previous frame instead.
func (d *Drawer) Paint(canvas grid.Canvas, drawable surface.Size) bool {
	frame, err := d.render.BeginFrame()
	if err != nil {
		d.logger.Debug("frame not started", "error", err)
		return false
	}
	if !d.surf.Configured() || drawable != frame.Size {
		d.logger.Debug("frame size mismatch", "drawable", drawable, "frame", frame.Size)
		d.render.Abort(frame)
		return false
	}

	d.raster.BeginFrame()
	err = d.grid.Render(canvas, d.raster)
	d.raster.EndFrame()
	if err != nil {
		d.logger.Debug("grid render incomplete", "error", err)
	}

	if err := d.render.Present(frame, d.loop.FramePending()); err != nil {
		d.logger.Debug("present failed", "error", err)
		return false
	}
	return true
}

// Close tears the surface down.
func (d *Drawer) Close() {
	d.surf.Close()
	d.setVisible(false)
	st := d.render.Stats()
	d.logger.Debug("drawer closed",
		"frames_presented", st.Presented,
		"frames_aborted", st.Aborted,
		"slow_frames", st.Slow,
	)
}

// Grid exposes the grid state for inspection.
func (d *Drawer) Grid() *grid.State {
	return d.grid
}

// Surface exposes the surface manager for inspection.
func (d *Drawer) Surface() *surface.Manager {
	return d.surf
}

// RenderStats returns the frame counters.
func (d *Drawer) RenderStats() render.Stats {
	return d.render.Stats()
}
