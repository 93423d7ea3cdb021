package display

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/appdrawer/internal/config"
	"github.com/jmylchreest/appdrawer/internal/grid"
	"github.com/jmylchreest/appdrawer/internal/input"
	"github.com/jmylchreest/appdrawer/internal/loop"
	"github.com/jmylchreest/appdrawer/internal/surface"
)

// Handler receives surface and input events. *daemon.Drawer implements it.
type Handler interface {
	Configure(c surface.Configure) error
	Closed()
	Key(k input.Key)
	Motion(x, y float64)
	Leave()
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	PointerCancel()
	Scroll(dy float64)
	// Paint reports whether canvas received a complete frame.
	Paint(canvas grid.Canvas, drawable surface.Size) bool
}

// Poster queues work on the event loop. *loop.Loop implements it.
type Poster interface {
	Post(a loop.Action) bool
}

// Window is the layer-shell drawer window. It implements surface.Shell and
// render.Target for the daemon.
//
// GTK does not expose the layer surface's configure events. The window
// numbers every size or scale change of its drawing area and reports it as
// a configure; acking one queues the redraw that commits it.
type Window struct {
	app    *gtk.Application
	cfg    config.SurfaceConfig
	loop   Poster
	logger *slog.Logger

	handler Handler
	display *gdk.Display
	window  *gtk.Window
	area    *gtk.DrawingArea
	uploads *uploads

	// back is painted into; held is the last complete frame, shown again
	// while a resize waits for its configure to be handled.
	back, held *offscreen

	serial     uint32
	acked      uint32
	last       surface.Configure
	allocated  surface.Size
	destroying bool

	pressX, pressY float64
}

// NewWindow creates the backend. SetHandler must be called before Bind.
func NewWindow(app *gtk.Application, cfg config.SurfaceConfig, poster Poster, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		app:     app,
		cfg:     cfg,
		loop:    poster,
		logger:  logger,
		uploads: newUploads(0),
	}
}

// SetHandler sets the receiver of surface and input events.
func (w *Window) SetHandler(h Handler) {
	w.handler = h
}

// SetConfig replaces the surface settings used by the next CreateSurface.
func (w *Window) SetConfig(cfg config.SurfaceConfig) {
	w.cfg = cfg
}

// Bind implements surface.Shell.
func (w *Window) Bind() error {
	w.display = gdk.DisplayGetDefault()
	if w.display == nil {
		return &DisplayError{Op: "bind", Err: ErrNoDisplay}
	}
	if !layershell.IsSupported() {
		return &DisplayError{Op: "bind", Err: ErrNoLayerShell}
	}
	if m := w.display.Monitors(); m == nil || m.NItems() == 0 {
		return &DisplayError{Op: "bind", Err: ErrNoOutputs}
	}
	w.logger.Debug("display bound", "name", w.display.Name())
	return nil
}

// CreateSurface implements surface.Shell.
func (w *Window) CreateSurface(initial surface.Size) error {
	if w.handler == nil {
		return &DisplayError{Op: "create", Err: ErrNoHandler}
	}
	if w.window != nil {
		w.Destroy()
	}

	win := gtk.NewWindow()
	win.SetApplication(w.app)
	win.SetDecorated(false)
	win.SetDefaultSize(initial.W, initial.H)
	win.AddCSSClass("appdrawer")

	layershell.InitForWindow(win)
	layershell.SetLayer(win, layerFor(w.cfg.Layer))
	layershell.SetKeyboardMode(win, keyboardModeFor(w.cfg.KeyboardMode))
	layershell.SetNamespace(win, w.cfg.Namespace)
	layershell.SetExclusiveZone(win, -1)
	for _, edge := range []layershell.LayerShellEdge{
		layershell.LayerShellEdgeTop,
		layershell.LayerShellEdgeBottom,
		layershell.LayerShellEdgeLeft,
		layershell.LayerShellEdgeRight,
	} {
		layershell.SetAnchor(win, edge, true)
		layershell.SetMargin(win, edge, w.cfg.Margin)
	}
	setMonitor(win, Monitor(w.display, w.cfg.Monitor, w.logger))

	area := gtk.NewDrawingArea()
	area.SetHExpand(true)
	area.SetVExpand(true)
	area.SetFocusable(true)
	area.SetDrawFunc(w.draw)
	area.ConnectResize(func(width, height int) {
		w.configure(width, height)
	})
	area.NotifyProperty("scale-factor", func() {
		w.configure(area.Width(), area.Height())
	})
	win.SetChild(area)

	w.window = win
	w.area = area
	w.destroying = false
	w.connectInput()

	win.ConnectUnmap(func() {
		if w.destroying {
			return
		}
		w.post(func() error {
			w.handler.Closed()
			return nil
		})
	})

	win.Present()
	area.GrabFocus()
	w.logger.Debug("layer surface created", "initial", initial, "namespace", w.cfg.Namespace)
	return nil
}

func (w *Window) post(fn loop.Action) {
	if !w.loop.Post(fn) {
		w.logger.Debug("event dropped, loop stopped")
	}
}

// configure synthesizes a configure for the area's current geometry.
func (w *Window) configure(width, height int) {
	if w.area == nil || width <= 0 || height <= 0 {
		return
	}
	scale := w.area.ScaleFactor()
	size := surface.Size{W: width, H: height}
	if w.last.Serial != 0 && w.last.Size == size && w.last.Scale == scale {
		return
	}
	w.serial++
	c := surface.Configure{Serial: w.serial, Size: size, Scale: scale}
	w.last = c
	w.post(func() error {
		return w.handler.Configure(c)
	})
}

// AckConfigure implements surface.Shell.
func (w *Window) AckConfigure(serial uint32) error {
	if serial != w.serial {
		w.logger.Debug("ack for superseded configure", "serial", serial, "latest", w.serial)
	}
	w.acked = serial
	w.RequestFrame()
	return nil
}

// Destroy implements surface.Shell.
func (w *Window) Destroy() {
	if w.window == nil {
		return
	}
	w.destroying = true
	w.window.Destroy()
	w.window = nil
	w.area = nil
	w.last = surface.Configure{}
	w.allocated = surface.Size{}
	w.back, w.held = nil, nil
	w.uploads.purge()
}

// PrepareGL implements render.Target.
func (w *Window) PrepareGL() error {
	if w.display == nil {
		return &DisplayError{Op: "prepare gl", Err: ErrNotBound}
	}
	if err := w.display.PrepareGL(); err != nil {
		return &DisplayError{Op: "prepare gl", Err: ErrNoGL, Cause: err}
	}
	return nil
}

// Allocate implements render.Target. GTK sizes the area's backing store
// itself; the allocation is only recorded.
func (w *Window) Allocate(size surface.Size) error {
	w.allocated = size
	return nil
}

// Commit implements render.Target. GTK commits once the draw callback returns.
func (w *Window) Commit() {}

// RequestFrame implements render.Target.
func (w *Window) RequestFrame() {
	if w.area != nil {
		w.area.QueueDraw()
	}
}

func (w *Window) draw(area *gtk.DrawingArea, cr *cairo.Context, width, height int) {
	if w.handler == nil {
		return
	}
	scale := area.ScaleFactor()
	drawable := surface.Size{W: width, H: height}.Scale(scale)
	if drawable.Empty() {
		return
	}

	if w.back == nil || w.back.size != drawable {
		w.back = newOffscreen(drawable)
	}
	painted := w.handler.Paint(&cairoCanvas{cr: cairo.Create(w.back.surf), uploads: w.uploads}, drawable)
	w.back.surf.Flush()
	if painted {
		w.back, w.held = w.held, w.back
	}

	if w.held == nil {
		return
	}
	sx, sy, ok := heldScale(w.held.size, drawable)
	if !ok {
		return
	}
	if !painted {
		w.logger.Debug("showing previous frame", "frame", w.held.size, "drawable", drawable)
	}

	cr.Save()
	defer cr.Restore()
	cr.Scale(sx/float64(scale), sy/float64(scale))
	cr.SetSourceSurface(w.held.surf, 0, 0)
	cr.Paint()
}

func (w *Window) connectInput() {
	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, keycode uint, state gdk.ModifierType) bool {
		k, ok := translateKey(keyval, state)
		if !ok {
			return false
		}
		w.post(func() error {
			w.handler.Key(k)
			return nil
		})
		return true
	})
	w.window.AddController(keys)

	motion := gtk.NewEventControllerMotion()
	motion.ConnectMotion(func(x, y float64) {
		w.post(func() error {
			w.handler.Motion(x, y)
			return nil
		})
	})
	motion.ConnectLeave(func() {
		w.post(func() error {
			w.handler.Leave()
			return nil
		})
	})
	w.area.AddController(motion)

	// A drag gesture reports taps too, as a zero offset drag.
	drag := gtk.NewGestureDrag()
	drag.ConnectDragBegin(func(x, y float64) {
		w.pressX, w.pressY = x, y
		w.post(func() error {
			w.handler.PointerDown(x, y)
			return nil
		})
	})
	drag.ConnectDragUpdate(func(dx, dy float64) {
		x, y := w.pressX+dx, w.pressY+dy
		w.post(func() error {
			w.handler.PointerMove(x, y)
			return nil
		})
	})
	drag.ConnectDragEnd(func(dx, dy float64) {
		x, y := w.pressX+dx, w.pressY+dy
		w.post(func() error {
			w.handler.PointerUp(x, y)
			return nil
		})
	})
	drag.ConnectCancel(func(*gdk.EventSequence) {
		w.post(func() error {
			w.handler.PointerCancel()
			return nil
		})
	})
	w.area.AddController(drag)

	scroll := gtk.NewEventControllerScroll(gtk.EventControllerScrollVertical)
	scroll.ConnectScroll(func(dx, dy float64) bool {
		w.post(func() error {
			w.handler.Scroll(dy)
			return nil
		})
		return true
	})
	w.area.AddController(scroll)
}

func layerFor(layer string) layershell.LayerShellLayer {
	if config.Layer(layer) == config.LayerTop {
		return layershell.LayerShellLayerTop
	}
	return layershell.LayerShellLayerOverlay
}

func keyboardModeFor(mode string) layershell.LayerShellKeyboardMode {
	switch config.KeyboardMode(mode) {
	case config.KeyboardModeNone:
		return layershell.LayerShellKeyboardModeNone
	case config.KeyboardModeOnDemand:
		return layershell.LayerShellKeyboardModeOnDemand
	default:
		return layershell.LayerShellKeyboardModeExclusive
	}
}
