package display

import (
	"log/slog"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// monitorIndex converts a configured 1-based monitor number into a list
// index. ok is false when the compositor should choose, or the monitor is
// not connected.
func monitorIndex(configured int, available uint) (index uint, ok bool) {
	if configured <= 0 {
		return 0, false
	}
	index = uint(configured - 1)
	if index >= available {
		return 0, false
	}
	return index, true
}

// Monitor returns the configured monitor of display. 0 lets the compositor
// choose and returns nil; an unavailable monitor falls back to the first.
func Monitor(display *gdk.Display, configured int, logger *slog.Logger) *gdk.Monitor {
	if display == nil || configured <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors list available")
		return nil
	}

	index, ok := monitorIndex(configured, monitors.NItems())
	if !ok {
		logger.Warn("configured monitor not available, using first",
			"configured", configured,
			"available", monitors.NItems(),
		)
	}
	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// gotk4 does not export its own wrapper for list model items.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

func setMonitor(window *gtk.Window, monitor *gdk.Monitor) {
	if monitor == nil {
		return
	}
	layershell.SetMonitor(window, monitor)
}
