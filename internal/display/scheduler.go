package display

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"
)

// IdleScheduler runs loop dispatches on the GLib main context.
type IdleScheduler struct{}

// Schedule implements loop.Scheduler.
func (IdleScheduler) Schedule(fn func()) {
	glib.IdleAdd(fn)
}
