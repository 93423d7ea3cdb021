// Package loop serialises every event of the drawer into one ordered queue.
//
// Producers on any goroutine Post actions. The Scheduler wakes the main
// context, which calls Dispatch to run them in FIFO order. Frame requests
// raised while draining coalesce into a single render after the queue is
// empty. An action that returns an error stops the loop; the error is
// available from Err once Done is closed.
package loop

import (
	"log/slog"
	"sync"
)

// Action is a unit of work run on the loop goroutine.
type Action func() error

// Scheduler arranges for fn to be called once on the loop goroutine.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// FrameRequest is a coalescing "render needed" flag.
type FrameRequest struct {
	pending bool
}

// Request raises the flag and reports whether it was lowered before.
func (f *FrameRequest) Request() bool {
	if f.pending {
		return false
	}
	f.pending = true
	return true
}

// Pending reports whether a render is wanted.
func (f *FrameRequest) Pending() bool {
	return f.pending
}

// Take lowers the flag and reports whether it was raised.
func (f *FrameRequest) Take() bool {
	p := f.pending
	f.pending = false
	return p
}

// Stats counts loop activity.
type Stats struct {
	Dispatches int
	Actions    int
	Renders    int
	Coalesced  int
}

// Loop is the drawer's event queue.
type Loop struct {
	mu        sync.Mutex
	queue     []Action
	scheduled bool
	stopped   bool
	err       error
	done      chan struct{}

	sched  Scheduler
	logger *slog.Logger

	// loop goroutine only
	frame  FrameRequest
	render func() error
	stats  Stats
}

// New creates a loop over sched.
func New(sched Scheduler, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		sched:  sched,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// SetRenderer sets the function run once per dispatch when a frame was requested.
func (l *Loop) SetRenderer(fn func() error) {
	l.render = fn
}

// Post enqueues a. It is safe from any goroutine and returns false once the
// loop has stopped.
func (l *Loop) Post(a Action) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, a)
	wake := !l.scheduled
	l.scheduled = true
	l.mu.Unlock()

	if wake {
		l.sched.Schedule(l.Dispatch)
	}
	return true
}

// PostFunc enqueues a function that cannot fail.
func (l *Loop) PostFunc(fn func()) bool {
	return l.Post(func() error {
		fn()
		return nil
	})
}

// RequestFrame asks for a render at the end of the current dispatch, or
// schedules a dispatch when called outside one. Loop goroutine only.
func (l *Loop) RequestFrame() {
	if !l.frame.Request() {
		l.stats.Coalesced++
		return
	}
	l.mu.Lock()
	wake := !l.scheduled && !l.stopped
	if wake {
		l.scheduled = true
	}
	l.mu.Unlock()
	if wake {
		l.sched.Schedule(l.Dispatch)
	}
}

// FramePending reports whether a render is requested.
func (l *Loop) FramePending() bool {
	return l.frame.Pending()
}

// Dispatch drains the queue, including actions posted while draining, and
// then renders once if a frame was requested.
func (l *Loop) Dispatch() {
	l.stats.Dispatches++
	for {
		l.mu.Lock()
		if l.stopped {
			l.queue = nil
			l.scheduled = false
			l.mu.Unlock()
			return
		}
		if len(l.queue) == 0 {
			l.scheduled = false
			l.mu.Unlock()
			break
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, a := range batch {
			l.stats.Actions++
			if err := a(); err != nil {
				l.Stop(err)
				return
			}
		}
	}

	if l.frame.Take() && l.render != nil {
		l.stats.Renders++
		if err := l.render(); err != nil {
			l.Stop(err)
		}
	}
}

// Stop ends the loop. Later posts are dropped. The first non-nil error is kept.
func (l *Loop) Stop(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.err = err
	l.queue = nil
	close(l.done)
	if err != nil {
		l.logger.Error("event loop stopped", "error", err)
	} else {
		l.logger.Debug("event loop stopped")
	}
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Err returns the error that stopped the loop.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Stopped reports whether Stop was called.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Stats returns loop counters. Loop goroutine only.
func (l *Loop) Stats() Stats {
	return l.stats
}
