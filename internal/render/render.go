// Package render brackets drawing into frames on a GPU-backed target.
//
// A Context is bound once, resized on every configure and then drives one
// frame at a time: BeginFrame, draw, Present. A frame that fails in between
// is aborted and never reaches the compositor.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/appdrawer/internal/surface"
)

// FrameBudget is the duration above which a frame is logged as slow.
const FrameBudget = 16 * time.Millisecond

var (
	ErrGraphicsInit    = errors.New("graphics initialization failed")
	ErrNotBound        = errors.New("render context not bound")
	ErrFrameInProgress = errors.New("frame already in progress")
	ErrNoFrame         = errors.New("no frame in progress")
)

// Target is the drawable the context renders into.
type Target interface {
	// PrepareGL negotiates the GPU context.
	PrepareGL() error
	// Allocate sizes the drawable in physical pixels.
	Allocate(size surface.Size) error
	// Commit hands the finished frame to the compositor.
	Commit()
	// RequestFrame asks for the next frame callback.
	RequestFrame()
}

// Frame is one render pass.
type Frame struct {
	Size    surface.Size
	Seq     uint64
	started time.Time
}

// Stats counts frames since Bind.
type Stats struct {
	Presented    int
	Aborted      int
	Slow         int
	LastDuration time.Duration
}

// Context owns the render target.
type Context struct {
	target Target
	logger *slog.Logger

	bound bool
	size  surface.Size
	frame *Frame
	seq   uint64
	stats Stats

	now func() time.Time
}

// New creates an unbound context.
func New(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{logger: logger, now: time.Now}
}

// Bind negotiates the GPU context on target.
func (c *Context) Bind(target Target) error {
	if target == nil {
		return fmt.Errorf("%w: no target", ErrGraphicsInit)
	}
	if err := target.PrepareGL(); err != nil {
		return fmt.Errorf("%w: %v", ErrGraphicsInit, err)
	}
	c.target = target
	c.bound = true
	c.logger.Debug("render context bound")
	return nil
}

// Bound reports whether Bind succeeded.
func (c *Context) Bound() bool {
	return c.bound
}

// Size returns the drawable size in physical pixels.
func (c *Context) Size() surface.Size {
	return c.size
}

// Resize reallocates the drawable when size differs from the current one.
// It reports whether a reallocation happened.
func (c *Context) Resize(size surface.Size) (bool, error) {
	if !c.bound {
		return false, ErrNotBound
	}
	if size == c.size {
		return false, nil
	}
	if err := c.target.Allocate(size); err != nil {
		return false, fmt.Errorf("allocate %s: %w", size, err)
	}
	c.logger.Debug("drawable resized", "from", c.size, "to", size)
	c.size = size
	return true, nil
}

// BeginFrame opens a frame at the current size.
func (c *Context) BeginFrame() (*Frame, error) {
	if !c.bound {
		return nil, ErrNotBound
	}
	if c.frame != nil {
		return nil, ErrFrameInProgress
	}
	c.seq++
	c.frame = &Frame{Size: c.size, Seq: c.seq, started: c.now()}
	return c.frame, nil
}

// Present commits the frame. When pending is true another render is
// already wanted and the next frame callback is requested.
func (c *Context) Present(f *Frame, pending bool) error {
	if err := c.finish(f); err != nil {
		return err
	}
	c.target.Commit()
	if pending {
		c.target.RequestFrame()
	}

	d := c.now().Sub(f.started)
	c.stats.Presented++
	c.stats.LastDuration = d
	if d > FrameBudget {
		c.stats.Slow++
		c.logger.Debug("slow frame", "seq", f.Seq, "duration", d, "budget", FrameBudget)
	}
	return nil
}

// Abort drops the frame without committing it.
func (c *Context) Abort(f *Frame) {
	if c.finish(f) != nil {
		return
	}
	c.stats.Aborted++
	c.logger.Debug("frame aborted", "seq", f.Seq)
}

func (c *Context) finish(f *Frame) error {
	if c.frame == nil || f != c.frame {
		return ErrNoFrame
	}
	c.frame = nil
	return nil
}

// InFrame reports whether a frame is open.
func (c *Context) InFrame() bool {
	return c.frame != nil
}

// Stats returns frame counters.
func (c *Context) Stats() Stats {
	return c.stats
}
