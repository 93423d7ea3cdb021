// Package surface owns the configure/ack state machine of the drawer's
// layer-shell surface.
//
// The compositor sends configure events carrying a logical size, scale and
// serial. The manager records each one as pending; the loop resizes the
// render target and only then calls Ack with the new drawable size. A
// configure that arrives before the previous one was acknowledged replaces
// it, and only the newest serial is acked.
package surface

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Startup and protocol errors.
var (
	ErrProtocolUnsupported = errors.New("compositor does not support the required protocols")
	ErrHandshakeTimeout    = errors.New("no configure received from compositor")
	ErrDrawableMismatch    = errors.New("drawable size does not match pending configure")
	ErrNotCreated          = errors.New("surface not created")
)

// Size is a width and height in pixels.
type Size struct {
	W, H int
}

// Scale multiplies both dimensions.
func (s Size) Scale(f int) Size {
	return Size{W: s.W * f, H: s.H * f}
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Configure is one compositor configure event.
type Configure struct {
	Serial uint32
	// Size is logical; a zero dimension lets the client pick.
	Size  Size
	Scale int
}

// State is the surface geometry as last configured.
type State struct {
	Logical Size
	Scale   int
	Serial  uint32
}

// Physical returns the drawable size, logical size times scale.
func (s State) Physical() Size {
	return s.Logical.Scale(s.Scale)
}

// Shell is the compositor-facing side of the surface.
type Shell interface {
	// Bind checks that the display offers every mandatory global.
	Bind() error
	// CreateSurface assigns the surface role and maps it at the initial size.
	CreateSurface(initial Size) error
	// AckConfigure acknowledges the configure with the given serial.
	AckConfigure(serial uint32) error
	// Destroy unmaps the surface.
	Destroy()
}

// Phase is the lifecycle position of the manager.
type Phase int

const (
	PhaseUnbound Phase = iota
	PhaseBound
	PhaseCreated
	PhaseConfigured
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnbound:
		return "unbound"
	case PhaseBound:
		return "bound"
	case PhaseCreated:
		return "created"
	case PhaseConfigured:
		return "configured"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats counts configure traffic.
type Stats struct {
	Configures int
	Acks       int
	Superseded int
}

// Manager tracks surface state and pending configures.
// It is used from the loop goroutine only.
type Manager struct {
	shell  Shell
	logger *slog.Logger

	phase   Phase
	initial Size
	state   State
	pending *Configure
	timer   *time.Timer
	stats   Stats

	afterFunc func(time.Duration, func()) *time.Timer
}

// NewManager creates a manager over the shell.
func NewManager(shell Shell, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		shell:     shell,
		logger:    logger,
		state:     State{Scale: 1},
		afterFunc: time.AfterFunc,
	}
}

// Initialize binds the mandatory compositor globals.
func (m *Manager) Initialize() error {
	if m.phase != PhaseUnbound {
		return nil
	}
	if err := m.shell.Bind(); err != nil {
		if errors.Is(err, ErrProtocolUnsupported) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrProtocolUnsupported, err)
	}
	m.phase = PhaseBound
	m.logger.Debug("surface globals bound")
	return nil
}

// Create maps the surface and arms the handshake timer. When no configure
// arrives within timeout, onTimeout runs on the timer goroutine; it should
// post HandshakeExpired to the loop.
func (m *Manager) Create(initial Size, timeout time.Duration, onTimeout func()) error {
	if m.phase == PhaseUnbound {
		if err := m.Initialize(); err != nil {
			return err
		}
	}
	if m.phase != PhaseBound {
		return fmt.Errorf("create surface in phase %s", m.phase)
	}

	m.initial = initial
	if err := m.shell.CreateSurface(initial); err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	m.phase = PhaseCreated

	if timeout > 0 && onTimeout != nil {
		m.timer = m.afterFunc(timeout, onTimeout)
	}

	m.logger.Debug("surface created", "initial", initial, "timeout", timeout)
	return nil
}

// HandshakeExpired reports ErrHandshakeTimeout when the surface is still
// waiting for its first configure. A configure that raced the timer wins.
func (m *Manager) HandshakeExpired() error {
	if m.phase == PhaseCreated {
		return ErrHandshakeTimeout
	}
	return nil
}

// HandleConfigure records a configure as pending and updates the state.
// It returns true when the physical size or scale changed.
func (m *Manager) HandleConfigure(cfg Configure) (bool, error) {
	if m.phase != PhaseCreated && m.phase != PhaseConfigured {
		return false, ErrNotCreated
	}

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if cfg.Scale < 1 {
		cfg.Scale = 1
	}
	if cfg.Size.W <= 0 {
		cfg.Size.W = m.initial.W
	}
	if cfg.Size.H <= 0 {
		cfg.Size.H = m.initial.H
	}

	m.stats.Configures++
	if m.pending != nil {
		m.stats.Superseded++
		m.logger.Debug("configure superseded", "old_serial", m.pending.Serial, "serial", cfg.Serial)
	}

	prev := m.state
	m.state = State{Logical: cfg.Size, Scale: cfg.Scale, Serial: cfg.Serial}
	m.pending = &cfg
	first := m.phase == PhaseCreated
	m.phase = PhaseConfigured

	changed := first || prev.Physical() != m.state.Physical() || prev.Scale != m.state.Scale
	m.logger.Debug("configure", "serial", cfg.Serial, "size", cfg.Size, "scale", cfg.Scale, "changed", changed)
	return changed, nil
}

// Pending returns the configure awaiting acknowledgment.
func (m *Manager) Pending() (Configure, bool) {
	if m.pending == nil {
		return Configure{}, false
	}
	return *m.pending, true
}

// Ack acknowledges the pending configure. The drawable must already have
// the pending physical size.
func (m *Manager) Ack(drawable Size) error {
	if m.pending == nil {
		return nil
	}

	want := m.pending.Size.Scale(m.pending.Scale)
	if drawable != want {
		return fmt.Errorf("%w: drawable %s, want %s", ErrDrawableMismatch, drawable, want)
	}

	if err := m.shell.AckConfigure(m.pending.Serial); err != nil {
		return fmt.Errorf("ack configure %d: %w", m.pending.Serial, err)
	}

	m.stats.Acks++
	m.logger.Debug("configure acked", "serial", m.pending.Serial, "drawable", drawable)
	m.pending = nil
	return nil
}

// State returns the current surface state.
func (m *Manager) State() State {
	return m.state
}

// Phase returns the lifecycle phase.
func (m *Manager) Phase() Phase {
	return m.phase
}

// Configured reports whether at least one configure was received.
func (m *Manager) Configured() bool {
	return m.phase == PhaseConfigured
}

// Stats returns configure counters.
func (m *Manager) Stats() Stats {
	return m.stats
}

// Unmap destroys the surface but keeps the globals, so Create can map it again.
func (m *Manager) Unmap() {
	if m.phase != PhaseCreated && m.phase != PhaseConfigured {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.shell.Destroy()
	m.pending = nil
	m.phase = PhaseBound
	m.logger.Debug("surface unmapped")
}

// Mapped reports whether the surface is created or configured.
func (m *Manager) Mapped() bool {
	return m.phase == PhaseCreated || m.phase == PhaseConfigured
}

// Close stops the handshake timer and destroys the surface.
func (m *Manager) Close() {
	if m.phase == PhaseClosed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.phase == PhaseCreated || m.phase == PhaseConfigured {
		m.shell.Destroy()
	}
	m.pending = nil
	m.phase = PhaseClosed
}
