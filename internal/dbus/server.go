package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// ErrAlreadyRunning is returned when another drawer owns the control bus name.
var ErrAlreadyRunning = errors.New("another drawer instance owns the bus name")

// CommandHandler is called for each control request.
// It runs on the bus goroutine and must not block.
type CommandHandler func(cmd Command)

// busConn is the part of *dbus.Conn the control server claims its name with.
type busConn interface {
	Export(v interface{}, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	ReleaseName(name string) (dbus.ReleaseNameReply, error)
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// ControlServer exports the drawer control interface on the session bus.
type ControlServer struct {
	session *dbus.Conn
	// conn is set only while ControlBusName is owned.
	conn   busConn
	logger *slog.Logger

	mu      sync.RWMutex
	handler CommandHandler
	visible bool
	running bool
}

// NewControlServer creates a new ControlServer.
func NewControlServer(logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{logger: logger}
}

// SetCommandHandler sets the handler called for control requests.
func (s *ControlServer) SetCommandHandler(handler CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Start connects to the session bus, exports the object and claims the name.
func (s *ControlServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.mu.Lock()
	s.session = conn
	s.mu.Unlock()
	return s.claim(conn)
}

// claim exports the control objects on conn and requests the bus name.
// Exports are withdrawn when the name cannot be owned.
func (s *ControlServer) claim(conn busConn) error {
	if err := conn.Export(s, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(ControlPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: controlMethods(),
				Signals: controlSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ControlPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		unexport(conn)
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ControlBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		unexport(conn)
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		unexport(conn)
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, ControlBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("control interface exported", "interface", ControlInterface, "path", ControlPath)
	return nil
}

func unexport(conn busConn) {
	_ = conn.Export(nil, ControlPath, ControlInterface)
	_ = conn.Export(nil, ControlPath, "org.freedesktop.DBus.Introspectable")
}

// Stop releases the bus name. The shared session connection stays open.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(ControlBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		unexport(s.conn)
		s.conn = nil
	}

	s.logger.Info("control interface stopped")
	return nil
}

func (s *ControlServer) dispatch(cmd Command) *dbus.Error {
	s.logger.Debug("control request", "command", cmd)

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler != nil {
		handler(cmd)
	}
	return nil
}

// Show maps the drawer surface.
// D-Bus method: Show()
func (s *ControlServer) Show() *dbus.Error { return s.dispatch(CommandShow) }

// Hide unmaps the drawer surface.
// D-Bus method: Hide()
func (s *ControlServer) Hide() *dbus.Error { return s.dispatch(CommandHide) }

// Toggle shows the drawer when hidden and hides it when shown.
// D-Bus method: Toggle()
func (s *ControlServer) Toggle() *dbus.Error { return s.dispatch(CommandToggle) }

// Rescan forces an inventory rescan.
// D-Bus method: Rescan()
func (s *ControlServer) Rescan() *dbus.Error { return s.dispatch(CommandRescan) }

// IsVisible reports the last visibility announced through SetVisible.
// D-Bus method: IsVisible() -> b
func (s *ControlServer) IsVisible() (bool, *dbus.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible, nil
}

func controlMethods() []introspect.Method {
	return []introspect.Method{
		{Name: "Show"},
		{Name: "Hide"},
		{Name: "Toggle"},
		{Name: "Rescan"},
		{
			Name: "IsVisible",
			Args: []introspect.Arg{
				{Name: "visible", Type: "b", Direction: "out"},
			},
		},
	}
}

func controlSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "VisibilityChanged",
			Args: []introspect.Arg{
				{Name: "visible", Type: "b"},
			},
		},
	}
}
