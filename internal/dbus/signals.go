package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// SetVisible records the drawer visibility and emits VisibilityChanged when it changed.
func (s *ControlServer) SetVisible(visible bool) error {
	s.mu.Lock()
	changed := s.visible != visible
	s.visible = visible
	conn := s.conn
	s.mu.Unlock()

	if !changed || conn == nil {
		return nil
	}

	if err := conn.Emit(ControlPath, ControlInterface+".VisibilityChanged", visible); err != nil {
		return fmt.Errorf("failed to emit VisibilityChanged signal: %w", err)
	}

	s.logger.Debug("emitted VisibilityChanged signal", "visible", visible)
	return nil
}

// Connection returns the session bus connection, or nil before Start
// reached the bus. It is set even when the control name was not claimed.
func (s *ControlServer) Connection() *dbus.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Send calls a control method on a running drawer over the session bus.
func Send(cmd Command) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(ControlBusName, ControlPath)
	if call := obj.Call(ControlInterface+"."+string(cmd), 0); call.Err != nil {
		return fmt.Errorf("%s: %w", cmd, call.Err)
	}
	return nil
}

// Visible asks a running drawer whether it is mapped.
func Visible() (bool, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return false, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var visible bool
	obj := conn.Object(ControlBusName, ControlPath)
	if err := obj.Call(ControlInterface+".IsVisible", 0).Store(&visible); err != nil {
		return false, fmt.Errorf("IsVisible: %w", err)
	}
	return visible, nil
}
