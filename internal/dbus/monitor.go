package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// ChangeHandler is called for every matching inventory signal.
// It runs on the monitor goroutine and must not block.
type ChangeHandler func(rule string)

// InventoryMonitor receives package manager signals from a bus.
type InventoryMonitor struct {
	conn   *dbus.Conn
	logger *slog.Logger
	rules  []SignalRule

	mu       sync.Mutex
	onChange ChangeHandler
	signals  chan *dbus.Signal
	done     chan struct{}
	running  bool
}

// NewInventoryMonitor creates a monitor for the given rules.
// Nil rules means DefaultInventoryRules.
func NewInventoryMonitor(rules []SignalRule, logger *slog.Logger) *InventoryMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = DefaultInventoryRules()
	}
	return &InventoryMonitor{
		logger: logger,
		rules:  rules,
	}
}

// SetChangeHandler sets the callback for matching signals.
func (m *InventoryMonitor) SetChangeHandler(handler ChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = handler
}

// Start connects to the system bus and subscribes to the rules.
func (m *InventoryMonitor) Start() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return m.StartWithConn(conn)
}

// StartWithConn subscribes on an existing connection. The monitor owns conn
// and closes it on Stop.
func (m *InventoryMonitor) StartWithConn(conn *dbus.Conn) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	m.mu.Unlock()

	for _, r := range m.rules {
		if err := conn.AddMatchSignal(r.MatchOptions()...); err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to add match for %s: %w", r, err)
		}
	}

	ch := make(chan *dbus.Signal, 16)
	conn.Signal(ch)

	m.mu.Lock()
	m.conn = conn
	m.signals = ch
	m.done = make(chan struct{})
	m.running = true
	done := m.done
	m.mu.Unlock()

	go m.processSignals(ch, done)

	m.logger.Info("watching bus for inventory changes", "rules", len(m.rules))
	return nil
}

func (m *InventoryMonitor) processSignals(ch <-chan *dbus.Signal, done <-chan struct{}) {
	for {
		var sig *dbus.Signal
		select {
		case <-done:
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			sig = s
		}
		if sig == nil || !MatchesAny(m.rules, sig.Name) {
			continue
		}

		m.logger.Debug("inventory signal", "name", sig.Name, "path", sig.Path)

		m.mu.Lock()
		handler := m.onChange
		m.mu.Unlock()

		if handler != nil {
			handler(sig.Name)
		}
	}
}

// Stop unsubscribes and closes the connection.
func (m *InventoryMonitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false

	m.conn.RemoveSignal(m.signals)
	close(m.done)
	return m.conn.Close()
}
