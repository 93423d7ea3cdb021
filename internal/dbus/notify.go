package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Desktop notification service.
const (
	NotificationsBusName   = "org.freedesktop.Notifications"
	NotificationsPath      = "/org/freedesktop/Notifications"
	NotificationsInterface = "org.freedesktop.Notifications"
)

// Urgency levels of the notification hints.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Notification is an outgoing desktop notification.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Urgency       byte
	Transient     bool
	DesktopEntry  string
	ExpireTimeout int32
}

// Hints returns the hint map for the Notify call.
func (n *Notification) Hints() map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.Urgency),
	}
	if n.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}
	if n.DesktopEntry != "" {
		hints["desktop-entry"] = dbus.MakeVariant(n.DesktopEntry)
	}
	return hints
}

// BusNotifier sends notifications to the session notification daemon.
type BusNotifier struct {
	conn *dbus.Conn
}

// NewBusNotifier wraps an open session bus connection.
func NewBusNotifier(conn *dbus.Conn) *BusNotifier {
	return &BusNotifier{conn: conn}
}

// Notify sends n and returns the id assigned by the daemon.
func (b *BusNotifier) Notify(n *Notification) (uint32, error) {
	if b.conn == nil {
		return 0, fmt.Errorf("no session bus connection")
	}
	obj := b.conn.Object(NotificationsBusName, NotificationsPath)
	call := obj.Call(NotificationsInterface+".Notify", 0,
		n.AppName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		[]string{},
		n.Hints(),
		n.ExpireTimeout,
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify reply: %w", err)
	}
	return id, nil
}
