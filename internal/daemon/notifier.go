package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/appdrawer/internal/dbus"
)

// NotificationLevel indicates the severity of a drawer notification.
type NotificationLevel int

const (
	NotificationLevelInfo NotificationLevel = iota
	NotificationLevelWarning
	NotificationLevelError
)

// NotifyFunc delivers a notification, typically through dbus.BusNotifier.
type NotifyFunc func(n *dbus.Notification) (uint32, error)

// Notifier tells the user about failures they cannot see in the log, such as
// an application that would not start. Repeats of the same key are rate limited.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notify NotifyFunc

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewNotifier creates a notifier. A nil notify func only logs.
func NewNotifier(notify NotifyFunc, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		notify:         notify,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification unless one with the same key was sent within
// the minimum interval. It reports whether the notification was sent.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return false
	}
	if n.notify == nil {
		n.logger.Debug("notification skipped: no notifier", "summary", summary)
		return false
	}

	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.logger.Debug("notification rate-limited", "key", key, "summary", summary)
		return false
	}
	n.lastNotifyTime[key] = now

	notification := &dbus.Notification{
		AppName:       "appdrawer",
		Summary:       summary,
		Body:          body,
		Transient:     true,
		DesktopEntry:  "appdrawer",
		ExpireTimeout: 5000,
	}
	switch level {
	case NotificationLevelInfo:
		notification.Urgency = dbus.UrgencyLow
		notification.AppIcon = "dialog-information"
	case NotificationLevelWarning:
		notification.Urgency = dbus.UrgencyNormal
		notification.AppIcon = "dialog-warning"
	case NotificationLevelError:
		notification.Urgency = dbus.UrgencyCritical
		notification.AppIcon = "dialog-error"
	}

	if _, err := n.notify(notification); err != nil {
		n.logger.Debug("failed to send notification", "key", key, "error", err)
		return false
	}
	return true
}

// NotifyLaunchFailed reports an application that could not be started.
func (n *Notifier) NotifyLaunchFailed(name string, err error) {
	n.Notify(
		"launch:"+name,
		"Could not start "+name,
		err.Error(),
		NotificationLevelError,
	)
}

// NotifyConfigError reports a configuration reload that failed validation.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyThemeError reports a theme that failed to load.
func (n *Notifier) NotifyThemeError(err error) {
	n.Notify(
		"theme-error",
		"Theme Error",
		"Failed to load theme: "+err.Error(),
		NotificationLevelWarning,
	)
}
