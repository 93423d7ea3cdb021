package dbus

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	// ControlInterface is the drawer control interface name.
	ControlInterface = "io.github.jmylchreest.AppDrawer"
	// ControlPath is the drawer control object path.
	ControlPath = dbus.ObjectPath("/io/github/jmylchreest/AppDrawer")
	// ControlBusName is the session bus name claimed by a running drawer.
	ControlBusName = "io.github.jmylchreest.AppDrawer"
)

// SignalRule identifies one bus signal that means the application set may have changed.
type SignalRule struct {
	Interface string
	Member    string
}

// MatchOptions returns the AddMatchSignal options for the rule.
func (r SignalRule) MatchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface(r.Interface),
		dbus.WithMatchMember(r.Member),
	}
}

// String returns "interface.member".
func (r SignalRule) String() string {
	return r.Interface + "." + r.Member
}

// DefaultInventoryRules are the package manager signals watched by default.
// PackageKit emits Transaction.Finished on a per-transaction object path
// after an install or removal; Flatpak's system helper emits no such signal,
// so Flatpak installs are caught by the directory watcher instead.
func DefaultInventoryRules() []SignalRule {
	return []SignalRule{
		{Interface: "org.freedesktop.PackageKit.Transaction", Member: "Finished"},
		{Interface: "org.freedesktop.PackageKit", Member: "UpdatesChanged"},
	}
}

// MatchesAny reports whether the signal name (interface.member) matches one of the rules.
func MatchesAny(rules []SignalRule, name string) bool {
	for _, r := range rules {
		if name == r.String() {
			return true
		}
	}
	return false
}

// Command is a control request sent to a running drawer.
type Command string

const (
	CommandShow   Command = "Show"
	CommandHide   Command = "Hide"
	CommandToggle Command = "Toggle"
	CommandRescan Command = "Rescan"
)

// ParseCommand parses a command name case-insensitively.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q, must be one of: %v", s, Commands())
}

// Commands returns all control commands.
func Commands() []Command {
	return []Command{CommandShow, CommandHide, CommandToggle, CommandRescan}
}
