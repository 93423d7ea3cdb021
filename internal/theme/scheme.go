package theme

import (
	"github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/jmylchreest/appdrawer/internal/config"
)

// IsDark resolves a colour scheme setting. "system" asks libadwaita.
func IsDark(scheme config.ColorScheme) bool {
	switch scheme {
	case config.ColorSchemeDark:
		return true
	case config.ColorSchemeLight:
		return false
	default:
		return adw.StyleManagerGetDefault().Dark()
	}
}

// OnSystemSchemeChanged calls fn with the new dark state whenever the
// desktop switches between light and dark.
func OnSystemSchemeChanged(fn func(dark bool)) {
	sm := adw.StyleManagerGetDefault()
	sm.NotifyProperty("dark", func() {
		fn(sm.Dark())
	})
}
