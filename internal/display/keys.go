package display

import (
	"unicode"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/appdrawer/internal/input"
)

var namedKeys = map[uint]string{
	gdk.KEY_Left:         "left",
	gdk.KEY_KP_Left:      "left",
	gdk.KEY_Right:        "right",
	gdk.KEY_KP_Right:     "right",
	gdk.KEY_Up:           "up",
	gdk.KEY_KP_Up:        "up",
	gdk.KEY_Down:         "down",
	gdk.KEY_KP_Down:      "down",
	gdk.KEY_Page_Up:      "pgup",
	gdk.KEY_KP_Page_Up:   "pgup",
	gdk.KEY_Page_Down:    "pgdown",
	gdk.KEY_KP_Page_Down: "pgdown",
	gdk.KEY_Home:         "home",
	gdk.KEY_KP_Home:      "home",
	gdk.KEY_End:          "end",
	gdk.KEY_KP_End:       "end",
	gdk.KEY_Tab:          "tab",
	gdk.KEY_Return:       "enter",
	gdk.KEY_KP_Enter:     "kpenter",
	gdk.KEY_BackSpace:    "backspace",
	gdk.KEY_Escape:       "esc",
}

// translateKey maps a GDK key press to an input.Key. Presses with Control,
// Alt or Super held, and keys with no name or text, are not delivered.
func translateKey(keyval uint, state gdk.ModifierType) (input.Key, bool) {
	if state&(gdk.ControlMask|gdk.AltMask|gdk.SuperMask) != 0 {
		return input.Key{}, false
	}
	if name, ok := namedKeys[keyval]; ok {
		return input.Named(name), true
	}
	r := rune(gdk.KeyvalToUnicode(keyval))
	if r == 0 || !unicode.IsPrint(r) {
		return input.Key{}, false
	}
	return input.KeyRune(r), true
}
