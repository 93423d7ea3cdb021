package theme

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/appdrawer/internal/grid"
)

// defineColorRegex matches @define-color name value;
var defineColorRegex = regexp.MustCompile(`@define-color\s+([A-Za-z0-9_-]+)\s+([^;]+);`)

// DefineColors returns every @define-color in css. Later definitions win.
func DefineColors(css string) map[string]string {
	colors := make(map[string]string)
	for _, m := range defineColorRegex.FindAllStringSubmatch(css, -1) {
		colors[m[1]] = strings.TrimSpace(m[2])
	}
	return colors
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("unsupported colour %q: want a hex value", s)
	}

	switch len(s) {
	case 4, 7, 9:
	default:
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}

	alpha := uint8(0xff)
	hex := s
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		hex = s[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Palette extracts the grid colours from css for the given scheme. Missing
// entries keep the fallback's value; dark lookups try the "_dark" name first.
func Palette(css string, dark bool, fallback grid.Palette) (grid.Palette, error) {
	colors := DefineColors(css)
	p := fallback
	var errs []error

	for _, slot := range []struct {
		name string
		dst  *color.RGBA
	}{
		{"drawer_background", &p.Background},
		{"drawer_focus", &p.Focus},
		{"drawer_label", &p.Label},
		{"drawer_initial", &p.Initial},
	} {
		value, ok := "", false
		if dark {
			value, ok = colors[slot.name+"_dark"]
		}
		if !ok {
			value, ok = colors[slot.name]
		}
		if !ok {
			continue
		}
		c, err := ParseColor(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", slot.name, err))
			continue
		}
		*slot.dst = c
	}

	return p, errors.Join(errs...)
}
