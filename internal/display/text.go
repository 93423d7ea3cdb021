package display

import (
	"fmt"
	"strings"
	"sync"

	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotk4/pkg/pangocairo"

	"github.com/jmylchreest/appdrawer/internal/raster"
)

// genericFamilies are fontconfig aliases that always resolve.
var genericFamilies = []string{"sans", "sans-serif", "serif", "monospace"}

// PangoShaper implements raster.Shaper with Pango on an offscreen cairo
// image surface. Runs are white on transparent; the canvas tints them.
type PangoShaper struct {
	once     sync.Once
	families map[string]bool
}

// NewPangoShaper creates a shaper over the default font map.
func NewPangoShaper() *PangoShaper {
	return &PangoShaper{}
}

func (s *PangoShaper) loadFamilies() {
	s.families = make(map[string]bool)
	for _, name := range genericFamilies {
		s.families[name] = true
	}
	fm := pango.BaseFontMap(pangocairo.FontMapGetDefault())
	for _, f := range fm.ListFamilies() {
		s.families[strings.ToLower(f.Name())] = true
	}
}

// HasFamily implements raster.Shaper.
func (s *PangoShaper) HasFamily(family string) bool {
	s.once.Do(s.loadFamilies)
	return s.families[strings.ToLower(family)]
}

// Shape implements raster.Shaper.
func (s *PangoShaper) Shape(text, family string, size, maxWidth int) (*raster.GlyphRun, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %d", size)
	}

	desc := pango.FontDescriptionFromString(family)
	desc.SetAbsoluteSize(float64(size * pango.SCALE))

	// Measure on a scratch surface, then render at the ink size.
	scratch := cairo.CreateImageSurface(cairo.FormatARGB32, 1, 1)
	layout := pangocairo.CreateLayout(cairo.Create(scratch))
	layout.SetFontDescription(desc)
	layout.SetSingleParagraphMode(true)
	if maxWidth > 0 {
		layout.SetWidth(maxWidth * pango.SCALE)
		layout.SetEllipsize(pango.EllipsizeEnd)
	}
	layout.SetText(text, -1)

	w, h := layout.PixelSize()
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	if w <= 0 || h <= 0 {
		return &raster.GlyphRun{Font: family, Size: size, Text: text}, nil
	}

	target := cairo.CreateImageSurface(cairo.FormatARGB32, w, h)
	cr := cairo.Create(target)
	cr.SetSourceRGBA(1, 1, 1, 1)
	pangocairo.UpdateLayout(cr, layout)
	pangocairo.ShowLayout(cr, layout)
	target.Flush()

	return &raster.GlyphRun{
		Image:    fromARGB32(target.Data(), w*4, w, h),
		Baseline: layout.Baseline() / pango.SCALE,
		Font:     family,
		Size:     size,
		Text:     text,
	}, nil
}
