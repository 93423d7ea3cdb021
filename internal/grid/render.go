package grid

import (
	"errors"
	"image"
	"image/color"

	"github.com/jmylchreest/appdrawer/internal/raster"
)

// Palette holds the colours the grid paints with.
type Palette struct {
	Background color.RGBA
	Focus      color.RGBA
	Label      color.RGBA
	Initial    color.RGBA
}

// Built-in palettes selected by the colour scheme.
var (
	LightPalette = Palette{
		Background: color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xf0},
		Focus:      color.RGBA{R: 0x35, G: 0x84, B: 0xe4, A: 0x40},
		Label:      color.RGBA{R: 0x24, G: 0x24, B: 0x24, A: 0xff},
		Initial:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	DarkPalette = Palette{
		Background: color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xf0},
		Focus:      color.RGBA{R: 0x35, G: 0x84, B: 0xe4, A: 0x60},
		Label:      color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff},
		Initial:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
)

// Canvas is the drawing surface of one frame, in physical pixels.
type Canvas interface {
	Clear(c color.RGBA)
	FillRect(r image.Rectangle, c color.RGBA)
	// DrawImage composites a premultiplied buffer with its origin at p.
	DrawImage(img *image.RGBA, p image.Point)
	// DrawMask paints c through the alpha channel of mask.
	DrawMask(mask *image.RGBA, p image.Point, c color.RGBA)
}

// Assets supplies cached icon and label rasters. *raster.Rasterizer
// implements it.
type Assets interface {
	LoadIcon(ref string, size int) (*raster.IconAsset, error)
	Placeholder(name string, size int) *raster.IconAsset
	ShapeText(text, font string, size, maxWidth int) (*raster.GlyphRun, error)
}

// SetPalette changes the colours used by Render.
func (s *State) SetPalette(p Palette) {
	s.opts.Palette = p
}

// Palette returns the colours used by Render.
func (s *State) Palette() Palette {
	return s.opts.Palette
}

// Render draws the visible cells onto canvas. Icons that cannot be loaded
// are drawn as placeholders; label failures leave the label blank.
func (s *State) Render(canvas Canvas, assets Assets) error {
	pal := s.opts.Palette
	canvas.Clear(pal.Background)

	first, last := s.VisibleRange()
	var errs []error
	for i := first; i < last; i++ {
		if err := s.drawCell(canvas, assets, i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *State) drawCell(canvas Canvas, assets Assets, i int) error {
	l := s.layout
	e := &s.filtered[i]
	cell := l.CellRect(i).Sub(image.Pt(0, s.scroll))
	pad := l.Cell / 12

	if i == s.focus {
		canvas.FillRect(cell.Inset(pad/2), s.opts.Palette.Focus)
	}

	iconPx := s.opts.IconSize * l.Scale
	iconAt := image.Pt(cell.Min.X+(l.Cell-iconPx)/2, cell.Min.Y+pad)

	var icon *raster.IconAsset
	if e.HasIcon() {
		icon, _ = assets.LoadIcon(e.Icon, s.opts.IconSize)
	}
	if icon == nil {
		icon = assets.Placeholder(e.Name, s.opts.IconSize)
		canvas.DrawImage(icon.Image, iconAt)
		if run, err := assets.ShapeText(e.Initial(), s.opts.LabelFont, s.opts.IconSize/2, 0); err == nil {
			b := run.Bounds()
			canvas.DrawMask(run.Image, iconAt.Add(image.Pt((iconPx-b.X)/2, (iconPx-b.Y)/2)), s.opts.Palette.Initial)
		}
	} else {
		canvas.DrawImage(icon.Image, iconAt)
	}

	maxWidth := s.opts.CellSize - 2*(s.opts.CellSize/12)
	run, err := assets.ShapeText(e.Name, s.opts.LabelFont, s.opts.LabelSize, maxWidth)
	if err != nil {
		return err
	}
	b := run.Bounds()
	labelAt := image.Pt(cell.Min.X+(l.Cell-b.X)/2, iconAt.Y+iconPx+pad/2)
	canvas.DrawMask(run.Image, labelAt, s.opts.Palette.Label)
	return nil
}
