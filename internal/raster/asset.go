// Package raster decodes icons and shapes labels into cached pixel buffers.
//
// All buffers are *image.RGBA, which holds premultiplied alpha, sized in
// physical pixels. The Rasterizer owns both caches and is used only from the
// loop goroutine.
package raster

import (
	"errors"
	"image"
)

// ErrIconUnavailable is returned when an icon reference cannot be resolved
// or decoded. Callers draw a placeholder instead.
var ErrIconUnavailable = errors.New("icon unavailable")

// Format is the source format of an icon asset.
type Format string

const (
	FormatVector      Format = "vector"
	FormatRaster      Format = "raster"
	FormatPlaceholder Format = "placeholder"
)

// IconAsset is a decoded icon ready for upload.
type IconAsset struct {
	Image  *image.RGBA
	Format Format
	// Native is the size of the source image before scaling; zero for vectors.
	Native image.Point
	// Source is the resolved file path, empty for placeholders.
	Source string
}

// Size returns the buffer size in physical pixels.
func (a *IconAsset) Size() image.Point {
	if a == nil || a.Image == nil {
		return image.Point{}
	}
	return a.Image.Bounds().Size()
}

// GlyphRun is a shaped and rasterised label.
type GlyphRun struct {
	// Image is a white-on-transparent raster tinted by the canvas at draw time.
	Image *image.RGBA
	// Baseline is the distance from the top of Image to the first baseline.
	Baseline int
	// Font is the family actually used after fallback.
	Font string
	Size int
	Text string
}

// Bounds returns the ink size of the run in physical pixels.
func (g *GlyphRun) Bounds() image.Point {
	if g == nil || g.Image == nil {
		return image.Point{}
	}
	return g.Image.Bounds().Size()
}

// Decoder turns an icon file into a premultiplied buffer that fits a
// size x size box.
type Decoder interface {
	Decode(path string, size int) (*image.RGBA, Format, image.Point, error)
}

// Shaper lays out and rasterises text with the system fonts.
type Shaper interface {
	// HasFamily reports whether the font family is installed.
	HasFamily(family string) bool
	// Shape renders text in the family at size physical pixels, ellipsized
	// to maxWidth when positive.
	Shape(text, family string, size, maxWidth int) (*GlyphRun, error)
}
