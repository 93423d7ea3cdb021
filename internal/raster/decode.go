package raster

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/sergeymakinen/go-bmp"
	"github.com/sergeymakinen/go-ico"
)

// FileDecoder decodes icon files by extension. PNG, ICO and BMP are decoded
// in Go and resampled; SVG and XPM go to Vector, which renders them directly
// at the target size.
type FileDecoder struct {
	// Vector renders formats Go cannot decode. May be nil.
	Vector Decoder
}

// Decode implements Decoder.
func (d *FileDecoder) Decode(path string, size int) (*image.RGBA, Format, image.Point, error) {
	if size <= 0 {
		return nil, "", image.Point{}, fmt.Errorf("invalid icon size %d", size)
	}

	var decode func(io.Reader) (image.Image, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		decode = png.Decode
	case ".ico":
		decode = ico.Decode
	case ".bmp":
		decode = bmp.Decode
	case ".svg", ".svgz", ".xpm":
		if d.Vector == nil {
			return nil, "", image.Point{}, fmt.Errorf("no vector decoder for %s", path)
		}
		return d.Vector.Decode(path, size)
	default:
		return nil, "", image.Point{}, fmt.Errorf("unsupported icon format: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", image.Point{}, err
	}
	defer func() { _ = f.Close() }()

	src, err := decode(f)
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("decode %s: %w", path, err)
	}

	native := src.Bounds().Size()
	return Fit(src, size), FormatRaster, native, nil
}

// Fit scales src to fit a size x size box keeping its aspect ratio, centres
// it and returns a premultiplied buffer. Images already at size are copied
// without resampling.
func Fit(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if w == 0 || h == 0 {
		return dst
	}

	tw, th := size, size
	if w > h {
		th = max(1, h*size/w)
	} else if h > w {
		tw = max(1, w*size/h)
	}

	scaled := src
	if tw != w || th != h {
		scaled = resize.Resize(uint(tw), uint(th), src, resize.Bicubic)
	}

	offset := image.Pt((size-tw)/2, (size-th)/2)
	// Drawing into RGBA premultiplies straight-alpha sources
	draw.Draw(dst, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(tw, th))}, scaled, scaled.Bounds().Min, draw.Src)
	return dst
}
