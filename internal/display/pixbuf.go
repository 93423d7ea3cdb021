package display

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/diamondburned/gotk4/pkg/gdkpixbuf/v2"

	"github.com/jmylchreest/appdrawer/internal/raster"
)

// PixbufDecoder renders SVG and XPM icons with gdk-pixbuf's loaders
// directly at the requested size.
type PixbufDecoder struct{}

// Decode implements raster.Decoder.
func (PixbufDecoder) Decode(path string, size int) (*image.RGBA, raster.Format, image.Point, error) {
	pb, err := gdkpixbuf.NewPixbufFromFileAtSize(path, size, size)
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("load %s: %w", path, err)
	}

	src, err := pixbufImage(pb.Pixels(), pb.Width(), pb.Height(), pb.Rowstride(), pb.NChannels(), pb.HasAlpha())
	if err != nil {
		return nil, "", image.Point{}, fmt.Errorf("load %s: %w", path, err)
	}
	return raster.Fit(src, size), raster.FormatVector, image.Point{}, nil
}

// pixbufImage wraps pixbuf memory, which is straight alpha RGB(A), in an
// image the rasterizer can premultiply.
func pixbufImage(pix []byte, w, h, stride, channels int, alpha bool) (image.Image, error) {
	switch {
	case alpha && channels == 4:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+w*4], pix[y*stride:])
		}
		return img, nil
	case !alpha && channels == 3:
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.Opaque, image.Point{}, draw.Src)
		for y := 0; y < h; y++ {
			row := pix[y*stride:]
			for x := 0; x < w; x++ {
				o := y*img.Stride + x*4
				img.Pix[o+0] = row[x*3+0]
				img.Pix[o+1] = row[x*3+1]
				img.Pix[o+2] = row[x*3+2]
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported pixbuf layout: %d channels, alpha %v", channels, alpha)
	}
}
