package display

import (
	"image"
	"image/color"

	"github.com/diamondburned/gotk4/pkg/cairo"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jmylchreest/appdrawer/internal/surface"
)

// defaultUploadCacheSize bounds the cairo surfaces kept for icon and label
// buffers. It tracks the rasterizer caches, which are the real owners.
const defaultUploadCacheSize = 1024

// toARGB32 copies premultiplied RGBA pixels into cairo's native-endian
// ARGB32 layout, which is BGRA in memory on little-endian machines.
func toARGB32(dst []byte, dstStride int, src *image.RGBA) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst[y*dstStride : y*dstStride+w*4]
		for x := 0; x < w*4; x += 4 {
			d[x+0] = s[x+2]
			d[x+1] = s[x+1]
			d[x+2] = s[x+0]
			d[x+3] = s[x+3]
		}
	}
}

// fromARGB32 is the inverse of toARGB32.
func fromARGB32(src []byte, srcStride, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src[y*srcStride : y*srcStride+w*4]
		d := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			d[x+0] = s[x+2]
			d[x+1] = s[x+1]
			d[x+2] = s[x+0]
			d[x+3] = s[x+3]
		}
	}
	return img
}

// uploads converts rasterizer buffers into cairo image surfaces once and
// reuses them while the buffer stays alive.
type uploads struct {
	cache *lru.Cache[*image.RGBA, *cairo.Surface]
}

func newUploads(size int) *uploads {
	if size <= 0 {
		size = defaultUploadCacheSize
	}
	cache, err := lru.New[*image.RGBA, *cairo.Surface](size)
	if err != nil {
		panic(err)
	}
	return &uploads{cache: cache}
}

func (u *uploads) surface(img *image.RGBA) *cairo.Surface {
	if s, ok := u.cache.Get(img); ok {
		return s
	}
	b := img.Bounds()
	s := cairo.CreateImageSurface(cairo.FormatARGB32, b.Dx(), b.Dy())
	s.Flush()
	toARGB32(s.Data(), b.Dx()*4, img)
	s.MarkDirty()
	u.cache.Add(img, s)
	return s
}

func (u *uploads) purge() {
	u.cache.Purge()
}

// offscreen is a physical-pixel frame buffer.
type offscreen struct {
	surf *cairo.Surface
	size surface.Size
}

func newOffscreen(size surface.Size) *offscreen {
	return &offscreen{
		surf: cairo.CreateImageSurface(cairo.FormatARGB32, size.W, size.H),
		size: size,
	}
}

// heldScale returns the factors that stretch a frame of size frame over
// drawable. ok is false when either size is empty.
func heldScale(frame, drawable surface.Size) (sx, sy float64, ok bool) {
	if frame.Empty() || drawable.Empty() {
		return 0, 0, false
	}
	return float64(drawable.W) / float64(frame.W), float64(drawable.H) / float64(frame.H), true
}

// cairoCanvas implements grid.Canvas on a cairo context whose user space is
// in physical pixels.
type cairoCanvas struct {
	cr      *cairo.Context
	uploads *uploads
}

func setSource(cr *cairo.Context, c color.RGBA) {
	cr.SetSourceRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

func (c *cairoCanvas) Clear(col color.RGBA) {
	c.cr.Save()
	c.cr.SetOperator(cairo.OperatorSource)
	setSource(c.cr, col)
	c.cr.Paint()
	c.cr.Restore()
}

func (c *cairoCanvas) FillRect(r image.Rectangle, col color.RGBA) {
	setSource(c.cr, col)
	c.cr.Rectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	c.cr.Fill()
}

func (c *cairoCanvas) DrawImage(img *image.RGBA, p image.Point) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	c.cr.SetSourceSurface(c.uploads.surface(img), float64(p.X), float64(p.Y))
	c.cr.Paint()
}

func (c *cairoCanvas) DrawMask(mask *image.RGBA, p image.Point, col color.RGBA) {
	if mask == nil || mask.Bounds().Empty() {
		return
	}
	setSource(c.cr, col)
	c.cr.MaskSurface(c.uploads.surface(mask), float64(p.X), float64(p.Y))
}
