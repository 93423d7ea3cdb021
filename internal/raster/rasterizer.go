package raster

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// DefaultFont is used when a requested family is not installed.
const DefaultFont = "Sans"

type iconKey struct {
	ref  string
	size int
}

type glyphKey struct {
	font     string
	size     int
	maxWidth int
	text     string
}

// Stats counts cache activity since creation.
type Stats struct {
	IconDecodes    int
	IconHits       int
	IconFailures   int
	GlyphShapes    int
	GlyphHits      int
	IconEvictions  int
	GlyphEvictions int
}

// Options configures a Rasterizer.
type Options struct {
	IconCacheSize  int
	GlyphCacheSize int
	Scale          int
	Logger         *slog.Logger
}

// Rasterizer resolves, decodes and caches icons and labels.
type Rasterizer struct {
	index   *IconIndex
	decoder Decoder
	shaper  Shaper
	logger  *slog.Logger

	icons  *Cache[iconKey, *IconAsset]
	glyphs *Cache[glyphKey, *GlyphRun]
	// failed remembers unresolvable references so they are not retried every frame
	failed map[iconKey]error
	fonts  map[string]string

	scale int
	stats Stats
}

// New creates a Rasterizer. The index may be nil when only absolute icon
// paths are used.
func New(index *IconIndex, decoder Decoder, shaper Shaper, opts Options) *Rasterizer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return &Rasterizer{
		index:   index,
		decoder: decoder,
		shaper:  shaper,
		logger:  opts.Logger,
		icons:   NewCache[iconKey, *IconAsset](opts.IconCacheSize),
		glyphs:  NewCache[glyphKey, *GlyphRun](opts.GlyphCacheSize),
		failed:  make(map[iconKey]error),
		fonts:   make(map[string]string),
		scale:   opts.Scale,
	}
}

// Scale returns the output scale icons are rendered at.
func (r *Rasterizer) Scale() int {
	return r.scale
}

// SetScale changes the output scale and drops every cached buffer when it changed.
func (r *Rasterizer) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	if scale == r.scale {
		return
	}
	r.scale = scale
	r.Invalidate()
}

// SetIndex replaces the icon index after a theme change and drops cached icons.
func (r *Rasterizer) SetIndex(index *IconIndex) {
	r.index = index
	r.icons.Purge()
	clear(r.failed)
}

// LoadIcon returns the icon for ref at size logical pixels, decoded at
// size x scale. It returns ErrIconUnavailable when the reference cannot be
// resolved or decoded.
func (r *Rasterizer) LoadIcon(ref string, size int) (*IconAsset, error) {
	px := size * r.scale
	key := iconKey{ref: ref, size: px}

	if asset, ok := r.icons.Get(key); ok {
		r.stats.IconHits++
		return asset, nil
	}
	if err, ok := r.failed[key]; ok {
		return nil, err
	}

	asset, err := r.decode(ref, px)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrIconUnavailable, ref, err)
		r.failed[key] = err
		r.stats.IconFailures++
		r.logger.Debug("icon unavailable", "ref", ref, "size", px, "error", err)
		return nil, err
	}

	r.icons.Add(key, asset)
	return asset, nil
}

func (r *Rasterizer) decode(ref string, px int) (*IconAsset, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty reference")
	}

	path := ref
	if !filepath.IsAbs(ref) {
		if r.index == nil {
			return nil, fmt.Errorf("no icon index")
		}
		var ok bool
		path, ok = r.index.Lookup(ref, px)
		if !ok {
			return nil, fmt.Errorf("not found in %v", r.index.Themes())
		}
	}
	if r.decoder == nil {
		return nil, fmt.Errorf("no decoder")
	}

	r.stats.IconDecodes++
	img, format, native, err := r.decoder.Decode(path, px)
	if err != nil {
		return nil, err
	}
	return &IconAsset{Image: img, Format: format, Native: native, Source: path}, nil
}

// Placeholder returns a placeholder tile at size logical pixels.
// Placeholders are cached like icons under a reserved reference.
func (r *Rasterizer) Placeholder(name string, size int) *IconAsset {
	px := size * r.scale
	key := iconKey{ref: "\x00placeholder:" + name, size: px}
	if asset, ok := r.icons.Get(key); ok {
		return asset
	}
	asset := Placeholder(name, px)
	r.icons.Add(key, asset)
	return asset
}

// ShapeText returns the label raster for text at size logical pixels,
// ellipsized to maxWidth logical pixels when positive. Unknown families fall
// back to DefaultFont.
func (r *Rasterizer) ShapeText(text, font string, size, maxWidth int) (*GlyphRun, error) {
	if r.shaper == nil {
		return nil, fmt.Errorf("no text shaper")
	}

	family := r.resolveFont(font)
	key := glyphKey{font: family, size: size * r.scale, maxWidth: maxWidth * r.scale, text: text}

	if run, ok := r.glyphs.Get(key); ok {
		r.stats.GlyphHits++
		return run, nil
	}

	r.stats.GlyphShapes++
	run, err := r.shaper.Shape(text, family, key.size, key.maxWidth)
	if err != nil {
		return nil, fmt.Errorf("shape %q: %w", text, err)
	}
	r.glyphs.Add(key, run)
	return run, nil
}

func (r *Rasterizer) resolveFont(font string) string {
	if font == "" {
		return DefaultFont
	}
	if resolved, ok := r.fonts[font]; ok {
		return resolved
	}

	resolved := font
	if !r.shaper.HasFamily(font) {
		r.logger.Warn("font family not found, using default", "family", font, "default", DefaultFont)
		resolved = DefaultFont
	}
	r.fonts[font] = resolved
	return resolved
}

// BeginFrame pins every buffer touched until EndFrame.
func (r *Rasterizer) BeginFrame() {
	r.icons.BeginFrame()
	r.glyphs.BeginFrame()
}

// EndFrame releases pins and trims both caches to their limits.
func (r *Rasterizer) EndFrame() {
	r.icons.EndFrame()
	r.glyphs.EndFrame()
}

// Invalidate drops every cached icon, glyph run and failure.
func (r *Rasterizer) Invalidate() {
	r.icons.Purge()
	r.glyphs.Purge()
	clear(r.failed)
	clear(r.fonts)
}

// SetCacheLimits changes both cache limits.
func (r *Rasterizer) SetCacheLimits(icons, glyphs int) {
	r.icons.SetLimit(icons)
	r.glyphs.SetLimit(glyphs)
}

// IconCached reports whether ref at size logical pixels is cached.
func (r *Rasterizer) IconCached(ref string, size int) bool {
	return r.icons.Contains(iconKey{ref: ref, size: size * r.scale})
}

// IconPinned reports whether ref at size was touched in the open frame.
func (r *Rasterizer) IconPinned(ref string, size int) bool {
	return r.icons.Pinned(iconKey{ref: ref, size: size * r.scale})
}

// Stats returns cache counters.
func (r *Rasterizer) Stats() Stats {
	s := r.stats
	s.IconEvictions = r.icons.Evictions()
	s.GlyphEvictions = r.glyphs.Evictions()
	return s
}
