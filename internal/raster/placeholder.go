package raster

import (
	"hash/fnv"
	"image"
	"image/color"
)

// placeholderColors are picked by name hash so an app keeps its colour.
var placeholderColors = []color.RGBA{
	{R: 0x35, G: 0x84, B: 0xe4, A: 0xff},
	{R: 0x2e, G: 0xc2, B: 0x7e, A: 0xff},
	{R: 0xe6, G: 0x61, B: 0x00, A: 0xff},
	{R: 0x91, G: 0x41, B: 0xac, A: 0xff},
	{R: 0xc0, G: 0x1c, B: 0x28, A: 0xff},
	{R: 0x98, G: 0x6a, B: 0x44, A: 0xff},
	{R: 0x26, G: 0xa2, B: 0x69, A: 0xff},
	{R: 0x5e, G: 0x5c, B: 0x64, A: 0xff},
}

// PlaceholderColor returns the tile colour for an application name.
func PlaceholderColor(name string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return placeholderColors[h.Sum32()%uint32(len(placeholderColors))]
}

// Placeholder renders a rounded tile in the name's colour. The grid draws
// the name's initial on top.
func Placeholder(name string, size int) *IconAsset {
	if size < 1 {
		size = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := PlaceholderColor(name)

	radius := size / 5
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if insideRounded(x, y, size, radius) {
				img.SetRGBA(x, y, c)
			}
		}
	}

	return &IconAsset{Image: img, Format: FormatPlaceholder}
}

func insideRounded(x, y, size, r int) bool {
	if r == 0 {
		return true
	}
	cx, cy := -1, -1
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= size-r && y < r:
		cx, cy = size-r-1, r
	case x < r && y >= size-r:
		cx, cy = r, size-r-1
	case x >= size-r && y >= size-r:
		cx, cy = size-r-1, size-r-1
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}
