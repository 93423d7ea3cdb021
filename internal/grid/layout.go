// Package grid holds the drawer's grid state and draws it onto a canvas.
//
// All geometry is in physical pixels: the logical cell size from the
// configuration is multiplied by the output scale when the layout is set.
package grid

import (
	"image"

	"github.com/jmylchreest/appdrawer/internal/surface"
)

// Layout is the cell geometry for one surface configuration.
type Layout struct {
	// Size is the drawable size in physical pixels.
	Size surface.Size
	Scale int
	// Cell is the side of a square cell in physical pixels.
	Cell    int
	Columns int
	// Inset centres the columns horizontally.
	Inset int
}

// NewLayout computes the layout for a logical size, scale and logical cell size.
func NewLayout(logical surface.Size, scale, cellSize int) Layout {
	if scale < 1 {
		scale = 1
	}
	phys := logical.Scale(scale)
	cell := max(1, cellSize*scale)
	cols := max(1, phys.W/cell)
	return Layout{
		Size:    phys,
		Scale:   scale,
		Cell:    cell,
		Columns: cols,
		Inset:   max(0, (phys.W-cols*cell)/2),
	}
}

// Rows returns the number of rows needed for n cells.
func (l Layout) Rows(n int) int {
	if n <= 0 || l.Columns <= 0 {
		return 0
	}
	return (n + l.Columns - 1) / l.Columns
}

// ContentHeight returns the height of n cells laid out in rows.
func (l Layout) ContentHeight(n int) int {
	return l.Rows(n) * l.Cell
}

// CellRect returns the rectangle of cell i in content coordinates.
func (l Layout) CellRect(i int) image.Rectangle {
	row, col := i/l.Columns, i%l.Columns
	origin := image.Pt(l.Inset+col*l.Cell, row*l.Cell)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(l.Cell, l.Cell))}
}
