package raster

import "errors"

// ErrSingularTransform is returned when a transform cannot be inverted.
var ErrSingularTransform = errors.New("singular affine transform")

// Transform is an affine pixel-to-world mapping in GDAL geotransform order:
//
//	x = X0 + col*XCol + row*XRow
//	y = Y0 + col*YCol + row*YRow
//
// (col, row) are continuous pixel coordinates, so (0, 0) is the outer corner
// of the upper-left cell and (col+0.5, row+0.5) is a cell centre.
type Transform struct {
	X0, XCol, XRow float64
	Y0, YCol, YRow float64
}

// NorthUp builds the usual transform for an upper-left origin and cell size.
func NorthUp(x0, y0, dx, dy float64) Transform {
	return Transform{X0: x0, XCol: dx, Y0: y0, YRow: -dy}
}

// Apply maps continuous pixel coordinates to world coordinates.
func (t Transform) Apply(col, row float64) (x, y float64) {
	return t.X0 + col*t.XCol + row*t.XRow, t.Y0 + col*t.YCol + row*t.YRow
}

// Center returns the world coordinate of the centre of cell p.
func (t Transform) Center(p Pixel) (x, y float64) {
	return t.Apply(float64(p.Col)+0.5, float64(p.Row)+0.5)
}

// Invert maps a world coordinate to continuous pixel coordinates.
func (t Transform) Invert(x, y float64) (col, row float64, err error) {
	det := t.XCol*t.YRow - t.XRow*t.YCol
	if det == 0 {
		return 0, 0, ErrSingularTransform
	}
	dx, dy := x-t.X0, y-t.Y0
	col = (dx*t.YRow - dy*t.XRow) / det
	row = (dy*t.XCol - dx*t.YCol) / det
	return col, row, nil
}

// PixelAt returns the cell containing world coordinate (x, y).
// The result may lie outside any particular grid; callers bound-check it.
func (t Transform) PixelAt(x, y float64) (Pixel, error) {
	col, row, err := t.Invert(x, y)
	if err != nil {
		return Pixel{}, err
	}
	return Pixel{Row: floor(row), Col: floor(col)}, nil
}

// Window returns the transform of a sub-window whose upper-left cell is w.Row, w.Col.
func (t Transform) Window(w Window) Transform {
	x, y := t.Apply(float64(w.Col), float64(w.Row))
	out := t
	out.X0, out.Y0 = x, y
	return out
}

// Scale returns the transform of a grid whose cells are factor times larger.
func (t Transform) Scale(factor int) Transform {
	f := float64(factor)
	out := t
	out.XCol *= f
	out.XRow *= f
	out.YCol *= f
	out.YRow *= f
	return out
}

func floor(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}
	return i
}
