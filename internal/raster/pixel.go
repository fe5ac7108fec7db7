package raster

import "fmt"

// Pixel is a (row, col) cell position.
type Pixel struct {
	Row int
	Col int
}

// String returns the pixel as "(row,col)".
func (p Pixel) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Div scales p down by an integer factor.
func (p Pixel) Div(factor int) Pixel {
	return Pixel{Row: p.Row / factor, Col: p.Col / factor}
}

// Path is an ordered sequence of 8-connected pixels from start to end.
type Path []Pixel

// Window is a rectangular sub-region of a grid.
type Window struct {
	Row    int // row offset
	Col    int // column offset
	Width  int
	Height int
}

// Contains reports whether the absolute pixel p lies inside the window.
func (w Window) Contains(p Pixel) bool {
	return p.Row >= w.Row && p.Row < w.Row+w.Height && p.Col >= w.Col && p.Col < w.Col+w.Width
}

// Local converts an absolute pixel to window-local coordinates.
func (w Window) Local(p Pixel) Pixel {
	return Pixel{Row: p.Row - w.Row, Col: p.Col - w.Col}
}

// Global converts a window-local pixel to absolute coordinates.
func (w Window) Global(p Pixel) Pixel {
	return Pixel{Row: p.Row + w.Row, Col: p.Col + w.Col}
}

// String returns the window as "rows r0+h cols c0+w".
func (w Window) String() string {
	return fmt.Sprintf("rows %d+%d cols %d+%d", w.Row, w.Height, w.Col, w.Width)
}
