package raster

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when data length does not match grid dimensions.
var ErrShapeMismatch = errors.New("grid data does not match dimensions")

// Grid is a row-major cost surface with its georeferencing.
type Grid struct {
	Width  int
	Height int
	Data   []float32

	NoData    float64
	HasNoData bool

	Dx float64 // cell width in world units
	Dy float64 // cell height in world units

	Transform Transform
}

// NewGrid wraps data as a width x height grid with unit cells.
func NewGrid(width, height int, data []float32) (*Grid, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrShapeMismatch, len(data), width, height)
	}
	return &Grid{
		Width:     width,
		Height:    height,
		Data:      data,
		Dx:        1,
		Dy:        1,
		Transform: NorthUp(0, float64(height), 1, 1),
	}, nil
}

// Uniform returns a width x height grid with every cell set to cost.
func Uniform(width, height int, cost float32) *Grid {
	data := make([]float32, width*height)
	for i := range data {
		data[i] = cost
	}
	g, _ := NewGrid(width, height, data)
	return g
}

// Contains reports whether p is inside the grid.
func (g *Grid) Contains(p Pixel) bool {
	return p.Row >= 0 && p.Row < g.Height && p.Col >= 0 && p.Col < g.Width
}

// Index returns the row-major index of p.
func (g *Grid) Index(p Pixel) int {
	return p.Row*g.Width + p.Col
}

// At returns the cost of cell p. p must be inside the grid.
func (g *Grid) At(p Pixel) float64 {
	return float64(g.Data[p.Row*g.Width+p.Col])
}

// IsNoData reports whether v equals the grid's nodata sentinel. Cells are
// float32, so both sides are compared at float32 precision.
func (g *Grid) IsNoData(v float64) bool {
	if !g.HasNoData {
		return false
	}
	if math.IsNaN(g.NoData) {
		return math.IsNaN(v)
	}
	return float32(v) == float32(g.NoData)
}

// Passable reports whether p is inside the grid and not nodata.
func (g *Grid) Passable(p Pixel) bool {
	return g.Contains(p) && !g.IsNoData(g.At(p))
}

// MinCost returns the smallest traversable cost, or 0 if every cell is nodata.
func (g *Grid) MinCost() float64 {
	min := math.Inf(1)
	for _, v := range g.Data {
		f := float64(v)
		if g.IsNoData(f) {
			continue
		}
		if f < min {
			min = f
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

// Sub copies the cells of window w into a new grid with its own transform.
func (g *Grid) Sub(w Window) (*Grid, error) {
	if w.Row < 0 || w.Col < 0 || w.Width <= 0 || w.Height <= 0 ||
		w.Row+w.Height > g.Height || w.Col+w.Width > g.Width {
		return nil, fmt.Errorf("window %s outside %dx%d grid", w, g.Width, g.Height)
	}
	data := make([]float32, w.Width*w.Height)
	for r := 0; r < w.Height; r++ {
		src := g.Data[(w.Row+r)*g.Width+w.Col:]
		copy(data[r*w.Width:(r+1)*w.Width], src[:w.Width])
	}
	out := *g
	out.Width, out.Height, out.Data = w.Width, w.Height, data
	out.Transform = g.Transform.Window(w)
	return &out, nil
}
