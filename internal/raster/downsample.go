package raster

import (
	"fmt"
	"math"
	"strings"
)

// Resampling selects how Downsample reduces a grid.
type Resampling int

const (
	// Stride keeps the upper-left cell of every block.
	Stride Resampling = iota
	// Average takes the mean of the non-nodata cells of every block.
	Average
)

// String returns the resampling name used in configuration.
func (r Resampling) String() string {
	switch r {
	case Stride:
		return "stride"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("Resampling(%d)", int(r))
	}
}

// ParseResampling parses "stride" or "average"; empty means Stride.
func ParseResampling(s string) (Resampling, error) {
	switch strings.ToLower(s) {
	case "", "stride":
		return Stride, nil
	case "average", "mean":
		return Average, nil
	default:
		return Stride, fmt.Errorf("unknown resampling %q", s)
	}
}

// Downsample returns a ceil(H/f) x ceil(W/f) grid with cells f times larger.
// Partial blocks at the right and bottom edges are kept.
func Downsample(g *Grid, factor int, method Resampling) *Grid {
	if factor <= 1 {
		return g
	}
	w, h := ceilDiv(g.Width, factor), ceilDiv(g.Height, factor)
	out := &Grid{
		Width:     w,
		Height:    h,
		Data:      make([]float32, w*h),
		NoData:    g.NoData,
		HasNoData: g.HasNoData,
		Dx:        g.Dx * float64(factor),
		Dy:        g.Dy * float64(factor),
		Transform: g.Transform.Scale(factor),
	}

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if method == Stride {
				out.Data[r*w+c] = g.Data[(r*factor)*g.Width+c*factor]
				continue
			}
			out.Data[r*w+c] = blockMean(g, r*factor, c*factor, factor)
		}
	}
	return out
}

func blockMean(g *Grid, r0, c0, factor int) float32 {
	var sum float64
	n := 0
	for r := r0; r < r0+factor && r < g.Height; r++ {
		for c := c0; c < c0+factor && c < g.Width; c++ {
			v := float64(g.Data[r*g.Width+c])
			if g.IsNoData(v) {
				continue
			}
			sum += v
			n++
		}
	}
	if n == 0 {
		if math.IsNaN(g.NoData) {
			return float32(math.NaN())
		}
		return float32(g.NoData)
	}
	return float32(sum / float64(n))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
