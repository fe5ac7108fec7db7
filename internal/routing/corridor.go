package routing

import "github.com/lcpnet/lcpnet/internal/raster"

// Corridor builds a full-resolution mask around a coarse path.
//
// Each coarse pixel maps to the centre of its factor x factor block; every
// cell whose squared distance to some centre is at most buffer² is admitted.
// Disks are clipped to the height x width grid.
func Corridor(coarse raster.Path, factor, buffer, height, width int) *raster.Mask {
	m := raster.NewMask(width, height, false)
	if factor < 1 {
		factor = 1
	}
	r2 := buffer * buffer
	for _, p := range coarse {
		cr := p.Row*factor + factor/2
		cc := p.Col*factor + factor/2
		for dr := -buffer; dr <= buffer; dr++ {
			row := cr + dr
			if row < 0 || row >= height {
				continue
			}
			// Half-width of the disk on this row.
			half := isqrt(r2 - dr*dr)
			c0, c1 := cc-half, cc+half+1
			if c0 < 0 {
				c0 = 0
			}
			if c1 > width {
				c1 = width
			}
			if c0 < c1 {
				m.SetRow(row, c0, c1, true)
			}
		}
	}
	return m
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
