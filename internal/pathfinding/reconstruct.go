package pathfinding

import (
	"errors"
	"fmt"
	"math"

	"github.com/lcpnet/lcpnet/internal/raster"
)

// Backtrace corruption errors. They signal a broken search invariant and
// all match ErrCorruptBacktrace with errors.Is.
var (
	ErrCorruptBacktrace     = errors.New("corrupt backtrace")
	ErrUnsetBacktrace       = fmt.Errorf("%w: unset entry before reaching start", ErrCorruptBacktrace)
	ErrBacktraceLoop        = fmt.Errorf("%w: step bound exceeded", ErrCorruptBacktrace)
	ErrBacktraceOutOfBounds = fmt.Errorf("%w: step left the grid", ErrCorruptBacktrace)
)

// Reconstruct walks trace backwards from end to start and returns the path
// in start-to-end order.
func Reconstruct(trace Backtrace, start, end raster.Pixel) (raster.Path, error) {
	if start == end {
		return raster.Path{start}, nil
	}

	limit := trace.Width * trace.Height
	path := raster.Path{end}
	cur := end
	for steps := 0; cur != start; steps++ {
		if steps >= limit {
			return nil, fmt.Errorf("%w after %d steps from %v", ErrBacktraceLoop, steps, end)
		}
		if cur.Row < 0 || cur.Row >= trace.Height || cur.Col < 0 || cur.Col >= trace.Width {
			return nil, fmt.Errorf("%w at %v", ErrBacktraceOutOfBounds, cur)
		}
		d := trace.At(cur)
		if d == Unset {
			return nil, fmt.Errorf("%w at %v", ErrUnsetBacktrace, cur)
		}
		if !d.Valid() {
			return nil, fmt.Errorf("%w: code %d at %v", ErrCorruptBacktrace, d, cur)
		}
		dr, dc := d.Offset()
		cur = raster.Pixel{Row: cur.Row - dr, Col: cur.Col - dc}
		path = append(path, cur)
	}

	// Reverse path (it's built from end to start)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// PathCost sums the edge costs along path using the cell size of grid.
func PathCost(grid *raster.Grid, path raster.Path) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		dist := math.Hypot(float64(b.Row-a.Row)*grid.Dy, float64(b.Col-a.Col)*grid.Dx)
		total += (grid.At(a) + grid.At(b)) / 2 * dist
	}
	return total
}
