// Package pathfinding implements weighted A* over an 8-connected cost grid.
package pathfinding

import (
	"container/heap"
	"fmt"
	"math"
	"strings"

	"github.com/lcpnet/lcpnet/internal/raster"
)

// HeuristicKind selects the remaining-cost estimate.
type HeuristicKind int

const (
	// HeuristicGeometric scales pixel distance by sqrt(dx*dy). It ignores
	// cell costs, so it can overestimate on grids with costs below one and
	// the resulting paths are then not guaranteed optimal.
	HeuristicGeometric HeuristicKind = iota
	// HeuristicAdmissible scales world distance by the smallest traversable
	// cost and never overestimates.
	HeuristicAdmissible
)

// String returns the configuration name of the heuristic.
func (k HeuristicKind) String() string {
	switch k {
	case HeuristicGeometric:
		return "geometric"
	case HeuristicAdmissible:
		return "admissible"
	default:
		return fmt.Sprintf("HeuristicKind(%d)", int(k))
	}
}

// ParseHeuristic parses "geometric" or "admissible"; empty means geometric.
func ParseHeuristic(s string) (HeuristicKind, error) {
	switch strings.ToLower(s) {
	case "", "geometric":
		return HeuristicGeometric, nil
	case "admissible":
		return HeuristicAdmissible, nil
	default:
		return HeuristicGeometric, fmt.Errorf("unknown heuristic %q", s)
	}
}

// Params configures one search.
type Params struct {
	Dx     float64 // cell width; column steps
	Dy     float64 // cell height; row steps
	Weight float64 // heuristic multiplier, 1 = standard A*

	Heuristic HeuristicKind
	// MinCost is the per-unit cost bound used by HeuristicAdmissible.
	// Zero means "compute it from the grid".
	MinCost float64
}

// ParamsFor returns Params using the cell size of g.
func ParamsFor(g *raster.Grid, weight float64, kind HeuristicKind) Params {
	return Params{Dx: g.Dx, Dy: math.Abs(g.Dy), Weight: weight, Heuristic: kind}
}

// Result is the outcome of Search. Trace and G are only meaningful when
// Found is true, or for inspecting how far the search got.
type Result struct {
	Found    bool
	Trace    Backtrace
	G        []float64 // accumulated cost per cell, +Inf where unreached
	Expanded int       // cells expanded

	width int
}

// Cost returns the accumulated cost at p, +Inf if unreached.
func (r Result) Cost(p raster.Pixel) float64 {
	if r.G == nil {
		return math.Inf(1)
	}
	return r.G[p.Row*r.width+p.Col]
}

// Search runs A* from start to end. A neighbour is expanded only when it is
// inside the grid, admitted by mask (nil admits all) and not nodata.
// An unreachable end gives Found == false; it is not an error.
func Search(grid *raster.Grid, mask *raster.Mask, start, end raster.Pixel, p Params) Result {
	if !grid.Contains(start) || !grid.Contains(end) {
		return Result{}
	}

	w, h := grid.Width, grid.Height
	g := make([]float64, w*h)
	for i := range g {
		g[i] = math.Inf(1)
	}
	trace := newBacktrace(w, h)
	res := Result{Trace: trace, G: g, width: w}

	estimate := heuristicFunc(grid, end, p)

	// Step lengths in world units, in the order of directions.
	var stepLen [8]float64
	for i, d := range directions {
		stepLen[i] = math.Hypot(float64(d[0])*p.Dy, float64(d[1])*p.Dx)
	}

	startIdx := grid.Index(start)
	endIdx := grid.Index(end)
	g[startIdx] = 0

	open := &frontier{}
	heap.Init(open)
	heap.Push(open, frontierItem{f: p.Weight * estimate(start.Row, start.Col), g: 0, index: startIdx})

	for open.Len() > 0 {
		current := heap.Pop(open).(frontierItem)
		if current.index == endIdx {
			res.Found = true
			return res
		}
		if current.g > g[current.index] {
			continue
		}
		res.Expanded++

		r, c := current.index/w, current.index%w
		costHere := float64(grid.Data[current.index])

		for i, d := range directions {
			nr, nc := r+d[0], c+d[1]
			if nr < 0 || nr >= h || nc < 0 || nc >= w {
				continue
			}
			np := raster.Pixel{Row: nr, Col: nc}
			if !mask.Allows(np) {
				continue
			}
			ni := nr*w + nc
			costThere := float64(grid.Data[ni])
			if grid.IsNoData(costThere) {
				continue
			}

			tentative := current.g + (costHere+costThere)/2*stepLen[i]
			if tentative < g[ni] {
				g[ni] = tentative
				trace.codes[ni] = Encode(d[0], d[1])
				heap.Push(open, frontierItem{
					f:     tentative + p.Weight*estimate(nr, nc),
					g:     tentative,
					index: ni,
				})
			}
		}
	}

	return res
}

// heuristicFunc returns the remaining-cost estimate towards end.
func heuristicFunc(grid *raster.Grid, end raster.Pixel, p Params) func(r, c int) float64 {
	if p.Heuristic == HeuristicAdmissible {
		minCost := p.MinCost
		if minCost == 0 {
			minCost = grid.MinCost()
		}
		return func(r, c int) float64 {
			return math.Hypot(float64(end.Row-r)*p.Dy, float64(end.Col-c)*p.Dx) * minCost
		}
	}

	scale := math.Sqrt(p.Dx * p.Dy)
	return func(r, c int) float64 {
		return math.Hypot(float64(end.Row-r), float64(end.Col-c)) * scale
	}
}
