// Package routing implements the coarse-to-fine search strategy: find a
// path on downsampled grids, then refine it at full resolution inside a
// corridor around the coarse route.
package routing

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/pathfinding"
	"github.com/lcpnet/lcpnet/internal/raster"
)

// ErrNoFactors is returned when a Strategy has no downsampling factors.
var ErrNoFactors = errors.New("no downsampling factors configured")

// Stage reports which search produced a full-resolution path.
type Stage int

const (
	StageNone Stage = iota
	StageCorridor
	StageFullMask
)

// String returns the stage name used in logs.
func (s Stage) String() string {
	switch s {
	case StageCorridor:
		return "corridor"
	case StageFullMask:
		return "full-mask"
	default:
		return "none"
	}
}

// Strategy holds the hierarchical search parameters.
type Strategy struct {
	Factors      []int // tried in order, typically coarse to fine
	BufferPixels int
	Weight       float64
	Heuristic    pathfinding.HeuristicKind
	Resampling   raster.Resampling

	Log *zap.Logger
}

// Coarse is a path found on a downsampled grid.
type Coarse struct {
	Path   raster.Path // in downsampled pixel coordinates
	Factor int
	Grid   *raster.Grid // the downsampled grid the path was found on
}

// Outcome is the result of a hierarchical search.
type Outcome struct {
	Path   raster.Path // full resolution; nil when not found
	Coarse *Coarse     // nil when no factor found a path
	Stage  Stage
	Cost   float64
}

// Found reports whether a full-resolution path was produced.
func (o Outcome) Found() bool {
	return o.Path != nil
}

// Factor returns the downsampling factor of the coarse path, or 0.
func (o Outcome) Factor() int {
	if o.Coarse == nil {
		return 0
	}
	return o.Coarse.Factor
}

func (s *Strategy) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Strategy) params(g *raster.Grid) pathfinding.Params {
	return pathfinding.ParamsFor(g, s.Weight, s.Heuristic)
}

// Refine searches at full resolution inside the corridor around c,
// intersected with mask.
func (s *Strategy) Refine(grid *raster.Grid, mask *raster.Mask, c Coarse, start, end raster.Pixel) (raster.Path, float64, error) {
	corridor := Corridor(c.Path, c.Factor, s.BufferPixels, grid.Height, grid.Width)
	return s.run(grid, raster.Intersect(corridor, mask), start, end)
}

// FullSearch searches at full resolution restricted only by mask.
// It is the caller's last resort when the corridor search fails.
func (s *Strategy) FullSearch(grid *raster.Grid, mask *raster.Mask, start, end raster.Pixel) (raster.Path, float64, error) {
	return s.run(grid, mask, start, end)
}

func (s *Strategy) run(grid *raster.Grid, mask *raster.Mask, start, end raster.Pixel) (raster.Path, float64, error) {
	res := pathfinding.Search(grid, mask, start, end, s.params(grid))
	if !res.Found {
		return nil, 0, nil
	}
	path, err := pathfinding.Reconstruct(res.Trace, start, end)
	if err != nil {
		return nil, 0, err
	}
	return path, res.Cost(end), nil
}

// Coarse tries each downsampling factor in order and returns the first
// coarse path found. ok is false when no factor connects start and end.
func (s *Strategy) Coarse(grid *raster.Grid, mask *raster.Mask, start, end raster.Pixel) (Coarse, bool, error) {
	return s.Prepare(grid, mask).Coarse(start, end)
}

// Search runs the coarse phase and the corridor refinement. It never falls
// back to an unrestricted search; see FullSearch.
func (s *Strategy) Search(grid *raster.Grid, mask *raster.Mask, start, end raster.Pixel) (Outcome, error) {
	return s.Prepare(grid, mask).Search(start, end)
}

// SearchWithFallback is Search followed by FullSearch when no
// full-resolution path was found.
func (s *Strategy) SearchWithFallback(grid *raster.Grid, mask *raster.Mask, start, end raster.Pixel) (Outcome, error) {
	return s.Prepare(grid, mask).SearchWithFallback(start, end)
}

// level is one downsampled view of a prepared grid.
type level struct {
	grid *raster.Grid
	mask *raster.Mask
}

// Prepared runs repeated searches over one grid and mask. Each factor is
// downsampled on first use and reused by later searches. A Prepared is not
// safe for concurrent use.
type Prepared struct {
	s      *Strategy
	grid   *raster.Grid
	mask   *raster.Mask
	levels map[int]level
}

// Prepare binds s to grid and mask.
func (s *Strategy) Prepare(grid *raster.Grid, mask *raster.Mask) *Prepared {
	return &Prepared{s: s, grid: grid, mask: mask, levels: make(map[int]level, len(s.Factors))}
}

func (p *Prepared) level(factor int) level {
	if l, ok := p.levels[factor]; ok {
		return l
	}
	l := level{
		grid: raster.Downsample(p.grid, factor, p.s.Resampling),
		mask: p.mask.Downsample(factor),
	}
	p.levels[factor] = l
	return l
}

// Coarse is Strategy.Coarse over the cached levels.
func (p *Prepared) Coarse(start, end raster.Pixel) (Coarse, bool, error) {
	s := p.s
	if len(s.Factors) == 0 {
		return Coarse{}, false, ErrNoFactors
	}

	for _, factor := range s.Factors {
		low := p.level(factor)
		ls, le := start.Div(factor), end.Div(factor)

		res := pathfinding.Search(low.grid, low.mask, ls, le, s.params(low.grid))
		if !res.Found {
			s.log().Debug("coarse search failed", zap.Int("factor", factor))
			continue
		}
		path, err := pathfinding.Reconstruct(res.Trace, ls, le)
		if err != nil {
			return Coarse{}, false, fmt.Errorf("coarse factor %d: %w", factor, err)
		}
		s.log().Debug("coarse search succeeded",
			zap.Int("factor", factor),
			zap.Int("length", len(path)),
			zap.Int("expanded", res.Expanded))
		return Coarse{Path: path, Factor: factor, Grid: low.grid}, true, nil
	}
	return Coarse{}, false, nil
}

// Search is Strategy.Search over the cached levels.
func (p *Prepared) Search(start, end raster.Pixel) (Outcome, error) {
	c, ok, err := p.Coarse(start, end)
	if err != nil || !ok {
		return Outcome{}, err
	}

	out := Outcome{Coarse: &c}
	path, cost, err := p.s.Refine(p.grid, p.mask, c, start, end)
	if err != nil {
		return out, err
	}
	if path != nil {
		out.Path, out.Cost, out.Stage = path, cost, StageCorridor
	}
	return out, nil
}

// SearchWithFallback is Strategy.SearchWithFallback over the cached levels.
func (p *Prepared) SearchWithFallback(start, end raster.Pixel) (Outcome, error) {
	out, err := p.Search(start, end)
	if err != nil || out.Found() {
		return out, err
	}
	p.s.log().Debug("corridor search failed, searching full mask",
		zap.Stringer("start", start), zap.Stringer("end", end))
	path, cost, err := p.s.FullSearch(p.grid, p.mask, start, end)
	if err != nil {
		return out, err
	}
	if path != nil {
		out.Path, out.Cost, out.Stage = path, cost, StageFullMask
	}
	return out, nil
}
