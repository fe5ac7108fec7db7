// Package orchestrator runs tile tasks on a worker pool, records their
// outcome in the session ledger and merges the resulting network.
package orchestrator

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/pathfinding"
	"github.com/lcpnet/lcpnet/internal/raster"
	"github.com/lcpnet/lcpnet/internal/routing"
	"github.com/lcpnet/lcpnet/internal/tiling"
	"github.com/lcpnet/lcpnet/internal/vector"
)

// Status is the outcome of one tile.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "error"
}

// TileResult is returned by a worker to the coordinator.
type TileResult struct {
	Status   Status
	TileID   string
	Paths    int // segments written
	Pairs    int // pairs attempted
	Faults   int // pairs skipped after an error or panic
	Detail   string
	Duration time.Duration
}

// Masker rasterises the admissibility mask for a window of the grid.
type Masker interface {
	Rasterize(w raster.Window, t raster.Transform) *raster.Mask
}

// Sink persists path segments.
type Sink interface {
	WritePath(name string, s vector.Segment) error
}

// Env is the read-only environment shared by all workers.
type Env struct {
	OpenGrid raster.Opener
	Mask     Masker // nil admits every cell
	Strategy *routing.Strategy
	Fallback bool   // search the full mask when the corridor search fails
	CRS      string // written next to every segment
	Log      *zap.Logger
}

func (e *Env) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e *Env) search(p *routing.Prepared, start, end raster.Pixel) (routing.Outcome, error) {
	if e.Fallback {
		return p.SearchWithFallback(start, end)
	}
	return p.Search(start, end)
}

// SegmentName returns the artifact name of the path between two nodes.
func SegmentName(tileID string, a, b int64) string {
	return fmt.Sprintf("path_%s__%d__%d", tileID, a, b)
}

// ProcessTile routes every unordered pair of border nodes of task and writes
// the paths found to sink. Faults in a single pair are logged and skipped;
// a tile that cannot be read returns StatusError. A tile always runs to
// completion once started.
func ProcessTile(task tiling.Task, env *Env, sink Sink) (res TileResult) {
	start := time.Now()
	res = TileResult{TileID: task.Tile.ID}
	log := env.log().With(zap.String("tile_id", task.Tile.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("tile panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			res.Status, res.Detail = StatusError, fmt.Sprintf("panic: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	grid, mask, err := loadTile(env, task.Tile.Window)
	if err != nil {
		res.Status, res.Detail = StatusError, err.Error()
		return res
	}

	prep := env.Strategy.Prepare(grid, mask)
	nodes := task.Nodes
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			res.Pairs++
			written, err := routePair(task.Tile.ID, prep, grid.Transform, nodes[i], nodes[j], env, sink, log)
			if err != nil {
				res.Faults++
				continue
			}
			if written {
				res.Paths++
			}
		}
	}

	res.Status = StatusSuccess
	res.Detail = fmt.Sprintf("%d paths", res.Paths)
	log.Debug("tile finished",
		zap.Int("paths", res.Paths),
		zap.Int("pairs", res.Pairs),
		zap.Int("faults", res.Faults),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

// loadTile opens a private grid handle and reads the tile window and mask.
func loadTile(env *Env, w raster.Window) (*raster.Grid, *raster.Mask, error) {
	src, err := env.OpenGrid()
	if err != nil {
		return nil, nil, fmt.Errorf("opening grid: %w", err)
	}
	defer src.Close()

	grid, err := src.ReadWindow(w)
	if err != nil {
		return nil, nil, fmt.Errorf("reading window %s: %w", w, err)
	}
	var mask *raster.Mask
	if env.Mask != nil {
		mask = env.Mask.Rasterize(w, src.Info().Transform)
	}
	return grid, mask, nil
}

// routePair searches one node pair. A nil error with written == false is a
// normal negative result.
func routePair(tileID string, prep *routing.Prepared, t raster.Transform, a, b tiling.BorderNode, env *Env, sink Sink, log *zap.Logger) (written bool, err error) {
	log = log.With(zap.Int64("from", a.ID), zap.Int64("to", b.ID))
	defer func() {
		if r := recover(); r != nil {
			log.Error("pair panicked", zap.Any("panic", r))
			written, err = false, fmt.Errorf("panic: %v", r)
		}
	}()

	out, err := env.search(prep, a.Local, b.Local)
	if err != nil {
		if errors.Is(err, pathfinding.ErrCorruptBacktrace) {
			log.Error("corrupt backtrace", zap.Error(err))
		} else {
			log.Warn("pair search failed", zap.Error(err))
		}
		return false, err
	}
	if !out.Found() {
		log.Debug("no path", zap.Bool("coarse", out.Coarse != nil))
		return false, nil
	}

	seg := vector.Segment{
		LineString: vector.Line(out.Path, t),
		Tile:       tileID,
		From:       int(a.ID),
		To:         int(b.ID),
		Cost:       out.Cost,
		Factor:     out.Factor(),
		Stage:      out.Stage.String(),
	}
	if err := sink.WritePath(SegmentName(tileID, a.ID, b.ID), seg); err != nil {
		if errors.Is(err, vector.ErrShortSegment) {
			return false, nil
		}
		log.Warn("writing path failed", zap.Error(err))
		return false, err
	}
	return true, nil
}
