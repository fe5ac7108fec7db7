package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctessum/geom"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/raster"
	"github.com/lcpnet/lcpnet/internal/routing"
	"github.com/lcpnet/lcpnet/internal/vector"
)

// ErrUnknownOrigin is returned when the origin id is not among the points.
var ErrUnknownOrigin = errors.New("origin point not found")

// RouteReport summarises a single-origin run.
type RouteReport struct {
	Origin     int
	Routed     int
	Unreached  int // no path at any stage
	Skipped    int // destinations outside the grid or mask
	Faults     int
	FullMask   int // routes that needed the full-mask search
	OriginSkip bool
}

// Route computes a path from the origin point to every other point over the
// whole grid and writes coarse_<o>_to_<d> and route_<o>_to_<d> segments.
// Points outside the grid or mask are skipped with a warning. ctx is
// checked between destinations.
func Route(ctx context.Context, env *Env, points map[int]geom.Point, origin int, sink Sink) (*RouteReport, error) {
	log := env.log().With(zap.Int("origin", origin))
	rep := &RouteReport{Origin: origin}

	op, ok := points[origin]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownOrigin, origin)
	}

	src, err := env.OpenGrid()
	if err != nil {
		return nil, fmt.Errorf("opening grid: %w", err)
	}
	grid, err := raster.ReadAll(src)
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("reading grid: %w", err)
	}
	var mask *raster.Mask
	if env.Mask != nil {
		mask = env.Mask.Rasterize(raster.Window{Width: grid.Width, Height: grid.Height}, grid.Transform)
	}

	start, ok := locate(grid, mask, op)
	if !ok {
		log.Warn("origin outside the grid or mask, nothing to route")
		rep.OriginSkip = true
		return rep, nil
	}
	log.Info("routing from origin", zap.Stringer("pixel", start), zap.Int("destinations", len(points)-1))

	prep := env.Strategy.Prepare(grid, mask)

	for _, id := range sortedIDs(points) {
		if id == origin {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		dlog := log.With(zap.Int("destination", id))

		end, ok := locate(grid, mask, points[id])
		if !ok {
			dlog.Warn("destination outside the grid or mask, skipped")
			rep.Skipped++
			continue
		}

		out, err := env.search(prep, start, end)
		if err != nil {
			dlog.Error("search failed", zap.Error(err))
			rep.Faults++
			continue
		}

		if out.Coarse != nil {
			coarse := vector.Segment{
				LineString: vector.Line(out.Coarse.Path, grid.Transform.Scale(out.Coarse.Factor)),
				From:       origin,
				To:         id,
				Factor:     out.Coarse.Factor,
				Stage:      "coarse",
			}
			name := fmt.Sprintf("coarse_%d_to_%d", origin, id)
			if err := sink.WritePath(name, coarse); err != nil && !errors.Is(err, vector.ErrShortSegment) {
				dlog.Warn("writing coarse path failed", zap.Error(err))
			}
		}

		if !out.Found() {
			dlog.Warn("no route found", zap.Bool("coarse", out.Coarse != nil))
			rep.Unreached++
			continue
		}

		seg := vector.Segment{
			LineString: vector.Line(out.Path, grid.Transform),
			From:       origin,
			To:         id,
			Cost:       out.Cost,
			Factor:     out.Factor(),
			Stage:      out.Stage.String(),
		}
		if err := sink.WritePath(fmt.Sprintf("route_%d_to_%d", origin, id), seg); err != nil {
			if !errors.Is(err, vector.ErrShortSegment) {
				dlog.Error("writing route failed", zap.Error(err))
				rep.Faults++
			}
			continue
		}
		rep.Routed++
		if out.Stage == routing.StageFullMask {
			rep.FullMask++
		}
		dlog.Info("route found",
			zap.String("stage", out.Stage.String()),
			zap.Int("factor", out.Factor()),
			zap.Int("length", len(out.Path)),
			zap.Float64("cost", out.Cost))
	}
	return rep, nil
}

// locate returns the cell under p when it is in the grid and admitted.
func locate(grid *raster.Grid, mask *raster.Mask, p geom.Point) (raster.Pixel, bool) {
	px, err := grid.Transform.PixelAt(p.X, p.Y)
	if err != nil || !grid.Passable(px) || !mask.Allows(px) {
		return raster.Pixel{}, false
	}
	return px, true
}
