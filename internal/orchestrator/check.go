package orchestrator

import (
	"sort"

	"github.com/ctessum/geom"
	"go.uber.org/zap"

	"github.com/lcpnet/lcpnet/internal/raster"
)

// PointCheck reports where a point falls.
type PointCheck struct {
	ID        int
	Pixel     raster.Pixel
	InGrid    bool
	Passable  bool // the cell is not nodata
	InPolygon bool // strictly inside the mask polygons; true without a mask
	InMask    bool // admitted by the rasterised mask; true without a mask
}

// Usable reports whether the point can take part in routing.
func (c PointCheck) Usable() bool {
	return c.InGrid && c.Passable && c.InMask
}

// Container is implemented by mask polygons.
type Container interface {
	Contains(x, y float64) bool
}

// CheckPoints locates every point on grid and tests it against the mask
// polygons and their rasterisation. polys and mask may be nil. Each result
// is logged, unusable points at warn level.
func CheckPoints(points map[int]geom.Point, grid *raster.Grid, polys Container, mask *raster.Mask, log *zap.Logger) []PointCheck {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]PointCheck, 0, len(points))
	for _, id := range sortedIDs(points) {
		p := points[id]
		c := PointCheck{ID: id, InPolygon: true}
		if polys != nil {
			c.InPolygon = polys.Contains(p.X, p.Y)
		}
		if px, err := grid.Transform.PixelAt(p.X, p.Y); err == nil {
			c.Pixel = px
			c.InGrid = grid.Contains(px)
			c.Passable = c.InGrid && grid.Passable(px)
			c.InMask = c.InGrid && mask.Allows(px)
		}
		out = append(out, c)

		fields := []zap.Field{
			zap.Int("id", id),
			zap.Float64("x", p.X),
			zap.Float64("y", p.Y),
			zap.Stringer("pixel", c.Pixel),
			zap.Bool("in_grid", c.InGrid),
			zap.Bool("passable", c.Passable),
			zap.Bool("in_polygon", c.InPolygon),
			zap.Bool("in_mask", c.InMask),
		}
		if c.Usable() {
			log.Info("point usable", fields...)
		} else {
			log.Warn("point unusable", fields...)
		}
	}
	return out
}

func sortedIDs(points map[int]geom.Point) []int {
	ids := make([]int, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
