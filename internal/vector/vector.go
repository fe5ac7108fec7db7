// Package vector reads and writes the shapefiles around a run: input
// points, the mask polygons and the path segments it produces.
package vector

import (
	"errors"

	"github.com/ctessum/geom"

	"github.com/lcpnet/lcpnet/internal/raster"
)

// Errors returned by the shapefile readers and writers.
var (
	ErrNoPoints     = errors.New("no points loaded")
	ErrNoPolygons   = errors.New("no polygons loaded")
	ErrMissingField = errors.New("attribute field not found")
	ErrCRSMismatch  = errors.New("coordinate reference systems differ")
	ErrUnknownCRS   = errors.New("coordinate reference system unknown")
	ErrShortSegment = errors.New("line needs at least two vertices")
	ErrNoSegments   = errors.New("no path segments to merge")
)

// Line converts a pixel path to a line through the cell centres.
func Line(path raster.Path, t raster.Transform) geom.LineString {
	line := make(geom.LineString, len(path))
	for i, p := range path {
		x, y := t.Center(p)
		line[i] = geom.Point{X: x, Y: y}
	}
	return line
}
