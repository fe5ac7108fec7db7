package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"go.uber.org/multierr"

	"github.com/lcpnet/lcpnet/internal/raster"
)

// Polygons is a mask made of polygons; a point is admissible when it lies
// strictly inside any of them.
type Polygons struct {
	polys  []geom.Polygon
	bounds []*geom.Bounds
	SR     *proj.SR // nil when unknown
}

// NewPolygons wraps polys.
func NewPolygons(polys ...geom.Polygon) *Polygons {
	m := &Polygons{}
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		m.polys = append(m.polys, p)
		m.bounds = append(m.bounds, p.Bounds())
	}
	return m
}

// LoadPolygons reads every polygon and multipolygon in a shapefile.
func LoadPolygons(path string) (*Polygons, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("opening mask %s: %w", path, err)
	}

	var polys []geom.Polygon
	var errs error
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		switch t := g.(type) {
		case geom.Polygonal:
			polys = append(polys, t.Polygons()...)
		default:
			errs = multierr.Append(errs, fmt.Errorf("mask record of type %T is not a polygon", g))
		}
	}
	errs = multierr.Append(errs, dec.Error())

	m := NewPolygons(polys...)
	if sr, err := dec.SR(); err == nil {
		m.SR = sr
	}
	dec.Close()

	if errs != nil {
		return nil, fmt.Errorf("reading mask %s: %w", path, errs)
	}
	if len(m.polys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPolygons, path)
	}
	return m, nil
}

// Len returns the number of polygons.
func (m *Polygons) Len() int { return len(m.polys) }

// Contains reports whether (x, y) lies strictly inside a polygon.
func (m *Polygons) Contains(x, y float64) bool {
	p := geom.Point{X: x, Y: y}
	for i, poly := range m.polys {
		b := m.bounds[i]
		if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
			continue
		}
		if p.Within(poly) == geom.Inside {
			return true
		}
	}
	return false
}

// Admitter tests grid cells by their centre under transform t.
func (m *Polygons) Admitter(t raster.Transform) *CellAdmitter {
	return &CellAdmitter{Polygons: m, Transform: t}
}

// CellAdmitter admits grid cells whose centre lies inside the polygons.
type CellAdmitter struct {
	Polygons  *Polygons
	Transform raster.Transform
}

// Admits implements tiling.Admitter.
func (a *CellAdmitter) Admits(row, col int) bool {
	x, y := a.Transform.Center(raster.Pixel{Row: row, Col: col})
	return a.Polygons.Contains(x, y)
}

// Rasterize builds the mask of window w of a grid with transform t. A cell
// is admitted when its centre is inside a polygon under the even-odd rule.
// Rotated transforms fall back to testing every cell.
func (m *Polygons) Rasterize(w raster.Window, t raster.Transform) *raster.Mask {
	if t.XRow != 0 || t.YCol != 0 || t.XCol == 0 || t.YRow == 0 {
		a := m.Admitter(t)
		return raster.MaskFromFunc(w.Width, w.Height, func(p raster.Pixel) bool {
			g := w.Global(p)
			return a.Admits(g.Row, g.Col)
		})
	}

	out := raster.NewMask(w.Width, w.Height, false)
	var xs []float64
	for r := 0; r < w.Height; r++ {
		_, yc := t.Center(raster.Pixel{Row: w.Row + r, Col: w.Col})
		for i, poly := range m.polys {
			b := m.bounds[i]
			if yc < b.Min.Y || yc > b.Max.Y {
				continue
			}
			xs = crossings(xs[:0], poly, yc)
			for k := 0; k+1 < len(xs); k += 2 {
				c0, c1 := m.columnSpan(xs[k], xs[k+1], t)
				c0 -= w.Col
				c1 -= w.Col
				c0 = max(c0, 0)
				c1 = min(c1, w.Width)
				if c0 < c1 {
					out.SetRow(r, c0, c1, true)
				}
			}
		}
	}
	return out
}

// columnSpan returns the global columns [c0, c1) whose centres lie in the
// open interval (xa, xb).
func (m *Polygons) columnSpan(xa, xb float64, t raster.Transform) (int, int) {
	ca := (xa-t.X0)/t.XCol - 0.5
	cb := (xb-t.X0)/t.XCol - 0.5
	if ca > cb {
		ca, cb = cb, ca
	}
	c0 := int(math.Floor(ca)) + 1
	c1 := int(math.Ceil(cb))
	return c0, c1
}

// crossings appends the sorted x coordinates where the horizontal line y
// crosses the rings of poly.
func crossings(xs []float64, poly geom.Polygon, y float64) []float64 {
	for _, ring := range poly {
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
	}
	sort.Float64s(xs)
	return xs
}
