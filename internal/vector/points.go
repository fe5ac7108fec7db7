package vector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"go.uber.org/zap"
)

// Points maps point ids to world coordinates.
type Points struct {
	ByID map[int]geom.Point
	SR   *proj.SR // nil when the shapefile has no .prj
}

// IDs returns the point ids in ascending order.
func (p *Points) IDs() []int {
	ids := make([]int, 0, len(p.ByID))
	for id := range p.ByID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LoadPoints reads a point shapefile keyed by the integer attribute idField.
// Records that are not points or lack a parseable id are skipped with a
// warning.
func LoadPoints(path, idField string, log *zap.Logger) (*Points, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("opening points %s: %w", path, err)
	}
	defer dec.Close()

	pts := &Points{ByID: make(map[int]geom.Point)}
	if sr, err := dec.SR(); err == nil {
		pts.SR = sr
	}

	for row := 0; ; row++ {
		g, fields, more := dec.DecodeRowFields(idField)
		if !more {
			break
		}
		raw, ok := fields[idField]
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingField, idField, path)
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.Warn("skipping point with invalid id", zap.Int("row", row), zap.String("id", raw))
			continue
		}
		p, ok := g.(geom.Point)
		if !ok {
			log.Warn("skipping non-point record", zap.Int("row", row), zap.Int("id", id))
			continue
		}
		if _, dup := pts.ByID[id]; dup {
			log.Warn("duplicate point id, keeping the first", zap.Int("id", id))
			continue
		}
		pts.ByID[id] = p
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("reading points %s: %w", path, err)
	}
	if len(pts.ByID) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPoints, path)
	}
	return pts, nil
}
