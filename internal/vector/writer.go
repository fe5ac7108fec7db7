package vector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"go.uber.org/multierr"

	"github.com/lcpnet/lcpnet/pkg/formats"
)

// Segment is one path written to a shapefile.
type Segment struct {
	geom.LineString
	Tile   string  `shp:"tile"`
	From   int     `shp:"from_id"`
	To     int     `shp:"to_id"`
	Cost   float64 `shp:"cost"`
	Factor int     `shp:"factor"`
	Stage  string  `shp:"stage"`
}

// segmentFields are the attribute names read back when merging.
var segmentFields = []string{"tile", "from_id", "to_id", "cost", "factor", "stage"}

// Writer writes segment shapefiles into Dir with a .prj holding CRS.
type Writer struct {
	Dir string
	CRS string // may be empty; no .prj is written then
}

// WritePath writes s as Dir/name.shp.
func (w *Writer) WritePath(name string, s Segment) error {
	if len(s.LineString) < 2 {
		return ErrShortSegment
	}
	return writeSegments(filepath.Join(w.Dir, name+".shp"), w.CRS, []Segment{s})
}

func writeSegments(path, crs string, segs []Segment) (err error) {
	enc, err := shp.NewEncoder(path, Segment{})
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer enc.Close()

	for _, s := range segs {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if crs != "" {
		prj := formats.SidecarPath(path, ".prj")
		if err := os.WriteFile(prj, []byte(crs), 0644); err != nil {
			return err
		}
	}
	return nil
}

// ReadSegments reads every line record of a segment shapefile.
func ReadSegments(path string) ([]Segment, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer dec.Close()

	var segs []Segment
	for {
		g, fields, more := dec.DecodeRowFields(segmentFields...)
		if !more {
			break
		}
		line, ok := g.(geom.LineString)
		if !ok {
			if ml, isMulti := g.(geom.MultiLineString); isMulti && len(ml) == 1 {
				line, ok = ml[0], true
			}
		}
		if !ok {
			return nil, fmt.Errorf("%s: record of type %T is not a line", path, g)
		}
		s := Segment{LineString: line}
		s.Tile = strings.TrimSpace(fields["tile"])
		s.Stage = strings.TrimSpace(fields["stage"])
		s.From, _ = strconv.Atoi(strings.TrimSpace(fields["from_id"]))
		s.To, _ = strconv.Atoi(strings.TrimSpace(fields["to_id"]))
		s.Factor, _ = strconv.Atoi(strings.TrimSpace(fields["factor"]))
		s.Cost, _ = strconv.ParseFloat(strings.TrimSpace(fields["cost"]), 64)
		segs = append(segs, s)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return segs, nil
}

// MergeResult reports what Merge wrote.
type MergeResult struct {
	Files    int
	Segments int
	Skipped  int // files that could not be read
}

// Merge concatenates every shapefile in dir matching pattern into out.
// Unreadable inputs are skipped and reported in the returned error, which
// is non-nil even when out was written.
func Merge(dir, pattern, out, crs string) (MergeResult, error) {
	var res MergeResult
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return res, err
	}
	sort.Strings(files)

	var all []Segment
	var errs error
	for _, f := range files {
		if filepath.Clean(f) == filepath.Clean(out) {
			continue
		}
		segs, err := ReadSegments(f)
		if err != nil {
			errs = multierr.Append(errs, err)
			res.Skipped++
			continue
		}
		res.Files++
		all = append(all, segs...)
	}
	if len(all) == 0 {
		return res, multierr.Append(ErrNoSegments, errs)
	}

	if err := writeSegments(out, crs, all); err != nil {
		return res, multierr.Append(err, errs)
	}
	res.Segments = len(all)
	return res, errs
}
