package raster

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lcpnet/lcpnet/pkg/formats"
)

// ErrUnsupportedFormat is returned for cost rasters with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported cost raster format")

// Info describes a cost raster without loading its cells.
type Info struct {
	Width     int
	Height    int
	Dx        float64
	Dy        float64
	NoData    float64
	HasNoData bool
	Transform Transform
	CRS       string // WKT or proj4 text from the .prj sidecar; empty if absent
}

// Source gives read access to a cost raster. Each goroutine opens its own.
type Source interface {
	Info() Info
	ReadWindow(w Window) (*Grid, error)
	Close() error
}

// Opener opens a fresh Source.
type Opener func() (Source, error)

// OpenOptions adjust how a raster file is interpreted.
type OpenOptions struct {
	// NoData overrides the header's nodata value when non-nil.
	NoData *float64
}

// Open opens a cost raster file: ".flt" (with ".hdr") or ".asc".
func Open(path string, opts OpenOptions) (Source, error) {
	var (
		src Source
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flt", ".bil":
		src, err = openFloat(path, opts)
	case ".asc":
		src, err = openASCII(path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening cost raster %s: %w", path, err)
	}
	return src, nil
}

// FileOpener returns an Opener for path.
func FileOpener(path string, opts OpenOptions) Opener {
	return func() (Source, error) { return Open(path, opts) }
}

// ReadAll reads the whole extent of src.
func ReadAll(src Source) (*Grid, error) {
	info := src.Info()
	return src.ReadWindow(Window{Width: info.Width, Height: info.Height})
}

func infoFromHeader(path string, h *formats.Header, opts OpenOptions) (Info, error) {
	x0, y0 := h.Origin()
	info := Info{
		Width:     h.NCols,
		Height:    h.NRows,
		Dx:        h.CellSizeX,
		Dy:        h.CellSizeY,
		NoData:    h.NoData,
		HasNoData: h.HasNoData,
		Transform: NorthUp(x0, y0, h.CellSizeX, h.CellSizeY),
	}
	if opts.NoData != nil {
		info.NoData, info.HasNoData = *opts.NoData, true
	}
	crs, err := formats.ReadPRJ(path)
	if err != nil {
		return Info{}, err
	}
	info.CRS = crs
	return info, nil
}

// gridFromInfo wraps window data with the georeferencing of info.
func gridFromInfo(info Info, w Window, data []float32) *Grid {
	return &Grid{
		Width:     w.Width,
		Height:    w.Height,
		Data:      data,
		NoData:    info.NoData,
		HasNoData: info.HasNoData,
		Dx:        info.Dx,
		Dy:        info.Dy,
		Transform: info.Transform.Window(w),
	}
}

type floatSource struct {
	grid *formats.FloatGrid
	info Info
}

func openFloat(path string, opts OpenOptions) (*floatSource, error) {
	g, err := formats.OpenFloatGrid(path)
	if err != nil {
		return nil, err
	}
	info, err := infoFromHeader(path, g.Header, opts)
	if err != nil {
		g.Close()
		return nil, err
	}
	return &floatSource{grid: g, info: info}, nil
}

func (s *floatSource) Info() Info { return s.info }

func (s *floatSource) ReadWindow(w Window) (*Grid, error) {
	data, err := s.grid.ReadWindow(w.Row, w.Col, w.Width, w.Height)
	if err != nil {
		return nil, err
	}
	return gridFromInfo(s.info, w, data), nil
}

func (s *floatSource) Close() error { return s.grid.Close() }

func openASCII(path string, opts OpenOptions) (*MemorySource, error) {
	a, err := formats.ParseASCIIGridFile(path)
	if err != nil {
		return nil, err
	}
	info, err := infoFromHeader(path, a.Header, opts)
	if err != nil {
		return nil, err
	}
	return NewMemorySource(gridFromInfo(info, Window{Width: info.Width, Height: info.Height}, a.Data), info.CRS), nil
}

// MemorySource serves windows of an in-memory grid.
type MemorySource struct {
	grid *Grid
	crs  string
}

// NewMemorySource wraps g as a Source.
func NewMemorySource(g *Grid, crs string) *MemorySource {
	return &MemorySource{grid: g, crs: crs}
}

// Info describes the wrapped grid.
func (s *MemorySource) Info() Info {
	g := s.grid
	return Info{
		Width:     g.Width,
		Height:    g.Height,
		Dx:        g.Dx,
		Dy:        g.Dy,
		NoData:    g.NoData,
		HasNoData: g.HasNoData,
		Transform: g.Transform,
		CRS:       s.crs,
	}
}

// ReadWindow copies window w.
func (s *MemorySource) ReadWindow(w Window) (*Grid, error) {
	return s.grid.Sub(w)
}

// Close is a no-op.
func (s *MemorySource) Close() error { return nil }
