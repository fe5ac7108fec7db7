package formats

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Float grid errors.
var (
	ErrWindowOutOfRange = errors.New("window outside grid extent")
	ErrTruncatedFLTData = errors.New("truncated FLT data")
)

// FloatGrid is an open ESRI binary float grid (.flt with a .hdr sidecar).
// Rows are read on demand so a window costs only its own bytes.
type FloatGrid struct {
	Header *Header
	path   string
	file   *os.File
}

// SidecarPath returns path with its extension replaced by ext (".hdr", ".prj").
func SidecarPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// ReadPRJ returns the trimmed text of the .prj sidecar of path. A missing
// sidecar gives empty text.
func ReadPRJ(path string) (string, error) {
	data, err := os.ReadFile(SidecarPath(path, ".prj"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading projection: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// OpenFloatGrid opens a .flt file and parses its .hdr sidecar.
func OpenFloatGrid(path string) (*FloatGrid, error) {
	hf, err := os.Open(SidecarPath(path, ".hdr"))
	if err != nil {
		return nil, fmt.Errorf("opening FLT header: %w", err)
	}
	header, err := ParseHeader(hf)
	hf.Close()
	if err != nil {
		return nil, fmt.Errorf("parsing FLT header: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FLT data: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat FLT data: %w", err)
	}
	want := int64(header.NCols) * int64(header.NRows) * 4
	if st.Size() < want {
		f.Close()
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrTruncatedFLTData, st.Size(), want)
	}

	return &FloatGrid{Header: header, path: path, file: f}, nil
}

// Path returns the data file path.
func (g *FloatGrid) Path() string {
	return g.path
}

// ReadWindow reads a width x height block starting at (row, col), row-major.
func (g *FloatGrid) ReadWindow(row, col, width, height int) ([]float32, error) {
	h := g.Header
	if row < 0 || col < 0 || width <= 0 || height <= 0 || row+height > h.NRows || col+width > h.NCols {
		return nil, fmt.Errorf("%w: rows %d+%d cols %d+%d of %dx%d",
			ErrWindowOutOfRange, row, height, col, width, h.NRows, h.NCols)
	}

	out := make([]float32, width*height)
	buf := make([]byte, width*4)
	for r := 0; r < height; r++ {
		off := (int64(row+r)*int64(h.NCols) + int64(col)) * 4
		if _, err := g.file.ReadAt(buf, off); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrTruncatedFLTData, row+r, err)
		}
		dst := out[r*width : (r+1)*width]
		for c := range dst {
			dst[c] = math.Float32frombits(h.ByteOrder.Uint32(buf[c*4:]))
		}
	}
	return out, nil
}

// Close releases the file handle.
func (g *FloatGrid) Close() error {
	return g.file.Close()
}

// WriteFloatGrid writes data as a .flt file plus its .hdr sidecar.
func WriteFloatGrid(path string, h *Header, data []float32) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if len(data) != h.NCols*h.NRows {
		return fmt.Errorf("data length %d does not match %dx%d grid", len(data), h.NCols, h.NRows)
	}

	order := "LSBFIRST"
	if h.ByteOrder != nil && h.ByteOrder.String() == "BigEndian" {
		order = "MSBFIRST"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ncols %d\nnrows %d\n", h.NCols, h.NRows)
	x0, y0 := h.Origin()
	fmt.Fprintf(&sb, "xllcorner %g\nyllcorner %g\n", x0, y0-float64(h.NRows)*h.CellSizeY)
	if h.CellSizeX == h.CellSizeY {
		fmt.Fprintf(&sb, "cellsize %g\n", h.CellSizeX)
	} else {
		fmt.Fprintf(&sb, "xdim %g\nydim %g\n", h.CellSizeX, h.CellSizeY)
	}
	if h.HasNoData {
		fmt.Fprintf(&sb, "NODATA_value %g\n", h.NoData)
	}
	fmt.Fprintf(&sb, "byteorder %s\n", order)
	if err := os.WriteFile(SidecarPath(path, ".hdr"), []byte(sb.String()), 0644); err != nil {
		return err
	}

	bo := h.ByteOrder
	if bo == nil {
		bo = defaultByteOrder
	}
	buf := make([]byte, len(data)*4)
	for i, v := range data {
		bo.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return os.WriteFile(path, buf, 0644)
}
