package formats

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header format errors.
var (
	ErrMissingDimensions = errors.New("grid header missing ncols/nrows")
	ErrMissingCellSize   = errors.New("grid header missing cell size")
	ErrInvalidHeaderLine = errors.New("invalid grid header line")
	ErrUnsupportedPixel  = errors.New("unsupported pixel type: expected 32-bit float")
)

// defaultByteOrder applies when a header omits BYTEORDER.
var defaultByteOrder binary.ByteOrder = binary.LittleEndian

// Header describes the geometry of an ESRI grid.
// It is shared by the ASCII grid (.asc) and the binary float grid (.hdr).
type Header struct {
	NCols int
	NRows int

	// Lower-left reference; Center reports whether X/YLL refer to the
	// centre of the lower-left cell instead of its outer corner.
	XLL    float64
	YLL    float64
	Center bool

	// Upper-left cell centre (EHdr ULXMAP/ULYMAP). Takes precedence over
	// the lower-left reference when set.
	ULXMap float64
	ULYMap float64
	HasUL  bool

	CellSizeX float64
	CellSizeY float64

	NoData    float64
	HasNoData bool

	ByteOrder binary.ByteOrder
}

// Origin returns the world coordinate of the upper-left corner of the grid.
func (h *Header) Origin() (x, y float64) {
	if h.HasUL {
		return h.ULXMap - h.CellSizeX/2, h.ULYMap + h.CellSizeY/2
	}
	x, y = h.XLL, h.YLL
	if h.Center {
		x -= h.CellSizeX / 2
		y -= h.CellSizeY / 2
	}
	return x, y + float64(h.NRows)*h.CellSizeY
}

// Validate checks that the header describes a usable grid.
func (h *Header) Validate() error {
	if h.NCols <= 0 || h.NRows <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrMissingDimensions, h.NCols, h.NRows)
	}
	if h.CellSizeX <= 0 || h.CellSizeY <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrMissingCellSize, h.CellSizeX, h.CellSizeY)
	}
	return nil
}

// ParseHeader reads "key value" lines until EOF.
// Keys are matched case-insensitively; unknown keys are ignored.
func ParseHeader(r io.Reader) (*Header, error) {
	h := &Header{ByteOrder: defaultByteOrder}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := h.setField(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading grid header: %w", err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// setField applies one "key value" header line.
func (h *Header) setField(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderLine, line)
	}
	key := strings.ToLower(fields[0])
	val := fields[1]

	switch key {
	case "byteorder":
		switch strings.ToUpper(val) {
		case "LSBFIRST", "I":
			h.ByteOrder = binary.LittleEndian
		case "MSBFIRST", "M":
			h.ByteOrder = binary.BigEndian
		default:
			return fmt.Errorf("%w: byteorder %q", ErrInvalidHeaderLine, val)
		}
		return nil
	case "pixeltype":
		if !strings.EqualFold(val, "float") {
			return fmt.Errorf("%w: %s", ErrUnsupportedPixel, val)
		}
		return nil
	case "nbits":
		if val != "32" {
			return fmt.Errorf("%w: nbits %s", ErrUnsupportedPixel, val)
		}
		return nil
	case "layout", "nbands", "bandrowbytes", "totalrowbytes", "skipbytes":
		return nil
	}

	n, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidHeaderLine, line, err)
	}
	switch key {
	case "ncols":
		h.NCols = int(n)
	case "nrows":
		h.NRows = int(n)
	case "xllcorner":
		h.XLL = n
	case "yllcorner":
		h.YLL = n
	case "xllcenter":
		h.XLL = n
		h.Center = true
	case "yllcenter":
		h.YLL = n
		h.Center = true
	case "ulxmap":
		h.ULXMap = n
		h.HasUL = true
	case "ulymap":
		h.ULYMap = n
		h.HasUL = true
	case "cellsize":
		h.CellSizeX, h.CellSizeY = n, n
	case "xdim", "dx":
		h.CellSizeX = n
	case "ydim", "dy":
		h.CellSizeY = n
	case "nodata_value", "nodata":
		h.NoData = n
		h.HasNoData = true
	}
	return nil
}

// isHeaderKey reports whether a token starts a header line of an ASCII grid.
func isHeaderKey(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
