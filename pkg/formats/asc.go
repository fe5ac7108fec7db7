package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrTruncatedASCData is returned when an ASCII grid has fewer values than its header declares.
var ErrTruncatedASCData = errors.New("truncated ASC data")

// ASCIIGrid is a fully parsed ESRI ASCII grid.
type ASCIIGrid struct {
	Header *Header
	Data   []float32 // row-major, NRows*NCols
}

// ParseASCIIGrid parses an ESRI ASCII grid.
func ParseASCIIGrid(r io.Reader) (*ASCIIGrid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	h := &Header{ByteOrder: defaultByteOrder}
	var first string
	for sc.Scan() {
		tok := sc.Text()
		if !isHeaderKey(tok) {
			first = tok
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: key %q without value", ErrInvalidHeaderLine, tok)
		}
		if err := h.setField(tok + " " + sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	n := h.NCols * h.NRows
	grid := &ASCIIGrid{Header: h, Data: make([]float32, 0, n)}
	push := func(tok string) error {
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return fmt.Errorf("parsing value %d: %w", len(grid.Data), err)
		}
		grid.Data = append(grid.Data, float32(v))
		return nil
	}
	if first != "" {
		if err := push(first); err != nil {
			return nil, err
		}
	}
	for len(grid.Data) < n && sc.Scan() {
		if err := push(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ASC data: %w", err)
	}
	if len(grid.Data) < n {
		return nil, fmt.Errorf("%w: got %d of %d values", ErrTruncatedASCData, len(grid.Data), n)
	}
	return grid, nil
}

// ParseASCIIGridFile parses an ASCII grid from disk.
func ParseASCIIGridFile(path string) (*ASCIIGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading ASC file: %w", err)
	}
	defer f.Close()
	return ParseASCIIGrid(f)
}

// WriteASCIIGrid writes g in ESRI ASCII grid format.
func WriteASCIIGrid(w io.Writer, g *ASCIIGrid) error {
	h := g.Header
	if err := h.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	x0, y0 := h.Origin()
	fmt.Fprintf(bw, "ncols %d\nnrows %d\nxllcorner %g\nyllcorner %g\ncellsize %g\n",
		h.NCols, h.NRows, x0, y0-float64(h.NRows)*h.CellSizeY, h.CellSizeX)
	if h.HasNoData {
		fmt.Fprintf(bw, "NODATA_value %g\n", h.NoData)
	}
	for r := 0; r < h.NRows; r++ {
		row := make([]string, h.NCols)
		for c := range row {
			row[c] = strconv.FormatFloat(float64(g.Data[r*h.NCols+c]), 'g', -1, 32)
		}
		fmt.Fprintln(bw, strings.Join(row, " "))
	}
	return bw.Flush()
}
