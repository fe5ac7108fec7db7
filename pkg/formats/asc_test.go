package formats

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseASCIIGrid(t *testing.T) {
	src := `NCOLS 3
NROWS 2
XLLCORNER 0
YLLCORNER 0
CELLSIZE 5
NODATA_VALUE -9999
1 2 3
4 -9999 6
`
	g, err := ParseASCIIGrid(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseASCIIGrid failed: %v", err)
	}
	if g.Header.NCols != 3 || g.Header.NRows != 2 {
		t.Fatalf("expected 3x2, got %dx%d", g.Header.NCols, g.Header.NRows)
	}
	want := []float32{1, 2, 3, 4, -9999, 6}
	for i := range want {
		if g.Data[i] != want[i] {
			t.Errorf("value %d: expected %v, got %v", i, want[i], g.Data[i])
		}
	}
}

func TestParseASCIIGrid_Truncated(t *testing.T) {
	src := "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"
	_, err := ParseASCIIGrid(strings.NewReader(src))
	if !errors.Is(err, ErrTruncatedASCData) {
		t.Errorf("expected ErrTruncatedASCData, got %v", err)
	}
}

func TestWriteASCIIGrid_RoundTrip(t *testing.T) {
	g := &ASCIIGrid{
		Header: &Header{NCols: 2, NRows: 2, XLL: 10, YLL: 20, CellSizeX: 1, CellSizeY: 1},
		Data:   []float32{1.5, 2, 3, 4.25},
	}
	var buf bytes.Buffer
	if err := WriteASCIIGrid(&buf, g); err != nil {
		t.Fatalf("WriteASCIIGrid failed: %v", err)
	}

	back, err := ParseASCIIGrid(&buf)
	if err != nil {
		t.Fatalf("ParseASCIIGrid failed: %v", err)
	}
	for i := range g.Data {
		if back.Data[i] != g.Data[i] {
			t.Errorf("value %d: expected %v, got %v", i, g.Data[i], back.Data[i])
		}
	}
	x, y := back.Header.Origin()
	if x != 10 || y != 22 {
		t.Errorf("expected origin (10, 22), got (%g, %g)", x, y)
	}
}
