package formats

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// createTestFLT writes a small float grid whose cell value is row*10+col.
func createTestFLT(t *testing.T, width, height int, order binary.ByteOrder) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cost.flt")
	data := make([]float32, width*height)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			data[r*width+c] = float32(r*10 + c)
		}
	}
	h := &Header{
		NCols:     width,
		NRows:     height,
		XLL:       100,
		YLL:       200,
		CellSizeX: 2,
		CellSizeY: 2,
		NoData:    -1,
		HasNoData: true,
		ByteOrder: order,
	}
	if err := WriteFloatGrid(path, h, data); err != nil {
		t.Fatalf("WriteFloatGrid failed: %v", err)
	}
	return path
}

func TestFloatGrid_ReadWindow(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			g, err := OpenFloatGrid(createTestFLT(t, 5, 4, order))
			if err != nil {
				t.Fatalf("OpenFloatGrid failed: %v", err)
			}
			defer g.Close()

			if g.Header.NCols != 5 || g.Header.NRows != 4 {
				t.Fatalf("expected 5x4, got %dx%d", g.Header.NCols, g.Header.NRows)
			}
			if g.Header.ByteOrder != order {
				t.Errorf("byte order not round-tripped")
			}

			win, err := g.ReadWindow(1, 2, 3, 2)
			if err != nil {
				t.Fatalf("ReadWindow failed: %v", err)
			}
			want := []float32{12, 13, 14, 22, 23, 24}
			if len(win) != len(want) {
				t.Fatalf("expected %d values, got %d", len(want), len(win))
			}
			for i := range want {
				if win[i] != want[i] {
					t.Errorf("value %d: expected %v, got %v", i, want[i], win[i])
				}
			}
		})
	}
}

func TestFloatGrid_ReadWindowOutOfRange(t *testing.T) {
	g, err := OpenFloatGrid(createTestFLT(t, 3, 3, binary.LittleEndian))
	if err != nil {
		t.Fatalf("OpenFloatGrid failed: %v", err)
	}
	defer g.Close()

	if _, err := g.ReadWindow(2, 2, 2, 2); !errors.Is(err, ErrWindowOutOfRange) {
		t.Errorf("expected ErrWindowOutOfRange, got %v", err)
	}
}

func TestOpenFloatGrid_Truncated(t *testing.T) {
	path := createTestFLT(t, 3, 3, binary.LittleEndian)
	if err := os.Truncate(path, 8); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := OpenFloatGrid(path); !errors.Is(err, ErrTruncatedFLTData) {
		t.Errorf("expected ErrTruncatedFLTData, got %v", err)
	}
}

func TestOpenFloatGrid_MissingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nohdr.flt")
	if err := os.WriteFile(path, make([]byte, 16), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFloatGrid(path); err == nil {
		t.Error("expected error for missing header")
	}
}

func TestReadPRJ(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "cost.flt")

	prj, err := ReadPRJ(grid)
	if err != nil || prj != "" {
		t.Errorf("missing sidecar: got %q, %v", prj, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "cost.prj"), []byte("  EPSG:32618\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	prj, err = ReadPRJ(grid)
	if err != nil || prj != "EPSG:32618" {
		t.Errorf("got %q, %v", prj, err)
	}

	if err := os.Mkdir(filepath.Join(dir, "dir.prj"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPRJ(filepath.Join(dir, "dir.flt")); err == nil {
		t.Error("expected an error when the sidecar is unreadable")
	}
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("/data/cost.flt", ".prj"); got != "/data/cost.prj" {
		t.Errorf("expected /data/cost.prj, got %s", got)
	}
}
