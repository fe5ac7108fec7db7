package raster

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func seqGrid(t *testing.T, width, height int) *Grid {
	t.Helper()
	data := make([]float32, width*height)
	for i := range data {
		data[i] = float32(i)
	}
	g, err := NewGrid(width, height, data)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	return g
}

func TestNewGrid_ShapeMismatch(t *testing.T) {
	if _, err := NewGrid(3, 3, make([]float32, 8)); err == nil {
		t.Error("expected error for mismatched data length")
	}
}

func TestGrid_NoData(t *testing.T) {
	g := Uniform(2, 2, 1)
	g.Data[3] = -9999
	if g.Passable(Pixel{Row: 1, Col: 1}) != true {
		t.Error("cell should be passable while nodata is unset")
	}

	g.NoData, g.HasNoData = -9999, true
	if g.Passable(Pixel{Row: 1, Col: 1}) {
		t.Error("nodata cell should not be passable")
	}
	if g.Passable(Pixel{Row: 2, Col: 0}) {
		t.Error("out-of-bounds cell should not be passable")
	}

	g.NoData = math.NaN()
	g.Data[0] = float32(math.NaN())
	if g.Passable(Pixel{Row: 0, Col: 0}) {
		t.Error("NaN nodata should match NaN cells")
	}
}

func TestGrid_MinCost(t *testing.T) {
	g := seqGrid(t, 3, 2)
	g.NoData, g.HasNoData = 0, true
	if got := g.MinCost(); got != 1 {
		t.Errorf("expected min cost 1 (0 is nodata), got %g", got)
	}
}

func TestGrid_Sub(t *testing.T) {
	g := seqGrid(t, 4, 4)
	sub, err := g.Sub(Window{Row: 1, Col: 2, Width: 2, Height: 3})
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	want := []float32{6, 7, 10, 11, 14, 15}
	for i := range want {
		if sub.Data[i] != want[i] {
			t.Errorf("value %d: expected %v, got %v", i, want[i], sub.Data[i])
		}
	}
	if _, err := g.Sub(Window{Row: 3, Col: 3, Width: 2, Height: 2}); err == nil {
		t.Error("expected error for window past the edge")
	}
}

func TestDownsample(t *testing.T) {
	g := seqGrid(t, 5, 3)

	tests := []struct {
		name   string
		method Resampling
		want   []float32
	}{
		// blocks: [0 1 5 6] [2 3 7 8] [4 9] / [10 11] [12 13] [14]
		{"stride", Stride, []float32{0, 2, 4, 10, 12, 14}},
		{"average", Average, []float32{3, 5, 6.5, 10.5, 12.5, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Downsample(g, 2, tt.method)
			if d.Width != 3 || d.Height != 2 {
				t.Fatalf("expected 3x2, got %dx%d", d.Width, d.Height)
			}
			if d.Dx != 2 || d.Dy != 2 {
				t.Errorf("expected cell size 2, got %gx%g", d.Dx, d.Dy)
			}
			for i := range tt.want {
				if d.Data[i] != tt.want[i] {
					t.Errorf("value %d: expected %v, got %v", i, tt.want[i], d.Data[i])
				}
			}
		})
	}
}

func TestDownsample_AverageSkipsNoData(t *testing.T) {
	g, _ := NewGrid(2, 2, []float32{-1, 4, -1, -1})
	g.NoData, g.HasNoData = -1, true

	d := Downsample(g, 2, Average)
	if d.Data[0] != 4 {
		t.Errorf("expected 4, got %v", d.Data[0])
	}

	g.Data[1] = -1
	d = Downsample(g, 2, Average)
	if d.Data[0] != -1 {
		t.Errorf("expected all-nodata block to stay nodata, got %v", d.Data[0])
	}
}

func TestParseResampling(t *testing.T) {
	if r, err := ParseResampling(""); err != nil || r != Stride {
		t.Errorf("expected default stride, got %v, %v", r, err)
	}
	if r, err := ParseResampling("Average"); err != nil || r != Average {
		t.Errorf("expected average, got %v, %v", r, err)
	}
	if _, err := ParseResampling("bilinear"); err == nil {
		t.Error("expected error for unknown resampling")
	}
}

func TestMask_IntersectAndDownsample(t *testing.T) {
	a := MaskFromFunc(4, 4, func(p Pixel) bool { return p.Col < 3 })
	b := MaskFromFunc(4, 4, func(p Pixel) bool { return p.Row > 0 })

	m := Intersect(a, b)
	if m.Count() != 9 {
		t.Errorf("expected 9 admissible cells, got %d", m.Count())
	}
	if a.Count() != 12 || b.Count() != 12 {
		t.Error("Intersect must not modify its operands")
	}

	if Intersect(nil, nil) != nil {
		t.Error("intersection of two nil masks should be nil")
	}
	if got := Intersect(nil, a); got.Count() != 12 || got == a {
		t.Error("intersection with nil should copy the other mask")
	}

	d := m.Downsample(2)
	if d.Width != 2 || d.Height != 2 {
		t.Fatalf("expected 2x2, got %dx%d", d.Width, d.Height)
	}
	// kept cells: (0,0) (0,2) (2,0) (2,2)
	want := []bool{false, false, true, true}
	for i, p := range []Pixel{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		if d.Allows(p) != want[i] {
			t.Errorf("%v: expected %v", p, want[i])
		}
	}
}

func TestMask_NilAllowsEverything(t *testing.T) {
	var m *Mask
	if !m.Allows(Pixel{Row: 100, Col: -3}) {
		t.Error("nil mask should admit every cell")
	}
}

func TestMemorySource(t *testing.T) {
	g := seqGrid(t, 4, 3)
	src := NewMemorySource(g, "EPSG:32618")
	info := src.Info()
	if info.Width != 4 || info.Height != 3 || info.CRS != "EPSG:32618" {
		t.Errorf("unexpected info %+v", info)
	}
	w, err := src.ReadWindow(Window{Row: 1, Col: 1, Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("ReadWindow failed: %v", err)
	}
	if w.Data[0] != 5 || w.Data[3] != 10 {
		t.Errorf("unexpected window data %v", w.Data)
	}
}

func TestOpen_Float32NoDataSentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cost.asc")
	asc := "ncols 3\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n" +
		"NODATA_value -3.4028234e+38\n2 -3.4028234e+38 0.5\n"
	if err := os.WriteFile(path, []byte(asc), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()
	g, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if g.Passable(Pixel{Row: 0, Col: 1}) {
		t.Errorf("sentinel cell %g should be nodata (nodata %g)", g.At(Pixel{Row: 0, Col: 1}), g.NoData)
	}
	if !g.Passable(Pixel{Row: 0, Col: 0}) || !g.Passable(Pixel{Row: 0, Col: 2}) {
		t.Error("finite cells should stay passable")
	}
	if got := g.MinCost(); got != float64(float32(0.5)) {
		t.Errorf("MinCost = %g, want 0.5", got)
	}
	if got := Downsample(g, 2, Average).Data[0]; got != 2 {
		t.Errorf("block mean = %g, want 2", got)
	}
}

func TestGrid_NoDataNotExactInFloat32(t *testing.T) {
	g := Uniform(2, 1, 1)
	g.Data[1] = float32(0.1)
	g.NoData, g.HasNoData = 0.1, true
	if g.Passable(Pixel{Row: 0, Col: 1}) {
		t.Error("0.1 sentinel should match the float32 cell value")
	}
	if !g.Passable(Pixel{Row: 0, Col: 0}) {
		t.Error("cost 1 cell should be passable")
	}
}

func TestOpen_ReadsPRJ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cost.asc")
	asc := "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2\n"
	if err := os.WriteFile(path, []byte(asc), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if crs := src.Info().CRS; crs != "" {
		t.Errorf("expected empty CRS without a sidecar, got %q", crs)
	}
	src.Close()

	if err := os.WriteFile(filepath.Join(dir, "cost.prj"), []byte("EPSG:32618\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err = Open(path, OpenOptions{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()
	if crs := src.Info().CRS; crs != "EPSG:32618" {
		t.Errorf("CRS = %q, want EPSG:32618", crs)
	}
}
