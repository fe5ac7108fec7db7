// Package preview renders a PNG of the cost grid with the tile partition
// and border nodes drawn on top.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sort"

	"go.uber.org/multierr"
	"golang.org/x/image/draw"

	"github.com/lcpnet/lcpnet/internal/raster"
	"github.com/lcpnet/lcpnet/internal/tiling"
)

var (
	tileColor  = color.RGBA{R: 230, G: 60, B: 40, A: 255}
	emptyColor = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	nodeColor  = color.RGBA{R: 30, G: 140, B: 255, A: 255}
)

const (
	defaultSize  = 1024
	lowQuantile  = 0.02
	highQuantile = 0.98
)

// Options controls the rendered image.
type Options struct {
	MaxSize  int // longest side in pixels; 0 means 1024
	NodeSize int // node marker half-width in pixels; 0 means 2
}

// Render draws grid scaled to fit opts.MaxSize. tiles outlines the whole
// partition; tiles without a task get a dashed outline. Node markers come
// from tasks. grid may be a downsampled view of the full grid: scale is the
// number of full-resolution cells per grid cell.
func Render(grid *raster.Grid, scale int, tiles []tiling.Tile, tasks []tiling.Task, opts Options) *image.RGBA {
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultSize
	}
	if opts.NodeSize <= 0 {
		opts.NodeSize = 2
	}
	scale = max(scale, 1)

	bg := background(grid)
	k := math.Min(1, float64(opts.MaxSize)/float64(max(grid.Width, grid.Height)))
	if grid.Width*scale <= opts.MaxSize && grid.Height*scale <= opts.MaxSize {
		k = float64(scale)
	}
	w := max(int(math.Round(float64(grid.Width)*k)), 1)
	h := max(int(math.Round(float64(grid.Height)*k)), 1)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(img, img.Bounds(), bg, bg.Bounds(), draw.Src, nil)

	// Full-resolution cell to image pixel.
	px := k / float64(scale)
	toImg := func(v int) int { return int(math.Floor(float64(v) * px)) }

	withTask := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		withTask[t.Tile.ID] = true
	}
	for _, t := range tiles {
		win := t.Window
		r := image.Rect(toImg(win.Col), toImg(win.Row), toImg(win.Col+win.Width)-1, toImg(win.Row+win.Height)-1)
		dashed := !withTask[t.ID]
		c := tileColor
		if dashed {
			c = emptyColor
		}
		outline(img, r, c, dashed)
	}
	for _, t := range tasks {
		for _, n := range t.Nodes {
			g := t.Tile.Window.Global(n.Local)
			dot(img, toImg(g.Col), toImg(g.Row), opts.NodeSize, nodeColor)
		}
	}
	return img
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return png.Encode(f, img)
}

// background maps costs to grey levels between the 2nd and 98th
// percentiles. Nodata is black.
func background(g *raster.Grid) *image.Gray {
	lo, hi := stretch(g)
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for r := 0; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			v := float64(g.Data[r*g.Width+c])
			if g.IsNoData(v) {
				img.SetGray(c, r, color.Gray{})
				continue
			}
			t := 0.0
			if hi > lo {
				t = (v - lo) / (hi - lo)
			}
			t = math.Max(0, math.Min(1, t))
			// Cheap cells are bright.
			img.SetGray(c, r, color.Gray{Y: uint8(40 + 215*(1-t))})
		}
	}
	return img
}

func stretch(g *raster.Grid) (lo, hi float64) {
	vals := make([]float64, 0, len(g.Data))
	for _, v := range g.Data {
		if f := float64(v); !g.IsNoData(f) {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return 0, 0
	}
	sort.Float64s(vals)
	at := func(q float64) float64 { return vals[int(q*float64(len(vals)-1))] }
	return at(lowQuantile), at(highQuantile)
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA, dashed bool) {
	b := img.Bounds()
	set := func(x, y, i int) {
		if dashed && (i/3)%2 == 1 {
			return
		}
		if image.Pt(x, y).In(b) {
			img.SetRGBA(x, y, c)
		}
	}
	for i, x := 0, r.Min.X; x <= r.Max.X; i, x = i+1, x+1 {
		set(x, r.Min.Y, i)
		set(x, r.Max.Y, i)
	}
	for i, y := 0, r.Min.Y; y <= r.Max.Y; i, y = i+1, y+1 {
		set(r.Min.X, y, i)
		set(r.Max.X, y, i)
	}
}

func dot(img *image.RGBA, x, y, half int, c color.RGBA) {
	r := image.Rect(x-half, y-half, x+half+1, y+half+1).Intersect(img.Bounds())
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}
