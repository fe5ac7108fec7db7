// Package tiling partitions a grid into tiles and places border nodes on
// each tile. A Task is the unit of parallel work for the orchestrator.
package tiling

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lcpnet/lcpnet/internal/raster"
)

var (
	ErrInvalidTileSize    = errors.New("tile size must be positive")
	ErrInvalidNodeSpacing = errors.New("node spacing must be positive")
	ErrInvalidEdgeBuffer  = errors.New("edge buffer must not be negative")
	ErrInvalidDimensions  = errors.New("grid dimensions must be positive")
)

// Options controls tile size and node placement.
type Options struct {
	TileSize    int
	NodeSpacing int
	EdgeBuffer  int
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.TileSize <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidTileSize, o.TileSize)
	case o.NodeSpacing <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidNodeSpacing, o.NodeSpacing)
	case o.EdgeBuffer < 0:
		return fmt.Errorf("%w: %d", ErrInvalidEdgeBuffer, o.EdgeBuffer)
	}
	return nil
}

// Admitter decides whether the cell at a global position may hold a node.
type Admitter interface {
	Admits(row, col int) bool
}

// AdmitFunc adapts a function to Admitter.
type AdmitFunc func(row, col int) bool

// Admits calls f.
func (f AdmitFunc) Admits(row, col int) bool { return f(row, col) }

// Tile is a window of the full grid.
type Tile struct {
	ID     string
	Row    int // tile row index in the partition
	Col    int // tile column index in the partition
	Window raster.Window
}

// TileID returns the identifier of the tile at partition position (r, c).
func TileID(r, c int) string {
	return fmt.Sprintf("tile_%d_%d", r, c)
}

// BorderNode is a node on a tile's border.
type BorderNode struct {
	ID    int64        // globalRow*width + globalCol
	Local raster.Pixel // position inside the tile
}

// Task is a tile with at least two border nodes, sorted by ID.
type Task struct {
	Tile  Tile
	Nodes []BorderNode
}

// Pairs returns the number of unordered node pairs in the task.
func (t Task) Pairs() int {
	n := len(t.Nodes)
	return n * (n - 1) / 2
}

// NodeID returns the global node identifier of a cell.
func NodeID(row, col, width int) int64 {
	return int64(row)*int64(width) + int64(col)
}

// Partition splits a height x width grid into row-major tiles of size x size.
// Tiles on the last row and column are clipped to the grid.
func Partition(height, width, size int) ([]Tile, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTileSize, size)
	}

	var tiles []Tile
	for r0, tr := 0, 0; r0 < height; r0, tr = r0+size, tr+1 {
		for c0, tc := 0, 0; c0 < width; c0, tc = c0+size, tc+1 {
			tiles = append(tiles, Tile{
				ID:  TileID(tr, tc),
				Row: tr,
				Col: tc,
				Window: raster.Window{
					Row:    r0,
					Col:    c0,
					Width:  min(size, width-c0),
					Height: min(size, height-r0),
				},
			})
		}
	}
	return tiles, nil
}

// Candidates returns the local node positions for an h x w tile.
//
// Top and bottom rows sit eb cells inside the tile and carry a node every
// spacing columns. Left and right columns carry nodes every spacing rows,
// skipping the corners already covered by the top and bottom rows. The
// result may contain duplicates on very small tiles.
func Candidates(h, w, spacing, eb int) []raster.Pixel {
	top, bottom := eb, h-1-eb
	left, right := eb, w-1-eb
	if bottom < top || right < left {
		return nil
	}

	var out []raster.Pixel
	for c := left; c < w-eb; c += spacing {
		out = append(out, raster.Pixel{Row: top, Col: c}, raster.Pixel{Row: bottom, Col: c})
	}
	for r := top + spacing; r < h-eb-spacing; r += spacing {
		out = append(out, raster.Pixel{Row: r, Col: left}, raster.Pixel{Row: r, Col: right})
	}
	return out
}

// BuildTasks partitions the grid and places admissible border nodes on
// every tile. Tiles with fewer than two nodes produce no task. A nil
// admitter admits every cell.
func BuildTasks(height, width int, opts Options, admit Admitter) ([]Task, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tiles, err := Partition(height, width, opts.TileSize)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, tile := range tiles {
		nodes := BorderNodes(tile, width, opts, admit)
		if len(nodes) < 2 {
			continue
		}
		tasks = append(tasks, Task{Tile: tile, Nodes: nodes})
	}
	return tasks, nil
}

// BorderNodes returns the admissible, deduplicated border nodes of a tile
// sorted by ID. width is the full grid width.
func BorderNodes(tile Tile, width int, opts Options, admit Admitter) []BorderNode {
	w := tile.Window
	seen := make(map[int64]bool)
	var nodes []BorderNode
	for _, local := range Candidates(w.Height, w.Width, opts.NodeSpacing, opts.EdgeBuffer) {
		global := w.Global(local)
		id := NodeID(global.Row, global.Col, width)
		if seen[id] {
			continue
		}
		seen[id] = true
		if admit != nil && !admit.Admits(global.Row, global.Col) {
			continue
		}
		nodes = append(nodes, BorderNode{ID: id, Local: local})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Summary describes a task list.
type Summary struct {
	Tiles int // tiles in the partition
	Tasks int
	Nodes int
	Pairs int
}

// Summarize counts tasks, nodes and pairs.
func Summarize(tiles int, tasks []Task) Summary {
	s := Summary{Tiles: tiles, Tasks: len(tasks)}
	for _, t := range tasks {
		s.Nodes += len(t.Nodes)
		s.Pairs += t.Pairs()
	}
	return s
}
