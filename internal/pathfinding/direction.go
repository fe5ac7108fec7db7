package pathfinding

import "github.com/lcpnet/lcpnet/internal/raster"

// Direction encodes the offset from a cell's predecessor to the cell itself
// as (dr+1)*3 + (dc+1), for dr, dc in {-1, 0, 1}. Code 4 is (0,0) and never
// appears in a backtrace.
type Direction int8

// Unset marks a cell that the search never reached.
const Unset Direction = -1

// directions lists the eight neighbour offsets.
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Encode returns the code for step (dr, dc).
func Encode(dr, dc int) Direction {
	return Direction((dr+1)*3 + (dc + 1))
}

// Offset decodes d into (dr, dc).
func (d Direction) Offset() (dr, dc int) {
	return int(d)/3 - 1, int(d)%3 - 1
}

// Valid reports whether d is one of the eight step codes.
func (d Direction) Valid() bool {
	return d >= 0 && d <= 8 && d != 4
}

// Backtrace stores, for every cell of a searched grid, the direction by
// which it was reached.
type Backtrace struct {
	Width  int
	Height int
	codes  []Direction
}

func newBacktrace(width, height int) Backtrace {
	codes := make([]Direction, width*height)
	for i := range codes {
		codes[i] = Unset
	}
	return Backtrace{Width: width, Height: height, codes: codes}
}

// At returns the code stored for p, or Unset outside the grid.
func (b Backtrace) At(p raster.Pixel) Direction {
	if p.Row < 0 || p.Row >= b.Height || p.Col < 0 || p.Col >= b.Width {
		return Unset
	}
	return b.codes[p.Row*b.Width+p.Col]
}

// Set stores code d for p.
func (b Backtrace) Set(p raster.Pixel, d Direction) {
	b.codes[p.Row*b.Width+p.Col] = d
}

// Reached counts the cells with a recorded predecessor.
func (b Backtrace) Reached() int {
	n := 0
	for _, d := range b.codes {
		if d != Unset {
			n++
		}
	}
	return n
}

// NewBacktrace returns an all-Unset backtrace, for callers that build one by hand.
func NewBacktrace(width, height int) Backtrace {
	return newBacktrace(width, height)
}
