// Package raster holds the in-memory cost grid and admissibility mask that
// the pathfinding engine searches over, plus the transforms that map grid
// cells to world coordinates.
//
// A Grid is immutable once built and may be shared read-only between
// goroutines. Masks are never modified in place: Intersect and Downsample
// return new masks.
package raster
