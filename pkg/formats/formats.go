// Package formats provides readers for ESRI raster grid formats.
package formats

// Note: the header shared by both grids is implemented in header.go
// Note: binary float grids (.flt + .hdr) are implemented in flt.go
// Note: ASCII grids (.asc) are implemented in asc.go
