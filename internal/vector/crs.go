package vector

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom/proj"
)

// crsDigits is the precision used when comparing projection parameters.
const crsDigits = 6

// ParseCRS parses WKT or proj4 text. Empty text gives ErrUnknownCRS.
func ParseCRS(text string) (*proj.SR, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnknownCRS
	}
	sr, err := proj.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing CRS: %w", err)
	}
	return sr, nil
}

// CheckCRS compares the raster CRS text with a vector layer's reference
// system. It returns ErrUnknownCRS when either side is unknown, so callers
// can warn instead of failing, and ErrCRSMismatch when they differ.
func CheckCRS(rasterCRS string, layer *proj.SR, name string) error {
	if layer == nil {
		return fmt.Errorf("%s: %w", name, ErrUnknownCRS)
	}
	sr, err := ParseCRS(rasterCRS)
	if err != nil {
		return fmt.Errorf("cost raster: %w", err)
	}
	if !sr.Equal(layer, crsDigits) {
		return fmt.Errorf("%w: cost raster and %s", ErrCRSMismatch, name)
	}
	return nil
}
