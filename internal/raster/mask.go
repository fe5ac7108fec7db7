package raster

// Mask marks admissible cells. A nil *Mask admits every cell.
type Mask struct {
	Width  int
	Height int
	cells  []bool
}

// NewMask returns a width x height mask with every cell set to fill.
func NewMask(width, height int, fill bool) *Mask {
	m := &Mask{Width: width, Height: height, cells: make([]bool, width*height)}
	if fill {
		for i := range m.cells {
			m.cells[i] = true
		}
	}
	return m
}

// MaskFromFunc builds a mask by evaluating fn for every cell.
func MaskFromFunc(width, height int, fn func(p Pixel) bool) *Mask {
	m := NewMask(width, height, false)
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			m.cells[r*width+c] = fn(Pixel{Row: r, Col: c})
		}
	}
	return m
}

// Allows reports whether p is admissible. Cells outside the mask are not.
func (m *Mask) Allows(p Pixel) bool {
	if m == nil {
		return true
	}
	if p.Row < 0 || p.Row >= m.Height || p.Col < 0 || p.Col >= m.Width {
		return false
	}
	return m.cells[p.Row*m.Width+p.Col]
}

// Set marks p. Only mask builders call Set; searches never mutate a mask.
func (m *Mask) Set(p Pixel, v bool) {
	m.cells[p.Row*m.Width+p.Col] = v
}

// SetRow marks columns [c0, c1) of row r.
func (m *Mask) SetRow(r, c0, c1 int, v bool) {
	row := m.cells[r*m.Width : (r+1)*m.Width]
	for c := c0; c < c1; c++ {
		row[c] = v
	}
}

// Count returns the number of admissible cells.
func (m *Mask) Count() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// Intersect returns a new mask admitting cells admitted by both a and b.
// A nil operand admits everything; the result is nil only if both are nil.
func Intersect(a, b *Mask) *Mask {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b.Clone()
	case b == nil:
		return a.Clone()
	}
	out := NewMask(a.Width, a.Height, false)
	for i := range out.cells {
		out.cells[i] = a.cells[i] && b.Allows(Pixel{Row: i / a.Width, Col: i % a.Width})
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	out := &Mask{Width: m.Width, Height: m.Height, cells: make([]bool, len(m.cells))}
	copy(out.cells, m.cells)
	return out
}

// Downsample keeps every factor-th cell in each axis.
func (m *Mask) Downsample(factor int) *Mask {
	if m == nil || factor <= 1 {
		return m.Clone()
	}
	w, h := ceilDiv(m.Width, factor), ceilDiv(m.Height, factor)
	out := NewMask(w, h, false)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			out.cells[r*w+c] = m.cells[(r*factor)*m.Width+c*factor]
		}
	}
	return out
}

// Sub copies window w of the mask.
func (m *Mask) Sub(w Window) *Mask {
	if m == nil {
		return nil
	}
	return MaskFromFunc(w.Width, w.Height, func(p Pixel) bool {
		return m.Allows(w.Global(p))
	})
}
