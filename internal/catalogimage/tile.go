package catalogimage

// Tile is a contiguous rectangular sub-region of an Image, addressed by the
// flat offset of its first pixel plus per-dimension extents. Tiles are
// produced externally (from the bounding box of a labeled object) so the
// pass engine only walks the minimal enclosing box of each object.
//
// Dsize and the parent's Dims share axis ordering (slowest-to-fastest).
// Start holds the per-axis 0-based offset of the tile's first pixel inside
// the parent image, used to recover absolute coordinates during a walk and
// as the shift origin for second-order accumulators.
type Tile struct {
	ParentDims []int
	Dsize      []int
	Start      []int
}

// NewTile builds a tile from a parent image shape and a per-axis [start,
// start+size) box.
func NewTile(parentDims, start, dsize []int) *Tile {
	return &Tile{
		ParentDims: append([]int{}, parentDims...),
		Dsize:      append([]int{}, dsize...),
		Start:      append([]int{}, start...),
	}
}

// BaseOffset returns the flat offset, in the parent image, of the tile's
// first pixel.
func (t *Tile) BaseOffset() int {
	strides := Strides(t.ParentDims)
	off := 0
	for i, s := range t.Start {
		off += s * strides[i]
	}
	return off
}

// Strip is one contiguous run of pixels within the parent image that
// belongs to a tile: a flat base offset and the number of contiguous
// elements (always along the fastest axis).
type Strip struct {
	Base int
	N    int
}

// Strips returns the list of contiguous segments needed to walk the tile
// inside the parent image. This replaces the manual `num_increment`
// while-loop arithmetic of the original source with a plain iterator: the
// caller ranges over Strips and, for each, scans Base..Base+N-1 with a
// tight scalar loop. Along the fastest axis a tile is always contiguous,
// so one strip is emitted per combination of the slower axes.
func (t *Tile) Strips() []Strip {
	ndim := len(t.Dsize)
	fastLen := t.Dsize[ndim-1]
	parentStrides := Strides(t.ParentDims)

	if ndim == 1 {
		return []Strip{{Base: t.BaseOffset(), N: fastLen}}
	}

	// Iterate over every combination of the slower axes (0..ndim-2).
	outerDims := t.Dsize[:ndim-1]
	total := 1
	for _, d := range outerDims {
		total *= d
	}

	strips := make([]Strip, 0, total)
	idx := make([]int, len(outerDims))
	for n := 0; n < total; n++ {
		base := t.BaseOffset()
		for axis, i := range idx {
			base += i * parentStrides[axis]
		}
		strips = append(strips, Strip{Base: base, N: fastLen})

		// Odometer increment over outerDims, slowest axis first logically
		// but we increment the last outer axis fastest (row-major order).
		for axis := len(idx) - 1; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < outerDims[axis] {
				break
			}
			idx[axis] = 0
		}
	}
	return strips
}

// CoordFromFlat recovers the absolute (parent-space) per-axis coordinate of
// a flat offset, reusing the parent's strides.
func (t *Tile) CoordFromFlat(flat int) []int {
	return CoordAt(flat, t.ParentDims)
}

// ShiftOrigin returns the tile's first-pixel coordinate, used to subtract a
// near-centre offset before squaring coordinates in second-order
// accumulators (the "shift vector", keeping squared sums within double
// precision range).
func (t *Tile) ShiftOrigin() []int {
	return append([]int{}, t.Start...)
}

// TouchesEdge reports whether the tile's bounding box touches the edge of
// the parent image along any axis - used by boundary tests to confirm no
// phantom pixels are injected at the image edge.
func (t *Tile) TouchesEdge() bool {
	for i, s := range t.Start {
		if s == 0 || s+t.Dsize[i] == t.ParentDims[i] {
			return true
		}
	}
	return false
}
