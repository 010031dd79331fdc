package catalog

import (
	"math"

	"github.com/cwbudde/gnuastro-catalog/internal/catalog/accumkernel"
	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

// Inputs bundles the shared, read-only data every pass in the engine
// walks (spec §6). Nothing here is mutated by a worker; only the
// per-worker ObjAccum/ClumpAccums/projection buffer are mutable.
type Inputs struct {
	Values  *catalogimage.Image
	Objects *catalogimage.LabelImage
	Clumps  *catalogimage.LabelImage // nil when no clump image supplied

	Sky      *catalogimage.Image // nil when no sky image
	SkyConst float64
	HasSky   bool

	Std      *catalogimage.Image // nil when no std/variance image
	StdConst float64
	HasStd   bool

	Tiles []*catalogimage.Tile // one per object, in object-ID order
}

// skyAt returns the sky value at flat index idx, using the per-pixel image
// when present, else the scalar constant. Returns (v, false) for NaN sky
// pixels, which must be skipped per spec §4.3.1 step 9.
func (in *Inputs) skyAt(idx int) (float64, bool) {
	if !in.HasSky {
		return 0, false
	}
	if in.Sky == nil {
		return in.SkyConst, true
	}
	v := in.Sky.Data[idx]
	if catalogimage.Blank(v) {
		return 0, false
	}
	return float64(v), true
}

// stdVarAt returns the pixel variance at flat index idx (squaring the
// stddev unless the caller declared the input already a variance image).
func (in *Inputs) stdVarAt(idx int, variance bool) (float64, bool) {
	if !in.HasStd {
		return 0, false
	}
	var v float64
	if in.Std == nil {
		v = in.StdConst
	} else {
		fv := in.Std.Data[idx]
		if catalogimage.Blank(fv) {
			return 0, false
		}
		v = float64(fv)
	}
	if !variance {
		v = v * v
	}
	return v, true
}

// ProjectionBuffer is the per-object 2D byte buffer of size
// dsize[1]*dsize[2] tracking, for 3D objects, which (y,z) columns of the
// cube contain an object pixel (1) or a non-blank object pixel (2) (spec
// §3 "Intermediate projection buffer").
type ProjectionBuffer struct {
	Dsize []int // [rows, cols] of the projected plane
	Data  []byte
}

// NewProjectionBuffer allocates a zeroed projection buffer for a 3D tile.
// For 2D/1D tiles, returns nil (not needed).
func NewProjectionBuffer(tileDsize []int) *ProjectionBuffer {
	if len(tileDsize) < 3 {
		return nil
	}
	rows, cols := tileDsize[1], tileDsize[2]
	return &ProjectionBuffer{Dsize: []int{rows, cols}, Data: make([]byte, rows*cols)}
}

func (p *ProjectionBuffer) reset() {
	for i := range p.Data {
		p.Data[i] = 0
	}
}

// mark sets the byte at (row,col) to v only if v > current value, so a
// non-blank observation (2) is never downgraded by a later blank one (1).
func (p *ProjectionBuffer) mark(row, col int, v byte) {
	idx := row*p.Dsize[1] + col
	if p.Data[idx] < v {
		p.Data[idx] = v
	}
}

// ParseObjects performs the first streaming pass over one object's
// labeled pixels (spec §4.3.1). acc must already be Reset with the tile's
// shift origin. proj may be nil for 1D/2D tiles.
func ParseObjects(in *Inputs, tile *catalogimage.Tile, objID uint32, flags *Flags, acc *ObjAccum, proj *ProjectionBuffer, params Params) {
	if proj != nil {
		proj.reset()
	}

	strides := catalogimage.Strides(in.Objects.Dims)
	ndim := len(tile.Dsize)

	needsCoords := flags.Has(int(GX)) || flags.Has(int(GY)) || flags.Has(int(GZ)) ||
		flags.Has(int(GXX)) || flags.Has(int(GYY)) || flags.Has(int(GXY)) ||
		flags.Has(int(VX)) || flags.Has(int(VY)) || flags.Has(int(VZ)) ||
		flags.Has(int(VXX)) || flags.Has(int(VYY)) || flags.Has(int(VXY)) ||
		flags.Has(int(MINVX)) || flags.Has(int(MAXVX)) ||
		flags.Has(int(MINVY)) || flags.Has(int(MAXVY)) || flags.Has(int(MINVNUM)) || flags.Has(int(MAXVNUM)) ||
		flags.Has(int(NUMSKY)) || flags.Has(int(SUMSKY)) || flags.Has(int(NUMVAR)) || flags.Has(int(SUMVAR)) ||
		(in.Clumps != nil && (flags.Has(int(C_NUM)) || flags.Has(int(C_NUMALL)))) ||
		proj != nil

	// Pass A: fast NUM/NUMALL/SUM/SUMP2 over every strip via the
	// dispatched kernel (spec §4.3.1 steps 1 and 7).
	for _, strip := range tile.Strips() {
		values32 := in.Values.Data[strip.Base : strip.Base+strip.N]
		labels := in.Objects.Data[strip.Base : strip.Base+strip.N]
		num, sum, sumP2 := accumkernel.SumStrip(values32, labels, objID)
		acc.V[SUM] += sum
		acc.V[SUMP2] += sumP2
		acc.V[NUM] += float64(num)
	}

	// NUMALL (labeled, blank-or-not) is cheap and always tracked alongside
	// coordinate-dependent bookkeeping below, or in a dedicated sweep when
	// coordinates aren't otherwise needed.
	for _, strip := range tile.Strips() {
		labels := in.Objects.Data[strip.Base : strip.Base+strip.N]
		for i, lbl := range labels {
			if lbl != objID {
				continue
			}
			acc.V[NUMALL]++
			if !needsCoords {
				continue
			}
			flat := strip.Base + i
			walkObjectPixel(in, tile, flat, strides, ndim, flags, acc, proj, params)
		}
	}

	// Projection-buffer sweep -> NUMALLXY / NUMXY (spec §4.3.1, "after the
	// walk").
	if proj != nil {
		for _, b := range proj.Data {
			if b >= 1 {
				acc.V[NUMALLXY]++
			}
			if b == 2 {
				acc.V[NUMXY]++
			}
		}
	}
}

// walkObjectPixel applies steps 2-6, 8-10 of spec §4.3.1 to one labeled
// pixel at flat index flat. Called only when some requested column needs
// coordinate-derived accumulators.
func walkObjectPixel(in *Inputs, tile *catalogimage.Tile, flat int, strides []int, ndim int, flags *Flags, acc *ObjAccum, proj *ProjectionBuffer, params Params) {
	// Step 2: coordinate (1-based FITS-axis order: fastest axis first).
	var coord [3]int
	rem := flat
	for i, s := range strides {
		coord[i] = rem / s
		rem -= coord[i] * s
	}
	// coord is stored slowest-to-fastest; FITS coordinates are fastest
	// axis first, so reverse when reading out x,y,z below.
	x := float64(coord[ndim-1]) + 1
	var y, z float64
	if ndim >= 2 {
		y = float64(coord[ndim-2]) + 1
	}
	if ndim >= 3 {
		z = float64(coord[ndim-3]) + 1
	}

	v := in.Values.Data[flat]
	nonBlank := !catalogimage.Blank(v)
	// NUM/NUMALL/SUM/SUMP2 were already accumulated for this pixel by the
	// kernel pass above; only the coordinate-derived accumulators are
	// filled in here.

	if proj != nil {
		row := coord[1] - tile.Start[1]
		col := coord[2] - tile.Start[2]
		b := byte(1)
		if nonBlank {
			b = 2
		}
		proj.mark(row, col, b)
	}

	// Step 3: geometric first-order.
	acc.V[GX] += x
	if ndim >= 2 {
		acc.V[GY] += y
	}
	if ndim >= 3 {
		acc.V[GZ] += z
	}

	// Step 4: geometric second-order, using the shift origin.
	sx := x - float64(tile.Start[ndim-1]+1)
	acc.V[GXX] += sx * sx
	if ndim >= 2 {
		sy := y - float64(tile.Start[ndim-2]+1)
		acc.V[GYY] += sy * sy
		acc.V[GXY] += sx * sy
	}

	fv := float64(v)
	if nonBlank && fv > 0 {
		// Step 5/6: value-weighted first/second order.
		acc.V[SUMWHT] += fv
		acc.V[VX] += fv * x
		if ndim >= 2 {
			acc.V[VY] += fv * y
		}
		if ndim >= 3 {
			acc.V[VZ] += fv * z
		}
		acc.V[VXX] += fv * sx * sx
		if ndim >= 2 {
			sy := y - float64(tile.Start[ndim-2]+1)
			acc.V[VYY] += fv * sy * sy
			acc.V[VXY] += fv * sx * sy
		}
	}

	// Step 8: value extrema with tie-breaking.
	if nonBlank {
		updateExtrema(acc, fv, x, y, z, ndim)
	}

	// Step 9: sky / noise.
	if sk, ok := in.skyAt(flat); ok {
		acc.V[NUMSKY]++
		acc.V[SUMSKY] += sk
	}
	if vr, ok := in.stdVarAt(flat, params.Variance); ok {
		acc.V[NUMVAR]++
		acc.V[SUMVAR] += vr
	}

	// Step 10: clump fingerprint - union of all clumps in this object.
	if in.Clumps != nil && in.Clumps.Data[flat] > 0 {
		acc.V[C_NUMALL]++
		if nonBlank {
			acc.V[C_NUM]++
		}
		if nonBlank && fv > 0 {
			acc.V[C_SUMWHT] += fv
			acc.V[C_VX] += fv * x
			if ndim >= 2 {
				acc.V[C_VY] += fv * y
			}
			if ndim >= 3 {
				acc.V[C_VZ] += fv * z
			}
			acc.V[C_NUMWHT]++
		}
		acc.V[C_GX] += x
		if ndim >= 2 {
			acc.V[C_GY] += y
		}
		if ndim >= 3 {
			acc.V[C_GZ] += z
		}
	}
}

// updateExtrema implements spec §4.3.1 step 8's tie-breaking rule: on a
// strict new extremum, reset the count to 1 and the coordinate sums to
// the current pixel; on an equal value, increment the count and add the
// coordinates. Symmetric for min and max.
func updateExtrema(acc *ObjAccum, fv, x, y, z float64, ndim int) {
	switch {
	case fv < acc.CurMinVal:
		acc.CurMinVal = fv
		acc.V[MINVX] = x
		acc.V[MINVNUM] = 1
		if ndim >= 2 {
			acc.V[MINVY] = y
		}
		if ndim >= 3 {
			acc.V[MINVZ] = z
		}
	case fv == acc.CurMinVal:
		acc.V[MINVX] += x
		acc.V[MINVNUM]++
		if ndim >= 2 {
			acc.V[MINVY] += y
		}
		if ndim >= 3 {
			acc.V[MINVZ] += z
		}
	}

	switch {
	case fv > acc.CurMaxVal:
		acc.CurMaxVal = fv
		acc.V[MAXVX] = x
		acc.V[MAXVNUM] = 1
		if ndim >= 2 {
			acc.V[MAXVY] = y
		}
		if ndim >= 3 {
			acc.V[MAXVZ] = z
		}
	case fv == acc.CurMaxVal:
		acc.V[MAXVX] += x
		acc.V[MAXVNUM]++
		if ndim >= 2 {
			acc.V[MAXVY] += y
		}
		if ndim >= 3 {
			acc.V[MAXVZ] += z
		}
	}
}
