package catalog

import (
	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

// neighbourOffsets returns the flat-index deltas for the connectivity-ndim
// neighbourhood (4-connectivity in 2D / 6-connectivity in 3D - the
// face-adjacent neighbours), used by the river-crediting walk (spec
// §4.3.3).
func neighbourOffsets(dims []int) []int {
	strides := catalogimage.Strides(dims)
	offsets := make([]int, 0, 2*len(dims))
	for _, s := range strides {
		offsets = append(offsets, s, -s)
	}
	return offsets
}

// ParseClumps performs the second streaming pass (spec §4.3.3): labeled
// clump pixels accumulate into their own CI block exactly as an object
// accumulates; river pixels (object-labeled, clump-unlabeled) credit each
// adjacent clump's river statistics at most once per pixel.
func ParseClumps(in *Inputs, tile *catalogimage.Tile, objID uint32, oiFlags, ciFlags *Flags, clumps *ClumpAccums, clumpProjs []*ProjectionBuffer, params Params) {
	if in.Clumps == nil {
		return
	}

	dims := in.Objects.Dims
	strides := catalogimage.Strides(dims)
	ndim := len(tile.Dsize)
	offsets := neighbourOffsets(dims)
	credited := make([]bool, len(offsets)) // reset per river pixel, per spec

	for _, p := range clumpProjs {
		if p != nil {
			p.reset()
		}
	}

	for _, strip := range tile.Strips() {
		objLabels := in.Objects.Data[strip.Base : strip.Base+strip.N]
		clumpLabels := in.Clumps.Data[strip.Base : strip.Base+strip.N]
		for i := 0; i < strip.N; i++ {
			if objLabels[i] != objID {
				continue
			}
			flat := strip.Base + i
			c := clumpLabels[i]

			if c > 0 {
				accumulateClumpPixel(in, tile, flat, strides, ndim, int(c)-1, ciFlags, clumps, clumpProjs, params)
				continue
			}

			creditRiverPixel(in, flat, objID, offsets, credited, clumps, ciFlags)
		}
	}

	for _, p := range clumpProjs {
		if p == nil {
			continue
		}
		// The clump projection buffers use the same byte encoding as the
		// object one, but no clump column reads them, so nothing is swept
		// into CNUMXY/CNUMALLXY here.
		_ = p
	}
}

func accumulateClumpPixel(in *Inputs, tile *catalogimage.Tile, flat int, strides []int, ndim int, clumpIdx int, ciFlags *Flags, clumps *ClumpAccums, clumpProjs []*ProjectionBuffer, params Params) {
	blk := &clumps.Blocks[clumpIdx]

	coord := catalogimage.CoordAt(flat, in.Objects.Dims)
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

	blk.V[CNUMALL]++
	if nonBlank {
		blk.V[CNUM]++
	}

	blk.V[CGX] += x
	if ndim >= 2 {
		blk.V[CGY] += y
	}
	if ndim >= 3 {
		blk.V[CGZ] += z
	}

	sx := x - float64(tile.Start[ndim-1]+1)
	blk.V[CGXX] += sx * sx
	var sy float64
	if ndim >= 2 {
		sy = y - float64(tile.Start[ndim-2]+1)
		blk.V[CGYY] += sy * sy
		blk.V[CGXY] += sx * sy
	}

	fv := float64(v)
	if nonBlank {
		blk.V[CSUM] += fv
		blk.V[CSUMP2] += fv * fv

		if fv > 0 {
			blk.V[CSUMWHT] += fv
			blk.V[CVX] += fv * x
			blk.V[CVXX] += fv * sx * sx
			if ndim >= 2 {
				blk.V[CVY] += fv * y
				blk.V[CVYY] += fv * sy * sy
				blk.V[CVXY] += fv * sx * sy
			}
			if ndim >= 3 {
				blk.V[CVZ] += fv * z
			}
		}

		updateClumpExtrema(blk, fv, x, y, z, ndim)

		if x < blk.V[MINX] || blk.V[CNUM] == 1 {
			blk.V[MINX] = x
		}
		if x > blk.V[MAXX] {
			blk.V[MAXX] = x
		}
		if ndim >= 2 {
			if y < blk.V[MINY] || blk.V[CNUM] == 1 {
				blk.V[MINY] = y
			}
			if y > blk.V[MAXY] {
				blk.V[MAXY] = y
			}
		}
	}

	if sk, ok := in.skyAt(flat); ok {
		blk.V[CNUMSKY]++
		blk.V[CSUMSKY] += sk
	}
	if vr, ok := in.stdVarAt(flat, params.Variance); ok {
		blk.V[CNUMVAR]++
		blk.V[CSUMVAR] += vr
	}

	if clumpIdx < len(clumpProjs) && clumpProjs[clumpIdx] != nil && ndim >= 3 {
		row, col := coord[1]-tile.Start[1], coord[2]-tile.Start[2]
		b := byte(1)
		if nonBlank {
			b = 2
		}
		clumpProjs[clumpIdx].mark(row, col, b)
	}
}

func updateClumpExtrema(blk *ClumpAccum, fv, x, y, z float64, ndim int) {
	switch {
	case fv < blk.CurMinVal:
		blk.CurMinVal = fv
		blk.V[CMINVX] = x
		blk.V[CMINVNUM] = 1
		if ndim >= 2 {
			blk.V[CMINVY] = y
		}
		if ndim >= 3 {
			blk.V[CMINVZ] = z
		}
	case fv == blk.CurMinVal:
		blk.V[CMINVX] += x
		blk.V[CMINVNUM]++
		if ndim >= 2 {
			blk.V[CMINVY] += y
		}
	}

	switch {
	case fv > blk.CurMaxVal:
		blk.CurMaxVal = fv
		blk.V[CMAXVX] = x
		blk.V[CMAXVNUM] = 1
		if ndim >= 2 {
			blk.V[CMAXVY] = y
		}
		if ndim >= 3 {
			blk.V[CMAXVZ] = z
		}
	case fv == blk.CurMaxVal:
		blk.V[CMAXVX] += x
		blk.V[CMAXVNUM]++
		if ndim >= 2 {
			blk.V[CMAXVY] += y
		}
	}
}

// creditRiverPixel walks the connectivity-ndim neighbourhood of a river
// pixel (object-labeled, clump-unlabeled), crediting each distinct
// adjacent clump label at most once (spec §4.3.3, §9's "small scratch
// array reset per river pixel").
func creditRiverPixel(in *Inputs, flat int, objID uint32, offsets []int, credited []bool, clumps *ClumpAccums, ciFlags *Flags) {
	for i := range credited {
		credited[i] = false
	}

	v := in.Values.Data[flat]
	nonBlank := !catalogimage.Blank(v)
	fv := float64(v)

	var varVal float64
	var hasVar bool
	if vr, ok := in.stdVarAt(flat, false); ok {
		varVal, hasVar = vr, true
	}

	// offsets holds (+stride, -stride) per axis; skip a neighbour that
	// would step off the image along that axis instead of wrapping.
	coord := catalogimage.CoordAt(flat, in.Objects.Dims)
	seen := map[uint32]bool{}
	for k, off := range offsets {
		axis := k / 2
		if (k%2 == 0 && coord[axis]+1 >= in.Objects.Dims[axis]) || (k%2 == 1 && coord[axis] == 0) {
			continue
		}
		nflat := flat + off
		if nflat < 0 || nflat >= len(in.Objects.Data) {
			continue
		}
		if in.Objects.Data[nflat] != objID {
			continue
		}
		L := in.Clumps.Data[nflat]
		if L == 0 || seen[L] {
			continue
		}
		seen[L] = true

		blk := &clumps.Blocks[L-1]
		blk.V[RIV_NUM]++
		if nonBlank {
			blk.V[RIV_SUM] += fv
			if fv < blk.V[RIV_MIN] {
				blk.V[RIV_MIN] = fv
			}
			if fv > blk.V[RIV_MAX] {
				blk.V[RIV_MAX] = fv
			}
			if hasVar {
				blk.V[RIV_SUM_VAR] += varVal
			}
		}
	}
}
