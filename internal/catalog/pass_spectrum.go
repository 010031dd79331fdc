package catalog

import "github.com/cwbudde/gnuastro-catalog/internal/catalogimage"

// ParseVectorDim3 is the third streaming pass (spec §4.3.2), run only for
// 3D inputs and only when at least one vector column (AREA_IN_SLICE,
// SUM_IN_SLICE, ERR_IN_SLICE, ...) was requested. It walks a spectral tile
// whose fastest two dimensions match the object's 2D footprint and whose
// slowest dimension spans the full cube depth, filling acc.Vec slice by
// slice.
func ParseVectorDim3(in *Inputs, tile *catalogimage.Tile, objID uint32, acc *ObjAccum, depth int, params Params) {
	if acc.Vec == nil {
		acc.Vec = NewVectorSlice(depth)
	}
	vec := acc.Vec

	strides := catalogimage.Strides(in.Objects.Dims)
	sliceStride := strides[0] // slowest axis is the spectral (z) axis

	spec := catalogimage.NewTile(in.Objects.Dims,
		[]int{0, tile.Start[1], tile.Start[2]},
		[]int{in.Objects.Dims[0], tile.Dsize[1], tile.Dsize[2]})

	for _, strip := range spec.Strips() {
		for i := 0; i < strip.N; i++ {
			flat := strip.Base + i
			slice := flat / sliceStride % in.Objects.Dims[0]

			lbl := in.Objects.Data[flat]
			if lbl != objID {
				continue
			}

			v := in.Values.Data[flat]
			nonBlank := !catalogimage.Blank(v)

			vec.NumAll[slice]++
			if nonBlank {
				vec.Num[slice]++
				vec.Sum[slice] += float64(v)
			}
			if vr, ok := in.stdVarAt(flat, params.Variance); ok {
				vec.SumVar[slice] += vr
			}

			vec.UnionNum[slice] = vec.Num[slice]
			vec.UnionSum[slice] = vec.Sum[slice]
		}
	}

	// "Other" accumulators: pixels in the same projected (y,z) footprint
	// but carrying a different, non-background label, used by the filler
	// to report blended-neighbour contamination per slice.
	for _, strip := range spec.Strips() {
		for i := 0; i < strip.N; i++ {
			flat := strip.Base + i
			slice := flat / sliceStride % in.Objects.Dims[0]

			lbl := in.Objects.Data[flat]
			if lbl == objID || lbl == 0 {
				continue
			}
			v := in.Values.Data[flat]
			vec.OtherNum[slice]++
			if !catalogimage.Blank(v) {
				vec.OtherSum[slice] += float64(v)
			}
			vec.UnionNum[slice]++
			vec.UnionSum[slice] += float64(v)
		}
	}
}
