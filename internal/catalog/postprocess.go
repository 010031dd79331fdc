package catalog

import "sort"

// PermuteClumpsByHost reorders every clump column's rows so all clumps of
// a given host object appear contiguously, ordered by host object ID, and
// returns the row_start[obj] cumulative offsets a caller needs to slice
// per-object clump ranges out of the permuted columns (spec §4.5's
// clump-row permutation step). hostObjID[i] names clump row i's host,
// before permutation.
func PermuteClumpsByHost(cols []*Column, hostObjID []int64, numObjects int) (rowStart []int, permuted []int64) {
	n := len(hostObjID)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return hostObjID[order[a]] < hostObjID[order[b]]
	})

	permuted = make([]int64, n)
	for newIdx, oldIdx := range order {
		permuted[newIdx] = hostObjID[oldIdx]
	}

	for _, col := range cols {
		permuteColumn(col, order)
	}

	rowStart = make([]int, numObjects+1)
	counts := make([]int, numObjects+1)
	for _, obj := range permuted {
		if obj >= 1 && int(obj) <= numObjects {
			counts[obj]++
		}
	}
	for obj := 1; obj <= numObjects; obj++ {
		rowStart[obj] = rowStart[obj-1] + counts[obj-1]
	}
	// rowStart is 1-indexed by host object ID; rowStart[0] stays 0 and is
	// unused (object IDs start at 1).
	return rowStart, permuted
}

func permuteColumn(col *Column, order []int) {
	switch col.Meta.Elem {
	case ElemInt64:
		out := make([]int64, len(order))
		for newIdx, oldIdx := range order {
			out[newIdx] = col.Int[oldIdx]
		}
		col.Int = out
	case ElemVecFloat64:
		out := make([][]float64, len(order))
		for newIdx, oldIdx := range order {
			out[newIdx] = col.Vec[oldIdx]
		}
		col.Vec = out
	default:
		out := make([]float64, len(order))
		for newIdx, oldIdx := range order {
			out[newIdx] = col.Float[oldIdx]
		}
		col.Float = out
	}
}
