package catalog

import (
	"sync"

	"github.com/cwbudde/gnuastro-catalog/internal/catalog/orderstats"
	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

// ComputeTiles scans a label image once and returns the minimal enclosing
// tile for every object ID 1..MaxLabel (spec §4.2, "each object gets
// exactly one bounding-box tile"). Object IDs with no pixels get a
// zero-sized tile at the origin; callers should treat NUM==0 as "skip".
func ComputeTiles(labels *catalogimage.LabelImage) []*catalogimage.Tile {
	n := int(labels.MaxLabel())
	ndim := len(labels.Dims)

	mins := make([][]int, n+1)
	maxs := make([][]int, n+1)
	for i := range mins {
		mins[i] = make([]int, ndim)
		maxs[i] = make([]int, ndim)
		for d := 0; d < ndim; d++ {
			mins[i][d] = labels.Dims[d]
			maxs[i][d] = -1
		}
	}

	for flat, lbl := range labels.Data {
		if lbl == 0 {
			continue
		}
		coord := catalogimage.CoordAt(flat, labels.Dims)
		m, M := mins[lbl], maxs[lbl]
		for d := 0; d < ndim; d++ {
			if coord[d] < m[d] {
				m[d] = coord[d]
			}
			if coord[d] > M[d] {
				M[d] = coord[d]
			}
		}
	}

	tiles := make([]*catalogimage.Tile, n)
	for id := 1; id <= n; id++ {
		m, M := mins[id], maxs[id]
		dsize := make([]int, ndim)
		start := make([]int, ndim)
		if M[0] < 0 {
			// No pixels carry this ID; emit an empty tile at the origin.
			dsize = make([]int, ndim)
			tiles[id-1] = catalogimage.NewTile(labels.Dims, start, dsize)
			continue
		}
		for d := 0; d < ndim; d++ {
			start[d] = m[d]
			dsize[d] = M[d] - m[d] + 1
		}
		tiles[id-1] = catalogimage.NewTile(labels.Dims, start, dsize)
	}
	return tiles
}

// countClumps returns the number of distinct clump labels (1..max) present
// within the object's tile.
func countClumps(in *Inputs, tile *catalogimage.Tile, objID uint32) int {
	if in.Clumps == nil {
		return 0
	}
	var maxLbl uint32
	for _, strip := range tile.Strips() {
		objLabels := in.Objects.Data[strip.Base : strip.Base+strip.N]
		clumpLabels := in.Clumps.Data[strip.Base : strip.Base+strip.N]
		for i, o := range objLabels {
			if o != objID {
				continue
			}
			if c := clumpLabels[i]; c > maxLbl {
				maxLbl = c
			}
		}
	}
	return int(maxLbl)
}

// collectValues gathers the non-blank pixel values belonging to objID
// within tile, for the order-based pass (spec §4.3.4 runs on the full
// sorted value list, not a streaming accumulator).
func collectValues(in *Inputs, tile *catalogimage.Tile, objID uint32, buf []float64) []float64 {
	out := buf[:0]
	for _, strip := range tile.Strips() {
		values := in.Values.Data[strip.Base : strip.Base+strip.N]
		labels := in.Objects.Data[strip.Base : strip.Base+strip.N]
		for i, lbl := range labels {
			if lbl != objID {
				continue
			}
			if v := values[i]; !catalogimage.Blank(v) {
				out = append(out, float64(v))
			}
		}
	}
	return out
}

// collectClumpValues is collectValues restricted to one clump's pixels
// inside an object's tile.
func collectClumpValues(in *Inputs, tile *catalogimage.Tile, objID uint32, clumpLbl uint32, buf []float64) []float64 {
	out := buf[:0]
	for _, strip := range tile.Strips() {
		values := in.Values.Data[strip.Base : strip.Base+strip.N]
		objLabels := in.Objects.Data[strip.Base : strip.Base+strip.N]
		clumpLabels := in.Clumps.Data[strip.Base : strip.Base+strip.N]
		for i, o := range objLabels {
			if o != objID || clumpLabels[i] != clumpLbl {
				continue
			}
			if v := values[i]; !catalogimage.Blank(v) {
				out = append(out, float64(v))
			}
		}
	}
	return out
}

// workerState is the per-goroutine mutable scratch the driver hands to
// exactly one worker for its lifetime (spec §4.2: "no accumulator is ever
// touched by more than one worker at a time"). Re-used across objects
// assigned to the same worker to avoid per-object heap churn.
type workerState struct {
	acc       *ObjAccum
	proj      *ProjectionBuffer
	valueBuf  []float64
	clumpBuf  []float64
}

// clumpCursor hands out contiguous row ranges in the (not yet permuted)
// clump column arrays under its own mutex (spec §4.5, "one mutex-guarded
// cursor"). Driver.Run's host-ID bookkeeping and the WarningSink each hold
// a separate lock.
type clumpCursor struct {
	mu  sync.Mutex
	pos int
}

func (c *clumpCursor) reserve(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.pos
	c.pos += n
	return start
}

// Driver holds everything a Run needs to walk all objects with a fixed
// worker pool (spec §4.5).
type Driver struct {
	In       *Inputs
	Registry *DefineAndAllocateResult
	Params   Params
	WCS      catalogimage.WCS
	Limiter  UpperLimiter
	Warnings *WarningSink

	hostObjID []int64 // host object ID per (pre-permutation) clump row
}

// NewDriver wires a Driver from already-allocated columns and flags.
func NewDriver(in *Inputs, reg *DefineAndAllocateResult, params Params, wcs catalogimage.WCS, limiter UpperLimiter) *Driver {
	if limiter == nil {
		limiter = noUpperLimiter{}
	}
	return &Driver{In: in, Registry: reg, Params: params, WCS: wcs, Limiter: limiter, Warnings: &WarningSink{}}
}

// Run walks every object in in.Tiles across a fixed pool of Params.NumThreads
// workers, filling every column in d.Registry and permuting the clump
// columns into host-object order before returning.
func (d *Driver) Run() ([]Warning, error) {
	numObjects := len(d.In.Tiles)
	numThreads := d.Params.NumThreads
	if numThreads < 1 {
		numThreads = 1
	}

	cursor := &clumpCursor{}
	hostObjID := make([]int64, 0, numObjects)
	var hostMu sync.Mutex

	jobs := make(chan int, numObjects)
	for i := 0; i < numObjects; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	errCh := make(chan error, numThreads)

	for w := 0; w < numThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws := &workerState{acc: &ObjAccum{}}
			for idx := range jobs {
				start, host, err := d.processObject(idx, ws, cursor)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					continue
				}
				if len(host) > 0 {
					hostMu.Lock()
					hostObjID = growHostSlice(hostObjID, start+len(host))
					copy(hostObjID[start:start+len(host)], host)
					hostMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	if len(d.Registry.ClumpCols) > 0 {
		PermuteClumpsByHost(d.Registry.ClumpCols, hostObjID, numObjects)
	}

	return d.Warnings.All(), nil
}

func growHostSlice(s []int64, n int) []int64 {
	for len(s) < n {
		s = append(s, 0)
	}
	return s
}

// processObject runs the full per-object pipeline (streaming passes,
// order-based pass, column fill) and, if the object has clumps, reserves
// and fills their rows, returning the host object ID recorded for each
// reserved clump row.
func (d *Driver) processObject(idx int, ws *workerState, cursor *clumpCursor) (int, []int64, error) {
	objID := uint32(idx + 1)
	tile := d.In.Tiles[idx]

	ws.acc.Reset(tile.ShiftOrigin())

	ndim := len(tile.Dsize)
	if ndim >= 3 {
		ws.proj = NewProjectionBuffer(tile.Dsize)
	} else {
		ws.proj = nil
	}

	ParseObjects(d.In, tile, objID, d.Registry.OIFlag, ws.acc, ws.proj, d.Params)

	numClumps := countClumps(d.In, tile, objID)
	var clumps *ClumpAccums
	var clumpProjs []*ProjectionBuffer
	if numClumps > 0 {
		clumps = NewClumpAccums(numClumps)
		if ndim >= 3 {
			clumpProjs = make([]*ProjectionBuffer, numClumps)
			for i := range clumpProjs {
				clumpProjs[i] = NewProjectionBuffer(tile.Dsize)
			}
		}
		ParseClumps(d.In, tile, objID, d.Registry.OIFlag, d.Registry.CIFlag, clumps, clumpProjs, d.Params)
	}

	if ndim >= 3 && needsVectorCols(d.Registry.ObjCols) {
		ParseVectorDim3(d.In, tile, objID, ws.acc, d.In.Objects.Dims[0], d.Params)
	}

	ws.valueBuf = collectValues(d.In, tile, objID, ws.valueBuf)
	order := orderstats.Compute(ws.valueBuf, orderstats.SigmaClip{
		Multiplier: d.Params.SigmaClip.Multiplier,
		Tolerance:  d.Params.SigmaClip.Tolerance,
		MaxIters:   d.Params.SigmaClip.MaxIters,
	}, orderstats.FracMax{Frac1: d.Params.FracMax.Frac1, Frac2: d.Params.FracMax.Frac2})

	if d.Params.UpperLimitEnabled {
		sky := safeDiv(ws.acc.V[SUMSKY], ws.acc.V[NUMSKY])
		noise := safeDiv(ws.acc.V[SUMVAR], ws.acc.V[NUMVAR])
		mag, sb, q, skew, err := d.Limiter.UpperLimit(int64(objID), ws.acc.V[NUM], sky, noise)
		if err != nil {
			d.Warnings.Add(int64(objID), "upper-limit estimation failed: %v", err)
		} else {
			ws.acc.V[UPPERLIMIT_B] = mag
			ws.acc.V[UPPERLIMIT_S] = sb
			ws.acc.V[UPPERLIMIT_Q] = q
			ws.acc.V[UPPERLIMIT_SKEW] = skew
		}
	}

	if err := FillObjectRow(d.Registry.ObjCols, idx, int64(objID), ws.acc, order, d.Params, d.Registry.PixelAreaArcsec2, d.WCS); err != nil {
		return 0, nil, err
	}

	if numClumps == 0 || len(d.Registry.ClumpCols) == 0 {
		return 0, nil, nil
	}

	start := cursor.reserve(numClumps)
	host := make([]int64, numClumps)
	for c := 0; c < numClumps; c++ {
		blk := &clumps.Blocks[c]
		ws.clumpBuf = collectClumpValues(d.In, tile, objID, uint32(c+1), ws.clumpBuf)
		cOrder := orderstats.Compute(ws.clumpBuf, orderstats.SigmaClip{
			Multiplier: d.Params.SigmaClip.Multiplier,
			Tolerance:  d.Params.SigmaClip.Tolerance,
			MaxIters:   d.Params.SigmaClip.MaxIters,
		}, orderstats.FracMax{Frac1: d.Params.FracMax.Frac1, Frac2: d.Params.FracMax.Frac2})

		row := start + c
		host[c] = int64(objID)
		if err := FillClumpRow(d.Registry.ClumpCols, row, int64(c+1), int64(objID), blk, cOrder, d.Params, d.Registry.PixelAreaArcsec2, d.WCS); err != nil {
			return 0, nil, err
		}
	}

	return start, host, nil
}

func needsVectorCols(cols []*Column) bool {
	for _, c := range cols {
		if c.Meta.Elem == ElemVecFloat64 {
			return true
		}
	}
	return false
}
