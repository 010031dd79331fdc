package catalog

import "math"

// ObjSlot indexes the fixed-length object accumulator vector (OI), spec
// §3. The order matches the spec's enumeration; index values are not
// semantically meaningful beyond "a stable slot number".
type ObjSlot int

const (
	NUM ObjSlot = iota
	NUMALL
	NUMXY
	NUMALLXY
	NUMWHT
	SUM
	SUMP2
	SUM_VAR
	SUM_VAR_NUM
	SUMWHT
	VX
	VY
	VZ
	VXX
	VYY
	VXY
	GX
	GY
	GZ
	GXX
	GYY
	GXY
	MINVX
	MINVY
	MINVZ
	MINVNUM
	MAXVX
	MAXVY
	MAXVZ
	MAXVNUM
	MEDIAN
	MAXIMUM
	HALFSUMNUM
	HALFMAXNUM
	HALFMAXSUM
	FRACMAX1NUM
	FRACMAX1SUM
	FRACMAX2NUM
	FRACMAX2SUM
	SIGCLIPNUM
	SIGCLIPMEAN
	SIGCLIPMEDIAN
	SIGCLIPSTD
	NUMSKY
	SUMSKY
	NUMVAR
	SUMVAR
	UPPERLIMIT_B
	UPPERLIMIT_S
	UPPERLIMIT_Q
	UPPERLIMIT_SKEW
	C_NUM
	C_SUM
	C_NUMALL
	C_NUMWHT
	C_SUMWHT
	C_VX
	C_VY
	C_VZ
	C_GX
	C_GY
	C_GZ
	numObjSlots // sentinel: total slot count
)

// ClumpSlot indexes the CI accumulator vector. It mirrors the OI schema
// (minus the UPPERLIMIT_* slots and the object-only clump-fingerprint C_*
// fields, which have no meaning for a clump) plus the river and per-clump
// extrema slots (spec
// §3, "Accumulator vector - clump").
type ClumpSlot int

const (
	CNUM ClumpSlot = iota
	CNUMALL
	CNUMXY
	CNUMALLXY
	CNUMWHT
	CSUM
	CSUMP2
	CSUM_VAR
	CSUM_VAR_NUM
	CSUMWHT
	CVX
	CVY
	CVZ
	CVXX
	CVYY
	CVXY
	CGX
	CGY
	CGZ
	CGXX
	CGYY
	CGXY
	CMINVX
	CMINVY
	CMINVZ
	CMINVNUM
	CMAXVX
	CMAXVY
	CMAXVZ
	CMAXVNUM
	CMEDIAN
	CMAXIMUM
	CHALFSUMNUM
	CHALFMAXNUM
	CHALFMAXSUM
	CFRACMAX1NUM
	CFRACMAX1SUM
	CFRACMAX2NUM
	CFRACMAX2SUM
	CSIGCLIPNUM
	CSIGCLIPMEAN
	CSIGCLIPMEDIAN
	CSIGCLIPSTD
	CNUMSKY
	CSUMSKY
	CNUMVAR
	CSUMVAR
	RIV_NUM
	RIV_SUM
	RIV_SUM_VAR
	RIV_MIN
	RIV_MAX
	MINX
	MAXX
	MINY
	MAXY
	MINZ
	MAXZ
	numClumpSlots
)

// Flags is a fixed-size dependency bitmap over ObjSlot/ClumpSlot indices,
// built once by the registry and consulted on every labeled pixel by the
// pass engine (spec §4.1/§9: "The dependency mask replaces today's manual
// oiflag[X] = 1 bookkeeping").
type Flags struct {
	bits []bool
}

// NewFlags allocates a dependency bitmap with room for n slots.
func NewFlags(n int) *Flags { return &Flags{bits: make([]bool, n)} }

// Set marks slot i as required.
func (f *Flags) Set(i int) { f.bits[i] = true }

// SetAll marks every slot in ids as required.
func (f *Flags) SetAll(ids ...int) {
	for _, i := range ids {
		f.bits[i] = true
	}
}

// Has reports whether slot i is required.
func (f *Flags) Has(i int) bool { return f.bits[i] }

// Any reports whether any slot is required.
func (f *Flags) Any() bool {
	for _, b := range f.bits {
		if b {
			return true
		}
	}
	return false
}

// VectorSlice holds one per-slice accumulator column for 3D vector
// columns (spec §3, "Vector columns"): heap-allocated, attached to the
// object's OI, one value per input slice.
type VectorSlice struct {
	Num        []float64
	NumAll     []float64
	Sum        []float64
	SumVar     []float64
	OtherNum   []float64 // in-projection, different label
	OtherSum   []float64
	UnionNum   []float64 // union of target + other
	UnionSum   []float64
}

// NewVectorSlice allocates per-slice accumulators for a cube of the given
// depth.
func NewVectorSlice(depth int) *VectorSlice {
	mk := func() []float64 { return make([]float64, depth) }
	return &VectorSlice{
		Num: mk(), NumAll: mk(), Sum: mk(), SumVar: mk(),
		OtherNum: mk(), OtherSum: mk(), UnionNum: mk(), UnionSum: mk(),
	}
}

// ObjAccum is the object accumulator (OI) owned by exactly one worker for
// the lifetime of one object (spec §4.2). Re-used (zeroed) between
// objects processed by the same worker.
type ObjAccum struct {
	V     [numObjSlots]float64
	Shift []int // first-pixel coordinate of the object's tile

	// CurMinVal/CurMaxVal track the running value extremum itself so the
	// tie-breaking rule (spec §4.3.1 step 8) can detect "strictly
	// extends" vs "ties". The OI schema only stores the *coordinate sums*
	// of pixels at the extremum (MINVX.../MAXVX...), not the value, so
	// these two fields are per-object scratch, not part of the raw
	// accumulator vector proper.
	CurMinVal, CurMaxVal float64

	Vec *VectorSlice // non-nil only for 3D vector-column requests

	// Scratch buffer for the order-based pass; re-used across objects on
	// the same worker, grown as needed, never shrunk (avoids repeated
	// heap churn in the hot path).
	valueBuf []float64
}

// Reset zeroes the accumulator and re-initialises extrema slots to
// sentinel infinities, ready for the next object.
func (a *ObjAccum) Reset(shift []int) {
	for i := range a.V {
		a.V[i] = 0
	}
	a.CurMinVal = math.Inf(1)
	a.CurMaxVal = math.Inf(-1)
	a.Shift = shift
	a.Vec = nil
	a.valueBuf = a.valueBuf[:0]
}

// ClumpAccum is one clump's CI accumulator block.
type ClumpAccum struct {
	V [numClumpSlots]float64

	// See ObjAccum.CurMinVal/CurMaxVal: scratch for the extremum
	// tie-break rule, not part of the raw accumulator schema.
	CurMinVal, CurMaxVal float64

	valueBuf []float64
}

// ClumpAccums is the dynamically-sized CI table for all clumps in one
// object (spec §4.2: "CI is dynamically sized per object").
type ClumpAccums struct {
	Blocks []ClumpAccum
}

// NewClumpAccums allocates n zeroed clump blocks with extrema slots set to
// sentinel infinities.
func NewClumpAccums(n int) *ClumpAccums {
	blocks := make([]ClumpAccum, n)
	for i := range blocks {
		blocks[i].CurMinVal = math.Inf(1)
		blocks[i].CurMaxVal = math.Inf(-1)
		blocks[i].V[RIV_MIN] = math.Inf(1)
		blocks[i].V[RIV_MAX] = math.Inf(-1)
		blocks[i].V[MINX], blocks[i].V[MINY], blocks[i].V[MINZ] = math.Inf(1), math.Inf(1), math.Inf(1)
		blocks[i].V[MAXX], blocks[i].V[MAXY], blocks[i].V[MAXZ] = math.Inf(-1), math.Inf(-1), math.Inf(-1)
	}
	return &ClumpAccums{Blocks: blocks}
}
