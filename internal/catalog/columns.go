package catalog

// ColumnCode names one supported output column. Codes are plain strings so
// callers/tests read naturally (`catalog.ColSB`, requested as "SB"),
// following the teacher's preference for named string constants over a
// raw numeric enum for anything user-facing.
type ColumnCode string

const (
	ColNumber       ColumnCode = "NUMBER"
	ColArea         ColumnCode = "AREA"
	ColAreaArcsec2  ColumnCode = "AREA_ARCSEC2"
	ColAreaXY       ColumnCode = "AREAXY"
	ColSum          ColumnCode = "SUM"
	ColMean         ColumnCode = "MEAN"
	ColStd          ColumnCode = "STD"
	ColSB           ColumnCode = "SB"
	ColSBError      ColumnCode = "SB_ERROR"
	ColMagnitude    ColumnCode = "MAGNITUDE"
	ColMagError     ColumnCode = "MAG_ERROR"
	ColSN           ColumnCode = "SN"
	ColX            ColumnCode = "X"
	ColY            ColumnCode = "Y"
	ColZ            ColumnCode = "Z"
	ColGeoX         ColumnCode = "GEOX"
	ColGeoY         ColumnCode = "GEOY"
	ColGeoZ         ColumnCode = "GEOZ"
	ColSemiMajor    ColumnCode = "SEMI_MAJOR"
	ColSemiMinor    ColumnCode = "SEMI_MINOR"
	ColAxisRatio    ColumnCode = "AXIS_RATIO"
	ColPositionAng  ColumnCode = "POSITION_ANGLE"
	ColMinValX      ColumnCode = "MIN_VAL_X"
	ColMinValY      ColumnCode = "MIN_VAL_Y"
	ColMinValNum    ColumnCode = "MIN_VAL_NUM"
	ColMaxValX      ColumnCode = "MAX_VAL_X"
	ColMaxValY      ColumnCode = "MAX_VAL_Y"
	ColMaxValNum    ColumnCode = "MAX_VAL_NUM"
	ColMedian       ColumnCode = "MEDIAN"
	ColSigClipMean  ColumnCode = "SIGCLIP_MEAN"
	ColSigClipMed   ColumnCode = "SIGCLIP_MEDIAN"
	ColSigClipStd   ColumnCode = "SIGCLIP_STD"
	ColSigClipNum   ColumnCode = "SIGCLIP_NUM"
	ColHalfSumRad   ColumnCode = "HALF_SUM_RADIUS"
	ColHalfMaxRad   ColumnCode = "HALF_MAX_RADIUS"
	ColFracMax1Rad  ColumnCode = "FRAC_MAX1_RADIUS"
	ColFracMax2Rad  ColumnCode = "FRAC_MAX2_RADIUS"
	ColFracMax1Sum  ColumnCode = "FRAC_MAX1_SUM"
	ColFracMax2Sum  ColumnCode = "FRAC_MAX2_SUM"
	ColRA           ColumnCode = "RA"
	ColDec          ColumnCode = "DEC"
	ColW1           ColumnCode = "W1"
	ColW2           ColumnCode = "W2"
	ColUpperLimMag  ColumnCode = "UPPERLIMIT_MAG"
	ColUpperLimSB   ColumnCode = "UPPERLIMIT_SB"
	ColUpperLimQ    ColumnCode = "UPPERLIMIT_QUANT"
	ColUpperLimSkew ColumnCode = "UPPERLIMIT_SKEW"

	// Clump-only columns.
	ColHostObjID    ColumnCode = "HOST_OBJ_ID"
	ColSumNoRiver   ColumnCode = "SUM_NORIVER"
	ColRiverNum     ColumnCode = "RIVER_NUM"
	ColRiverMean    ColumnCode = "RIVER_MEAN"
	ColRiverSum     ColumnCode = "RIVER_SUM"
	// Object columns measured over the union of the object's clump pixels.
	ColClumpsGeoX   ColumnCode = "CLUMPSGEOX"
	ColClumpsGeoY   ColumnCode = "CLUMPSGEOY"
	ColClumpsGeoZ   ColumnCode = "CLUMPSGEOZ"

	// 3D-only vector columns (spec §3 "Vector columns").
	ColAreaInSlice ColumnCode = "AREA_IN_SLICE"
	ColSumInSlice  ColumnCode = "SUM_IN_SLICE"
	ColErrInSlice  ColumnCode = "ERR_IN_SLICE"
)

// ElemType is the output element type of a column.
type ElemType int

const (
	ElemFloat64 ElemType = iota
	ElemInt64
	ElemVecFloat64 // one float64 per input slice (3D only)
)

// Context selects whether a column is valid for objects, clumps, or both.
type Context int

const (
	CtxObject Context = 1 << iota
	CtxClump
)

// ColumnMeta is the immutable metadata the registry holds for one column
// (spec §4.1).
type ColumnMeta struct {
	Code    ColumnCode
	Unit    string
	// Comment is given separately per context and may be empty; the
	// contexts a column is valid in are set by ValidContexts alone.
	ObjComment   string
	ClumpComment string
	Elem         ElemType
	// Format mirrors a printf-style display descriptor (width.precision).
	Format string

	RequiresWCS       bool
	RequiresSigmaClip bool
	RequiresUpperLim  bool
	Only3D            bool
	Only2D            bool

	// OIDeps/CIDeps are the raw-accumulator slot indices this column
	// depends on, ORed into the per-pass dependency bitmap at
	// registration time.
	OIDeps []int
	CIDeps []int

	ValidContexts Context
}

func (m ColumnMeta) validIn(ctx Context) bool { return m.ValidContexts&ctx != 0 }
