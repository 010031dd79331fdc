package catalog

import (
	"fmt"

	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

func oi(s ...ObjSlot) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

func ci(s ...ClumpSlot) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

// registryTable is the static, immutable metadata for every supported
// column (spec §4.1, Column Registry). It is built once at package init
// and never mutated.
var registryTable = buildRegistryTable()

func buildRegistryTable() map[ColumnCode]ColumnMeta {
	t := map[ColumnCode]ColumnMeta{}
	add := func(m ColumnMeta) { t[m.Code] = m }

	add(ColumnMeta{Code: ColNumber, Unit: "count", ObjComment: "running object ID", ClumpComment: "running clump ID",
		Elem: ElemInt64, ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColArea, Unit: "pixel", ObjComment: "number of non-blank labeled pixels",
		ClumpComment: "number of non-blank labeled pixels", Elem: ElemInt64,
		OIDeps: oi(NUM), CIDeps: ci(CNUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColAreaArcsec2, Unit: "arcsec2", ObjComment: "area in arcsec^2",
		Elem: ElemFloat64, RequiresWCS: true, OIDeps: oi(NUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColAreaXY, Unit: "pixel", ObjComment: "projected 2D area (3D only)",
		Elem: ElemInt64, Only3D: true, OIDeps: oi(NUMXY), ValidContexts: CtxObject})

	add(ColumnMeta{Code: ColSum, Unit: "counts", ObjComment: "sum of values", ClumpComment: "sum of values",
		Elem: ElemFloat64, OIDeps: oi(SUM, NUM), CIDeps: ci(CSUM, CNUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColMean, Unit: "counts", ObjComment: "mean value", Elem: ElemFloat64,
		OIDeps: oi(SUM, NUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColStd, Unit: "counts", ObjComment: "standard deviation of values",
		ClumpComment: "standard deviation of values", Elem: ElemFloat64,
		OIDeps: oi(SUM, SUMP2, NUM), CIDeps: ci(CSUM, CSUMP2, CNUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColSB, Unit: "mag/arcsec2", ObjComment: "surface brightness", Elem: ElemFloat64,
		RequiresWCS: true, OIDeps: oi(SUM, NUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColSBError, Unit: "mag/arcsec2", ObjComment: "surface brightness error", Elem: ElemFloat64,
		RequiresWCS: true, OIDeps: oi(SUM, NUM, SUMVAR, NUMVAR), CIDeps: ci(CSUM, CNUM, CSUMVAR, CNUMVAR, RIV_NUM, RIV_SUM),
		ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColMagnitude, Unit: "mag", ObjComment: "magnitude", ClumpComment: "magnitude",
		Elem: ElemFloat64, OIDeps: oi(SUM), CIDeps: ci(CSUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColMagError, Unit: "mag", ObjComment: "magnitude error", Elem: ElemFloat64,
		OIDeps: oi(SUM, NUM, SUMVAR, NUMVAR), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColSN, Unit: "", ObjComment: "signal to noise ratio", ClumpComment: "signal to noise ratio",
		Elem: ElemFloat64, OIDeps: oi(SUM, NUM, SUMVAR, NUMVAR), CIDeps: ci(CSUM, CNUM, CSUMVAR, CNUMVAR, RIV_NUM, RIV_SUM),
		ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColX, Unit: "pixel", ObjComment: "weighted/geometric centre, axis 1", Elem: ElemFloat64,
		OIDeps: oi(VX, SUMWHT, GX, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColY, Unit: "pixel", ObjComment: "weighted/geometric centre, axis 2", Elem: ElemFloat64,
		OIDeps: oi(VY, SUMWHT, GY, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColZ, Unit: "pixel", ObjComment: "weighted/geometric centre, axis 3 (3D only)",
		Elem: ElemFloat64, Only3D: true, OIDeps: oi(VZ, SUMWHT, GZ, NUMALL), ValidContexts: CtxObject})

	add(ColumnMeta{Code: ColGeoX, Unit: "pixel", ObjComment: "geometric centre, axis 1", Elem: ElemFloat64,
		OIDeps: oi(GX, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColGeoY, Unit: "pixel", ObjComment: "geometric centre, axis 2", Elem: ElemFloat64,
		OIDeps: oi(GY, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColGeoZ, Unit: "pixel", ObjComment: "geometric centre, axis 3 (3D only)",
		Elem: ElemFloat64, Only3D: true, OIDeps: oi(GZ, NUMALL), ValidContexts: CtxObject})

	secondOrder := oi(VXX, VYY, VXY, VX, VY, SUMWHT, GX, GY, NUMALL)
	add(ColumnMeta{Code: ColSemiMajor, Unit: "pixel", ObjComment: "semi-major axis", Elem: ElemFloat64,
		OIDeps: secondOrder, ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColSemiMinor, Unit: "pixel", ObjComment: "semi-minor axis", Elem: ElemFloat64,
		OIDeps: secondOrder, ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColAxisRatio, Unit: "", ObjComment: "axis ratio (minor/major)", Elem: ElemFloat64,
		OIDeps: secondOrder, ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColPositionAng, Unit: "deg", ObjComment: "position angle", Elem: ElemFloat64,
		OIDeps: secondOrder, ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColMinValX, Unit: "pixel", ObjComment: "mean x of pixels at the minimum value",
		Elem: ElemFloat64, OIDeps: oi(MINVX, MINVNUM), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColMinValY, Unit: "pixel", ObjComment: "mean y of pixels at the minimum value",
		Elem: ElemFloat64, OIDeps: oi(MINVY, MINVNUM), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColMinValNum, Unit: "count", ObjComment: "number of pixels tied at the minimum value",
		Elem: ElemInt64, OIDeps: oi(MINVNUM), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColMaxValX, Unit: "pixel", ObjComment: "mean x of pixels at the maximum value",
		Elem: ElemFloat64, OIDeps: oi(MAXVX, MAXVNUM), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColMaxValY, Unit: "pixel", ObjComment: "mean y of pixels at the maximum value",
		Elem: ElemFloat64, OIDeps: oi(MAXVY, MAXVNUM), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColMaxValNum, Unit: "count", ObjComment: "number of pixels tied at the maximum value",
		Elem: ElemInt64, OIDeps: oi(MAXVNUM), ValidContexts: CtxObject})

	add(ColumnMeta{Code: ColMedian, Unit: "counts", ObjComment: "median value", ClumpComment: "median value",
		Elem: ElemFloat64, OIDeps: oi(MEDIAN), CIDeps: ci(CMEDIAN), ValidContexts: CtxObject | CtxClump})

	sigclip := oi(SIGCLIPMEAN, SIGCLIPMEDIAN, SIGCLIPSTD, SIGCLIPNUM)
	csigclip := ci(CSIGCLIPMEAN, CSIGCLIPMEDIAN, CSIGCLIPSTD, CSIGCLIPNUM)
	add(ColumnMeta{Code: ColSigClipMean, Unit: "counts", ObjComment: "sigma-clipped mean", Elem: ElemFloat64,
		RequiresSigmaClip: true, OIDeps: sigclip, CIDeps: csigclip, ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColSigClipMed, Unit: "counts", ObjComment: "sigma-clipped median", Elem: ElemFloat64,
		RequiresSigmaClip: true, OIDeps: sigclip, CIDeps: csigclip, ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColSigClipStd, Unit: "counts", ObjComment: "sigma-clipped standard deviation", Elem: ElemFloat64,
		RequiresSigmaClip: true, OIDeps: sigclip, CIDeps: csigclip, ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColSigClipNum, Unit: "count", ObjComment: "number of pixels surviving sigma-clip", Elem: ElemInt64,
		RequiresSigmaClip: true, OIDeps: sigclip, CIDeps: csigclip, ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColHalfSumRad, Unit: "pixel", ObjComment: "half-total-sum radius", Elem: ElemFloat64,
		OIDeps: oi(HALFSUMNUM), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColHalfMaxRad, Unit: "pixel", ObjComment: "half-maximum radius", Elem: ElemFloat64,
		OIDeps: oi(HALFMAXNUM), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColFracMax1Rad, Unit: "pixel", ObjComment: "fraction-of-max radius 1", Elem: ElemFloat64,
		OIDeps: oi(FRACMAX1NUM), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColFracMax2Rad, Unit: "pixel", ObjComment: "fraction-of-max radius 2", Elem: ElemFloat64,
		OIDeps: oi(FRACMAX2NUM), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColFracMax1Sum, Unit: "counts", ObjComment: "sum within fraction-of-max radius 1", Elem: ElemFloat64,
		OIDeps: oi(FRACMAX1SUM), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColFracMax2Sum, Unit: "counts", ObjComment: "sum within fraction-of-max radius 2", Elem: ElemFloat64,
		OIDeps: oi(FRACMAX2SUM), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColRA, Unit: "deg", ObjComment: "right ascension (alias of W1)", Elem: ElemFloat64,
		RequiresWCS: true, OIDeps: oi(VX, SUMWHT, GX, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColDec, Unit: "deg", ObjComment: "declination (alias of W2)", Elem: ElemFloat64,
		RequiresWCS: true, OIDeps: oi(VY, SUMWHT, GY, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColW1, Unit: "deg", ObjComment: "world coordinate, axis 1", Elem: ElemFloat64,
		RequiresWCS: true, OIDeps: oi(VX, SUMWHT, GX, NUMALL), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColW2, Unit: "deg", ObjComment: "world coordinate, axis 2", Elem: ElemFloat64,
		RequiresWCS: true, OIDeps: oi(VY, SUMWHT, GY, NUMALL), ValidContexts: CtxObject | CtxClump})

	add(ColumnMeta{Code: ColUpperLimMag, Unit: "mag", ObjComment: "upper-limit magnitude", Elem: ElemFloat64,
		RequiresUpperLim: true, OIDeps: oi(UPPERLIMIT_B), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColUpperLimSB, Unit: "mag/arcsec2", ObjComment: "upper-limit surface brightness", Elem: ElemFloat64,
		RequiresUpperLim: true, RequiresWCS: true, OIDeps: oi(UPPERLIMIT_S), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColUpperLimQ, Unit: "", ObjComment: "upper-limit quantile", Elem: ElemFloat64,
		RequiresUpperLim: true, OIDeps: oi(UPPERLIMIT_Q), ValidContexts: CtxObject | CtxClump})
	add(ColumnMeta{Code: ColUpperLimSkew, Unit: "", ObjComment: "upper-limit skew", Elem: ElemFloat64,
		RequiresUpperLim: true, OIDeps: oi(UPPERLIMIT_SKEW), ValidContexts: CtxObject | CtxClump})

	// Clump-only columns.
	add(ColumnMeta{Code: ColHostObjID, Unit: "count", ClumpComment: "host object ID", Elem: ElemInt64,
		ValidContexts: CtxClump})
	add(ColumnMeta{Code: ColSumNoRiver, Unit: "counts", ClumpComment: "sum with river background subtracted",
		Elem: ElemFloat64, CIDeps: ci(CSUM, CNUM, RIV_NUM, RIV_SUM), ValidContexts: CtxClump})
	add(ColumnMeta{Code: ColRiverNum, Unit: "count", ClumpComment: "number of river pixels crediting this clump",
		Elem: ElemInt64, CIDeps: ci(RIV_NUM), ValidContexts: CtxClump})
	add(ColumnMeta{Code: ColRiverMean, Unit: "counts", ClumpComment: "mean value of crediting river pixels",
		Elem: ElemFloat64, CIDeps: ci(RIV_NUM, RIV_SUM), ValidContexts: CtxClump})
	add(ColumnMeta{Code: ColRiverSum, Unit: "counts", ClumpComment: "sum of crediting river pixel values",
		Elem: ElemFloat64, CIDeps: ci(RIV_SUM), ValidContexts: CtxClump})

	// Object columns over the union of the object's clump pixels.
	add(ColumnMeta{Code: ColClumpsGeoX, ObjComment: "geometric centre of all clumps in the object, axis 1", Elem: ElemFloat64,
		OIDeps: oi(C_GX, C_NUMALL), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColClumpsGeoY, ObjComment: "geometric centre of all clumps in the object, axis 2", Elem: ElemFloat64,
		OIDeps: oi(C_GY, C_NUMALL), ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColClumpsGeoZ, ObjComment: "geometric centre of all clumps in the object, axis 3 (3D only)",
		Elem: ElemFloat64, Only3D: true, OIDeps: oi(C_GZ, C_NUMALL), ValidContexts: CtxObject})

	add(ColumnMeta{Code: ColAreaInSlice, Unit: "pixel", ObjComment: "area per cube slice", Elem: ElemVecFloat64,
		Only3D: true, ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColSumInSlice, Unit: "counts", ObjComment: "sum per cube slice", Elem: ElemVecFloat64,
		Only3D: true, ValidContexts: CtxObject})
	add(ColumnMeta{Code: ColErrInSlice, Unit: "counts", ObjComment: "sum-variance sqrt per cube slice", Elem: ElemVecFloat64,
		Only3D: true, ValidContexts: CtxObject})

	return t
}

// Column is one allocated output column: metadata plus storage.
type Column struct {
	Meta ColumnMeta
	// Float, Int and Vec hold the column's data; exactly one is non-nil,
	// selected by Meta.Elem.
	Float []float64
	Int   []int64
	Vec   [][]float64
}

// Registry resolves requested column codes against the static metadata
// table, validates them against run shape/params, and produces the
// per-pass dependency bitmaps (spec §4.1).
type Registry struct {
	table map[ColumnCode]ColumnMeta
}

// NewRegistry returns a Registry bound to the built-in metadata table.
func NewRegistry() *Registry { return &Registry{table: registryTable} }

// Lookup returns the metadata for code, or an UnknownColumnCodeError.
func (r *Registry) Lookup(code ColumnCode) (ColumnMeta, error) {
	m, ok := r.table[code]
	if !ok {
		return ColumnMeta{}, &UnknownColumnCodeError{Column: code}
	}
	return m, nil
}

// DefineAndAllocateResult is the output of DefineAndAllocate.
type DefineAndAllocateResult struct {
	ObjCols   []*Column
	ClumpCols []*Column
	OIFlag    *Flags
	CIFlag    *Flags
	// PixelAreaArcsec2 is derived from the WCS once and cached when any
	// surface-brightness-type column was requested.
	PixelAreaArcsec2 float64
	Warnings         []string
}

// DefineAndAllocate resolves requested codes, allocates their output
// columns, and ORs each column's dependency mask into oiflag/ciflag (spec
// §4.1). RA/DEC aliases are resolved to W1/W2 here, against wcs' axis
// types.
func (r *Registry) DefineAndAllocate(
	requested []ColumnCode,
	dims int,
	wcs catalogimage.WCS,
	numObjects, numClumps int,
	hasClumps bool,
	params Params,
) (*DefineAndAllocateResult, error) {
	res := &DefineAndAllocateResult{
		OIFlag: NewFlags(int(numObjSlots)),
		CIFlag: NewFlags(int(numClumpSlots)),
	}

	for _, code := range requested {
		resolved, err := r.resolveAlias(code, wcs)
		if err != nil {
			return nil, err
		}

		meta, err := r.Lookup(resolved)
		if err != nil {
			return nil, err
		}

		if err := r.validate(meta, dims, wcs, params); err != nil {
			return nil, err
		}

		isClumpOnly := meta.ValidContexts == CtxClump
		if isClumpOnly && !hasClumps {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("column %s requires clump labels; no clump image supplied, column dropped", meta.Code))
			continue
		}

		if meta.RequiresWCS && res.PixelAreaArcsec2 == 0 {
			area, ok := wcs.PixelAreaArcsec2()
			if !ok {
				return nil, &MissingWCSError{Column: meta.Code}
			}
			res.PixelAreaArcsec2 = area
		}

		res.OIFlag.SetAll(meta.OIDeps...)

		if meta.validIn(CtxObject) {
			res.ObjCols = append(res.ObjCols, allocateColumn(meta, numObjects))
		}
		if hasClumps && meta.validIn(CtxClump) {
			res.CIFlag.SetAll(meta.CIDeps...)
			res.ClumpCols = append(res.ClumpCols, allocateColumn(meta, numClumps))
		}
	}

	return res, nil
}

func allocateColumn(meta ColumnMeta, n int) *Column {
	col := &Column{Meta: meta}
	switch meta.Elem {
	case ElemInt64:
		col.Int = make([]int64, n)
	case ElemVecFloat64:
		col.Vec = make([][]float64, n)
	default:
		col.Float = make([]float64, n)
	}
	return col
}

// resolveAlias maps RA/DEC to W1/W2 based on the matching axis type string
// in the WCS metadata (case-insensitive exact match). Non-aliased codes
// pass through unchanged.
func (r *Registry) resolveAlias(code ColumnCode, wcs catalogimage.WCS) (ColumnCode, error) {
	var kind string
	switch code {
	case ColRA:
		kind = "RA"
	case ColDec:
		kind = "DEC"
	default:
		return code, nil
	}

	if _, ok := catalogimage.ResolveAxis(wcs, kind); !ok {
		return "", &UnknownWCSAxisError{Alias: kind}
	}
	if code == ColRA {
		return ColW1, nil
	}
	return ColW2, nil
}

func (r *Registry) validate(meta ColumnMeta, dims int, wcs catalogimage.WCS, params Params) error {
	if meta.Only3D && dims != 3 {
		return &DimensionMismatchError{Column: meta.Code, Want: 3, Got: dims}
	}
	if meta.Only2D && dims == 3 {
		return &DimensionMismatchError{Column: meta.Code, Want: 2, Got: dims}
	}
	if meta.RequiresWCS && wcs == nil {
		return &MissingWCSError{Column: meta.Code}
	}
	if meta.RequiresSigmaClip && !params.SigmaClip.Set() {
		return &MissingSigmaClipParamsError{Column: meta.Code}
	}
	if meta.RequiresUpperLim && !params.UpperLimitEnabled {
		return &MissingUpperLimitError{Column: meta.Code}
	}
	return nil
}

// RequestWCSChannel checks that a WCS is attached for a WCS-dependent
// column family (spec §4.1) and returns MissingWCSError otherwise. It
// allocates no companion buffers: world coordinates are computed row by
// row in the filler.
func (r *Registry) RequestWCSChannel(wcs catalogimage.WCS) error {
	if wcs == nil {
		return &MissingWCSError{}
	}
	return nil
}
