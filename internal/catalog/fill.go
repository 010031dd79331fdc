package catalog

import (
	"math"

	"github.com/cwbudde/gnuastro-catalog/internal/catalog/orderstats"
	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

// ln10 is used throughout the magnitude/flux-error conversions below
// (d(mag)/d(flux) = -2.5/ln(10)/flux).
const ln10 = 2.302585092994046

// FillObjectRow applies the closed-form column formulas (spec §4.4) to row
// i of every requested object column, reading from the final accumulator
// values and the order-based pass result.
func FillObjectRow(cols []*Column, i int, objID int64, acc *ObjAccum, order orderstats.Result, params Params, pixArcsec2 float64, wcs catalogimage.WCS) error {
	for _, col := range cols {
		if err := fillOne(col, i, objID, acc.V[:], acc.Vec, order, params, pixArcsec2, wcs); err != nil {
			return err
		}
	}
	return nil
}

// FillClumpRow is FillObjectRow's clump-row analogue; clumps have no
// vector columns (AREA_IN_SLICE et al. are object-only, spec §3). The
// river/host-ID columns are clump-only and read the real ClumpAccum
// directly rather than through the shared object/clump view, since their
// backing slots (RIV_NUM, RIV_SUM, ...) have no ObjSlot counterpart to
// remap onto.
func FillClumpRow(cols []*Column, i int, clumpID, hostObjID int64, blk *ClumpAccum, order orderstats.Result, params Params, pixArcsec2 float64, wcs catalogimage.WCS) error {
	v := clumpView(blk.V[:])
	cv := blk.V[:]
	for _, col := range cols {
		switch col.Meta.Code {
		case ColHostObjID:
			col.Int[i] = hostObjID
		case ColSumNoRiver:
			riverMean := safeDiv(cv[RIV_SUM], cv[RIV_NUM])
			col.Float[i] = cv[CSUM] - riverMean*cv[CNUM]
		case ColRiverNum:
			col.Int[i] = int64(cv[RIV_NUM])
		case ColRiverMean:
			col.Float[i] = safeDiv(cv[RIV_SUM], cv[RIV_NUM])
		case ColRiverSum:
			col.Float[i] = cv[RIV_SUM]
		default:
			if err := fillOne(col, i, clumpID, v, nil, order, params, pixArcsec2, wcs); err != nil {
				return err
			}
		}
	}
	return nil
}

// clumpView remaps a ClumpSlot-indexed vector onto the ObjSlot-indexed
// formulas shared between object and clump rows, since the two schemas
// agree on field meaning for every slot both define (spec §3: the clump
// accumulator "mirrors" the object one). Only the slots fillOne actually
// reads are remapped.
func clumpView(cv []float64) []float64 {
	v := make([]float64, numObjSlots)
	v[NUM] = cv[CNUM]
	v[NUMALL] = cv[CNUMALL]
	v[NUMXY] = cv[CNUMXY]
	v[SUM] = cv[CSUM]
	v[SUMP2] = cv[CSUMP2]
	v[SUMVAR] = cv[CSUMVAR]
	v[NUMVAR] = cv[CNUMVAR]
	v[SUMWHT] = cv[CSUMWHT]
	v[VX], v[VY], v[VZ] = cv[CVX], cv[CVY], cv[CVZ]
	v[VXX], v[VYY], v[VXY] = cv[CVXX], cv[CVYY], cv[CVXY]
	v[GX], v[GY], v[GZ] = cv[CGX], cv[CGY], cv[CGZ]
	v[MINVX], v[MINVY], v[MINVZ], v[MINVNUM] = cv[CMINVX], cv[CMINVY], cv[CMINVZ], cv[CMINVNUM]
	v[MAXVX], v[MAXVY], v[MAXVZ], v[MAXVNUM] = cv[CMAXVX], cv[CMAXVY], cv[CMAXVZ], cv[CMAXVNUM]
	return v
}

func fillOne(col *Column, i int, id int64, v []float64, vec *VectorSlice, order orderstats.Result, params Params, pixArcsec2 float64, wcs catalogimage.WCS) error {
	switch col.Meta.Code {
	case ColNumber:
		col.Int[i] = id

	case ColArea:
		col.Int[i] = int64(v[NUM])
	case ColAreaArcsec2:
		col.Float[i] = v[NUM] * pixArcsec2
	case ColAreaXY:
		col.Int[i] = int64(v[NUMXY])

	case ColSum:
		col.Float[i] = v[SUM]
	case ColMean:
		col.Float[i] = safeDiv(v[SUM], v[NUM])
	case ColStd:
		col.Float[i] = stdDev(v[SUM], v[SUMP2], v[NUM])

	case ColSB:
		col.Float[i] = surfaceBrightness(v[SUM], v[NUM], pixArcsec2, params.Zeropoint)
	case ColSBError:
		col.Float[i] = fluxErrorToMag(math.Sqrt(v[SUMVAR]), v[SUM])
	case ColMagnitude:
		col.Float[i] = magnitude(v[SUM], params.Zeropoint)
	case ColMagError:
		col.Float[i] = fluxErrorToMag(math.Sqrt(v[SUMVAR]), v[SUM])
	case ColSN:
		col.Float[i] = safeDiv(v[SUM], math.Sqrt(v[SUMVAR]))

	case ColX:
		col.Float[i] = weightedOrGeoCentre(v[VX], v[SUMWHT], v[GX], v[NUMALL])
	case ColY:
		col.Float[i] = weightedOrGeoCentre(v[VY], v[SUMWHT], v[GY], v[NUMALL])
	case ColZ:
		col.Float[i] = weightedOrGeoCentre(v[VZ], v[SUMWHT], v[GZ], v[NUMALL])
	case ColGeoX:
		col.Float[i] = safeDiv(v[GX], v[NUMALL])
	case ColGeoY:
		col.Float[i] = safeDiv(v[GY], v[NUMALL])
	case ColGeoZ:
		col.Float[i] = safeDiv(v[GZ], v[NUMALL])

	case ColSemiMajor, ColSemiMinor, ColAxisRatio, ColPositionAng:
		major, minor, pa := shapeParams(v)
		switch col.Meta.Code {
		case ColSemiMajor:
			col.Float[i] = major
		case ColSemiMinor:
			col.Float[i] = minor
		case ColAxisRatio:
			col.Float[i] = safeDiv(minor, major)
		case ColPositionAng:
			col.Float[i] = pa
		}

	case ColMinValX:
		col.Float[i] = safeDiv(v[MINVX], v[MINVNUM])
	case ColMinValY:
		col.Float[i] = safeDiv(v[MINVY], v[MINVNUM])
	case ColMinValNum:
		col.Int[i] = int64(v[MINVNUM])
	case ColMaxValX:
		col.Float[i] = safeDiv(v[MAXVX], v[MAXVNUM])
	case ColMaxValY:
		col.Float[i] = safeDiv(v[MAXVY], v[MAXVNUM])
	case ColMaxValNum:
		col.Int[i] = int64(v[MAXVNUM])

	case ColMedian:
		col.Float[i] = order.Median
	case ColSigClipMean:
		col.Float[i] = order.SigClipMean
	case ColSigClipMed:
		col.Float[i] = order.SigClipMedian
	case ColSigClipStd:
		col.Float[i] = order.SigClipStd
	case ColSigClipNum:
		col.Int[i] = order.SigClipNum

	case ColHalfSumRad:
		col.Float[i] = radiusFromCount(float64(order.HalfSumNum))
	case ColHalfMaxRad:
		col.Float[i] = radiusFromCount(float64(order.HalfMaxNum))
	case ColFracMax1Rad:
		col.Float[i] = radiusFromCount(float64(order.FracMax1Num))
	case ColFracMax2Rad:
		col.Float[i] = radiusFromCount(float64(order.FracMax2Num))
	case ColFracMax1Sum:
		col.Float[i] = order.FracMax1Sum
	case ColFracMax2Sum:
		col.Float[i] = order.FracMax2Sum

	case ColW1, ColW2:
		x := weightedOrGeoCentre(v[VX], v[SUMWHT], v[GX], v[NUMALL])
		y := weightedOrGeoCentre(v[VY], v[SUMWHT], v[GY], v[NUMALL])
		world, err := wcs.PixToWorld([][]float64{{x, y}})
		if err != nil {
			return err
		}
		if col.Meta.Code == ColW1 {
			col.Float[i] = world[0][0]
		} else {
			col.Float[i] = world[0][1]
		}

	case ColUpperLimMag:
		col.Float[i] = v[UPPERLIMIT_B]
	case ColUpperLimSB:
		col.Float[i] = v[UPPERLIMIT_S]
	case ColUpperLimQ:
		col.Float[i] = v[UPPERLIMIT_Q]
	case ColUpperLimSkew:
		col.Float[i] = v[UPPERLIMIT_SKEW]

	case ColClumpsGeoX:
		col.Float[i] = safeDiv(v[C_GX], v[C_NUMALL])
	case ColClumpsGeoY:
		col.Float[i] = safeDiv(v[C_GY], v[C_NUMALL])
	case ColClumpsGeoZ:
		col.Float[i] = safeDiv(v[C_GZ], v[C_NUMALL])

	case ColAreaInSlice:
		col.Vec[i] = append([]float64(nil), vec.NumAll...)
	case ColSumInSlice:
		col.Vec[i] = append([]float64(nil), vec.Sum...)
	case ColErrInSlice:
		errs := make([]float64, len(vec.SumVar))
		for j, sv := range vec.SumVar {
			errs[j] = math.Sqrt(sv)
		}
		col.Vec[i] = errs

	default:
		return &UnknownColumnCodeError{Column: col.Meta.Code}
	}
	return nil
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func stdDev(sum, sumP2, num float64) float64 {
	if num == 0 {
		return math.NaN()
	}
	mean := sum / num
	variance := sumP2/num - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func surfaceBrightness(sum, num, pixArcsec2, zeropoint float64) float64 {
	if sum <= 0 || num == 0 || pixArcsec2 <= 0 {
		return math.NaN()
	}
	return -2.5*math.Log10(sum/(num*pixArcsec2)) + zeropoint
}

func magnitude(sum, zeropoint float64) float64 {
	if sum <= 0 {
		return math.NaN()
	}
	return -2.5*math.Log10(sum) + zeropoint
}

func fluxErrorToMag(fluxErr, sum float64) float64 {
	if sum <= 0 || fluxErr < 0 {
		return math.NaN()
	}
	return (2.5 / ln10) * (fluxErr / sum)
}

func weightedOrGeoCentre(weightedSum, weightTotal, geoSum, geoNum float64) float64 {
	if weightTotal > 0 {
		return weightedSum / weightTotal
	}
	return safeDiv(geoSum, geoNum)
}

// shapeParams derives the second-order shape ellipse (spec §4.4's
// "second-order shape parameters") from the weighted central moments. The
// weighted sums already have the tile's shift origin subtracted, so VXX,
// VYY, VXY are (approximately) centred second moments once normalised by
// SUMWHT.
func shapeParams(v []float64) (semiMajor, semiMinor, positionAngleDeg float64) {
	if v[SUMWHT] == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	ixx := v[VXX]/v[SUMWHT] - sq(v[VX]/v[SUMWHT])
	iyy := v[VYY]/v[SUMWHT] - sq(v[VY]/v[SUMWHT])
	ixy := v[VXY]/v[SUMWHT] - (v[VX]/v[SUMWHT])*(v[VY]/v[SUMWHT])

	mean := (ixx + iyy) / 2
	diff := (ixx - iyy) / 2
	root := math.Sqrt(diff*diff + ixy*ixy)

	majSq := mean + root
	minSq := mean - root
	if minSq < 0 {
		minSq = 0
	}
	semiMajor = math.Sqrt(majSq)
	semiMinor = math.Sqrt(minSq)
	positionAngleDeg = 0.5 * math.Atan2(2*ixy, ixx-iyy) * 180 / math.Pi
	return
}

func sq(x float64) float64 { return x * x }

// radiusFromCount converts a pixel count into the equivalent circular
// radius (area = pi*r^2), used by the half-sum/half-max/frac-max radius
// columns.
func radiusFromCount(n float64) float64 {
	if n <= 0 {
		return 0
	}
	return math.Sqrt(n / math.Pi)
}
