// Package orderstats computes the order-based (sort-dependent) per-object
// statistics of the pass engine's fourth pass (spec §4.3.4): the median,
// sigma-clipped mean/median/std, and the fraction-of-maximum and
// half-sum/half-maximum pixel counts. Unlike the streaming accumulators in
// the rest of the engine, these require the full sorted pixel-value list,
// so they run once per object after the streaming passes complete.
package orderstats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Result holds every order-based column value for one object or clump.
type Result struct {
	Median float64
	Max    float64

	HalfSumNum int64
	HalfMaxNum int64
	HalfMaxSum float64

	FracMax1Num int64
	FracMax1Sum float64
	FracMax2Num int64
	FracMax2Sum float64

	SigClipNum    int64
	SigClipMean   float64
	SigClipMedian float64
	SigClipStd    float64
}

// SigmaClip holds the iterative sigma-clip configuration (spec §5.1's
// Params.SigmaClip, mirrored here to avoid an import cycle with package
// catalog).
type SigmaClip struct {
	Multiplier float64
	Tolerance  float64
	MaxIters   int
}

// FracMax holds the two fraction-of-maximum thresholds.
type FracMax struct {
	Frac1 float64
	Frac2 float64
}

// Compute sorts values ascending (a copy; the caller's slice is untouched)
// and derives every order-based statistic in one pass over the sorted
// data. values must contain only non-blank pixel values already selected
// for the object/clump (spec §4.3.4 runs after blank pixels are excluded
// by the streaming passes).
func Compute(values []float64, sc SigmaClip, fm FracMax) Result {
	var r Result
	if len(values) == 0 {
		return r
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	r.Median = median(sorted)
	r.Max = sorted[len(sorted)-1]

	r.HalfSumNum, _ = halfSumCount(sorted)
	r.HalfMaxNum, r.HalfMaxSum = thresholdCount(sorted, r.Max/2)
	r.FracMax1Num, r.FracMax1Sum = thresholdCount(sorted, fm.Frac1*r.Max)
	r.FracMax2Num, r.FracMax2Sum = thresholdCount(sorted, fm.Frac2*r.Max)

	r.SigClipNum, r.SigClipMean, r.SigClipMedian, r.SigClipStd = sigmaClip(sorted, sc)

	return r
}

func median(sorted []float64) float64 {
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// halfSumCount returns the number of brightest pixels (from the top of the
// sorted list downward) whose cumulative sum first reaches half of the
// total sum.
func halfSumCount(sorted []float64) (int64, float64) {
	total := 0.0
	for _, v := range sorted {
		total += v
	}
	half := total / 2
	cum := 0.0
	var n int64
	for i := len(sorted) - 1; i >= 0; i-- {
		cum += sorted[i]
		n++
		if cum >= half {
			break
		}
	}
	return n, cum
}

// thresholdCount returns the count and sum of pixels at or above thresh.
func thresholdCount(sorted []float64, thresh float64) (int64, float64) {
	var n int64
	var sum float64
	for _, v := range sorted {
		if v >= thresh {
			n++
			sum += v
		}
	}
	return n, sum
}

// sigmaClip iteratively removes values more than Multiplier standard
// deviations from the mean, recomputing mean/std each round, until the
// fractional change in std falls below Tolerance or MaxIters rounds have
// run (spec §4.3.4's sigma-clipped statistics family).
func sigmaClip(sorted []float64, sc SigmaClip) (num int64, mean, med, std float64) {
	if sc.MaxIters <= 0 {
		sc.MaxIters = 1
	}

	kept := append([]float64(nil), sorted...)
	prevStd := math.Inf(1)

	for iter := 0; iter < sc.MaxIters; iter++ {
		m, s := stat.MeanStdDev(kept, nil)
		lo, hi := m-sc.Multiplier*s, m+sc.Multiplier*s

		next := kept[:0:0]
		for _, v := range kept {
			if v >= lo && v <= hi {
				next = append(next, v)
			}
		}
		if len(next) == 0 || len(next) == len(kept) {
			kept = next
			break
		}
		kept = next

		if prevStd > 0 && !math.IsInf(prevStd, 1) {
			if math.Abs(prevStd-s)/prevStd < sc.Tolerance {
				break
			}
		}
		prevStd = s
	}

	if len(kept) == 0 {
		return 0, 0, 0, 0
	}
	m, s := stat.MeanStdDev(kept, nil)
	sort.Float64s(kept)
	return int64(len(kept)), m, median(kept), s
}
