package orderstats

import "testing"

func TestComputeEmpty(t *testing.T) {
	r := Compute(nil, SigmaClip{Multiplier: 3, Tolerance: 0.01, MaxIters: 5}, FracMax{Frac1: 0.5, Frac2: 0.25})
	if r.Max != 0 || r.Median != 0 || r.SigClipNum != 0 {
		t.Fatalf("expected zero result for empty input, got %+v", r)
	}
}

func TestComputeBasic(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	r := Compute(values, SigmaClip{Multiplier: 3, Tolerance: 0.01, MaxIters: 5}, FracMax{Frac1: 0.5, Frac2: 0.25})

	if r.Max != 10 {
		t.Fatalf("Max = %v, want 10", r.Max)
	}
	if r.Median < 5 || r.Median > 6 {
		t.Fatalf("Median = %v, want between 5 and 6", r.Median)
	}
	if r.FracMax1Num == 0 {
		t.Fatalf("expected at least one pixel at or above 50%% of max")
	}
	if r.HalfSumNum == 0 || r.HalfSumNum > int64(len(values)) {
		t.Fatalf("HalfSumNum = %d out of range", r.HalfSumNum)
	}
}

func TestSigmaClipRemovesOutlier(t *testing.T) {
	values := []float64{10, 11, 9, 10, 12, 9, 11, 1000}
	r := Compute(values, SigmaClip{Multiplier: 2, Tolerance: 0.001, MaxIters: 10}, FracMax{Frac1: 0.5, Frac2: 0.25})

	if r.SigClipNum >= int64(len(values)) {
		t.Fatalf("expected the outlier to be clipped, SigClipNum = %d", r.SigClipNum)
	}
	if r.SigClipMean > 50 {
		t.Fatalf("SigClipMean = %v, outlier was not clipped", r.SigClipMean)
	}
}

func TestThresholdCountMonotonic(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	nLow, _ := thresholdCount(sorted, 1)
	nHigh, _ := thresholdCount(sorted, 4)
	if nHigh > nLow {
		t.Fatalf("higher threshold should not select more pixels: nLow=%d nHigh=%d", nLow, nHigh)
	}
}
