package accumkernel

import (
	"math"
	"math/rand"
	"testing"
)

func TestSumStripMatchesScalarAndWide(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 1000
	values := make([]float32, n)
	labels := make([]uint32, n)
	for i := range values {
		if rng.Float64() < 0.1 {
			values[i] = float32(math.NaN())
		} else {
			values[i] = float32(rng.NormFloat64() * 10)
		}
		labels[i] = uint32(rng.Intn(3))
	}

	const target = uint32(1)
	numS, sumS, sumP2S := sumStripScalar(values, labels, target)
	numW, sumW, sumP2W := sumStripWide(values, labels, target)

	if numS != numW {
		t.Fatalf("num mismatch: scalar=%d wide=%d", numS, numW)
	}
	if math.Abs(sumS-sumW) > 1e-6 {
		t.Fatalf("sum mismatch: scalar=%v wide=%v", sumS, sumW)
	}
	if math.Abs(sumP2S-sumP2W) > 1e-6 {
		t.Fatalf("sumP2 mismatch: scalar=%v wide=%v", sumP2S, sumP2W)
	}
}

func TestSumStripEmpty(t *testing.T) {
	num, sum, sumP2 := SumStrip(nil, nil, 1)
	if num != 0 || sum != 0 || sumP2 != 0 {
		t.Fatalf("expected zero result for empty strip, got (%d,%v,%v)", num, sum, sumP2)
	}
}

func TestSumStripSkipsOtherLabelsAndBlanks(t *testing.T) {
	values := []float32{1, 2, float32(math.NaN()), 4, 5}
	labels := []uint32{1, 2, 1, 1, 3}

	num, sum, sumP2 := SumStrip(values, labels, 1)
	if num != 2 {
		t.Fatalf("num = %d, want 2", num)
	}
	if sum != 5 {
		t.Fatalf("sum = %v, want 5", sum)
	}
	if sumP2 != 17 {
		t.Fatalf("sumP2 = %v, want 17", sumP2)
	}
}
