package catalog

import (
	"math"
	"testing"

	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

func flatIdx(dims []int, y, x int) int { return y*dims[1] + x }

func TestRunSingleIsolatedSource(t *testing.T) {
	dims := []int{5, 5}
	values := catalogimage.NewImage(dims)
	objects := catalogimage.NewLabelImage(dims)

	// A 3x3 block of constant value 2 centred at (2,2).
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			idx := flatIdx(dims, y, x)
			values.Data[idx] = 2
			objects.Data[idx] = 1
		}
	}

	cat, warnings, err := Run(RunInputs{
		Values: values, Objects: objects,
		Columns: []ColumnCode{ColNumber, ColArea, ColSum, ColMean, ColGeoX, ColGeoY},
		Params:  DefaultParams(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if cat.NumObjects != 1 {
		t.Fatalf("NumObjects = %d, want 1", cat.NumObjects)
	}

	area := cat.Column(ColArea)
	if area.Int[0] != 9 {
		t.Fatalf("AREA = %d, want 9", area.Int[0])
	}
	sum := cat.Column(ColSum)
	if sum.Float[0] != 18 {
		t.Fatalf("SUM = %v, want 18", sum.Float[0])
	}
	mean := cat.Column(ColMean)
	if mean.Float[0] != 2 {
		t.Fatalf("MEAN = %v, want 2", mean.Float[0])
	}
}

func TestRunTwoNonOverlappingSources(t *testing.T) {
	dims := []int{6, 10}
	values := catalogimage.NewImage(dims)
	objects := catalogimage.NewLabelImage(dims)

	for y := 1; y <= 2; y++ {
		for x := 1; x <= 2; x++ {
			idx := flatIdx(dims, y, x)
			values.Data[idx] = 5
			objects.Data[idx] = 1
		}
	}
	for y := 3; y <= 4; y++ {
		for x := 6; x <= 8; x++ {
			idx := flatIdx(dims, y, x)
			values.Data[idx] = 10
			objects.Data[idx] = 2
		}
	}

	cat, _, err := Run(RunInputs{
		Values: values, Objects: objects,
		Columns: []ColumnCode{ColNumber, ColArea, ColSum},
		Params:  DefaultParams(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cat.NumObjects != 2 {
		t.Fatalf("NumObjects = %d, want 2", cat.NumObjects)
	}

	area := cat.Column(ColArea)
	if area.Int[0] != 4 || area.Int[1] != 6 {
		t.Fatalf("AREA = %v, want [4 6]", area.Int)
	}
	sum := cat.Column(ColSum)
	if sum.Float[0] != 20 || sum.Float[1] != 60 {
		t.Fatalf("SUM = %v, want [20 60]", sum.Float)
	}
}

func TestRunObjectWithClumpsAndRiver(t *testing.T) {
	dims := []int{7, 7}
	values := catalogimage.NewImage(dims)
	objects := catalogimage.NewLabelImage(dims)
	clumps := catalogimage.NewLabelImage(dims)

	// A 5x5 object region, two 1x1 clump peaks at opposite corners, the
	// rest of the object region is unlabeled river.
	for y := 1; y <= 5; y++ {
		for x := 1; x <= 5; x++ {
			idx := flatIdx(dims, y, x)
			values.Data[idx] = 3
			objects.Data[idx] = 1
		}
	}
	peakA := flatIdx(dims, 1, 1)
	peakB := flatIdx(dims, 5, 5)
	values.Data[peakA] = 50
	values.Data[peakB] = 80
	clumps.Data[peakA] = 1
	clumps.Data[peakB] = 2

	cat, _, err := Run(RunInputs{
		Values: values, Objects: objects, Clumps: clumps,
		Columns: []ColumnCode{ColNumber, ColArea, ColSum, ColRiverNum, ColRiverSum, ColHostObjID},
		Params:  DefaultParams(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cat.NumClumps != 2 {
		t.Fatalf("NumClumps = %d, want 2", cat.NumClumps)
	}

	host := cat.ClumpColumn(ColHostObjID)
	for i, h := range host.Int {
		if h != 1 {
			t.Errorf("clump row %d: host = %d, want 1", i, h)
		}
	}

	riverNum := cat.ClumpColumn(ColRiverNum)
	for i, n := range riverNum.Int {
		if n <= 0 {
			t.Errorf("clump row %d: RIVER_NUM = %d, want > 0 (each clump peak has river neighbours)", i, n)
		}
	}
}

func TestRunExtremaTie(t *testing.T) {
	dims := []int{3, 3}
	values := catalogimage.NewImage(dims)
	objects := catalogimage.NewLabelImage(dims)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			idx := flatIdx(dims, y, x)
			objects.Data[idx] = 1
			values.Data[idx] = 1
		}
	}
	// Two pixels tied at the true maximum.
	values.Data[flatIdx(dims, 0, 0)] = 9
	values.Data[flatIdx(dims, 2, 2)] = 9

	cat, _, err := Run(RunInputs{
		Values: values, Objects: objects,
		Columns: []ColumnCode{ColNumber, ColMaxValNum, ColMaxValX, ColMaxValY},
		Params:  DefaultParams(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	num := cat.Column(ColMaxValNum)
	if num.Int[0] != 2 {
		t.Fatalf("MAX_VAL_NUM = %d, want 2 (tie between two pixels)", num.Int[0])
	}
	// Mean coordinate of (1,1) and (3,3) [1-based] is (2,2).
	x := cat.Column(ColMaxValX)
	y := cat.Column(ColMaxValY)
	if math.Abs(x.Float[0]-2) > 1e-9 || math.Abs(y.Float[0]-2) > 1e-9 {
		t.Fatalf("MAX_VAL_X/Y = (%v,%v), want (2,2)", x.Float[0], y.Float[0])
	}
}

func TestRunSigmaClipRequiresParams(t *testing.T) {
	dims := []int{2, 2}
	values := catalogimage.NewImage(dims)
	objects := catalogimage.NewLabelImage(dims)
	for i := range objects.Data {
		objects.Data[i] = 1
	}

	params := DefaultParams()
	params.SigmaClip = SigmaClipParams{}

	_, _, err := Run(RunInputs{
		Values: values, Objects: objects,
		Columns: []ColumnCode{ColSigClipMean},
		Params:  params,
	})
	if err == nil {
		t.Fatal("expected MissingSigmaClipParamsError, got nil")
	}
	if _, ok := err.(*MissingSigmaClipParamsError); !ok {
		t.Fatalf("expected *MissingSigmaClipParamsError, got %T: %v", err, err)
	}
}
