package catalog

import (
	"math"
	"testing"
)

func TestObjAccumResetInitialisesExtrema(t *testing.T) {
	acc := &ObjAccum{}
	acc.V[SUM] = 42
	acc.Reset([]int{0, 0})

	if acc.V[SUM] != 0 {
		t.Fatalf("Reset did not zero V: SUM = %v", acc.V[SUM])
	}
	if !math.IsInf(acc.CurMinVal, 1) {
		t.Fatalf("CurMinVal = %v, want +Inf", acc.CurMinVal)
	}
	if !math.IsInf(acc.CurMaxVal, -1) {
		t.Fatalf("CurMaxVal = %v, want -Inf", acc.CurMaxVal)
	}
}

func TestNewClumpAccumsInitialisesExtrema(t *testing.T) {
	blocks := NewClumpAccums(3)
	if len(blocks.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks.Blocks))
	}
	for i, b := range blocks.Blocks {
		if !math.IsInf(b.CurMinVal, 1) || !math.IsInf(b.CurMaxVal, -1) {
			t.Errorf("block %d: extrema not initialised: min=%v max=%v", i, b.CurMinVal, b.CurMaxVal)
		}
		if !math.IsInf(b.V[RIV_MIN], 1) || !math.IsInf(b.V[RIV_MAX], -1) {
			t.Errorf("block %d: river extrema not initialised", i)
		}
	}
}

func TestFlagsSetAndHas(t *testing.T) {
	f := NewFlags(int(numObjSlots))
	if f.Any() {
		t.Fatal("fresh flags should report Any() == false")
	}
	f.SetAll(int(SUM), int(NUM))
	if !f.Has(int(SUM)) || !f.Has(int(NUM)) {
		t.Fatal("SetAll did not set requested slots")
	}
	if f.Has(int(GX)) {
		t.Fatal("unrelated slot should not be set")
	}
	if !f.Any() {
		t.Fatal("Any() should be true once a slot is set")
	}
}

func TestUpdateExtremaTieBreak(t *testing.T) {
	acc := &ObjAccum{}
	acc.Reset(nil)

	updateExtrema(acc, 5, 1, 1, 0, 2)
	if acc.V[MAXVNUM] != 1 || acc.V[MAXVX] != 1 {
		t.Fatalf("first observation wrong: num=%v x=%v", acc.V[MAXVNUM], acc.V[MAXVX])
	}

	// A strictly larger value resets the tie set.
	updateExtrema(acc, 9, 2, 2, 0, 2)
	if acc.V[MAXVNUM] != 1 || acc.V[MAXVX] != 2 {
		t.Fatalf("reset on strict improve failed: num=%v x=%v", acc.V[MAXVNUM], acc.V[MAXVX])
	}

	// An equal value extends the tie set.
	updateExtrema(acc, 9, 3, 2, 0, 2)
	if acc.V[MAXVNUM] != 2 || acc.V[MAXVX] != 5 {
		t.Fatalf("tie accumulation failed: num=%v x=%v", acc.V[MAXVNUM], acc.V[MAXVX])
	}
}
