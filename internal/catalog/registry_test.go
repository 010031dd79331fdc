package catalog

import (
	"testing"

	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

func TestDefineAndAllocateBasic(t *testing.T) {
	r := NewRegistry()
	res, err := r.DefineAndAllocate(
		[]ColumnCode{ColNumber, ColArea, ColSum},
		2, nil, 5, 0, false, DefaultParams(),
	)
	if err != nil {
		t.Fatalf("DefineAndAllocate: %v", err)
	}
	if len(res.ObjCols) != 3 {
		t.Fatalf("expected 3 object columns, got %d", len(res.ObjCols))
	}
	if !res.OIFlag.Has(int(NUM)) {
		t.Fatal("expected NUM to be flagged by AREA/SUM")
	}
}

func TestDefineAndAllocateUnknownColumn(t *testing.T) {
	r := NewRegistry()
	_, err := r.DefineAndAllocate([]ColumnCode{"NOT_A_COLUMN"}, 2, nil, 1, 0, false, DefaultParams())
	if _, ok := err.(*UnknownColumnCodeError); !ok {
		t.Fatalf("expected *UnknownColumnCodeError, got %T: %v", err, err)
	}
}

func TestDefineAndAllocateClumpOnlyWithoutClumpsWarns(t *testing.T) {
	r := NewRegistry()
	res, err := r.DefineAndAllocate([]ColumnCode{ColHostObjID}, 2, nil, 3, 0, false, DefaultParams())
	if err != nil {
		t.Fatalf("DefineAndAllocate: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning for dropped clump-only column, got %v", res.Warnings)
	}
	if len(res.ObjCols) != 0 {
		t.Fatalf("HOST_OBJ_ID must not allocate an object column")
	}
}

func TestDefineAndAllocateOnly3DRejectedFor2D(t *testing.T) {
	r := NewRegistry()
	_, err := r.DefineAndAllocate([]ColumnCode{ColAreaXY}, 2, nil, 1, 0, false, DefaultParams())
	if _, ok := err.(*DimensionMismatchError); !ok {
		t.Fatalf("expected *DimensionMismatchError, got %T: %v", err, err)
	}
}

func TestDefineAndAllocateRAAliasResolvesAgainstWCS(t *testing.T) {
	wcs := &catalogimage.AffineWCS{
		Types: []string{"RA", "DEC"}, Scale: []float64{1, 1}, Offset: []float64{0, 0},
		PixArcsec2: 0.2, HasPixArcsec: true,
	}
	r := NewRegistry()
	res, err := r.DefineAndAllocate([]ColumnCode{ColRA}, 2, wcs, 1, 0, false, DefaultParams())
	if err != nil {
		t.Fatalf("DefineAndAllocate: %v", err)
	}
	if len(res.ObjCols) != 1 || res.ObjCols[0].Meta.Code != ColW1 {
		t.Fatalf("expected RA to resolve to W1, got %+v", res.ObjCols)
	}
}

func TestDefineAndAllocateRAWithoutMatchingAxisFails(t *testing.T) {
	wcs := &catalogimage.AffineWCS{Types: []string{"FREQ"}, Scale: []float64{1}, Offset: []float64{0}}
	r := NewRegistry()
	_, err := r.DefineAndAllocate([]ColumnCode{ColRA}, 1, wcs, 1, 0, false, DefaultParams())
	if _, ok := err.(*UnknownWCSAxisError); !ok {
		t.Fatalf("expected *UnknownWCSAxisError, got %T: %v", err, err)
	}
}

func TestDefineAndAllocateSigmaClipRequiresParams(t *testing.T) {
	r := NewRegistry()
	params := DefaultParams()
	params.SigmaClip = SigmaClipParams{}
	_, err := r.DefineAndAllocate([]ColumnCode{ColSigClipMean}, 2, nil, 1, 0, false, params)
	if _, ok := err.(*MissingSigmaClipParamsError); !ok {
		t.Fatalf("expected *MissingSigmaClipParamsError, got %T: %v", err, err)
	}
}
