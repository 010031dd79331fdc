package catalogimage

import "testing"

func TestStripsFullImage(t *testing.T) {
	dims := []int{3, 4} // 3 rows, 4 cols
	tile := NewTile(dims, []int{0, 0}, []int{3, 4})

	strips := tile.Strips()
	if len(strips) != 3 {
		t.Fatalf("expected 3 strips, got %d", len(strips))
	}
	for i, s := range strips {
		if s.N != 4 {
			t.Errorf("strip %d: expected N=4, got %d", i, s.N)
		}
	}
	if strips[0].Base != 0 || strips[1].Base != 4 || strips[2].Base != 8 {
		t.Errorf("unexpected strip bases: %+v", strips)
	}
}

func TestStripsSubTile(t *testing.T) {
	dims := []int{5, 5}
	// 2x2 box starting at (1,1)
	tile := NewTile(dims, []int{1, 1}, []int{2, 2})

	strips := tile.Strips()
	if len(strips) != 2 {
		t.Fatalf("expected 2 strips, got %d", len(strips))
	}
	// row 1 starts at offset 1*5+1=6, row 2 at 2*5+1=11
	if strips[0].Base != 6 || strips[0].N != 2 {
		t.Errorf("strip 0 wrong: %+v", strips[0])
	}
	if strips[1].Base != 11 || strips[1].N != 2 {
		t.Errorf("strip 1 wrong: %+v", strips[1])
	}
}

func TestTouchesEdge(t *testing.T) {
	dims := []int{10, 10}
	edge := NewTile(dims, []int{0, 3}, []int{2, 2})
	if !edge.TouchesEdge() {
		t.Error("expected tile touching row 0 to report TouchesEdge")
	}
	interior := NewTile(dims, []int{3, 3}, []int{2, 2})
	if interior.TouchesEdge() {
		t.Error("expected interior tile to not touch edge")
	}
}

func TestCoordAtRoundTrip(t *testing.T) {
	dims := []int{4, 3, 2}
	strides := Strides(dims)
	for flat := 0; flat < 4*3*2; flat++ {
		coord := CoordAt(flat, dims)
		back := 0
		for i, s := range strides {
			back += coord[i] * s
		}
		if back != flat {
			t.Errorf("round trip failed for flat=%d: got coord=%v back=%d", flat, coord, back)
		}
	}
}
