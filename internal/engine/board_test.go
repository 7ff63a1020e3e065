package engine

import (
	"encoding/json"
	"testing"
)

func TestCriticalMassGeometry(t *testing.T) {
	cases := []struct {
		name     string
		row, col int
		want     int
	}{
		{name: "top-left corner", row: 0, col: 0, want: 2},
		{name: "bottom-right corner", row: Rows - 1, col: Cols - 1, want: 2},
		{name: "top edge", row: 0, col: 4, want: 3},
		{name: "left edge", row: 7, col: 0, want: 3},
		{name: "interior", row: 7, col: 4, want: 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CriticalMass(tc.row, tc.col); got != tc.want {
				t.Fatalf("CriticalMass(%d,%d) = %d, want %d", tc.row, tc.col, got, tc.want)
			}
		})
	}
}

func TestNeighborsStayInBounds(t *testing.T) {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			for _, n := range Neighbors(r, c) {
				if !InBounds(n[0], n[1]) {
					t.Fatalf("Neighbors(%d,%d) produced out-of-bounds %v", r, c, n)
				}
			}
		}
	}
}

func TestApplyMove_PlacementBelowCriticalMass(t *testing.T) {
	b := NewBoard()
	b.ApplyMove(0, 0, 1)

	if b[0][0].Owner != 1 || b[0][0].Count != 1 {
		t.Fatalf("corner after placement = %+v, want owner 1 count 1", b[0][0])
	}
	if b.TotalOrbs() != 1 {
		t.Fatalf("total orbs = %d, want 1", b.TotalOrbs())
	}
}

func TestApplyMove_CornerExplosionDistributes(t *testing.T) {
	b := NewBoard()
	b[0][0] = Cell{Owner: 1, Count: 1}

	b.ApplyMove(0, 0, 1)

	if b[0][0].Count != 0 || b[0][0].Owner != NoPlayer {
		t.Fatalf("exploded corner = %+v, want empty", b[0][0])
	}
	for _, n := range [][2]int{{0, 1}, {1, 0}} {
		cell := b[n[0]][n[1]]
		if cell.Owner != 1 || cell.Count != 1 {
			t.Fatalf("neighbor %v = %+v, want owner 1 count 1", n, cell)
		}
	}
	if b.TotalOrbs() != 2 {
		t.Fatalf("total orbs = %d, want 2", b.TotalOrbs())
	}
}

func TestApplyMove_ExplosionCapturesNeighbor(t *testing.T) {
	b := NewBoard()
	b[0][0] = Cell{Owner: 1, Count: 1}
	b[0][1] = Cell{Owner: 2, Count: 1}

	// Corner explodes; (0,1) receives the distributed orb and flips to the
	// moving player.
	b.ApplyMove(0, 0, 1)

	if got := b[0][1]; got.Owner != 1 || got.Count != 2 {
		t.Fatalf("captured cell = %+v, want owner 1 count 2", got)
	}
	if b.HasOrbs(2) {
		t.Fatalf("player 2 should own nothing after the capture")
	}
}

func TestApplyMove_CascadeStaysStableAndConservative(t *testing.T) {
	b := NewBoard()
	// Prime a cluster one orb short of critical mass everywhere.
	b[0][0] = Cell{Owner: 2, Count: 1}
	b[0][1] = Cell{Owner: 2, Count: 2}
	b[1][0] = Cell{Owner: 2, Count: 2}
	b[1][1] = Cell{Owner: 2, Count: 3}

	before := b.TotalOrbs()
	b.ApplyMove(0, 0, 1)

	if got := b.TotalOrbs(); got != before+1 {
		t.Fatalf("total orbs = %d, want %d", got, before+1)
	}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if b[r][c].Count >= CriticalMass(r, c) {
				t.Fatalf("cell (%d,%d) unstable after resolution: %+v", r, c, b[r][c])
			}
			if b[r][c].Count == 0 && b[r][c].Owner != NoPlayer {
				t.Fatalf("cell (%d,%d) empty but owned: %+v", r, c, b[r][c])
			}
		}
	}
}

func TestCellJSON_NullOwner(t *testing.T) {
	empty, err := json.Marshal(Cell{})
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != `{"owner":null,"count":0}` {
		t.Fatalf("empty cell marshalled as %s", empty)
	}

	owned, err := json.Marshal(Cell{Owner: 3, Count: 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(owned) != `{"owner":3,"count":2}` {
		t.Fatalf("owned cell marshalled as %s", owned)
	}

	var back Cell
	if err := json.Unmarshal(owned, &back); err != nil {
		t.Fatal(err)
	}
	if back != (Cell{Owner: 3, Count: 2}) {
		t.Fatalf("round trip = %+v", back)
	}
}
