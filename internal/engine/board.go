package engine

import "encoding/json"

const (
	Rows = 15
	Cols = 9
)

// PlayerID identifies a seat within one room. Ids are small positive integers
// assigned in join order; NoPlayer marks an unowned cell or an unset field.
type PlayerID int

const NoPlayer PlayerID = 0

type Cell struct {
	Owner PlayerID
	Count int
}

// Cells marshal as {"owner": <id|null>, "count": n} so unowned cells show up
// as an explicit null on the wire.
type cellJSON struct {
	Owner *PlayerID `json:"owner"`
	Count int       `json:"count"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{Count: c.Count}
	if c.Owner != NoPlayer {
		owner := c.Owner
		out.Owner = &owner
	}
	return json.Marshal(out)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var in cellJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Count = in.Count
	c.Owner = NoPlayer
	if in.Owner != nil {
		c.Owner = *in.Owner
	}
	return nil
}

// Board is a fixed Rows x Cols grid. A board belongs to exactly one room.
type Board [][]Cell

func NewBoard() Board {
	b := make(Board, Rows)
	for r := range b {
		b[r] = make([]Cell, Cols)
	}
	return b
}

func (b Board) Clone() Board {
	out := make(Board, len(b))
	for r, row := range b {
		out[r] = make([]Cell, len(row))
		copy(out[r], row)
	}
	return out
}

func InBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// Neighbors returns the orthogonal neighbors of (row, col) inside the grid.
func Neighbors(row, col int) [][2]int {
	n := make([][2]int, 0, 4)
	if row > 0 {
		n = append(n, [2]int{row - 1, col})
	}
	if row < Rows-1 {
		n = append(n, [2]int{row + 1, col})
	}
	if col > 0 {
		n = append(n, [2]int{row, col - 1})
	}
	if col < Cols-1 {
		n = append(n, [2]int{row, col + 1})
	}
	return n
}

// CriticalMass is the orb count at which a cell explodes: 2 in a corner,
// 3 on an edge, 4 in the interior.
func CriticalMass(row, col int) int {
	return len(Neighbors(row, col))
}

// ApplyMove places one orb for playerID at (row, col) and resolves the
// resulting chain reaction in place until the board is stable.
//
// The work queue is seeded with the move position. Each dequeue re-reads the
// cell's current count: below critical mass, the cell absorbs the orb and is
// captured by playerID regardless of its previous owner; at or above critical
// mass, the cell empties and every neighbor is queued to receive one orb.
// A position may legitimately appear in the queue more than once across
// nested cascades.
func (b Board) ApplyMove(row, col int, playerID PlayerID) {
	queue := [][2]int{{row, col}}
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		r, c := pos[0], pos[1]
		next := b[r][c].Count + 1
		if next >= CriticalMass(r, c) {
			b[r][c] = Cell{}
			queue = append(queue, Neighbors(r, c)...)
		} else {
			b[r][c] = Cell{Owner: playerID, Count: next}
		}
	}
}

// HasOrbs reports whether playerID still owns at least one orb.
func (b Board) HasOrbs(playerID PlayerID) bool {
	for _, row := range b {
		for _, cell := range row {
			if cell.Owner == playerID && cell.Count > 0 {
				return true
			}
		}
	}
	return false
}

// TotalOrbs sums every cell count. Each resolved move adds exactly one orb;
// explosions only redistribute.
func (b Board) TotalOrbs() int {
	total := 0
	for _, row := range b {
		for _, cell := range row {
			total += cell.Count
		}
	}
	return total
}
