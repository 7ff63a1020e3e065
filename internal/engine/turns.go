package engine

// NextSeatIndex scans forward from `from`+1, wrapping around the seat list,
// and returns the first index whose occupant is not eliminated. If every
// candidate is eliminated (a winner would normally have ended the game
// first) it returns `from` unchanged.
func NextSeatIndex(s State, from int) int {
	if len(s.Players) == 0 {
		return 0
	}
	for offset := 1; offset <= len(s.Players); offset++ {
		candidate := (from + offset) % len(s.Players)
		if !s.Eliminated[s.Players[candidate]] {
			return candidate
		}
	}
	return from
}

// UpdateEliminations marks every seated player who has moved at least once
// but no longer owns any orbs. Elimination is monotonic within a round: ids
// are only ever added here.
func UpdateEliminations(s State) State {
	eliminated := make(map[PlayerID]bool, len(s.Eliminated))
	for id := range s.Eliminated {
		eliminated[id] = true
	}
	for _, id := range s.Players {
		if s.Moved[id] && !s.Board.HasOrbs(id) {
			eliminated[id] = true
		}
	}
	s.Eliminated = eliminated
	return s
}

// CheckWinner returns the single surviving owner, or NoPlayer. A winner is
// only declared once every seated player has made at least one move;
// before that, a lone owner is just the only one to have played so far.
func CheckWinner(board Board, players []PlayerID, moved map[PlayerID]bool) PlayerID {
	if len(moved) < len(players) {
		return NoPlayer
	}
	alive := map[PlayerID]bool{}
	for _, row := range board {
		for _, cell := range row {
			if cell.Owner != NoPlayer && cell.Count > 0 {
				alive[cell.Owner] = true
			}
		}
	}
	if len(alive) != 1 {
		return NoPlayer
	}
	for id := range alive {
		return id
	}
	return NoPlayer
}
