package engine

import (
	"errors"
	"maps"
	"slices"
)

const MaxPlayers = 8

// Error text is sent to clients verbatim as the error{message} payload, so
// these read as user-facing sentences rather than conventional Go errors.
var (
	ErrRoomFull         = errors.New("Room is full.")
	ErrGameStarted      = errors.New("Game already started.")
	ErrNotHost          = errors.New("Only the host can start the game.")
	ErrNotEnoughPlayers = errors.New("Need at least 2 players to start.")
	ErrGameNotStarted   = errors.New("Game has not started.")
	ErrNotYourTurn      = errors.New("Not your turn.")
	ErrInvalidMove      = errors.New("Invalid move.")
	ErrCellOwned        = errors.New("Cell is owned by another player.")
	ErrNotHostDestroy   = errors.New("Only the host can destroy the room.")
)

// State is the complete game state of one room. Transitions are value
// semantics: each mutating method copies what it changes and returns the new
// state, so a caller holding the previous value never observes a
// half-applied move.
type State struct {
	Board        Board
	Players      []PlayerID // seat order; rotation follows insertion order
	CurrentIndex int
	Moved        map[PlayerID]bool
	Eliminated   map[PlayerID]bool
	HostID       PlayerID
	HasStarted   bool
	IsActive     bool
	WinnerID     PlayerID
	NextPlayerID PlayerID
}

func NewState() State {
	return State{
		Board:        NewBoard(),
		Players:      []PlayerID{},
		Moved:        map[PlayerID]bool{},
		Eliminated:   map[PlayerID]bool{},
		NextPlayerID: 1,
	}
}

// CurrentPlayerID returns the seat whose turn it is, or NoPlayer when the
// room is empty or the index is out of range.
func (s State) CurrentPlayerID() PlayerID {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Players) {
		return NoPlayer
	}
	return s.Players[s.CurrentIndex]
}

// AddPlayer seats a new player and returns the assigned id. The first seat
// becomes host. Ids count up monotonically and are not reused until a
// restart renumbers the room.
func (s State) AddPlayer() (State, PlayerID, error) {
	if s.HasStarted {
		return s, NoPlayer, ErrGameStarted
	}
	if len(s.Players) >= MaxPlayers {
		return s, NoPlayer, ErrRoomFull
	}

	id := s.NextPlayerID
	s.NextPlayerID++
	s.Players = append(slices.Clone(s.Players), id)
	if s.HostID == NoPlayer {
		s.HostID = id
	}
	return s, id, nil
}

// RemovePlayer vacates a seat. The departing player's moved/eliminated
// records go with it; board cells may keep referencing the old id, which is
// harmless since the id is never reassigned mid-game. Host falls to the
// first remaining seat, and the turn stays with whichever live seat now
// occupies the vacated position.
func (s State) RemovePlayer(id PlayerID) State {
	idx := slices.Index(s.Players, id)
	if idx < 0 {
		return s
	}

	s.Players = slices.Delete(slices.Clone(s.Players), idx, idx+1)
	s.Moved = maps.Clone(s.Moved)
	delete(s.Moved, id)
	s.Eliminated = maps.Clone(s.Eliminated)
	delete(s.Eliminated, id)

	if len(s.Players) == 0 {
		s.HostID = NoPlayer
		s.CurrentIndex = 0
		return s
	}
	if s.HostID == id {
		s.HostID = s.Players[0]
	}
	if s.CurrentIndex >= len(s.Players) {
		s.CurrentIndex = 0
	}
	s.CurrentIndex = NextSeatIndex(s, s.CurrentIndex-1)
	return s
}

// Start begins the game. Host only, at least two seats.
func (s State) Start(caller PlayerID) (State, error) {
	if caller != s.HostID {
		return s, ErrNotHost
	}
	if s.HasStarted {
		return s, ErrGameStarted
	}
	if len(s.Players) < 2 {
		return s, ErrNotEnoughPlayers
	}

	s.Board = NewBoard()
	s.HasStarted = true
	s.IsActive = true
	s.CurrentIndex = 0
	return s, nil
}

// Move places an orb for caller at (row, col), resolves the chain reaction,
// and either records a winner or advances the turn.
func (s State) Move(caller PlayerID, row, col int) (State, error) {
	if !s.HasStarted || !s.IsActive {
		return s, ErrGameNotStarted
	}
	if caller != s.CurrentPlayerID() {
		return s, ErrNotYourTurn
	}
	if !InBounds(row, col) {
		return s, ErrInvalidMove
	}
	if owner := s.Board[row][col].Owner; owner != NoPlayer && owner != caller {
		return s, ErrCellOwned
	}

	board := s.Board.Clone()
	board.ApplyMove(row, col, caller)
	s.Board = board

	s.Moved = maps.Clone(s.Moved)
	s.Moved[caller] = true

	s = UpdateEliminations(s)

	if winner := CheckWinner(s.Board, s.Players, s.Moved); winner != NoPlayer {
		s.WinnerID = winner
		s.IsActive = false
	} else {
		s.CurrentIndex = NextSeatIndex(s, s.CurrentIndex)
	}
	return s, nil
}

// Restart renumbers the surviving seats contiguously 1..N preserving relative
// order, resets the board and round records, and begins a fresh game. The
// returned map gives old id -> new id so the connection layer can rebind
// seats and re-announce them.
func (s State) Restart() (State, map[PlayerID]PlayerID) {
	idMap := make(map[PlayerID]PlayerID, len(s.Players))
	players := make([]PlayerID, len(s.Players))
	for i, old := range s.Players {
		id := PlayerID(i + 1)
		idMap[old] = id
		players[i] = id
	}

	s.Players = players
	if s.HostID != NoPlayer {
		s.HostID = idMap[s.HostID]
	}
	s.NextPlayerID = PlayerID(len(players) + 1)
	s.Board = NewBoard()
	s.Moved = map[PlayerID]bool{}
	s.Eliminated = map[PlayerID]bool{}
	s.WinnerID = NoPlayer
	s.CurrentIndex = 0
	s.HasStarted = true
	s.IsActive = true
	return s, idMap
}
