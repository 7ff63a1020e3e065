package types

import "github.com/floodgrid/chain-reaction-backend/internal/engine"

// Message type tags on the websocket wire.
const (
	MsgCreate  = "create"
	MsgJoin    = "join"
	MsgStart   = "start"
	MsgMove    = "move"
	MsgRestart = "restart"
	MsgDestroy = "destroy"

	MsgJoined        = "joined"
	MsgRoomState     = "roomState"
	MsgError         = "error"
	MsgRoomDestroyed = "roomDestroyed"
)

type ClientMessage struct {
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// ServerMessage covers the non-snapshot server responses: joined, error and
// roomDestroyed.
type ServerMessage struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	PlayerID int    `json:"playerId,omitempty"`
	RoomCode string `json:"roomCode,omitempty"`
}

// RoomState is the authoritative snapshot broadcast after every
// state-changing command. Nullable ids marshal as JSON null, matching the
// cell owner convention.
type RoomState struct {
	Type            string            `json:"type"`
	RoomCode        string            `json:"roomCode"`
	Board           engine.Board      `json:"board"`
	Players         []engine.PlayerID `json:"players"`
	CurrentPlayerID *engine.PlayerID  `json:"currentPlayerId"`
	HostID          *engine.PlayerID  `json:"hostId"`
	HasStarted      bool              `json:"hasStarted"`
	IsGameActive    bool              `json:"isGameActive"`
	WinnerID        *engine.PlayerID  `json:"winnerId"`
}

func NewRoomState(code string, s engine.State) RoomState {
	return RoomState{
		Type:            MsgRoomState,
		RoomCode:        code,
		Board:           s.Board,
		Players:         s.Players,
		CurrentPlayerID: nullable(s.CurrentPlayerID()),
		HostID:          nullable(s.HostID),
		HasStarted:      s.HasStarted,
		IsGameActive:    s.IsActive,
		WinnerID:        nullable(s.WinnerID),
	}
}

func nullable(id engine.PlayerID) *engine.PlayerID {
	if id == engine.NoPlayer {
		return nil
	}
	return &id
}
