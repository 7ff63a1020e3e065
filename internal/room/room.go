package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/floodgrid/chain-reaction-backend/internal/engine"
)

// Msg is the inbox union consumed by a room's loop. All room state lives on
// that single goroutine; senders never touch it directly.
type Msg interface{ isRoomMsg() }

// Join seats the connection identified by ClientID. The seat id (or the
// rejection) comes back on Reply; snapshots and later messages arrive on
// Outbox. On success the room takes ownership of Outbox and closes it when
// the seat is vacated.
type Join struct {
	ClientID string
	Outbox   chan Outbound
	Reply    chan JoinResult
}

// Leave vacates the seat bound to ClientID, reassigning host and turn as
// needed. The room removes itself from the registry once empty.
type Leave struct{ ClientID string }

// FromClient carries a game command from a seated connection.
type FromClient struct {
	ClientID string
	Cmd      Command
}

// Notify asks the room to deliver a connection-level message to the seat
// bound to ClientID. Seated sessions route their faults here so the room
// loop stays the only writer (and closer) of seat outboxes.
type Notify struct {
	ClientID string
	Out      Outbound
}

// Shutdown stops the room without notifying seats; used on process exit.
type Shutdown struct{}

// GetState reflects internal state without data races; test-only.
type GetState struct{ Reply chan View }

func (Join) isRoomMsg()       {}
func (Leave) isRoomMsg()      {}
func (FromClient) isRoomMsg() {}
func (Notify) isRoomMsg()     {}
func (Shutdown) isRoomMsg()   {}
func (GetState) isRoomMsg()   {}

type JoinResult struct {
	PlayerID engine.PlayerID
	Err      error
}

type CommandType string

const (
	CmdStart   CommandType = "start"
	CmdMove    CommandType = "move"
	CmdRestart CommandType = "restart"
	CmdDestroy CommandType = "destroy"
)

type Command struct {
	Type CommandType
	Row  int
	Col  int
}

// Outbound is the union of messages a room writes to a seat's outbox.
type Outbound interface{ isOutbound() }

type Joined struct {
	PlayerID engine.PlayerID
	RoomCode string
}

type Snapshot struct {
	RoomCode string
	State    engine.State
}

type Fault struct{ Message string }

type Destroyed struct{}

func (Joined) isOutbound()    {}
func (Snapshot) isOutbound()  {}
func (Fault) isOutbound()     {}
func (Destroyed) isOutbound() {}

type View struct {
	State      engine.State
	NumClients int
}

type Room struct {
	code    string
	inbox   chan Msg
	state   engine.State
	clients map[engine.PlayerID]chan Outbound
	seats   map[string]engine.PlayerID
	ctx     context.Context
	cancel  context.CancelFunc
	detach  func()
	log     *zap.Logger
}

// New starts a room's loop. detach is called exactly once, on the loop
// goroutine, when the room ends (destroyed or emptied) so the registry can
// drop its entry.
func New(parent context.Context, code string, detach func(), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   engine.NewState(),
		clients: make(map[engine.PlayerID]chan Outbound),
		seats:   make(map[string]engine.PlayerID),
		ctx:     ctx,
		cancel:  cancel,
		detach:  detach,
		log:     log.With(zap.String("room", code)),
	}
	go r.loop()
	return r
}

func (r *Room) Code() string { return r.code }

// Done closes when the room has stopped processing messages.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Send queues a message for the room loop. It reports false if the room has
// already stopped, so callers never block on a dead inbox.
func (r *Room) Send(m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.closeAll()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				if r.handleLeave(msg) {
					return
				}

			case FromClient:
				if r.handleCommand(msg) {
					return
				}

			case Notify:
				if id, ok := r.seats[msg.ClientID]; ok {
					r.sendTo(id, msg.Out)
				}

			case GetState:
				msg.Reply <- View{State: r.state, NumClients: len(r.clients)}

			case Shutdown:
				r.closeAll()
				r.cancel()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	next, id, err := r.state.AddPlayer()
	if err != nil {
		msg.Reply <- JoinResult{Err: err}
		return
	}
	r.state = next
	r.clients[id] = msg.Outbox
	r.seats[msg.ClientID] = id
	msg.Reply <- JoinResult{PlayerID: id}

	r.log.Info("player joined", zap.Int("player", int(id)))
	r.sendTo(id, Joined{PlayerID: id, RoomCode: r.code})
	r.broadcast()
}

// handleLeave reports whether the room emptied out and stopped.
func (r *Room) handleLeave(msg Leave) bool {
	id, ok := r.seats[msg.ClientID]
	if !ok {
		return false
	}
	delete(r.seats, msg.ClientID)
	if ch, ok := r.clients[id]; ok {
		close(ch)
		delete(r.clients, id)
	}

	r.state = r.state.RemovePlayer(id)
	r.log.Info("player left", zap.Int("player", int(id)))

	if len(r.state.Players) == 0 {
		r.stop()
		return true
	}
	r.broadcast()
	return false
}

// handleCommand reports whether the room was destroyed.
func (r *Room) handleCommand(msg FromClient) bool {
	id, ok := r.seats[msg.ClientID]
	if !ok {
		return false
	}

	switch msg.Cmd.Type {
	case CmdStart:
		next, err := r.state.Start(id)
		if err != nil {
			r.sendTo(id, Fault{Message: err.Error()})
			return false
		}
		r.state = next
		r.log.Info("game started", zap.Int("players", len(r.state.Players)))
		r.broadcast()

	case CmdMove:
		next, err := r.state.Move(id, msg.Cmd.Row, msg.Cmd.Col)
		if err != nil {
			r.sendTo(id, Fault{Message: err.Error()})
			return false
		}
		r.state = next
		if w := r.state.WinnerID; w != engine.NoPlayer {
			r.log.Info("game over", zap.Int("winner", int(w)))
		}
		r.broadcast()

	case CmdRestart:
		next, idMap := r.state.Restart()
		r.state = next
		r.rebindSeats(idMap)
		r.log.Info("game restarted", zap.Int("players", len(r.state.Players)))
		for id := range r.clients {
			r.sendTo(id, Joined{PlayerID: id, RoomCode: r.code})
		}
		r.broadcast()

	case CmdDestroy:
		if id != r.state.HostID {
			r.sendTo(id, Fault{Message: engine.ErrNotHostDestroy.Error()})
			return false
		}
		r.log.Info("room destroyed", zap.Int("player", int(id)))
		for pid, ch := range r.clients {
			select {
			case ch <- Destroyed{}:
			default:
			}
			close(ch)
			delete(r.clients, pid)
		}
		r.stop()
		return true
	}
	return false
}

// rebindSeats points the connection and outbox maps at the renumbered ids.
func (r *Room) rebindSeats(idMap map[engine.PlayerID]engine.PlayerID) {
	clients := make(map[engine.PlayerID]chan Outbound, len(r.clients))
	for old, ch := range r.clients {
		clients[idMap[old]] = ch
	}
	r.clients = clients
	for clientID, old := range r.seats {
		r.seats[clientID] = idMap[old]
	}
}

func (r *Room) sendTo(id engine.PlayerID, out Outbound) {
	ch, ok := r.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- out:
	default:
		// Slow or dead recipient: drop the outbox, never wait. The seat is
		// vacated when its connection handler unwinds and sends Leave.
		close(ch)
		delete(r.clients, id)
	}
}

func (r *Room) broadcast() {
	snap := Snapshot{RoomCode: r.code, State: r.state}
	for id := range r.clients {
		r.sendTo(id, snap)
	}
}

func (r *Room) closeAll() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
}

func (r *Room) stop() {
	r.closeAll()
	r.detach()
	r.cancel()
}
