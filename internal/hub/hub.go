package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/floodgrid/chain-reaction-backend/internal/room"
)

// Error text is sent to clients verbatim.
var ErrCodeExists = errors.New("Room code already exists.")

type HubMsg interface{ isHubMsg() }

// CreateRoom registers a new room under Code. The existence check and the
// insert happen as one step on the hub loop, so two concurrent creates on
// the same code cannot both succeed.
type CreateRoom struct {
	Code  string
	Reply chan CreateResult
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// RemoveRoom drops the registry entry. Rooms send this about themselves when
// they are destroyed or run out of seats.
type RemoveRoom struct{ Code string }

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type CreateResult struct {
	Room *room.Room
	Err  error
}

// Hub is the process-wide room registry. Rooms are independent; no cross-room
// coordination ever goes through here beyond create/lookup/remove.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if h.rooms[msg.Code] != nil {
					msg.Reply <- CreateResult{Err: ErrCodeExists}
					break
				}
				rm := room.New(h.ctx, msg.Code, h.detachFunc(msg.Code), h.log)
				h.rooms[msg.Code] = rm
				h.log.Info("room created", zap.String("room", msg.Code))
				msg.Reply <- CreateResult{Room: rm}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				if _, ok := h.rooms[msg.Code]; ok {
					delete(h.rooms, msg.Code)
					h.log.Info("room removed", zap.String("room", msg.Code))
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// detachFunc gives a room a way to deregister itself from its own goroutine
// without blocking, even if the hub is already gone.
func (h *Hub) detachFunc(code string) func() {
	return func() {
		select {
		case h.inbox <- RemoveRoom{Code: code}:
		case <-h.ctx.Done():
		}
	}
}

func (h *Hub) shutdown() {
	for code, rm := range h.rooms {
		rm.Send(room.Shutdown{})
		delete(h.rooms, code)
	}
	h.cancel()
}
