package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/floodgrid/chain-reaction-backend/internal/hub"
	"github.com/floodgrid/chain-reaction-backend/internal/room"
	"github.com/floodgrid/chain-reaction-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Error text sent to clients verbatim; these faults belong to the connection
// layer rather than a room.
const (
	errBadPayload    = "Invalid message payload."
	errUnknownType   = "Unknown message type."
	errCodeRequired  = "Room code required."
	errRoomNotFound  = "Room not found."
	errAlreadySeated = "Already in a room."
	errNotSeated     = "Join a room first."
)

// session is one websocket connection's view of the world: its identity, its
// outbox, and (once seated) its room. Everything the room sends arrives on
// the outbox; the writer goroutine is the only thing that touches the socket
// for writes.
type session struct {
	clientID string
	outbox   chan room.Outbound
	room     *room.Room
	seated   bool
}

func Handler(h *hub.Hub, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		s := &session{
			clientID: uuid.NewString(),
			outbox:   make(chan room.Outbound, 8),
		}
		log := log.With(zap.String("client", s.clientID))
		log.Info("client connected")
		defer log.Info("client disconnected")

		// Writer goroutine: sole writer on the socket. Cancelling readCtx
		// when the outbox closes unwinds the reader loop too.
		readCtx, stopReading := context.WithCancel(r.Context())
		defer stopReading()
		go func() {
			defer stopReading()
			for out := range s.outbox {
				payload, err := json.Marshal(toWire(out))
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(readCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}()

		// The room owns the outbox once the session is seated; it closes it
		// on leave, destroy, or shutdown. Until then the handler owns it.
		defer func() {
			if s.seated {
				s.room.Send(room.Leave{ClientID: s.clientID})
			} else {
				close(s.outbox)
			}
		}()

		for {
			// Players in a multi-seat game can sit quietly between turns, so
			// reads only end on disconnect or server shutdown.
			_, data, err := conn.Read(readCtx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				s.fault(errBadPayload)
				continue
			}
			if !s.dispatch(h, cm) {
				return
			}
		}
	}
}

// dispatch routes one client message; it reports false when the connection
// should wind down.
func (s *session) dispatch(h *hub.Hub, cm types.ClientMessage) bool {
	switch cm.Type {
	case types.MsgCreate:
		s.handleCreate(h, cm.Code)
	case types.MsgJoin:
		s.handleJoin(h, cm.Code)
	case types.MsgStart:
		s.forward(room.Command{Type: room.CmdStart})
	case types.MsgMove:
		s.forward(room.Command{Type: room.CmdMove, Row: cm.Row, Col: cm.Col})
	case types.MsgRestart:
		s.forward(room.Command{Type: room.CmdRestart})
	case types.MsgDestroy:
		s.forward(room.Command{Type: room.CmdDestroy})
	default:
		s.fault(errUnknownType)
	}

	if s.seated {
		select {
		case <-s.room.Done():
			// Room gone (destroyed or emptied by our own Leave-less drop);
			// the outbox is closed, nothing more to read or write.
			return false
		default:
		}
	}
	return true
}

func (s *session) handleCreate(h *hub.Hub, code string) {
	if s.seated {
		s.fault(errAlreadySeated)
		return
	}
	if code == "" {
		s.fault(errCodeRequired)
		return
	}

	reply := make(chan hub.CreateResult, 1)
	h.Inbox() <- hub.CreateRoom{Code: code, Reply: reply}
	res := <-reply
	if res.Err != nil {
		s.fault(res.Err.Error())
		return
	}
	s.joinRoom(res.Room)
}

func (s *session) handleJoin(h *hub.Hub, code string) {
	if s.seated {
		s.fault(errAlreadySeated)
		return
	}
	if code == "" {
		s.fault(errCodeRequired)
		return
	}

	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	rm := <-reply
	if rm == nil {
		s.fault(errRoomNotFound)
		return
	}
	s.joinRoom(rm)
}

func (s *session) joinRoom(rm *room.Room) {
	reply := make(chan room.JoinResult, 1)
	if !rm.Send(room.Join{ClientID: s.clientID, Outbox: s.outbox, Reply: reply}) {
		s.fault(errRoomNotFound)
		return
	}

	select {
	case res := <-reply:
		if res.Err != nil {
			s.fault(res.Err.Error())
			return
		}
		s.room = rm
		s.seated = true
	case <-rm.Done():
		// The room may have seated us right before stopping; the reply is
		// buffered, so check it before deciding who owns the outbox.
		select {
		case res := <-reply:
			if res.Err == nil {
				s.room = rm
				s.seated = true
				return
			}
		default:
		}
		s.fault(errRoomNotFound)
	}
}

func (s *session) forward(cmd room.Command) {
	if !s.seated {
		s.fault(errNotSeated)
		return
	}
	s.room.Send(room.FromClient{ClientID: s.clientID, Cmd: cmd})
}

// fault queues an error for this connection only. Room state is never
// touched and nothing is broadcast. Once seated, the room loop owns the
// outbox, so the fault is routed through it.
func (s *session) fault(message string) {
	if s.seated {
		s.room.Send(room.Notify{ClientID: s.clientID, Out: room.Fault{Message: message}})
		return
	}
	select {
	case s.outbox <- room.Fault{Message: message}:
	default:
	}
}

func toWire(out room.Outbound) any {
	switch msg := out.(type) {
	case room.Joined:
		return types.ServerMessage{
			Type:     types.MsgJoined,
			PlayerID: int(msg.PlayerID),
			RoomCode: msg.RoomCode,
		}
	case room.Snapshot:
		return types.NewRoomState(msg.RoomCode, msg.State)
	case room.Fault:
		return types.ServerMessage{Type: types.MsgError, Message: msg.Message}
	case room.Destroyed:
		return types.ServerMessage{Type: types.MsgRoomDestroyed}
	default:
		return types.ServerMessage{Type: types.MsgError, Message: errUnknownType}
	}
}
