package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/floodgrid/chain-reaction-backend/internal/room"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, zap.NewNop())
}

func create(t *testing.T, h *Hub, code string) CreateResult {
	t.Helper()
	reply := make(chan CreateResult, 1)
	h.Inbox() <- CreateRoom{Code: code, Reply: reply}
	select {
	case res := <-reply:
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for create reply")
		return CreateResult{} // unreachable
	}
}

func get(t *testing.T, h *Hub, code string) *room.Room {
	t.Helper()
	reply := make(chan *room.Room, 1)
	h.Inbox() <- GetRoom{Code: code, Reply: reply}
	select {
	case rm := <-reply:
		return rm
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for get reply")
		return nil // unreachable
	}
}

func TestHub_CreateGetSamePointer(t *testing.T) {
	h := newTestHub(t)

	res := create(t, h, "ABC123")
	if res.Err != nil || res.Room == nil {
		t.Fatalf("create failed: %+v", res)
	}
	if got := get(t, h, "ABC123"); got != res.Room {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_DuplicateCodeRejected(t *testing.T) {
	h := newTestHub(t)

	first := create(t, h, "ABC123")
	if first.Err != nil {
		t.Fatalf("first create failed: %v", first.Err)
	}

	second := create(t, h, "ABC123")
	if !errors.Is(second.Err, ErrCodeExists) {
		t.Fatalf("want ErrCodeExists, got %v", second.Err)
	}
	if second.Room != nil {
		t.Fatalf("duplicate create must not return a room")
	}
	if got := get(t, h, "ABC123"); got != first.Room {
		t.Fatalf("original room was replaced")
	}
}

func TestHub_GetUnknownCodeIsNil(t *testing.T) {
	h := newTestHub(t)
	if got := get(t, h, "NOPE"); got != nil {
		t.Fatalf("expected nil for unknown code, got %v", got)
	}
}

func TestHub_RemoveRoomForgetsCode(t *testing.T) {
	h := newTestHub(t)
	create(t, h, "ABC123")

	h.Inbox() <- RemoveRoom{Code: "ABC123"}
	if got := get(t, h, "ABC123"); got != nil {
		t.Fatalf("room still registered after remove")
	}

	// The code is reusable once removed.
	res := create(t, h, "ABC123")
	if res.Err != nil {
		t.Fatalf("recreate after remove failed: %v", res.Err)
	}
}

func TestHub_EmptiedRoomDeregistersItself(t *testing.T) {
	h := newTestHub(t)
	res := create(t, h, "ABC123")

	out := make(chan room.Outbound, 8)
	reply := make(chan room.JoinResult, 1)
	res.Room.Send(room.Join{ClientID: "c1", Outbox: out, Reply: reply})
	if jr := <-reply; jr.Err != nil {
		t.Fatalf("join failed: %v", jr.Err)
	}

	res.Room.Send(room.Leave{ClientID: "c1"})

	deadline := time.Now().Add(time.Second)
	for get(t, h, "ABC123") != nil {
		if time.Now().After(deadline) {
			t.Fatalf("empty room never left the registry")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_ShutdownStopsRooms(t *testing.T) {
	h := newTestHub(t)
	res := create(t, h, "ABC123")

	h.Inbox() <- ShutdownHub{}

	select {
	case <-res.Room.Done():
	case <-time.After(time.Second):
		t.Fatalf("room kept running after hub shutdown")
	}
}
