package server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"go-connect4/domain/column"
	"go-connect4/domain/event"
	"go-connect4/domain/powerup"
	"go-connect4/domain/room"
	"go-connect4/realtime"
	"go-connect4/server"
	"go-connect4/snapshot/snapshottest"
)

type game struct {
	rooms *room.InMemoryService
	hub   *realtime.Hub
	url   string
}

func newGame(t *testing.T) *game {
	t.Helper()
	store, _ := snapshottest.New(t)
	addrs := make(map[int]string)
	local := column.Local{}
	for id := 0; id < 7; id++ {
		addr := fmt.Sprintf("local://%d", id)
		addrs[id], local[addr] = addr, column.NewInMemoryService(id, store, nil)
	}
	dir := column.NewDirectory(addrs, local)
	hub := realtime.NewHub(nil)
	rooms := room.NewInMemoryService(room.Deps{
		Columns:  dir,
		PowerUps: powerup.NewLedger(dir, store, nil),
		Events:   event.NewScheduler(dir, nil, store, nil),
		Hub:      hub,
	})

	srv := server.New(rooms, hub, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{playerID}", srv.ServeWS)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &game{rooms: rooms, hub: hub, url: "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/"}
}

func (g *game) connect(t *testing.T, playerID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(g.url+playerID, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	deadline := time.Now().Add(2 * time.Second)
	for !g.hub.Connected(playerID) {
		if time.Now().After(deadline) {
			t.Fatalf("%s never registered with the hub", playerID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebsocketGameplay(t *testing.T) {
	g := newGame(t)
	ctx := context.Background()

	r, _ := g.rooms.CreateRoom(ctx, room.CreateParams{})
	alice, _, _ := g.rooms.JoinRoom(ctx, r.ID, "alice", "")
	bob, _, _ := g.rooms.JoinRoom(ctx, r.ID, "bob", "")
	if _, _, err := g.rooms.StartGame(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	a := g.connect(t, alice.ID)
	b := g.connect(t, bob.ID)

	if err := b.WriteJSON(map[string]any{"type": "move", "column": 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, b); msg["type"] != room.TypeError || msg["message"] != room.ErrNotYourTurn.Error() {
		t.Fatalf("expected a not-your-turn error, got %v", msg)
	}

	if err := a.WriteJSON(map[string]any{"type": "move", "column": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, c := range []*websocket.Conn{a, b} {
		msg := read(t, c)
		if msg["type"] != room.TypeMoveMade || msg["row"] != float64(column.Height-1) || msg["next_turn"] != bob.ID {
			t.Fatalf("unexpected move broadcast %v", msg)
		}
	}

	b.Close()
	msg := read(t, a)
	if msg["type"] != room.TypePlayerLeft || msg["player_id"] != bob.ID || msg["current_turn"] != alice.ID {
		t.Fatalf("unexpected leave broadcast %v", msg)
	}
}

func TestWebsocketUnknownPlayer(t *testing.T) {
	g := newGame(t)
	_, resp, err := websocket.DefaultDialer.Dial(g.url+"nobody", nil)
	if err == nil {
		t.Fatalf("expected the upgrade to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}
