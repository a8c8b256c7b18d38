package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serveHub upgrades /{id} and registers the server side of the socket.
func serveHub(t *testing.T, h *Hub) (string, chan *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Connect(strings.TrimPrefix(r.URL.Path, "/"), conn)
		conns <- conn
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), conns
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestBroadcastReachesConnectedPlayers(t *testing.T) {
	h := NewHub(nil)
	base, conns := serveHub(t, h)

	alice := dial(t, base+"/alice")
	<-conns
	bob := dial(t, base+"/bob")
	<-conns

	h.Broadcast([]string{"alice", "bob", "carol"}, map[string]string{"type": "chat", "message": "hi"})
	for _, c := range []*websocket.Conn{alice, bob} {
		if got := readText(t, c); got != `{"message":"hi","type":"chat"}` {
			t.Fatalf("unexpected frame %s", got)
		}
	}

	if err := h.SendTo("alice", map[string]string{"type": "error"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := readText(t, alice); got != `{"type":"error"}` {
		t.Fatalf("unexpected frame %s", got)
	}
	if err := h.SendTo("carol", "x"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestReconnectReplacesConnection(t *testing.T) {
	h := NewHub(nil)
	base, conns := serveHub(t, h)

	first := dial(t, base+"/alice")
	stale := <-conns
	second := dial(t, base+"/alice")
	<-conns

	// the replaced socket is closed by the hub
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatalf("expected the first connection to be closed")
	}
	if h.Disconnect("alice", stale) {
		t.Fatalf("a stale connection must not remove the live one")
	}
	if !h.Connected("alice") {
		t.Fatalf("alice should still be connected")
	}

	h.Broadcast([]string{"alice"}, map[string]int{"n": 1})
	if got := readText(t, second); got != `{"n":1}` {
		t.Fatalf("unexpected frame %s", got)
	}
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(nil)
	// no writer drains this queue, like a client that stopped reading
	stalled := &subscriber{send: make(chan []byte, 1)}
	h.subs["stalled"] = stalled

	done := make(chan struct{})
	go func() {
		h.Broadcast([]string{"stalled"}, "first")
		h.Broadcast([]string{"stalled"}, "second")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("broadcast blocked on a stalled player")
	}

	if err := h.SendTo("stalled", "third"); !errors.Is(err, ErrSlowConsumer) {
		t.Fatalf("expected ErrSlowConsumer, got %v", err)
	}
	if got := string(<-stalled.send); got != `"first"` {
		t.Fatalf("expected the first frame to stay queued, got %s", got)
	}
}
