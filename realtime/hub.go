// Package realtime keeps one websocket per connected player and pushes
// JSON messages to them.
package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many frames may queue for one player before new
	// frames are dropped.
	sendBuffer = 32
)

var (
	ErrNotConnected = errors.New("player is not connected")
	ErrSlowConsumer = errors.New("player send buffer is full")
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
}

// writeLoop drains the send queue onto the socket until the queue is
// closed. A failed write closes the socket so the reader side ends too.
func (s *subscriber) writeLoop(log *slog.Logger, playerID string) {
	for data := range s.send {
		err := s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err == nil {
			err = s.conn.WriteMessage(websocket.TextMessage, data)
		}
		if err != nil {
			log.Warn("websocket write failed",
				slog.String("player", playerID),
				slog.String("error", err.Error()),
			)
			s.conn.Close()
			for range s.send {
			}
			return
		}
	}
}

// Hub maps player ids to their live connection. Sends never block on a
// socket: frames are queued per player and written by that player's own
// goroutine.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
	log  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{subs: make(map[string]*subscriber), log: logger}
}

// Connect registers conn for the player. A previous connection for the
// same player is closed.
func (h *Hub) Connect(playerID string, conn *websocket.Conn) {
	s := newSubscriber(conn)
	go s.writeLoop(h.log, playerID)

	h.mu.Lock()
	old := h.subs[playerID]
	h.subs[playerID] = s
	if old != nil {
		close(old.send)
	}
	h.mu.Unlock()

	if old != nil {
		old.conn.Close()
	}
	h.log.Debug("player connected", slog.String("player", playerID))
}

// Disconnect drops the player's connection if it is still conn and
// reports whether it did.
func (h *Hub) Disconnect(playerID string, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.subs[playerID]
	if !ok || s.conn != conn {
		return false
	}
	delete(h.subs, playerID)
	close(s.send)
	return true
}

func (h *Hub) Connected(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.subs[playerID]
	return ok
}

// SendTo queues msg for one player.
func (h *Hub) SendTo(playerID string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.enqueue(playerID, data)
}

// Broadcast queues msg for every listed player that is connected. Players
// whose queue is full miss the frame.
func (h *Hub) Broadcast(playerIDs []string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("broadcast encode failed", slog.String("error", err.Error()))
		return
	}
	for _, id := range playerIDs {
		if err := h.enqueue(id, data); errors.Is(err, ErrSlowConsumer) {
			h.log.Warn("broadcast dropped", slog.String("player", id))
		}
	}
}

// enqueue holds the read lock so the queue cannot be closed mid-send.
func (h *Hub) enqueue(playerID string, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.subs[playerID]
	if !ok {
		return ErrNotConnected
	}
	select {
	case s.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}
