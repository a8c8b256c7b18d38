package room

import (
	"errors"
	"slices"
	"sync"
	"time"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

const (
	DefaultMaxPlayers = 4
	MinPlayers        = 2
	FallbackColor     = "purple"
)

// Palette is handed out to joining players in order.
var Palette = []string{"red", "yellow", "green", "blue"}

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameStarted      = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrGameNotActive    = errors.New("game is not active")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidColumn    = errors.New("invalid column")
	ErrPlayerNotFound   = errors.New("player not found in room")
	ErrEventsDisabled   = errors.New("random events are disabled for this room")
)

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Room struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Players             []Player       `json:"players"`
	MaxPlayers          int            `json:"max_players"`
	Status              Status         `json:"status"`
	CurrentTurn         string         `json:"current_turn,omitempty"`
	ColumnNodes         map[int]string `json:"column_nodes"`
	RandomEventsEnabled bool           `json:"random_events_enabled"`
	CreatedAt           time.Time      `json:"created_at"`
}

func (r Room) IsActive() bool { return r.Status == StatusActive }

func (r Room) clone() Room {
	c := r
	c.Players = append([]Player(nil), r.Players...)
	c.ColumnNodes = make(map[int]string, len(r.ColumnNodes))
	for id, addr := range r.ColumnNodes {
		c.ColumnNodes[id] = addr
	}
	return c
}

func (r Room) playerIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

func (r Room) indexOf(playerID string) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// colorAvailable reports whether c is a palette colour no player holds.
func (r Room) colorAvailable(c string) bool {
	if !slices.Contains(Palette, c) {
		return false
	}
	for _, p := range r.Players {
		if p.Color == c {
			return false
		}
	}
	return true
}

func (r Room) nextColor() string {
	used := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		used[p.Color] = true
	}
	for _, c := range Palette {
		if !used[c] {
			return c
		}
	}
	return FallbackColor
}

// entry holds one room. ops serializes every operation that changes the
// roster or the turn; mu guards the fields so event notifications can read
// the roster while a turn is in flight.
type entry struct {
	ops sync.Mutex
	mu  sync.RWMutex

	room    Room
	removed bool
}

func (e *entry) snapshot() Room {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.room.clone()
}

func (e *entry) update(fn func(*Room)) Room {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.room)
	return e.room.clone()
}
