package api

import (
	"go-connect4/domain/event"
	"go-connect4/domain/room"
)

type CreateRoomRequest struct {
	Name                string `json:"name" validate:"max=64"`
	MaxPlayers          int    `json:"max_players" validate:"omitempty,min=2,max=8"`
	RandomEventsEnabled bool   `json:"random_events_enabled"`
}

type RoomResponse struct {
	Room room.Room `json:"room"`
}

type JoinRoomRequest struct {
	RoomID     string `json:"room_id" validate:"required"`
	PlayerName string `json:"player_name" validate:"max=32"`
	Color      string `json:"color" validate:"max=16"`
}

type JoinRoomResponse struct {
	Player room.Player `json:"player"`
	Room   room.Room   `json:"room"`
}

type StartGameRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type StartGameResponse struct {
	Room room.Room `json:"room"`
	// Degraded lists the services that could not be initialized.
	Degraded []string `json:"degraded,omitempty"`
}

type GetRoomRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type ListRoomsResponse struct {
	Rooms []room.Room `json:"rooms"`
}

// ReleaseRoomRequest asks a service to drop everything it holds for a
// deleted room.
type ReleaseRoomRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type NotifyEventRequest struct {
	RoomID string             `json:"room_id" validate:"required"`
	Turn   int                `json:"turn"`
	Event  event.Event        `json:"event"`
	Result event.EffectResult `json:"result"`
}

func NewNotifyEventRequest(t event.Trigger) *NotifyEventRequest {
	return &NotifyEventRequest{RoomID: t.RoomID, Turn: t.Turn, Event: t.Event, Result: t.Result}
}

func (r *NotifyEventRequest) Trigger() event.Trigger {
	return event.Trigger{RoomID: r.RoomID, Turn: r.Turn, Event: r.Event, Result: r.Result}
}
