package api

import "go-connect4/domain/event"

type Empty struct{}

type InitializeEventsRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type TurnCompletedRequest struct {
	RoomID       string `json:"room_id" validate:"required"`
	PlayerID     string `json:"player_id" validate:"required"`
	NextPlayerID string `json:"next_player_id"`
}

type TurnCompletedResponse struct {
	Outcome event.TurnOutcome `json:"outcome"`
}

type ActiveEventsRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type ActiveEventsResponse struct {
	Events []event.ActiveEvent `json:"events"`
}

type TriggerEventRequest struct {
	RoomID  string `json:"room_id" validate:"required"`
	EventID string `json:"event_id" validate:"required"`
}

type TriggerEventResponse struct {
	Trigger event.Trigger `json:"trigger"`
}
