// Package api holds the request and response messages exchanged between
// the coordinator and the column, power-up and event services.
package api

import "go-connect4/domain/column"

type ColumnRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type DropDiscRequest struct {
	RoomID   string `json:"room_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type DropDiscResponse struct {
	Row int `json:"row"`
}

type BlockColumnRequest struct {
	RoomID string `json:"room_id" validate:"required"`
	Turns  int    `json:"turns" validate:"gte=0"`
}

type SetColumnStateRequest struct {
	RoomID string      `json:"room_id" validate:"required"`
	Grid   column.Grid `json:"grid"`
}

type GridResponse struct {
	Grid column.Grid `json:"grid"`
}
