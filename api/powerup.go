package api

import "go-connect4/domain/powerup"

type InitializePowerUpsRequest struct {
	RoomID   string `json:"room_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type InventoryRequest struct {
	RoomID   string `json:"room_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type InventoryResponse struct {
	Inventory powerup.Inventory `json:"inventory"`
}

type UsePowerUpRequest struct {
	RoomID     string         `json:"room_id" validate:"required"`
	PlayerID   string         `json:"player_id" validate:"required"`
	PowerUpID  powerup.Kind   `json:"power_up_id" validate:"required"`
	TargetData powerup.Target `json:"target_data"`
}

type UsePowerUpResponse struct {
	Result powerup.UseResult `json:"result"`
}

type GrantPowerUpRequest struct {
	RoomID    string       `json:"room_id" validate:"required"`
	PlayerID  string       `json:"player_id" validate:"required"`
	PowerUpID powerup.Kind `json:"power_up_id" validate:"required"`
	Uses      int          `json:"uses" validate:"min=1"`
}
