package room

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"go-connect4/domain/board"
	"go-connect4/domain/event"
	"go-connect4/domain/powerup"
)

// Message types exchanged over the realtime channel.
const (
	TypeMove         = "move"
	TypePowerUp      = "power_up"
	TypeChat         = "chat"
	TypePlayerJoined = "player_joined"
	TypeGameStarted  = "game_started"
	TypeMoveMade     = "move_made"
	TypeGameOver     = "game_over"
	TypePowerUpUsed  = "power_up_used"
	TypeRandomEvent  = "random_event"
	TypePlayerLeft   = "player_left"
	TypeError        = "error"
)

var (
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Client to server.

type MoveRequest struct {
	Type   string `json:"type"`
	Column *int   `json:"column" validate:"required,min=0"`
}

type PowerUpRequest struct {
	Type       string         `json:"type"`
	PowerUpID  powerup.Kind   `json:"power_up_id" validate:"required"`
	TargetData powerup.Target `json:"target_data"`
}

type ChatRequest struct {
	Type    string `json:"type"`
	Message string `json:"message" validate:"max=500"`
}

// Server to client.

type PlayerJoinedMessage struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

type GameStartedMessage struct {
	Type        string `json:"type"`
	Room        Room   `json:"room"`
	CurrentTurn string `json:"current_turn"`
}

type MoveMadeMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Column   int    `json:"column"`
	Row      int    `json:"row"`
	NextTurn string `json:"next_turn"`
}

type GameOverMessage struct {
	Type      string           `json:"type"`
	Winner    string           `json:"winner"`
	WinType   board.WinType    `json:"win_type"`
	Positions []board.Position `json:"positions,omitempty"`
}

type PowerUpUsedMessage struct {
	Type          string         `json:"type"`
	PlayerID      string         `json:"player_id"`
	PowerUpID     powerup.Kind   `json:"power_up_id"`
	Effect        powerup.Effect `json:"effect"`
	RemainingUses int            `json:"remaining_uses"`
}

type RandomEventMessage struct {
	Type         string                  `json:"type"`
	Event        event.Event             `json:"event"`
	EffectResult event.EffectResult      `json:"effect_result"`
	Grants       map[string]powerup.Kind `json:"grants,omitempty"`
}

type PlayerLeftMessage struct {
	Type        string `json:"type"`
	PlayerID    string `json:"player_id"`
	CurrentTurn string `json:"current_turn"`
}

type ChatMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Message  string `json:"message"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorMessage(err error) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: err.Error()}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseClientMessage decodes one client frame into *MoveRequest,
// *PowerUpRequest or *ChatRequest. Unknown fields and types are rejected.
func ParseClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var msg any
	switch envelope.Type {
	case TypeMove:
		msg = &MoveRequest{}
	case TypePowerUp:
		msg = &PowerUpRequest{}
	case TypeChat:
		msg = &ChatRequest{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, envelope.Type)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return msg, nil
}
