package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"go-connect4/domain/column"
	"go-connect4/domain/event"
	"go-connect4/domain/powerup"
	"go-connect4/domain/room"
)

// errorKindHeader names the domain errors behind a failed call so clients
// can rebuild them.
const errorKindHeader = "Connect4-Error-Kind"

type sentinel struct {
	kind string
	err  error
	code connect.Code
}

// Wrapping errors come first; the first match decides the status code.
var sentinels = []sentinel{
	{"power_up_effect_failed", powerup.ErrEffectFailed, connect.CodeAborted},
	{"event_effect_failed", event.ErrEffectFailed, connect.CodeAborted},
	{"column_blocked", column.ErrBlocked, connect.CodeFailedPrecondition},
	{"column_full", column.ErrFull, connect.CodeFailedPrecondition},
	{"column_not_found", column.ErrNotFound, connect.CodeNotFound},
	{"column_mismatch", column.ErrColumnMismatch, connect.CodeInvalidArgument},
	{"invalid_grid", column.ErrInvalidGrid, connect.CodeInvalidArgument},
	{"unknown_column", column.ErrUnknownColumn, connect.CodeNotFound},
	{"unknown_power_up", powerup.ErrUnknownPowerUp, connect.CodeInvalidArgument},
	{"no_uses_remaining", powerup.ErrNoUsesRemaining, connect.CodeFailedPrecondition},
	{"power_up_not_implemented", powerup.ErrNotImplemented, connect.CodeUnimplemented},
	{"invalid_target", powerup.ErrInvalidTarget, connect.CodeInvalidArgument},
	{"power_ups_not_found", powerup.ErrNotFound, connect.CodeNotFound},
	{"unknown_event", event.ErrUnknownEvent, connect.CodeInvalidArgument},
	{"room_not_found", room.ErrRoomNotFound, connect.CodeNotFound},
	{"room_full", room.ErrRoomFull, connect.CodeFailedPrecondition},
	{"game_started", room.ErrGameStarted, connect.CodeFailedPrecondition},
	{"not_enough_players", room.ErrNotEnoughPlayers, connect.CodeFailedPrecondition},
	{"game_not_active", room.ErrGameNotActive, connect.CodeFailedPrecondition},
	{"not_your_turn", room.ErrNotYourTurn, connect.CodePermissionDenied},
	{"invalid_column", room.ErrInvalidColumn, connect.CodeInvalidArgument},
	{"player_not_found", room.ErrPlayerNotFound, connect.CodeNotFound},
	{"events_disabled", room.ErrEventsDisabled, connect.CodeFailedPrecondition},
}

// RemoteError is a failed call rebuilt on the client side. It unwraps to
// the domain errors the server reported.
type RemoteError struct {
	Code    connect.Code
	Message string
	errs    []error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() []error { return e.errs }

// toConnect turns a domain error into a connect error tagged with the
// kinds of every sentinel it wraps.
func toConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}
	var kinds []string
	for _, s := range sentinels {
		if !errors.Is(err, s.err) {
			continue
		}
		if kinds == nil {
			code = s.code
		}
		kinds = append(kinds, s.kind)
	}

	ce = connect.NewError(code, err)
	for _, k := range kinds {
		ce.Meta().Add(errorKindHeader, k)
	}
	return ce
}

func fromConnect(err error) error {
	var ce *connect.Error
	if !errors.As(err, &ce) {
		return err
	}
	re := &RemoteError{Code: ce.Code(), Message: ce.Message()}
	if re.Message == "" {
		re.Message = ce.Error()
	}
	for _, k := range ce.Meta().Values(errorKindHeader) {
		for _, s := range sentinels {
			if s.kind == k {
				re.errs = append(re.errs, s.err)
			}
		}
	}
	return re
}

func errorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			res, err := next(ctx, req)
			if err == nil {
				return res, nil
			}
			if req.Spec().IsClient {
				return nil, fromConnect(err)
			}
			return nil, toConnect(err)
		}
	}
}
