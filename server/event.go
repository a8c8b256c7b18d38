package server

import (
	"context"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/event"
)

type EventServer struct {
	Service event.Service
}

func (s *EventServer) Initialize(ctx context.Context, req *connect.Request[api.InitializeEventsRequest]) (*connect.Response[api.Empty], error) {
	if err := s.Service.Initialize(ctx, req.Msg.RoomID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *EventServer) TurnCompleted(ctx context.Context, req *connect.Request[api.TurnCompletedRequest]) (*connect.Response[api.TurnCompletedResponse], error) {
	out, err := s.Service.TurnCompleted(ctx, req.Msg.RoomID, req.Msg.PlayerID, req.Msg.NextPlayerID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.TurnCompletedResponse{Outcome: out}), nil
}

func (s *EventServer) GetActiveEvents(ctx context.Context, req *connect.Request[api.ActiveEventsRequest]) (*connect.Response[api.ActiveEventsResponse], error) {
	events, err := s.Service.ActiveEvents(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ActiveEventsResponse{Events: events}), nil
}

func (s *EventServer) TriggerEvent(ctx context.Context, req *connect.Request[api.TriggerEventRequest]) (*connect.Response[api.TriggerEventResponse], error) {
	t, err := s.Service.Trigger(ctx, req.Msg.RoomID, req.Msg.EventID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.TriggerEventResponse{Trigger: t}), nil
}

func (s *EventServer) ReleaseRoom(ctx context.Context, req *connect.Request[api.ReleaseRoomRequest]) (*connect.Response[api.Empty], error) {
	if err := s.Service.Release(ctx, req.Msg.RoomID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.Empty{}), nil
}
