package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/event"
)

const EventServiceName = "connect4.v1.EventService"

const (
	EventServiceInitializeProcedure    = "/connect4.v1.EventService/Initialize"
	EventServiceTurnCompletedProcedure = "/connect4.v1.EventService/TurnCompleted"
	EventServiceActiveEventsProcedure  = "/connect4.v1.EventService/GetActiveEvents"
	EventServiceTriggerProcedure       = "/connect4.v1.EventService/TriggerEvent"
	EventServiceReleaseProcedure       = "/connect4.v1.EventService/ReleaseRoom"
)

type EventServiceHandler interface {
	Initialize(context.Context, *connect.Request[api.InitializeEventsRequest]) (*connect.Response[api.Empty], error)
	TurnCompleted(context.Context, *connect.Request[api.TurnCompletedRequest]) (*connect.Response[api.TurnCompletedResponse], error)
	GetActiveEvents(context.Context, *connect.Request[api.ActiveEventsRequest]) (*connect.Response[api.ActiveEventsResponse], error)
	TriggerEvent(context.Context, *connect.Request[api.TriggerEventRequest]) (*connect.Response[api.TriggerEventResponse], error)
	ReleaseRoom(context.Context, *connect.Request[api.ReleaseRoomRequest]) (*connect.Response[api.Empty], error)
}

func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(EventServiceInitializeProcedure, connect.NewUnaryHandler(EventServiceInitializeProcedure, svc.Initialize, opts...))
	mux.Handle(EventServiceTurnCompletedProcedure, connect.NewUnaryHandler(EventServiceTurnCompletedProcedure, svc.TurnCompleted, opts...))
	mux.Handle(EventServiceActiveEventsProcedure, connect.NewUnaryHandler(EventServiceActiveEventsProcedure, svc.GetActiveEvents, opts...))
	mux.Handle(EventServiceTriggerProcedure, connect.NewUnaryHandler(EventServiceTriggerProcedure, svc.TriggerEvent, opts...))
	mux.Handle(EventServiceReleaseProcedure, connect.NewUnaryHandler(EventServiceReleaseProcedure, svc.ReleaseRoom, opts...))
	return "/" + EventServiceName + "/", mux
}

// EventClient reaches the remote event scheduler. It satisfies
// event.Service.
type EventClient struct {
	initialize    *connect.Client[api.InitializeEventsRequest, api.Empty]
	turnCompleted *connect.Client[api.TurnCompletedRequest, api.TurnCompletedResponse]
	active        *connect.Client[api.ActiveEventsRequest, api.ActiveEventsResponse]
	trigger       *connect.Client[api.TriggerEventRequest, api.TriggerEventResponse]
	release       *connect.Client[api.ReleaseRoomRequest, api.Empty]
}

var _ event.Service = (*EventClient)(nil)

func NewEventClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EventClient {
	opts = clientOptions(opts)
	return &EventClient{
		initialize:    connect.NewClient[api.InitializeEventsRequest, api.Empty](httpClient, baseURL+EventServiceInitializeProcedure, opts...),
		turnCompleted: connect.NewClient[api.TurnCompletedRequest, api.TurnCompletedResponse](httpClient, baseURL+EventServiceTurnCompletedProcedure, opts...),
		active:        connect.NewClient[api.ActiveEventsRequest, api.ActiveEventsResponse](httpClient, baseURL+EventServiceActiveEventsProcedure, opts...),
		trigger:       connect.NewClient[api.TriggerEventRequest, api.TriggerEventResponse](httpClient, baseURL+EventServiceTriggerProcedure, opts...),
		release:       connect.NewClient[api.ReleaseRoomRequest, api.Empty](httpClient, baseURL+EventServiceReleaseProcedure, opts...),
	}
}

func (c *EventClient) Initialize(ctx context.Context, roomID string) error {
	_, err := call(ctx, c.initialize, &api.InitializeEventsRequest{RoomID: roomID})
	return err
}

func (c *EventClient) TurnCompleted(ctx context.Context, roomID, playerID, nextPlayerID string) (event.TurnOutcome, error) {
	res, err := call(ctx, c.turnCompleted, &api.TurnCompletedRequest{
		RoomID:       roomID,
		PlayerID:     playerID,
		NextPlayerID: nextPlayerID,
	})
	if err != nil {
		return event.TurnOutcome{}, err
	}
	return res.Outcome, nil
}

func (c *EventClient) ActiveEvents(ctx context.Context, roomID string) ([]event.ActiveEvent, error) {
	res, err := call(ctx, c.active, &api.ActiveEventsRequest{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

func (c *EventClient) Trigger(ctx context.Context, roomID, eventID string) (event.Trigger, error) {
	res, err := call(ctx, c.trigger, &api.TriggerEventRequest{RoomID: roomID, EventID: eventID})
	if err != nil {
		return event.Trigger{}, err
	}
	return res.Trigger, nil
}

func (c *EventClient) Release(ctx context.Context, roomID string) error {
	_, err := call(ctx, c.release, &api.ReleaseRoomRequest{RoomID: roomID})
	return err
}
