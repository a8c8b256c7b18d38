package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/event"
	"go-connect4/domain/room"
)

const CoordinatorServiceName = "connect4.v1.CoordinatorService"

const (
	CoordinatorServiceCreateRoomProcedure  = "/connect4.v1.CoordinatorService/CreateRoom"
	CoordinatorServiceJoinRoomProcedure    = "/connect4.v1.CoordinatorService/JoinRoom"
	CoordinatorServiceStartGameProcedure   = "/connect4.v1.CoordinatorService/StartGame"
	CoordinatorServiceListRoomsProcedure   = "/connect4.v1.CoordinatorService/ListRooms"
	CoordinatorServiceGetRoomProcedure     = "/connect4.v1.CoordinatorService/GetRoom"
	CoordinatorServiceNotifyEventProcedure = "/connect4.v1.CoordinatorService/NotifyEvent"
)

type CoordinatorServiceHandler interface {
	CreateRoom(context.Context, *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error)
	JoinRoom(context.Context, *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error)
	StartGame(context.Context, *connect.Request[api.StartGameRequest]) (*connect.Response[api.StartGameResponse], error)
	ListRooms(context.Context, *connect.Request[api.Empty]) (*connect.Response[api.ListRoomsResponse], error)
	GetRoom(context.Context, *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error)
	NotifyEvent(context.Context, *connect.Request[api.NotifyEventRequest]) (*connect.Response[api.Empty], error)
}

func NewCoordinatorServiceHandler(svc CoordinatorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(CoordinatorServiceCreateRoomProcedure, connect.NewUnaryHandler(CoordinatorServiceCreateRoomProcedure, svc.CreateRoom, opts...))
	mux.Handle(CoordinatorServiceJoinRoomProcedure, connect.NewUnaryHandler(CoordinatorServiceJoinRoomProcedure, svc.JoinRoom, opts...))
	mux.Handle(CoordinatorServiceStartGameProcedure, connect.NewUnaryHandler(CoordinatorServiceStartGameProcedure, svc.StartGame, opts...))
	mux.Handle(CoordinatorServiceListRoomsProcedure, connect.NewUnaryHandler(CoordinatorServiceListRoomsProcedure, svc.ListRooms, opts...))
	mux.Handle(CoordinatorServiceGetRoomProcedure, connect.NewUnaryHandler(CoordinatorServiceGetRoomProcedure, svc.GetRoom, opts...))
	mux.Handle(CoordinatorServiceNotifyEventProcedure, connect.NewUnaryHandler(CoordinatorServiceNotifyEventProcedure, svc.NotifyEvent, opts...))
	return "/" + CoordinatorServiceName + "/", mux
}

// CoordinatorClient calls the coordinator's room API. The event service
// uses it as its event.Notifier.
type CoordinatorClient struct {
	createRoom  *connect.Client[api.CreateRoomRequest, api.RoomResponse]
	joinRoom    *connect.Client[api.JoinRoomRequest, api.JoinRoomResponse]
	startGame   *connect.Client[api.StartGameRequest, api.StartGameResponse]
	listRooms   *connect.Client[api.Empty, api.ListRoomsResponse]
	getRoom     *connect.Client[api.GetRoomRequest, api.RoomResponse]
	notifyEvent *connect.Client[api.NotifyEventRequest, api.Empty]
}

var _ event.Notifier = (*CoordinatorClient)(nil)

func NewCoordinatorClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CoordinatorClient {
	opts = clientOptions(opts)
	return &CoordinatorClient{
		createRoom:  connect.NewClient[api.CreateRoomRequest, api.RoomResponse](httpClient, baseURL+CoordinatorServiceCreateRoomProcedure, opts...),
		joinRoom:    connect.NewClient[api.JoinRoomRequest, api.JoinRoomResponse](httpClient, baseURL+CoordinatorServiceJoinRoomProcedure, opts...),
		startGame:   connect.NewClient[api.StartGameRequest, api.StartGameResponse](httpClient, baseURL+CoordinatorServiceStartGameProcedure, opts...),
		listRooms:   connect.NewClient[api.Empty, api.ListRoomsResponse](httpClient, baseURL+CoordinatorServiceListRoomsProcedure, opts...),
		getRoom:     connect.NewClient[api.GetRoomRequest, api.RoomResponse](httpClient, baseURL+CoordinatorServiceGetRoomProcedure, opts...),
		notifyEvent: connect.NewClient[api.NotifyEventRequest, api.Empty](httpClient, baseURL+CoordinatorServiceNotifyEventProcedure, opts...),
	}
}

func (c *CoordinatorClient) CreateRoom(ctx context.Context, params room.CreateParams) (room.Room, error) {
	res, err := call(ctx, c.createRoom, &api.CreateRoomRequest{
		Name:                params.Name,
		MaxPlayers:          params.MaxPlayers,
		RandomEventsEnabled: params.RandomEventsEnabled,
	})
	if err != nil {
		return room.Room{}, err
	}
	return res.Room, nil
}

func (c *CoordinatorClient) JoinRoom(ctx context.Context, roomID, name, color string) (room.Player, room.Room, error) {
	res, err := call(ctx, c.joinRoom, &api.JoinRoomRequest{RoomID: roomID, PlayerName: name, Color: color})
	if err != nil {
		return room.Player{}, room.Room{}, err
	}
	return res.Player, res.Room, nil
}

func (c *CoordinatorClient) StartGame(ctx context.Context, roomID string) (room.Room, []string, error) {
	res, err := call(ctx, c.startGame, &api.StartGameRequest{RoomID: roomID})
	if err != nil {
		return room.Room{}, nil, err
	}
	return res.Room, res.Degraded, nil
}

func (c *CoordinatorClient) ListRooms(ctx context.Context) ([]room.Room, error) {
	res, err := call(ctx, c.listRooms, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

func (c *CoordinatorClient) GetRoom(ctx context.Context, roomID string) (room.Room, error) {
	res, err := call(ctx, c.getRoom, &api.GetRoomRequest{RoomID: roomID})
	if err != nil {
		return room.Room{}, err
	}
	return res.Room, nil
}

func (c *CoordinatorClient) NotifyEvent(ctx context.Context, t event.Trigger) error {
	_, err := call(ctx, c.notifyEvent, api.NewNotifyEventRequest(t))
	return err
}
