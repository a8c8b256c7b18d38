package rpc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/column"
)

const ColumnServiceName = "connect4.v1.ColumnService"

const (
	ColumnServiceInitProcedure     = "/connect4.v1.ColumnService/Init"
	ColumnServiceStateProcedure    = "/connect4.v1.ColumnService/GetState"
	ColumnServiceSetStateProcedure = "/connect4.v1.ColumnService/SetState"
	ColumnServiceDropProcedure     = "/connect4.v1.ColumnService/DropDisc"
	ColumnServiceBlockProcedure    = "/connect4.v1.ColumnService/Block"
	ColumnServiceFlipProcedure     = "/connect4.v1.ColumnService/FlipGravity"
	ColumnServiceBombProcedure     = "/connect4.v1.ColumnService/Bomb"
	ColumnServiceReleaseProcedure  = "/connect4.v1.ColumnService/Release"
)

type ColumnServiceHandler interface {
	Init(context.Context, *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error)
	GetState(context.Context, *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error)
	SetState(context.Context, *connect.Request[api.SetColumnStateRequest]) (*connect.Response[api.GridResponse], error)
	DropDisc(context.Context, *connect.Request[api.DropDiscRequest]) (*connect.Response[api.DropDiscResponse], error)
	Block(context.Context, *connect.Request[api.BlockColumnRequest]) (*connect.Response[api.GridResponse], error)
	FlipGravity(context.Context, *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error)
	Bomb(context.Context, *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error)
	Release(context.Context, *connect.Request[api.ColumnRequest]) (*connect.Response[api.Empty], error)
}

func NewColumnServiceHandler(svc ColumnServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ColumnServiceInitProcedure, connect.NewUnaryHandler(ColumnServiceInitProcedure, svc.Init, opts...))
	mux.Handle(ColumnServiceStateProcedure, connect.NewUnaryHandler(ColumnServiceStateProcedure, svc.GetState, opts...))
	mux.Handle(ColumnServiceSetStateProcedure, connect.NewUnaryHandler(ColumnServiceSetStateProcedure, svc.SetState, opts...))
	mux.Handle(ColumnServiceDropProcedure, connect.NewUnaryHandler(ColumnServiceDropProcedure, svc.DropDisc, opts...))
	mux.Handle(ColumnServiceBlockProcedure, connect.NewUnaryHandler(ColumnServiceBlockProcedure, svc.Block, opts...))
	mux.Handle(ColumnServiceFlipProcedure, connect.NewUnaryHandler(ColumnServiceFlipProcedure, svc.FlipGravity, opts...))
	mux.Handle(ColumnServiceBombProcedure, connect.NewUnaryHandler(ColumnServiceBombProcedure, svc.Bomb, opts...))
	mux.Handle(ColumnServiceReleaseProcedure, connect.NewUnaryHandler(ColumnServiceReleaseProcedure, svc.Release, opts...))
	return "/" + ColumnServiceName + "/", mux
}

// ColumnClient reaches a remote column service. It satisfies
// column.Service.
type ColumnClient struct {
	init     *connect.Client[api.ColumnRequest, api.GridResponse]
	state    *connect.Client[api.ColumnRequest, api.GridResponse]
	setState *connect.Client[api.SetColumnStateRequest, api.GridResponse]
	drop     *connect.Client[api.DropDiscRequest, api.DropDiscResponse]
	block    *connect.Client[api.BlockColumnRequest, api.GridResponse]
	flip     *connect.Client[api.ColumnRequest, api.GridResponse]
	bomb     *connect.Client[api.ColumnRequest, api.GridResponse]
	release  *connect.Client[api.ColumnRequest, api.Empty]
}

var _ column.Service = (*ColumnClient)(nil)

func NewColumnClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ColumnClient {
	opts = clientOptions(opts)
	return &ColumnClient{
		init:     connect.NewClient[api.ColumnRequest, api.GridResponse](httpClient, baseURL+ColumnServiceInitProcedure, opts...),
		state:    connect.NewClient[api.ColumnRequest, api.GridResponse](httpClient, baseURL+ColumnServiceStateProcedure, opts...),
		setState: connect.NewClient[api.SetColumnStateRequest, api.GridResponse](httpClient, baseURL+ColumnServiceSetStateProcedure, opts...),
		drop:     connect.NewClient[api.DropDiscRequest, api.DropDiscResponse](httpClient, baseURL+ColumnServiceDropProcedure, opts...),
		block:    connect.NewClient[api.BlockColumnRequest, api.GridResponse](httpClient, baseURL+ColumnServiceBlockProcedure, opts...),
		flip:     connect.NewClient[api.ColumnRequest, api.GridResponse](httpClient, baseURL+ColumnServiceFlipProcedure, opts...),
		bomb:     connect.NewClient[api.ColumnRequest, api.GridResponse](httpClient, baseURL+ColumnServiceBombProcedure, opts...),
		release:  connect.NewClient[api.ColumnRequest, api.Empty](httpClient, baseURL+ColumnServiceReleaseProcedure, opts...),
	}
}

func (c *ColumnClient) Init(ctx context.Context, roomID string) (column.Grid, error) {
	return grid(call(ctx, c.init, &api.ColumnRequest{RoomID: roomID}))
}

func (c *ColumnClient) State(ctx context.Context, roomID string) (column.Grid, error) {
	return grid(call(ctx, c.state, &api.ColumnRequest{RoomID: roomID}))
}

func (c *ColumnClient) SetState(ctx context.Context, roomID string, g column.Grid) (column.Grid, error) {
	return grid(call(ctx, c.setState, &api.SetColumnStateRequest{RoomID: roomID, Grid: g}))
}

func (c *ColumnClient) Drop(ctx context.Context, roomID, playerID string) (int, error) {
	res, err := call(ctx, c.drop, &api.DropDiscRequest{RoomID: roomID, PlayerID: playerID})
	if err != nil {
		return 0, err
	}
	return res.Row, nil
}

func (c *ColumnClient) Block(ctx context.Context, roomID string, turns int) (column.Grid, error) {
	return grid(call(ctx, c.block, &api.BlockColumnRequest{RoomID: roomID, Turns: turns}))
}

func (c *ColumnClient) Flip(ctx context.Context, roomID string) (column.Grid, error) {
	return grid(call(ctx, c.flip, &api.ColumnRequest{RoomID: roomID}))
}

func (c *ColumnClient) Bomb(ctx context.Context, roomID string) (column.Grid, error) {
	return grid(call(ctx, c.bomb, &api.ColumnRequest{RoomID: roomID}))
}

func (c *ColumnClient) Release(ctx context.Context, roomID string) error {
	_, err := call(ctx, c.release, &api.ColumnRequest{RoomID: roomID})
	return err
}

func grid(res *api.GridResponse, err error) (column.Grid, error) {
	if err != nil {
		return column.Grid{}, err
	}
	return res.Grid, nil
}

// ColumnDialer opens ColumnClients for http(s) addresses.
type ColumnDialer struct {
	HTTPClient connect.HTTPClient
	Options    []connect.ClientOption
}

func (d ColumnDialer) Dial(address string) (column.Service, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", column.ErrUnknownColumn, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported address %q", column.ErrUnknownColumn, address)
	}
	httpClient := d.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return NewColumnClient(httpClient, address, d.Options...), nil
}
