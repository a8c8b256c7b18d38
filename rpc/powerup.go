package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/powerup"
)

const PowerUpServiceName = "connect4.v1.PowerUpService"

const (
	PowerUpServiceInitializeProcedure = "/connect4.v1.PowerUpService/Initialize"
	PowerUpServiceInventoryProcedure  = "/connect4.v1.PowerUpService/GetInventory"
	PowerUpServiceUseProcedure        = "/connect4.v1.PowerUpService/UsePowerUp"
	PowerUpServiceGrantProcedure      = "/connect4.v1.PowerUpService/GrantPowerUp"
	PowerUpServiceReleaseProcedure    = "/connect4.v1.PowerUpService/ReleaseRoom"
)

type PowerUpServiceHandler interface {
	Initialize(context.Context, *connect.Request[api.InitializePowerUpsRequest]) (*connect.Response[api.InventoryResponse], error)
	GetInventory(context.Context, *connect.Request[api.InventoryRequest]) (*connect.Response[api.InventoryResponse], error)
	UsePowerUp(context.Context, *connect.Request[api.UsePowerUpRequest]) (*connect.Response[api.UsePowerUpResponse], error)
	GrantPowerUp(context.Context, *connect.Request[api.GrantPowerUpRequest]) (*connect.Response[api.InventoryResponse], error)
	ReleaseRoom(context.Context, *connect.Request[api.ReleaseRoomRequest]) (*connect.Response[api.Empty], error)
}

func NewPowerUpServiceHandler(svc PowerUpServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(PowerUpServiceInitializeProcedure, connect.NewUnaryHandler(PowerUpServiceInitializeProcedure, svc.Initialize, opts...))
	mux.Handle(PowerUpServiceInventoryProcedure, connect.NewUnaryHandler(PowerUpServiceInventoryProcedure, svc.GetInventory, opts...))
	mux.Handle(PowerUpServiceUseProcedure, connect.NewUnaryHandler(PowerUpServiceUseProcedure, svc.UsePowerUp, opts...))
	mux.Handle(PowerUpServiceGrantProcedure, connect.NewUnaryHandler(PowerUpServiceGrantProcedure, svc.GrantPowerUp, opts...))
	mux.Handle(PowerUpServiceReleaseProcedure, connect.NewUnaryHandler(PowerUpServiceReleaseProcedure, svc.ReleaseRoom, opts...))
	return "/" + PowerUpServiceName + "/", mux
}

// PowerUpClient reaches the remote power-up ledger. It satisfies
// powerup.Service.
type PowerUpClient struct {
	initialize *connect.Client[api.InitializePowerUpsRequest, api.InventoryResponse]
	inventory  *connect.Client[api.InventoryRequest, api.InventoryResponse]
	use        *connect.Client[api.UsePowerUpRequest, api.UsePowerUpResponse]
	grant      *connect.Client[api.GrantPowerUpRequest, api.InventoryResponse]
	release    *connect.Client[api.ReleaseRoomRequest, api.Empty]
}

var _ powerup.Service = (*PowerUpClient)(nil)

func NewPowerUpClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PowerUpClient {
	opts = clientOptions(opts)
	return &PowerUpClient{
		initialize: connect.NewClient[api.InitializePowerUpsRequest, api.InventoryResponse](httpClient, baseURL+PowerUpServiceInitializeProcedure, opts...),
		inventory:  connect.NewClient[api.InventoryRequest, api.InventoryResponse](httpClient, baseURL+PowerUpServiceInventoryProcedure, opts...),
		use:        connect.NewClient[api.UsePowerUpRequest, api.UsePowerUpResponse](httpClient, baseURL+PowerUpServiceUseProcedure, opts...),
		grant:      connect.NewClient[api.GrantPowerUpRequest, api.InventoryResponse](httpClient, baseURL+PowerUpServiceGrantProcedure, opts...),
		release:    connect.NewClient[api.ReleaseRoomRequest, api.Empty](httpClient, baseURL+PowerUpServiceReleaseProcedure, opts...),
	}
}

func (c *PowerUpClient) Initialize(ctx context.Context, roomID, playerID string) (powerup.Inventory, error) {
	return inventory(call(ctx, c.initialize, &api.InitializePowerUpsRequest{RoomID: roomID, PlayerID: playerID}))
}

func (c *PowerUpClient) Inventory(ctx context.Context, roomID, playerID string) (powerup.Inventory, error) {
	return inventory(call(ctx, c.inventory, &api.InventoryRequest{RoomID: roomID, PlayerID: playerID}))
}

func (c *PowerUpClient) Use(ctx context.Context, roomID, playerID string, kind powerup.Kind, target powerup.Target) (powerup.UseResult, error) {
	res, err := call(ctx, c.use, &api.UsePowerUpRequest{
		RoomID:     roomID,
		PlayerID:   playerID,
		PowerUpID:  kind,
		TargetData: target,
	})
	if err != nil {
		return powerup.UseResult{}, err
	}
	return res.Result, nil
}

func (c *PowerUpClient) Grant(ctx context.Context, roomID, playerID string, kind powerup.Kind, uses int) (powerup.Inventory, error) {
	return inventory(call(ctx, c.grant, &api.GrantPowerUpRequest{
		RoomID:    roomID,
		PlayerID:  playerID,
		PowerUpID: kind,
		Uses:      uses,
	}))
}

func (c *PowerUpClient) Release(ctx context.Context, roomID string) error {
	_, err := call(ctx, c.release, &api.ReleaseRoomRequest{RoomID: roomID})
	return err
}

func inventory(res *api.InventoryResponse, err error) (powerup.Inventory, error) {
	if err != nil {
		return powerup.Inventory{}, err
	}
	return res.Inventory, nil
}
