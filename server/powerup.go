package server

import (
	"context"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/powerup"
)

type PowerUpServer struct {
	Service powerup.Service
}

func (s *PowerUpServer) Initialize(ctx context.Context, req *connect.Request[api.InitializePowerUpsRequest]) (*connect.Response[api.InventoryResponse], error) {
	return inventoryResponse(s.Service.Initialize(ctx, req.Msg.RoomID, req.Msg.PlayerID))
}

func (s *PowerUpServer) GetInventory(ctx context.Context, req *connect.Request[api.InventoryRequest]) (*connect.Response[api.InventoryResponse], error) {
	return inventoryResponse(s.Service.Inventory(ctx, req.Msg.RoomID, req.Msg.PlayerID))
}

func (s *PowerUpServer) UsePowerUp(ctx context.Context, req *connect.Request[api.UsePowerUpRequest]) (*connect.Response[api.UsePowerUpResponse], error) {
	res, err := s.Service.Use(ctx, req.Msg.RoomID, req.Msg.PlayerID, req.Msg.PowerUpID, req.Msg.TargetData)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.UsePowerUpResponse{Result: res}), nil
}

func (s *PowerUpServer) GrantPowerUp(ctx context.Context, req *connect.Request[api.GrantPowerUpRequest]) (*connect.Response[api.InventoryResponse], error) {
	return inventoryResponse(s.Service.Grant(ctx, req.Msg.RoomID, req.Msg.PlayerID, req.Msg.PowerUpID, req.Msg.Uses))
}

func (s *PowerUpServer) ReleaseRoom(ctx context.Context, req *connect.Request[api.ReleaseRoomRequest]) (*connect.Response[api.Empty], error) {
	if err := s.Service.Release(ctx, req.Msg.RoomID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.Empty{}), nil
}

func inventoryResponse(inv powerup.Inventory, err error) (*connect.Response[api.InventoryResponse], error) {
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.InventoryResponse{Inventory: inv}), nil
}
