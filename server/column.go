package server

import (
	"context"

	"connectrpc.com/connect"

	"go-connect4/api"
	"go-connect4/domain/column"
)

// ColumnServer exposes one column state machine over connect.
type ColumnServer struct {
	Service column.Service
}

func (s *ColumnServer) Init(ctx context.Context, req *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error) {
	return gridResponse(s.Service.Init(ctx, req.Msg.RoomID))
}

func (s *ColumnServer) GetState(ctx context.Context, req *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error) {
	return gridResponse(s.Service.State(ctx, req.Msg.RoomID))
}

func (s *ColumnServer) SetState(ctx context.Context, req *connect.Request[api.SetColumnStateRequest]) (*connect.Response[api.GridResponse], error) {
	return gridResponse(s.Service.SetState(ctx, req.Msg.RoomID, req.Msg.Grid))
}

func (s *ColumnServer) DropDisc(ctx context.Context, req *connect.Request[api.DropDiscRequest]) (*connect.Response[api.DropDiscResponse], error) {
	row, err := s.Service.Drop(ctx, req.Msg.RoomID, req.Msg.PlayerID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.DropDiscResponse{Row: row}), nil
}

func (s *ColumnServer) Block(ctx context.Context, req *connect.Request[api.BlockColumnRequest]) (*connect.Response[api.GridResponse], error) {
	return gridResponse(s.Service.Block(ctx, req.Msg.RoomID, req.Msg.Turns))
}

func (s *ColumnServer) FlipGravity(ctx context.Context, req *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error) {
	return gridResponse(s.Service.Flip(ctx, req.Msg.RoomID))
}

func (s *ColumnServer) Bomb(ctx context.Context, req *connect.Request[api.ColumnRequest]) (*connect.Response[api.GridResponse], error) {
	return gridResponse(s.Service.Bomb(ctx, req.Msg.RoomID))
}

func (s *ColumnServer) Release(ctx context.Context, req *connect.Request[api.ColumnRequest]) (*connect.Response[api.Empty], error) {
	if err := s.Service.Release(ctx, req.Msg.RoomID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.Empty{}), nil
}

func gridResponse(g column.Grid, err error) (*connect.Response[api.GridResponse], error) {
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GridResponse{Grid: g}), nil
}
