package server

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"

	"go-connect4/api"
	"go-connect4/domain/room"
	"go-connect4/realtime"
	"go-connect4/rpc"
)

var (
	_ rpc.CoordinatorServiceHandler = (*Server)(nil)
	_ rpc.ColumnServiceHandler      = (*ColumnServer)(nil)
	_ rpc.PowerUpServiceHandler     = (*PowerUpServer)(nil)
	_ rpc.EventServiceHandler       = (*EventServer)(nil)
)

// Coordinator is the room service the coordinator server fronts.
type Coordinator interface {
	room.Service
	PlayerRoom(playerID string) (string, bool)
	HandleClientMessage(ctx context.Context, roomID, playerID string, data []byte) error
}

type Server struct {
	RoomService Coordinator
	Hub         *realtime.Hub
	Upgrader    websocket.Upgrader
	log         *slog.Logger
}

func New(rooms Coordinator, hub *realtime.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		RoomService: rooms,
		Hub:         hub,
		Upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:         logger,
	}
}

func (s *Server) CreateRoom(ctx context.Context, req *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	r, err := s.RoomService.CreateRoom(ctx, room.CreateParams{
		Name:                req.Msg.Name,
		MaxPlayers:          req.Msg.MaxPlayers,
		RandomEventsEnabled: req.Msg.RandomEventsEnabled,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&api.RoomResponse{Room: r}), nil
}

func (s *Server) JoinRoom(ctx context.Context, req *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error) {
	p, r, err := s.RoomService.JoinRoom(ctx, req.Msg.RoomID, req.Msg.PlayerName, req.Msg.Color)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.JoinRoomResponse{Player: p, Room: r}), nil
}

func (s *Server) StartGame(ctx context.Context, req *connect.Request[api.StartGameRequest]) (*connect.Response[api.StartGameResponse], error) {
	r, degraded, err := s.RoomService.StartGame(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.StartGameResponse{Room: r, Degraded: degraded}), nil
}

func (s *Server) ListRooms(ctx context.Context, _ *connect.Request[api.Empty]) (*connect.Response[api.ListRoomsResponse], error) {
	return connect.NewResponse(&api.ListRoomsResponse{Rooms: s.RoomService.ListRooms(ctx)}), nil
}

func (s *Server) GetRoom(ctx context.Context, req *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	r, err := s.RoomService.GetRoom(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RoomResponse{Room: r}), nil
}

func (s *Server) NotifyEvent(ctx context.Context, req *connect.Request[api.NotifyEventRequest]) (*connect.Response[api.Empty], error) {
	if err := s.RoomService.NotifyEvent(ctx, req.Msg.Trigger()); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.Empty{}), nil
}

// ServeWS upgrades GET /ws/{playerID} and feeds the player's frames to the
// room service until the socket closes. Errors go back to the sender only.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerID")
	roomID, ok := s.RoomService.PlayerRoom(playerID)
	if !ok {
		http.Error(w, room.ErrPlayerNotFound.Error(), http.StatusNotFound)
		return
	}

	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", slog.String("player", playerID), slog.String("error", err.Error()))
		return
	}
	s.Hub.Connect(playerID, conn)

	// the request context ends with the handler, not the socket
	ctx := context.WithoutCancel(r.Context())
	defer func() {
		conn.Close()
		if s.Hub.Disconnect(playerID, conn) {
			s.RoomService.Disconnect(ctx, roomID, playerID)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", slog.String("player", playerID), slog.String("error", err.Error()))
			}
			return
		}
		if err := s.RoomService.HandleClientMessage(ctx, roomID, playerID, data); err != nil {
			if sendErr := s.Hub.SendTo(playerID, room.NewErrorMessage(err)); sendErr != nil {
				s.log.Warn("error reply failed", slog.String("player", playerID), slog.String("error", sendErr.Error()))
			}
		}
	}
}
