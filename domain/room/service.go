package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"go-connect4/domain/board"
	"go-connect4/domain/column"
	"go-connect4/domain/event"
	"go-connect4/domain/powerup"
)

type Service interface {
	CreateRoom(ctx context.Context, params CreateParams) (Room, error)
	JoinRoom(ctx context.Context, roomID, name, color string) (Player, Room, error)
	StartGame(ctx context.Context, roomID string) (Room, []string, error)
	SubmitMove(ctx context.Context, roomID, playerID string, col int) (Move, error)
	UsePowerUp(ctx context.Context, roomID, playerID string, kind powerup.Kind, target powerup.Target) (powerup.UseResult, error)
	Chat(ctx context.Context, roomID, playerID, text string) error
	Disconnect(ctx context.Context, roomID, playerID string)
	NotifyEvent(ctx context.Context, t event.Trigger) error
	ListRooms(ctx context.Context) []Room
	GetRoom(ctx context.Context, roomID string) (Room, error)
}

// Broadcaster delivers realtime messages to connected players.
type Broadcaster interface {
	SendTo(playerID string, msg any) error
	Broadcast(playerIDs []string, msg any)
}

type CreateParams struct {
	Name                string
	MaxPlayers          int
	RandomEventsEnabled bool
}

// Move is the outcome of one accepted drop.
type Move struct {
	PlayerID string       `json:"player_id"`
	Column   int          `json:"column"`
	Row      int          `json:"row"`
	Result   board.Result `json:"result"`
	NextTurn string       `json:"next_turn,omitempty"`
}

type Deps struct {
	Columns   *column.Directory
	PowerUps  powerup.Service
	Events    event.Service
	Hub       Broadcaster
	Collector *board.Collector
	Logger    *slog.Logger
	// Backoff builds the retry policy for idempotent service calls.
	Backoff func() backoff.BackOff
}

// InMemoryService is the turn coordinator and session registry.
type InMemoryService struct {
	mu    *sync.RWMutex
	rooms map[string]*entry

	columns   *column.Directory
	powerUps  powerup.Service
	events    event.Service
	hub       Broadcaster
	collector *board.Collector
	backoff   func() backoff.BackOff
	log       *slog.Logger
}

func NewInMemoryService(d Deps) *InMemoryService {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Collector == nil {
		d.Collector = board.NewCollector(d.Logger)
	}
	if d.Backoff == nil {
		d.Backoff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			return backoff.WithMaxRetries(b, 2)
		}
	}
	return &InMemoryService{
		mu:        &sync.RWMutex{},
		rooms:     make(map[string]*entry),
		columns:   d.Columns,
		powerUps:  d.PowerUps,
		events:    d.Events,
		hub:       d.Hub,
		collector: d.Collector,
		backoff:   d.Backoff,
		log:       d.Logger,
	}
}

func (s *InMemoryService) CreateRoom(ctx context.Context, params CreateParams) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if params.MaxPlayers <= 0 {
		params.MaxPlayers = DefaultMaxPlayers
	}
	if params.MaxPlayers < MinPlayers {
		return Room{}, fmt.Errorf("max players must be at least %d", MinPlayers)
	}
	if params.Name == "" {
		params.Name = fmt.Sprintf("Game Room %d", len(s.rooms)+1)
	}

	r := Room{
		ID:                  uuid.New().String(),
		Name:                params.Name,
		Players:             []Player{},
		MaxPlayers:          params.MaxPlayers,
		Status:              StatusWaiting,
		ColumnNodes:         s.columns.Addresses(),
		RandomEventsEnabled: params.RandomEventsEnabled,
		CreatedAt:           time.Now().UTC(),
	}
	s.rooms[r.ID] = &entry{room: r}

	s.log.Info("room created", slog.String("room", r.ID), slog.String("name", r.Name))
	return r.clone(), nil
}

// JoinRoom seats a player in a waiting room. A requested colour is kept
// only when it is on the palette and free; otherwise the next free colour
// is assigned.
func (s *InMemoryService) JoinRoom(ctx context.Context, roomID, name, color string) (Player, Room, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return Player{}, Room{}, err
	}
	defer e.ops.Unlock()

	cur := e.snapshot()
	if cur.Status != StatusWaiting {
		return Player{}, Room{}, ErrGameStarted
	}
	if len(cur.Players) >= cur.MaxPlayers {
		return Player{}, Room{}, ErrRoomFull
	}

	p := Player{ID: uuid.New().String(), Name: name, Color: color}
	if p.Name == "" {
		p.Name = fmt.Sprintf("Player %d", len(cur.Players)+1)
	}
	if !cur.colorAvailable(p.Color) {
		p.Color = cur.nextColor()
	}
	r := e.update(func(r *Room) { r.Players = append(r.Players, p) })

	s.hub.Broadcast(r.playerIDs(), PlayerJoinedMessage{Type: TypePlayerJoined, Player: p})
	s.log.Info("player joined", slog.String("room", roomID), slog.String("player", p.ID))
	return p, r, nil
}

// StartGame activates the room and initializes every column, every
// player's power-ups and, when enabled, the event engine. Initialization
// failures are logged and returned as the degraded list; the game starts
// regardless.
func (s *InMemoryService) StartGame(ctx context.Context, roomID string) (Room, []string, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return Room{}, nil, err
	}
	defer e.ops.Unlock()

	cur := e.snapshot()
	if cur.Status != StatusWaiting {
		return Room{}, nil, ErrGameStarted
	}
	if len(cur.Players) < MinPlayers {
		return Room{}, nil, ErrNotEnoughPlayers
	}

	r := e.update(func(r *Room) {
		r.Status = StatusActive
		r.CurrentTurn = r.Players[0].ID
	})

	var degraded []string
	fail := func(what string, err error) {
		s.log.Warn("service initialization failed",
			slog.String("room", roomID),
			slog.String("target", what),
			slog.String("error", err.Error()),
		)
		degraded = append(degraded, fmt.Sprintf("%s: %v", what, err))
	}

	for _, id := range sortedColumnIDs(r.ColumnNodes) {
		col, err := s.columns.Dial(r.ColumnNodes[id])
		if err == nil {
			err = s.retry(ctx, func() error {
				_, err := col.Init(ctx, roomID)
				return err
			})
		}
		if err != nil {
			fail(fmt.Sprintf("column %d", id), err)
		}
	}
	for _, p := range r.Players {
		err := s.retry(ctx, func() error {
			_, err := s.powerUps.Initialize(ctx, roomID, p.ID)
			return err
		})
		if err != nil {
			fail("power-ups for "+p.ID, err)
		}
	}
	if r.RandomEventsEnabled {
		if err := s.retry(ctx, func() error { return s.events.Initialize(ctx, roomID) }); err != nil {
			fail("random events", err)
		}
	}

	s.hub.Broadcast(r.playerIDs(), GameStartedMessage{Type: TypeGameStarted, Room: r, CurrentTurn: r.CurrentTurn})
	s.log.Info("game started", slog.String("room", roomID), slog.Int("players", len(r.Players)))
	return r, degraded, nil
}

// SubmitMove drops a disc for the player holding the turn, checks the
// board and either ends the game or passes the turn on in join order.
func (s *InMemoryService) SubmitMove(ctx context.Context, roomID, playerID string, col int) (Move, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return Move{}, err
	}
	defer e.ops.Unlock()

	cur := e.snapshot()
	if cur.Status != StatusActive {
		return Move{}, ErrGameNotActive
	}
	if cur.CurrentTurn != playerID {
		return Move{}, ErrNotYourTurn
	}
	addr, ok := cur.ColumnNodes[col]
	if !ok {
		return Move{}, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	svc, err := s.columns.Dial(addr)
	if err != nil {
		return Move{}, fmt.Errorf("column %d unavailable: %w", col, err)
	}
	row, err := svc.Drop(ctx, roomID, playerID)
	if err != nil {
		return Move{}, err
	}

	move := Move{PlayerID: playerID, Column: col, Row: row}
	move.Result = s.collector.Check(ctx, roomID, s.dialColumns(roomID, cur.ColumnNodes))

	if move.Result.Over() {
		r := e.update(func(r *Room) { r.Status = StatusFinished })
		s.hub.Broadcast(r.playerIDs(), GameOverMessage{
			Type:      TypeGameOver,
			Winner:    move.Result.Winner,
			WinType:   move.Result.Type,
			Positions: move.Result.Positions,
		})
		s.log.Info("game over",
			slog.String("room", roomID),
			slog.String("winner", move.Result.Winner),
			slog.String("win_type", string(move.Result.Type)),
		)
		return move, nil
	}

	next := cur.Players[(cur.indexOf(playerID)+1)%len(cur.Players)].ID
	r := e.update(func(r *Room) { r.CurrentTurn = next })
	move.NextTurn = next

	if r.RandomEventsEnabled {
		// runs without e.mu so the scheduler can call NotifyEvent back
		if _, err := s.events.TurnCompleted(ctx, roomID, playerID, next); err != nil {
			s.log.Warn("random event engine unreachable",
				slog.String("room", roomID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.hub.Broadcast(r.playerIDs(), MoveMadeMessage{
		Type:     TypeMoveMade,
		PlayerID: playerID,
		Column:   col,
		Row:      row,
		NextTurn: next,
	})
	return move, nil
}

// UsePowerUp spends a power-up outside the normal turn order.
func (s *InMemoryService) UsePowerUp(ctx context.Context, roomID, playerID string, kind powerup.Kind, target powerup.Target) (powerup.UseResult, error) {
	e, err := s.lock(roomID)
	if err != nil {
		return powerup.UseResult{}, err
	}
	defer e.ops.Unlock()

	cur := e.snapshot()
	if cur.Status != StatusActive {
		return powerup.UseResult{}, ErrGameNotActive
	}
	if cur.indexOf(playerID) < 0 {
		return powerup.UseResult{}, ErrPlayerNotFound
	}

	res, err := s.powerUps.Use(ctx, roomID, playerID, kind, target)
	if err != nil {
		return powerup.UseResult{}, err
	}
	s.hub.Broadcast(cur.playerIDs(), PowerUpUsedMessage{
		Type:          TypePowerUpUsed,
		PlayerID:      playerID,
		PowerUpID:     kind,
		Effect:        res.Effect,
		RemainingUses: res.PowerUp.RemainingUses,
	})
	return res, nil
}

func (s *InMemoryService) Chat(ctx context.Context, roomID, playerID, text string) error {
	e, err := s.entry(roomID)
	if err != nil {
		return err
	}
	cur := e.snapshot()
	if cur.indexOf(playerID) < 0 {
		return ErrPlayerNotFound
	}
	s.hub.Broadcast(cur.playerIDs(), ChatMessage{Type: TypeChat, PlayerID: playerID, Message: text})
	return nil
}

// Disconnect removes a player from a started game. The turn falls back to
// the first remaining player when the leaver held it. The room is dropped
// once nobody is left.
func (s *InMemoryService) Disconnect(ctx context.Context, roomID, playerID string) {
	e, err := s.lock(roomID)
	if err != nil {
		return
	}
	defer e.ops.Unlock()

	cur := e.snapshot()
	if cur.Status == StatusWaiting || cur.indexOf(playerID) < 0 {
		return
	}

	r := e.update(func(r *Room) {
		i := r.indexOf(playerID)
		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		if len(r.Players) > 0 && r.Status == StatusActive && r.CurrentTurn == playerID {
			r.CurrentTurn = r.Players[0].ID
		}
	})

	if len(r.Players) == 0 {
		s.mu.Lock()
		delete(s.rooms, roomID)
		s.mu.Unlock()
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
		s.release(ctx, r)
		s.log.Info("room deleted as it has no players", slog.String("room", roomID))
		return
	}

	s.hub.Broadcast(r.playerIDs(), PlayerLeftMessage{
		Type:        TypePlayerLeft,
		PlayerID:    playerID,
		CurrentTurn: r.CurrentTurn,
	})
	s.log.Info("player left", slog.String("room", roomID), slog.String("player", playerID))
}

// NotifyEvent relays a triggered random event to the room. A power surge
// grants every player one more use of a random implemented power-up.
func (s *InMemoryService) NotifyEvent(ctx context.Context, t event.Trigger) error {
	e, err := s.entry(t.RoomID)
	if err != nil {
		return err
	}
	cur := e.snapshot()
	if !cur.RandomEventsEnabled {
		return ErrEventsDisabled
	}

	msg := RandomEventMessage{Type: TypeRandomEvent, Event: t.Event, EffectResult: t.Result}
	if t.Event.Effect == event.GivePowerUps {
		msg.Grants = s.surge(ctx, cur)
	}
	s.hub.Broadcast(cur.playerIDs(), msg)
	return nil
}

func (s *InMemoryService) surge(ctx context.Context, r Room) map[string]powerup.Kind {
	var kinds []powerup.Kind
	for _, d := range powerup.Catalog {
		if d.Implemented {
			kinds = append(kinds, d.Kind)
		}
	}
	grants := make(map[string]powerup.Kind, len(r.Players))
	for _, p := range r.Players {
		kind := kinds[rand.IntN(len(kinds))]
		if _, err := s.powerUps.Grant(ctx, r.ID, p.ID, kind, 1); err != nil {
			s.log.Warn("power surge grant failed",
				slog.String("room", r.ID),
				slog.String("player", p.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		grants[p.ID] = kind
	}
	return grants
}

func (s *InMemoryService) ListRooms(ctx context.Context) []Room {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.rooms))
	for _, e := range s.rooms {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	rooms := make([]Room, 0, len(entries))
	for _, e := range entries {
		rooms = append(rooms, e.snapshot())
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms
}

func (s *InMemoryService) GetRoom(ctx context.Context, roomID string) (Room, error) {
	e, err := s.entry(roomID)
	if err != nil {
		return Room{}, err
	}
	return e.snapshot(), nil
}

// PlayerRoom finds the room a player belongs to.
func (s *InMemoryService) PlayerRoom(playerID string) (string, bool) {
	for _, r := range s.ListRooms(context.Background()) {
		if r.indexOf(playerID) >= 0 {
			return r.ID, true
		}
	}
	return "", false
}

// HandleClientMessage routes one realtime frame from a player.
func (s *InMemoryService) HandleClientMessage(ctx context.Context, roomID, playerID string, data []byte) error {
	msg, err := ParseClientMessage(data)
	if err != nil {
		return err
	}
	switch m := msg.(type) {
	case *MoveRequest:
		_, err = s.SubmitMove(ctx, roomID, playerID, *m.Column)
	case *PowerUpRequest:
		_, err = s.UsePowerUp(ctx, roomID, playerID, m.PowerUpID, m.TargetData)
	case *ChatRequest:
		err = s.Chat(ctx, roomID, playerID, m.Message)
	}
	return err
}

func (s *InMemoryService) entry(roomID string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return e, nil
}

// lock returns the room with its ops lock held.
func (s *InMemoryService) lock(roomID string) (*entry, error) {
	e, err := s.entry(roomID)
	if err != nil {
		return nil, err
	}
	e.ops.Lock()
	e.mu.RLock()
	removed := e.removed
	e.mu.RUnlock()
	if removed {
		e.ops.Unlock()
		return nil, ErrRoomNotFound
	}
	return e, nil
}

func (s *InMemoryService) dialColumns(roomID string, nodes map[int]string) map[int]column.Service {
	cols := make(map[int]column.Service, len(nodes))
	for id, addr := range nodes {
		svc, err := s.columns.Dial(addr)
		if err != nil {
			s.log.Warn("column unreachable",
				slog.String("room", roomID),
				slog.Int("column", id),
				slog.String("error", err.Error()),
			)
			svc = unreachable{err: err}
		}
		cols[id] = svc
	}
	return cols
}

// release tears down the room's state in the column, power-up and event
// services. Failures are logged; snapshots left behind expire on their own.
func (s *InMemoryService) release(ctx context.Context, r Room) {
	fail := func(what string, err error) {
		s.log.Warn("room teardown failed",
			slog.String("room", r.ID),
			slog.String("target", what),
			slog.String("error", err.Error()),
		)
	}
	for _, id := range sortedColumnIDs(r.ColumnNodes) {
		col, err := s.columns.Dial(r.ColumnNodes[id])
		if err == nil {
			err = col.Release(ctx, r.ID)
		}
		if err != nil {
			fail(fmt.Sprintf("column %d", id), err)
		}
	}
	if err := s.powerUps.Release(ctx, r.ID); err != nil {
		fail("power-ups", err)
	}
	if r.RandomEventsEnabled && s.events != nil {
		if err := s.events.Release(ctx, r.ID); err != nil {
			fail("random events", err)
		}
	}
}

func (s *InMemoryService) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(op, backoff.WithContext(s.backoff(), ctx))
}

func sortedColumnIDs(nodes map[int]string) []int {
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// unreachable stands in for a column that could not be dialed so the win
// check reports it as missing.
type unreachable struct {
	column.Service
	err error
}

func (u unreachable) State(context.Context, string) (column.Grid, error) {
	return column.Grid{}, errors.Join(column.ErrNotFound, u.err)
}
