package column

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go-connect4/snapshot"
)

// Service is the surface of one column: the sole mutator of that column's
// grid in every room.
type Service interface {
	Init(ctx context.Context, roomID string) (Grid, error)
	State(ctx context.Context, roomID string) (Grid, error)
	SetState(ctx context.Context, roomID string, grid Grid) (Grid, error)
	Drop(ctx context.Context, roomID, playerID string) (int, error)
	Block(ctx context.Context, roomID string, turns int) (Grid, error)
	Flip(ctx context.Context, roomID string) (Grid, error)
	Bomb(ctx context.Context, roomID string) (Grid, error)
	// Release forgets the room's grid once the room is gone.
	Release(ctx context.Context, roomID string) error
}

// InMemoryService hosts one column. Grids are cached in memory and written
// through to the snapshot store; a failed write is logged and the in-memory
// change stands.
type InMemoryService struct {
	id    int
	mu    *sync.Mutex
	rooms map[string]*Grid
	store snapshot.Store
	log   *slog.Logger
}

func NewInMemoryService(columnID int, store snapshot.Store, logger *slog.Logger) *InMemoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryService{
		id:    columnID,
		mu:    &sync.Mutex{},
		rooms: make(map[string]*Grid),
		store: store,
		log:   logger.With(slog.Int("column", columnID)),
	}
}

func (s *InMemoryService) ColumnID() int { return s.id }

func (s *InMemoryService) Init(ctx context.Context, roomID string) (Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := NewGrid(s.id)
	s.rooms[roomID] = &g
	s.persist(ctx, roomID, &g)
	s.log.Debug("column initialized", slog.String("room", roomID))
	return g.Clone(), nil
}

func (s *InMemoryService) State(ctx context.Context, roomID string) (Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.load(ctx, roomID)
	if err != nil {
		return Grid{}, err
	}
	return g.Clone(), nil
}

func (s *InMemoryService) SetState(ctx context.Context, roomID string, grid Grid) (Grid, error) {
	if grid.ColumnID != s.id {
		return Grid{}, fmt.Errorf("%w: got %d, host %d", ErrColumnMismatch, grid.ColumnID, s.id)
	}
	if err := grid.Validate(); err != nil {
		return Grid{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := grid.Clone()
	s.rooms[roomID] = &g
	s.persist(ctx, roomID, &g)
	return g.Clone(), nil
}

func (s *InMemoryService) Drop(ctx context.Context, roomID, playerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.load(ctx, roomID)
	if err != nil {
		return 0, err
	}
	row, err := g.Drop(playerID)
	switch {
	case errors.Is(err, ErrBlocked):
		// the block counter moved, so it still has to be saved
		s.persist(ctx, roomID, g)
		return 0, err
	case err != nil:
		return 0, err
	}
	s.persist(ctx, roomID, g)
	return row, nil
}

func (s *InMemoryService) Block(ctx context.Context, roomID string, turns int) (Grid, error) {
	return s.mutate(ctx, roomID, func(g *Grid) { g.Block(turns) })
}

func (s *InMemoryService) Flip(ctx context.Context, roomID string) (Grid, error) {
	return s.mutate(ctx, roomID, (*Grid).Flip)
}

func (s *InMemoryService) Bomb(ctx context.Context, roomID string) (Grid, error) {
	return s.mutate(ctx, roomID, (*Grid).Clear)
}

func (s *InMemoryService) Release(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, snapshot.ColumnKey(roomID, s.id))
}

func (s *InMemoryService) mutate(ctx context.Context, roomID string, fn func(*Grid)) (Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.load(ctx, roomID)
	if err != nil {
		return Grid{}, err
	}
	fn(g)
	s.persist(ctx, roomID, g)
	return g.Clone(), nil
}

// load must be called with s.mu held.
func (s *InMemoryService) load(ctx context.Context, roomID string) (*Grid, error) {
	if g, ok := s.rooms[roomID]; ok {
		return g, nil
	}
	if s.store == nil {
		return nil, ErrNotFound
	}
	var g Grid
	if err := s.store.Get(ctx, snapshot.ColumnKey(roomID, s.id), &g); err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			s.log.Warn("snapshot read failed", slog.String("room", roomID), slog.String("error", err.Error()))
		}
		return nil, ErrNotFound
	}
	g.ColumnID = s.id
	g.normalize()
	s.rooms[roomID] = &g
	return &g, nil
}

func (s *InMemoryService) persist(ctx context.Context, roomID string, g *Grid) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, snapshot.ColumnKey(roomID, s.id), g); err != nil {
		s.log.Warn("snapshot write failed",
			slog.String("room", roomID),
			slog.String("error", err.Error()),
		)
	}
}
