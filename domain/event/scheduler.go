// Package event runs the per-room random event engine: it counts turns,
// expires active events and occasionally disrupts the board.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"go-connect4/domain/column"
	"go-connect4/snapshot"
)

type Service interface {
	Initialize(ctx context.Context, roomID string) error
	TurnCompleted(ctx context.Context, roomID, playerID, nextPlayerID string) (TurnOutcome, error)
	ActiveEvents(ctx context.Context, roomID string) ([]ActiveEvent, error)
	Trigger(ctx context.Context, roomID, eventID string) (Trigger, error)
	// Release destroys the room's turn counter and active events.
	Release(ctx context.Context, roomID string) error
}

// Columns is the view of the board the scheduler mutates.
// *column.Directory implements it.
type Columns interface {
	IDs() []int
	Column(id int) (column.Service, error)
}

// Notifier receives every triggered event.
type Notifier interface {
	NotifyEvent(ctx context.Context, t Trigger) error
}

// Rand is the randomness the scheduler draws from; *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Perm(n int) []int
	Shuffle(n int, swap func(i, j int))
}

type Scheduler struct {
	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
	rooms     map[string]*roomState

	randMu sync.Mutex
	rand   Rand

	sampler  *Sampler
	columns  Columns
	notifier Notifier
	store    snapshot.Store
	log      *slog.Logger
}

func NewScheduler(columns Columns, rnd Rand, store snapshot.Store, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Scheduler{
		roomLocks: make(map[string]*sync.Mutex),
		rooms:     make(map[string]*roomState),
		rand:      rnd,
		sampler:   NewSampler(Catalog),
		columns:   columns,
		store:     store,
		log:       logger,
	}
}

// SetNotifier must be called before the first turn is processed.
func (s *Scheduler) SetNotifier(n Notifier) { s.notifier = n }

func (s *Scheduler) lockRoom(roomID string) func() {
	s.mu.Lock()
	m, ok := s.roomLocks[roomID]
	if !ok {
		m = &sync.Mutex{}
		s.roomLocks[roomID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *Scheduler) Initialize(ctx context.Context, roomID string) error {
	defer s.lockRoom(roomID)()

	st := &roomState{Active: []ActiveEvent{}}
	s.mu.Lock()
	s.rooms[roomID] = st
	s.mu.Unlock()
	s.persist(ctx, roomID, st)
	return nil
}

func (s *Scheduler) ActiveEvents(ctx context.Context, roomID string) ([]ActiveEvent, error) {
	defer s.lockRoom(roomID)()

	st := s.load(ctx, roomID)
	return append([]ActiveEvent{}, st.Active...), nil
}

// TurnCompleted advances the room's turn counter, expires events and, once
// the grace turns are over, rolls for a new event.
func (s *Scheduler) TurnCompleted(ctx context.Context, roomID, playerID, nextPlayerID string) (TurnOutcome, error) {
	defer s.lockRoom(roomID)()

	st := s.load(ctx, roomID)
	st.Turn++
	st.expire()

	var triggered *Trigger
	if st.Turn > GraceTurns && s.float() < TriggerChance {
		def, ok := s.sampler.Pick(s.float())
		if ok {
			t, err := s.fire(ctx, roomID, st, def)
			if err != nil {
				s.log.Warn("random event failed",
					slog.String("room", roomID),
					slog.String("event", def.ID),
					slog.String("error", err.Error()),
				)
			} else {
				triggered = &t
			}
		}
	}
	s.persist(ctx, roomID, st)

	s.log.Debug("turn completed",
		slog.String("room", roomID),
		slog.String("player", playerID),
		slog.String("next_player", nextPlayerID),
		slog.Int("turn", st.Turn),
	)
	return TurnOutcome{
		CurrentTurn:  st.Turn,
		ActiveEvents: append([]ActiveEvent{}, st.Active...),
		Triggered:    triggered,
	}, nil
}

// Trigger applies the named event immediately, outside the random roll.
func (s *Scheduler) Trigger(ctx context.Context, roomID, eventID string) (Trigger, error) {
	def, ok := Lookup(eventID)
	if !ok {
		return Trigger{}, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}

	defer s.lockRoom(roomID)()

	st := s.load(ctx, roomID)
	t, err := s.fire(ctx, roomID, st, def)
	if err != nil {
		return Trigger{}, err
	}
	s.persist(ctx, roomID, st)
	return t, nil
}

func (s *Scheduler) fire(ctx context.Context, roomID string, st *roomState, def Definition) (Trigger, error) {
	res, err := s.apply(ctx, roomID, def)
	if err != nil {
		return Trigger{}, err
	}
	st.Active = append(st.Active, ActiveEvent{
		Event:           def.Event(),
		ActiveUntil:     st.Turn + def.Duration,
		AffectedColumns: res.AffectedColumns,
		AffectedPlayers: res.AffectedPlayers,
	})

	t := Trigger{RoomID: roomID, Turn: st.Turn, Event: def.Event(), Result: res}
	s.log.Info("random event triggered", slog.String("room", roomID), slog.String("event", def.ID))
	if s.notifier != nil {
		if err := s.notifier.NotifyEvent(ctx, t); err != nil {
			s.log.Warn("event notification failed",
				slog.String("room", roomID),
				slog.String("event", def.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return t, nil
}

func (s *Scheduler) Release(ctx context.Context, roomID string) error {
	defer s.lockRoom(roomID)()

	s.mu.Lock()
	delete(s.rooms, roomID)
	delete(s.roomLocks, roomID)
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, snapshot.EventsKey(roomID))
}

func (st *roomState) expire() {
	kept := st.Active[:0]
	for _, ae := range st.Active {
		if ae.ActiveUntil > st.Turn {
			kept = append(kept, ae)
		}
	}
	st.Active = kept
}

func (s *Scheduler) float() float64 {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Float64()
}

// load returns the room state, starting a fresh one when neither memory nor
// the snapshot store knows the room. Callers hold the room lock.
func (s *Scheduler) load(ctx context.Context, roomID string) *roomState {
	s.mu.Lock()
	st, ok := s.rooms[roomID]
	s.mu.Unlock()
	if ok {
		return st
	}

	st = &roomState{}
	if s.store != nil {
		if err := s.store.Get(ctx, snapshot.EventsKey(roomID), st); err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			s.log.Warn("snapshot read failed", slog.String("room", roomID), slog.String("error", err.Error()))
		}
	}
	if st.Active == nil {
		st.Active = []ActiveEvent{}
	}
	s.mu.Lock()
	s.rooms[roomID] = st
	s.mu.Unlock()
	return st
}

func (s *Scheduler) persist(ctx context.Context, roomID string, st *roomState) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, snapshot.EventsKey(roomID), st); err != nil {
		s.log.Warn("snapshot write failed", slog.String("room", roomID), slog.String("error", err.Error()))
	}
}
