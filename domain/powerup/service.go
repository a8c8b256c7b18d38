// Package powerup keeps each player's power-up inventory and applies
// power-up effects to column services.
package powerup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go-connect4/domain/column"
	"go-connect4/snapshot"
)

type Service interface {
	Initialize(ctx context.Context, roomID, playerID string) (Inventory, error)
	Inventory(ctx context.Context, roomID, playerID string) (Inventory, error)
	Use(ctx context.Context, roomID, playerID string, kind Kind, target Target) (UseResult, error)
	Grant(ctx context.Context, roomID, playerID string, kind Kind, uses int) (Inventory, error)
	// Release destroys every inventory of the room.
	Release(ctx context.Context, roomID string) error
}

// Columns resolves board column ids; *column.Directory implements it.
type Columns interface {
	Column(id int) (column.Service, error)
}

// Ledger is the in-memory Service. Operations on the same room run one at
// a time; the snapshot store is written after every change.
type Ledger struct {
	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
	rooms     map[string]map[string]*Inventory

	columns Columns
	store   snapshot.Store
	log     *slog.Logger
}

func NewLedger(columns Columns, store snapshot.Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		roomLocks: make(map[string]*sync.Mutex),
		rooms:     make(map[string]map[string]*Inventory),
		columns:   columns,
		store:     store,
		log:       logger,
	}
}

func (l *Ledger) lockRoom(roomID string) func() {
	l.mu.Lock()
	m, ok := l.roomLocks[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.roomLocks[roomID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (l *Ledger) Initialize(ctx context.Context, roomID, playerID string) (Inventory, error) {
	defer l.lockRoom(roomID)()

	inv := newInventory(playerID)
	l.put(roomID, &inv)
	l.persist(ctx, roomID, &inv)
	return inv.clone(), nil
}

func (l *Ledger) Inventory(ctx context.Context, roomID, playerID string) (Inventory, error) {
	defer l.lockRoom(roomID)()

	inv, err := l.load(ctx, roomID, playerID)
	if err != nil {
		return Inventory{}, err
	}
	return inv.clone(), nil
}

// Use spends one use of kind. The count only drops when the effect
// succeeded; a double drop whose second disc fails keeps its first disc.
func (l *Ledger) Use(ctx context.Context, roomID, playerID string, kind Kind, target Target) (UseResult, error) {
	defer l.lockRoom(roomID)()

	inv, err := l.load(ctx, roomID, playerID)
	if err != nil {
		return UseResult{}, err
	}
	p, ok := inv.PowerUps[kind]
	if !ok {
		return UseResult{}, fmt.Errorf("%w: %s", ErrUnknownPowerUp, kind)
	}
	if p.RemainingUses <= 0 {
		return UseResult{}, fmt.Errorf("%w for %s", ErrNoUsesRemaining, p.Name)
	}

	effect, err := l.apply(ctx, roomID, playerID, kind, target)
	if err != nil {
		l.log.Info("power-up effect rejected",
			slog.String("room", roomID),
			slog.String("player", playerID),
			slog.String("power_up", string(kind)),
			slog.String("error", err.Error()),
		)
		return UseResult{}, err
	}

	p.RemainingUses--
	inv.PowerUps[kind] = p
	l.persist(ctx, roomID, inv)
	return UseResult{PowerUp: p, Effect: effect}, nil
}

func (l *Ledger) Grant(ctx context.Context, roomID, playerID string, kind Kind, uses int) (Inventory, error) {
	def, ok := Lookup(kind)
	if !ok {
		return Inventory{}, fmt.Errorf("%w: %s", ErrUnknownPowerUp, kind)
	}
	if uses <= 0 {
		uses = 1
	}

	defer l.lockRoom(roomID)()

	inv, err := l.load(ctx, roomID, playerID)
	if err != nil {
		return Inventory{}, err
	}
	p, ok := inv.PowerUps[kind]
	if !ok {
		p = PowerUp{ID: def.Kind, Name: def.Name, Description: def.Description}
	}
	p.RemainingUses += uses
	inv.PowerUps[kind] = p
	l.persist(ctx, roomID, inv)
	return inv.clone(), nil
}

func (l *Ledger) apply(ctx context.Context, roomID, playerID string, kind Kind, t Target) (Effect, error) {
	switch kind {
	case DoubleDrop:
		if t.Column1 == nil || t.Column2 == nil {
			return Effect{}, fmt.Errorf("%w: two columns are required for Double Drop", ErrInvalidTarget)
		}
		if *t.Column1 == *t.Column2 {
			return Effect{}, fmt.Errorf("%w: Double Drop needs two distinct columns", ErrInvalidTarget)
		}
		effect := Effect{Kind: kind, Columns: []int{*t.Column1, *t.Column2}}
		for i, id := range effect.Columns {
			col, err := l.column(id)
			if err != nil {
				return Effect{}, err
			}
			row, err := col.Drop(ctx, roomID, playerID)
			if err != nil {
				return Effect{}, fmt.Errorf("%w: %s drop failed: %w", ErrEffectFailed, []string{"first", "second"}[i], err)
			}
			effect.Drops = append(effect.Drops, Drop{Column: id, Row: row})
		}
		return effect, nil

	case ColumnBomb, ColumnBlock, GravityFlip:
		if t.Column == nil {
			return Effect{}, fmt.Errorf("%w: a column is required", ErrInvalidTarget)
		}
		col, err := l.column(*t.Column)
		if err != nil {
			return Effect{}, err
		}
		effect := Effect{Kind: kind, Columns: []int{*t.Column}}
		var g column.Grid
		switch kind {
		case ColumnBomb:
			g, err = col.Bomb(ctx, roomID)
			effect.Bombed = err == nil
		case ColumnBlock:
			g, err = col.Block(ctx, roomID, 1)
			effect.Blocked = err == nil
			effect.Turns = g.BlockTurnsRemaining
		case GravityFlip:
			g, err = col.Flip(ctx, roomID)
			flipped := g.IsFlipped
			effect.Flipped = &flipped
		}
		if err != nil {
			return Effect{}, fmt.Errorf("%w: %w", ErrEffectFailed, err)
		}
		return effect, nil

	case UndoMove, StealColumn:
		return Effect{}, fmt.Errorf("%w: %s", ErrNotImplemented, kind)
	}
	return Effect{}, fmt.Errorf("%w: %s", ErrUnknownPowerUp, kind)
}

// Release drops the room's inventories and their snapshots. Snapshots of
// players this process never loaded are left to expire.
func (l *Ledger) Release(ctx context.Context, roomID string) error {
	defer l.lockRoom(roomID)()

	l.mu.Lock()
	players := l.rooms[roomID]
	delete(l.rooms, roomID)
	delete(l.roomLocks, roomID)
	l.mu.Unlock()

	if l.store == nil || len(players) == 0 {
		return nil
	}
	keys := make([]string, 0, len(players))
	for id := range players {
		keys = append(keys, snapshot.PowerUpsKey(roomID, id))
	}
	return l.store.Delete(ctx, keys...)
}

func (l *Ledger) column(id int) (column.Service, error) {
	col, err := l.columns.Column(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	return col, nil
}

func (l *Ledger) put(roomID string, inv *Inventory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	players, ok := l.rooms[roomID]
	if !ok {
		players = make(map[string]*Inventory)
		l.rooms[roomID] = players
	}
	players[inv.PlayerID] = inv
}

// load must be called with the room lock held.
func (l *Ledger) load(ctx context.Context, roomID, playerID string) (*Inventory, error) {
	l.mu.Lock()
	inv, ok := l.rooms[roomID][playerID]
	l.mu.Unlock()
	if ok {
		return inv, nil
	}
	if l.store == nil {
		return nil, ErrNotFound
	}

	var stored Inventory
	if err := l.store.Get(ctx, snapshot.PowerUpsKey(roomID, playerID), &stored); err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			l.log.Warn("snapshot read failed",
				slog.String("room", roomID),
				slog.String("player", playerID),
				slog.String("error", err.Error()),
			)
		}
		return nil, ErrNotFound
	}
	if stored.PowerUps == nil {
		stored.PowerUps = make(map[Kind]PowerUp)
	}
	stored.PlayerID = playerID
	l.put(roomID, &stored)
	return &stored, nil
}

func (l *Ledger) persist(ctx context.Context, roomID string, inv *Inventory) {
	if l.store == nil {
		return
	}
	if err := l.store.Set(ctx, snapshot.PowerUpsKey(roomID, inv.PlayerID), inv); err != nil {
		l.log.Warn("snapshot write failed",
			slog.String("room", roomID),
			slog.String("player", inv.PlayerID),
			slog.String("error", err.Error()),
		)
	}
}
