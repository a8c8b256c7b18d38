package powerup_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-connect4/domain/column"
	"go-connect4/domain/powerup"
	"go-connect4/snapshot/snapshottest"
)

func intp(v int) *int { return &v }

type countingColumn struct {
	column.Service
	calls int
}

func (c *countingColumn) Bomb(ctx context.Context, roomID string) (column.Grid, error) {
	c.calls++
	return c.Service.Bomb(ctx, roomID)
}

func newBoard(t *testing.T, roomID string) (*column.Directory, column.Local) {
	t.Helper()
	ctx := context.Background()
	addrs := make(map[int]string)
	local := column.Local{}
	for id := 0; id < 7; id++ {
		addr := fmt.Sprintf("local://%d", id)
		svc := column.NewInMemoryService(id, nil, nil)
		if _, err := svc.Init(ctx, roomID); err != nil {
			t.Fatalf("init column %d: %v", id, err)
		}
		addrs[id] = addr
		local[addr] = svc
	}
	return column.NewDirectory(addrs, local), local
}

func newLedger(t *testing.T) (*powerup.Ledger, *column.Directory, column.Local) {
	t.Helper()
	dir, local := newBoard(t, "room")
	store, _ := snapshottest.New(t)
	l := powerup.NewLedger(dir, store, nil)
	if _, err := l.Initialize(context.Background(), "room", "p1"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return l, dir, local
}

func TestInitializeGrantsCatalog(t *testing.T) {
	l, _, _ := newLedger(t)
	inv, err := l.Inventory(context.Background(), "room", "p1")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(inv.PowerUps) != len(powerup.Catalog) {
		t.Fatalf("expected %d power-ups, got %d", len(powerup.Catalog), len(inv.PowerUps))
	}
	for _, d := range powerup.Catalog {
		if inv.PowerUps[d.Kind].RemainingUses != 1 {
			t.Fatalf("%s: expected one use, got %d", d.Kind, inv.PowerUps[d.Kind].RemainingUses)
		}
	}
}

func TestUseBombSpendsOneUse(t *testing.T) {
	l, dir, _ := newLedger(t)
	ctx := context.Background()
	col, _ := dir.Column(2)
	if _, err := col.Drop(ctx, "room", "p2"); err != nil {
		t.Fatalf("drop: %v", err)
	}

	res, err := l.Use(ctx, "room", "p1", powerup.ColumnBomb, powerup.Target{Column: intp(2)})
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if res.PowerUp.RemainingUses != 0 || !res.Effect.Bombed {
		t.Fatalf("unexpected result %+v", res)
	}
	g, _ := col.State(ctx, "room")
	if len(g.Discs()) != 0 {
		t.Fatalf("column was not cleared: %q", g.Cells)
	}
}

func TestUseWithoutRemainingUsesSkipsEffect(t *testing.T) {
	dir, local := newBoard(t, "room")
	counter := &countingColumn{Service: local["local://0"]}
	local["local://0"] = counter
	dir = column.NewDirectory(dir.Addresses(), local)

	l := powerup.NewLedger(dir, nil, nil)
	ctx := context.Background()
	if _, err := l.Initialize(ctx, "room", "p1"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := l.Use(ctx, "room", "p1", powerup.ColumnBomb, powerup.Target{Column: intp(0)}); err != nil {
		t.Fatalf("first use: %v", err)
	}
	_, err := l.Use(ctx, "room", "p1", powerup.ColumnBomb, powerup.Target{Column: intp(0)})
	if !errors.Is(err, powerup.ErrNoUsesRemaining) {
		t.Fatalf("expected ErrNoUsesRemaining, got %v", err)
	}
	if counter.calls != 1 {
		t.Fatalf("effect ran %d times, want 1", counter.calls)
	}
	inv, _ := l.Inventory(ctx, "room", "p1")
	if inv.PowerUps[powerup.ColumnBomb].RemainingUses != 0 {
		t.Fatalf("use count went negative: %d", inv.PowerUps[powerup.ColumnBomb].RemainingUses)
	}
}

func TestUseUnknownAndUnimplemented(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()

	if _, err := l.Use(ctx, "room", "p1", powerup.Kind("teleport"), powerup.Target{}); !errors.Is(err, powerup.ErrUnknownPowerUp) {
		t.Fatalf("expected ErrUnknownPowerUp, got %v", err)
	}
	for _, k := range []powerup.Kind{powerup.UndoMove, powerup.StealColumn} {
		if _, err := l.Use(ctx, "room", "p1", k, powerup.Target{Column: intp(0)}); !errors.Is(err, powerup.ErrNotImplemented) {
			t.Fatalf("%s: expected ErrNotImplemented, got %v", k, err)
		}
	}
	inv, _ := l.Inventory(ctx, "room", "p1")
	if inv.PowerUps[powerup.UndoMove].RemainingUses != 1 {
		t.Fatalf("failed use must not be charged")
	}
}

func TestDoubleDropPartialFailureIsNotRolledBack(t *testing.T) {
	l, dir, _ := newLedger(t)
	ctx := context.Background()
	full, _ := dir.Column(5)
	for i := 0; i < column.Height; i++ {
		if _, err := full.Drop(ctx, "room", "p2"); err != nil {
			t.Fatalf("fill: %v", err)
		}
	}

	_, err := l.Use(ctx, "room", "p1", powerup.DoubleDrop, powerup.Target{Column1: intp(1), Column2: intp(5)})
	if !errors.Is(err, column.ErrFull) || !errors.Is(err, powerup.ErrEffectFailed) {
		t.Fatalf("expected a failed second drop, got %v", err)
	}
	first, _ := dir.Column(1)
	g, _ := first.State(ctx, "room")
	if g.Cells[column.Height-1] != "p1" {
		t.Fatalf("first disc should stay placed, cells %q", g.Cells)
	}
	inv, _ := l.Inventory(ctx, "room", "p1")
	if inv.PowerUps[powerup.DoubleDrop].RemainingUses != 1 {
		t.Fatalf("failed double drop must not be charged")
	}
}

func TestDoubleDropNeedsDistinctColumns(t *testing.T) {
	l, _, _ := newLedger(t)
	_, err := l.Use(context.Background(), "room", "p1", powerup.DoubleDrop, powerup.Target{Column1: intp(3), Column2: intp(3)})
	if !errors.Is(err, powerup.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestBlockAndFlipEffects(t *testing.T) {
	l, dir, _ := newLedger(t)
	ctx := context.Background()

	res, err := l.Use(ctx, "room", "p1", powerup.ColumnBlock, powerup.Target{Column: intp(4)})
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if !res.Effect.Blocked || res.Effect.Turns != 1 {
		t.Fatalf("unexpected block effect %+v", res.Effect)
	}
	col, _ := dir.Column(4)
	if _, err := col.Drop(ctx, "room", "p2"); !errors.Is(err, column.ErrBlocked) {
		t.Fatalf("expected blocked column, got %v", err)
	}

	res, err = l.Use(ctx, "room", "p1", powerup.GravityFlip, powerup.Target{Column: intp(4)})
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if res.Effect.Flipped == nil || !*res.Effect.Flipped {
		t.Fatalf("expected flipped effect, got %+v", res.Effect)
	}
}

func TestLedgerRecoversFromSnapshot(t *testing.T) {
	dir, _ := newBoard(t, "room")
	store, _ := snapshottest.New(t)
	ctx := context.Background()

	first := powerup.NewLedger(dir, store, nil)
	if _, err := first.Initialize(ctx, "room", "p1"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := first.Use(ctx, "room", "p1", powerup.GravityFlip, powerup.Target{Column: intp(0)}); err != nil {
		t.Fatalf("use: %v", err)
	}

	restarted := powerup.NewLedger(dir, store, nil)
	_, err := restarted.Use(ctx, "room", "p1", powerup.GravityFlip, powerup.Target{Column: intp(0)})
	if !errors.Is(err, powerup.ErrNoUsesRemaining) {
		t.Fatalf("expected recovered inventory to be spent, got %v", err)
	}
	if _, err := restarted.Inventory(ctx, "room", "ghost"); !errors.Is(err, powerup.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGrantAddsUses(t *testing.T) {
	l, _, _ := newLedger(t)
	inv, err := l.Grant(context.Background(), "room", "p1", powerup.ColumnBlock, 1)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if inv.PowerUps[powerup.ColumnBlock].RemainingUses != 2 {
		t.Fatalf("expected 2 uses, got %d", inv.PowerUps[powerup.ColumnBlock].RemainingUses)
	}
}
