package event

import (
	"context"
	"fmt"
	"log/slog"

	"go-connect4/domain/column"
)

func (s *Scheduler) apply(ctx context.Context, roomID string, def Definition) (EffectResult, error) {
	switch def.Effect {
	case ShuffleColumns:
		return s.shuffleColumns(ctx, roomID), nil
	case ReverseAllGravity:
		return s.reverseGravity(ctx, roomID), nil
	case SwapColumns:
		return s.swapColumns(ctx, roomID)
	}
	// blackout, speed round and power surge leave the board alone; the
	// notification is the effect
	return EffectResult{
		Message:         fmt.Sprintf("Event %s triggered", def.Name),
		AffectedColumns: []int{},
		AffectedPlayers: []string{},
	}, nil
}

// pick returns n distinct column ids chosen at random.
func (s *Scheduler) pick(n int) []int {
	ids := s.columns.IDs()
	if n > len(ids) {
		n = len(ids)
	}
	s.randMu.Lock()
	perm := s.rand.Perm(len(ids))
	s.randMu.Unlock()

	picked := make([]int, n)
	for i := range picked {
		picked[i] = ids[perm[i]]
	}
	return picked
}

// shuffleColumns reorders the discs of one to three columns and settles
// them against each column's own gravity edge.
func (s *Scheduler) shuffleColumns(ctx context.Context, roomID string) EffectResult {
	s.randMu.Lock()
	n := 1 + s.rand.IntN(3)
	s.randMu.Unlock()

	res := EffectResult{AffectedColumns: s.pick(n), AffectedPlayers: []string{}}
	for _, id := range res.AffectedColumns {
		err := s.withColumn(id, func(col column.Service) error {
			g, err := col.State(ctx, roomID)
			if err != nil {
				return err
			}
			discs := g.Discs()
			s.randMu.Lock()
			s.rand.Shuffle(len(discs), func(i, j int) { discs[i], discs[j] = discs[j], discs[i] })
			s.randMu.Unlock()
			g.Settle(discs)
			_, err = col.SetState(ctx, roomID, g)
			return err
		})
		if err != nil {
			s.columnFailed(roomID, id, "shuffle", err)
			res.Failed = append(res.Failed, id)
		}
	}
	return res
}

func (s *Scheduler) reverseGravity(ctx context.Context, roomID string) EffectResult {
	res := EffectResult{AffectedColumns: s.columns.IDs(), AffectedPlayers: []string{}}
	for _, id := range res.AffectedColumns {
		err := s.withColumn(id, func(col column.Service) error {
			_, err := col.Flip(ctx, roomID)
			return err
		})
		if err != nil {
			s.columnFailed(roomID, id, "flip", err)
			res.Failed = append(res.Failed, id)
		}
	}
	return res
}

// swapColumns exchanges the contents and flags of two distinct columns.
func (s *Scheduler) swapColumns(ctx context.Context, roomID string) (EffectResult, error) {
	if len(s.columns.IDs()) < 2 {
		return EffectResult{}, fmt.Errorf("%w: not enough columns to swap", ErrEffectFailed)
	}
	ids := s.pick(2)

	cols := make([]column.Service, 2)
	grids := make([]column.Grid, 2)
	for i, id := range ids {
		col, err := s.columns.Column(id)
		if err != nil {
			return EffectResult{}, fmt.Errorf("%w: %w", ErrEffectFailed, err)
		}
		g, err := col.State(ctx, roomID)
		if err != nil {
			return EffectResult{}, fmt.Errorf("%w: column %d: %w", ErrEffectFailed, id, err)
		}
		cols[i], grids[i] = col, g
	}

	a, b := grids[1], grids[0]
	a.ColumnID, b.ColumnID = ids[0], ids[1]
	for i, g := range []column.Grid{a, b} {
		if _, err := cols[i].SetState(ctx, roomID, g); err != nil {
			return EffectResult{}, fmt.Errorf("%w: column %d: %w", ErrEffectFailed, ids[i], err)
		}
	}
	return EffectResult{AffectedColumns: ids, AffectedPlayers: []string{}}, nil
}

func (s *Scheduler) withColumn(id int, fn func(column.Service) error) error {
	col, err := s.columns.Column(id)
	if err != nil {
		return err
	}
	return fn(col)
}

func (s *Scheduler) columnFailed(roomID string, id int, op string, err error) {
	s.log.Warn("event effect skipped column",
		slog.String("room", roomID),
		slog.Int("column", id),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
