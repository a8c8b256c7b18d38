package board

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"go-connect4/domain/column"
)

// DefaultReadTimeout bounds the whole board read.
const DefaultReadTimeout = 2 * time.Second

// Collector reads every column of a room and evaluates the board.
//
// Reads are independent per column with no cross-column fence, so callers
// that need a consistent snapshot must stop other writers to the room while
// Check runs. Columns that cannot be read within the timeout are left empty
// and reported in Result.Missing.
type Collector struct {
	Height  int
	Timeout time.Duration
	Retries uint64
	Log     *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{Height: column.Height, Timeout: DefaultReadTimeout, Retries: 1, Log: logger}
}

func (c *Collector) Check(ctx context.Context, roomID string, columns map[int]column.Service) Result {
	b, missing := c.Collect(ctx, roomID, columns)
	res := Evaluate(b)
	res.Missing = missing
	return res
}

// Collect builds a board whose width is the number of columns; column ids
// are expected to run from 0 to width-1.
func (c *Collector) Collect(ctx context.Context, roomID string, columns map[int]column.Service) (*Board, []int) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	b := New(len(columns), c.Height)

	var (
		mu      sync.Mutex
		missing []int
		wg      sync.WaitGroup
	)
	for id, svc := range columns {
		wg.Add(1)
		go func(id int, svc column.Service) {
			defer wg.Done()
			grid, err := c.read(ctx, roomID, svc)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				err = b.SetColumn(id, grid.Cells)
			}
			if err != nil {
				c.Log.Warn("column unreadable during win check",
					slog.String("room", roomID),
					slog.Int("column", id),
					slog.String("error", err.Error()),
				)
				missing = append(missing, id)
			}
		}(id, svc)
	}
	wg.Wait()

	sort.Ints(missing)
	return b, missing
}

func (c *Collector) read(ctx context.Context, roomID string, svc column.Service) (column.Grid, error) {
	var grid column.Grid
	op := func() error {
		g, err := svc.State(ctx, roomID)
		if errors.Is(err, column.ErrNotFound) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		grid = g
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.Retries), ctx)
	return grid, backoff.Retry(op, policy)
}
