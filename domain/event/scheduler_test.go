package event_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"go-connect4/domain/column"
	"go-connect4/domain/event"
	"go-connect4/snapshot/snapshottest"
)

// scriptedRand replays floats in order, picks the first items for
// permutations and reverses slices on shuffle.
type scriptedRand struct {
	floats []float64
	next   int
}

func (r *scriptedRand) Float64() float64 {
	if r.next >= len(r.floats) {
		return 0.99
	}
	v := r.floats[r.next]
	r.next++
	return v
}

func (r *scriptedRand) IntN(int) int { return 0 }

func (r *scriptedRand) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

type recorder struct {
	mu       sync.Mutex
	triggers []event.Trigger
}

func (r *recorder) NotifyEvent(_ context.Context, t event.Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, t)
	return nil
}

func newColumns(t *testing.T) *column.Directory {
	t.Helper()
	addrs := make(map[int]string)
	local := column.Local{}
	for id := 0; id < 7; id++ {
		addr := fmt.Sprintf("local://%d", id)
		svc := column.NewInMemoryService(id, nil, nil)
		if _, err := svc.Init(context.Background(), "room"); err != nil {
			t.Fatalf("init column %d: %v", id, err)
		}
		addrs[id], local[addr] = addr, svc
	}
	return column.NewDirectory(addrs, local)
}

func newScheduler(t *testing.T, rnd event.Rand) (*event.Scheduler, *column.Directory, *recorder) {
	t.Helper()
	cols := newColumns(t)
	store, _ := snapshottest.New(t)
	s := event.NewScheduler(cols, rnd, store, nil)
	rec := &recorder{}
	s.SetNotifier(rec)
	if err := s.Initialize(context.Background(), "room"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s, cols, rec
}

func TestNoEventDuringGraceTurns(t *testing.T) {
	rnd := &scriptedRand{floats: []float64{0, 0}}
	s, _, rec := newScheduler(t, rnd)
	ctx := context.Background()

	for turn := 1; turn <= event.GraceTurns; turn++ {
		out, err := s.TurnCompleted(ctx, "room", "p1", "p2")
		if err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
		if out.CurrentTurn != turn || out.Triggered != nil {
			t.Fatalf("turn %d: unexpected outcome %+v", turn, out)
		}
	}
	if rnd.next != 0 {
		t.Fatalf("grace turns must not consume random draws, used %d", rnd.next)
	}

	out, err := s.TurnCompleted(ctx, "room", "p1", "p2")
	if err != nil {
		t.Fatalf("turn 4: %v", err)
	}
	if out.Triggered == nil || out.Triggered.Event.ID != "earthquake" {
		t.Fatalf("expected earthquake on turn 4, got %+v", out.Triggered)
	}
	if len(rec.triggers) != 1 {
		t.Fatalf("expected one notification, got %d", len(rec.triggers))
	}
}

func TestActiveEventsExpire(t *testing.T) {
	rnd := &scriptedRand{floats: []float64{0, 0, 0.9}}
	s, _, _ := newScheduler(t, rnd)
	ctx := context.Background()

	var out event.TurnOutcome
	for turn := 1; turn <= 4; turn++ {
		var err error
		if out, err = s.TurnCompleted(ctx, "room", "p1", "p2"); err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
	}
	if len(out.ActiveEvents) != 1 || out.ActiveEvents[0].ActiveUntil != 5 {
		t.Fatalf("expected one event active until turn 5, got %+v", out.ActiveEvents)
	}

	out, err := s.TurnCompleted(ctx, "room", "p1", "p2")
	if err != nil {
		t.Fatalf("turn 5: %v", err)
	}
	if out.Triggered != nil || len(out.ActiveEvents) != 0 {
		t.Fatalf("expected the event to expire on turn 5, got %+v", out)
	}
}

func TestSamplerMatchesConfiguredWeights(t *testing.T) {
	s := event.NewSampler(event.Catalog)
	const steps = 10000
	counts := make(map[string]int)
	for i := 0; i < steps; i++ {
		d, ok := s.Pick(float64(i) / steps)
		if !ok {
			t.Fatalf("no pick for %d", i)
		}
		counts[d.ID]++
	}
	var total float64
	for _, d := range event.Catalog {
		total += d.Probability
	}
	for _, d := range event.Catalog {
		want := d.Probability / total * steps
		if math.Abs(float64(counts[d.ID])-want) > 2 {
			t.Fatalf("%s picked %d times, want about %.0f", d.ID, counts[d.ID], want)
		}
	}
}

func TestTriggerSwapExchangesColumns(t *testing.T) {
	s, cols, rec := newScheduler(t, &scriptedRand{})
	ctx := context.Background()

	c0, _ := cols.Column(0)
	c1, _ := cols.Column(1)
	for i := 0; i < 2; i++ {
		if _, err := c0.Drop(ctx, "room", "a"); err != nil {
			t.Fatalf("drop: %v", err)
		}
	}
	if _, err := c1.Flip(ctx, "room"); err != nil {
		t.Fatalf("flip: %v", err)
	}
	if _, err := c1.Drop(ctx, "room", "b"); err != nil {
		t.Fatalf("drop: %v", err)
	}

	trig, err := s.Trigger(ctx, "room", "column_swap")
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if !reflect.DeepEqual(trig.Result.AffectedColumns, []int{0, 1}) {
		t.Fatalf("unexpected affected columns %v", trig.Result.AffectedColumns)
	}

	g0, _ := c0.State(ctx, "room")
	g1, _ := c1.State(ctx, "room")
	if want := []string{"b", "", "", "", "", ""}; !reflect.DeepEqual(g0.Cells, want) || !g0.IsFlipped || g0.ColumnID != 0 {
		t.Fatalf("column 0 = %+v", g0)
	}
	if want := []string{"", "", "", "", "a", "a"}; !reflect.DeepEqual(g1.Cells, want) || g1.IsFlipped || g1.ColumnID != 1 {
		t.Fatalf("column 1 = %+v", g1)
	}
	if len(rec.triggers) != 1 || rec.triggers[0].Event.Effect != event.SwapColumns {
		t.Fatalf("expected swap notification, got %+v", rec.triggers)
	}

	active, _ := s.ActiveEvents(ctx, "room")
	if len(active) != 1 || active[0].ActiveUntil != 1 {
		t.Fatalf("expected swap to be active until turn 1, got %+v", active)
	}
}

func TestShuffleKeepsGravityEdge(t *testing.T) {
	s, cols, _ := newScheduler(t, &scriptedRand{})
	ctx := context.Background()
	c0, _ := cols.Column(0)
	grid := column.Grid{ColumnID: 0, Cells: []string{"a", "", "b", "", "c", ""}, IsFlipped: true}
	if _, err := c0.SetState(ctx, "room", grid); err != nil {
		t.Fatalf("set state: %v", err)
	}

	trig, err := s.Trigger(ctx, "room", "earthquake")
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if !reflect.DeepEqual(trig.Result.AffectedColumns, []int{0}) {
		t.Fatalf("expected column 0 shuffled, got %v", trig.Result.AffectedColumns)
	}
	g, _ := c0.State(ctx, "room")
	if want := []string{"c", "b", "a", "", "", ""}; !reflect.DeepEqual(g.Cells, want) {
		t.Fatalf("cells = %q, want %q", g.Cells, want)
	}
}

func TestReverseGravityFlipsEveryColumn(t *testing.T) {
	s, cols, _ := newScheduler(t, &scriptedRand{})
	ctx := context.Background()
	if _, err := s.Trigger(ctx, "room", "reverse_gravity"); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	for _, id := range cols.IDs() {
		col, _ := cols.Column(id)
		g, _ := col.State(ctx, "room")
		if !g.IsFlipped {
			t.Fatalf("column %d not flipped", id)
		}
	}
}

func TestBoardNeutralEventsOnlyNotify(t *testing.T) {
	s, _, rec := newScheduler(t, &scriptedRand{})
	trig, err := s.Trigger(context.Background(), "room", "blackout")
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if len(trig.Result.AffectedColumns) != 0 || trig.Event.Duration != 2 {
		t.Fatalf("unexpected trigger %+v", trig)
	}
	if len(rec.triggers) != 1 {
		t.Fatalf("expected a notification")
	}
}

func TestTriggerUnknownEvent(t *testing.T) {
	s, _, _ := newScheduler(t, &scriptedRand{})
	if _, err := s.Trigger(context.Background(), "room", "meteor"); !errors.Is(err, event.ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestTurnCounterSurvivesRestart(t *testing.T) {
	cols := newColumns(t)
	store, _ := snapshottest.New(t)
	ctx := context.Background()

	first := event.NewScheduler(cols, &scriptedRand{}, store, nil)
	for i := 0; i < 2; i++ {
		if _, err := first.TurnCompleted(ctx, "room", "p1", "p2"); err != nil {
			t.Fatalf("turn: %v", err)
		}
	}
	restarted := event.NewScheduler(cols, &scriptedRand{}, store, nil)
	out, err := restarted.TurnCompleted(ctx, "room", "p1", "p2")
	if err != nil {
		t.Fatalf("turn after restart: %v", err)
	}
	if out.CurrentTurn != 3 {
		t.Fatalf("expected turn 3, got %d", out.CurrentTurn)
	}
}
