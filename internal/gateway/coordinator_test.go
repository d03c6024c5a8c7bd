package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"klondike/internal/board"
	"klondike/internal/notify"
	"klondike/internal/store"
)

type memRecorder struct {
	mu      sync.Mutex
	results []store.Result
}

func (m *memRecorder) RecordResult(_ context.Context, r store.Result) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, old := range m.results {
		if old.GameID == r.GameID {
			return false, nil
		}
	}
	m.results = append(m.results, r)
	return true, nil
}

func (m *memRecorder) all() []store.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Result(nil), m.results...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCoordinator(t *testing.T) (*Coordinator, *memRecorder, *fakeClock) {
	t.Helper()
	rec := &memRecorder{}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := NewCoordinator(Options{
		HistoryLimit: 100,
		ShuffleSeed:  7,
		Recorder:     rec,
		Now:          clock.Now,
	})
	return c, rec, clock
}

func TestCreateAndSnapshot(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	view, err := c.CreateGame(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.GameID == "" || len(view.Tableau) != 7 || view.Stock.Count != 24 {
		t.Fatalf("unexpected view: %+v", view)
	}
	for _, card := range view.Stock.Cards {
		if card.ID != "" {
			t.Fatalf("stock card %s should be masked", card.ID)
		}
	}

	snap, err := c.Snapshot(context.Background(), view.GameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Moves != 0 || snap.CanUndo {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, err := c.Snapshot(context.Background(), "g_missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestSeededGamesAreReproducible(t *testing.T) {
	a, _, _ := newTestCoordinator(t)
	b, _, _ := newTestCoordinator(t)
	va, _ := a.CreateGame(context.Background())
	vb, _ := b.CreateGame(context.Background())
	for i := range va.Tableau {
		ta, tb := va.Tableau[i].Cards, vb.Tableau[i].Cards
		if ta[len(ta)-1].ID != tb[len(tb)-1].ID {
			t.Fatalf("tableau %d differs: %s vs %s", i, ta[len(ta)-1].ID, tb[len(tb)-1].ID)
		}
	}
}

func TestDoSerializesAndReturnsView(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	view, _ := c.CreateGame(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Do(context.Background(), view.GameID, func(b *board.Board) error {
				b.Draw()
				return nil
			})
		}()
	}
	wg.Wait()

	snap, err := c.Snapshot(context.Background(), view.GameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Moves != 10 || snap.Waste.Count != 10 || !snap.CanUndo {
		t.Fatalf("unexpected state after draws: moves=%d waste=%d", snap.Moves, snap.Waste.Count)
	}

	wantErr := errors.New("boom")
	if _, err := c.Do(context.Background(), view.GameID, func(*board.Board) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestNewDealRecordsAbandonedOnce(t *testing.T) {
	c, rec, _ := newTestCoordinator(t)
	view, _ := c.CreateGame(context.Background())
	ctx := context.Background()

	// An untouched deal is not recorded when replaced.
	_, _ = c.Do(ctx, view.GameID, func(b *board.Board) error { b.NewGame(); return nil })
	if got := rec.all(); len(got) != 0 {
		t.Fatalf("untouched deal recorded: %+v", got)
	}

	_, _ = c.Do(ctx, view.GameID, func(b *board.Board) error { b.Draw(); return nil })
	_, _ = c.Do(ctx, view.GameID, func(b *board.Board) error { b.NewGame(); return nil })
	got := rec.all()
	if len(got) != 1 || got[0].Outcome != store.OutcomeAbandoned || got[0].GameID != DealID(view.GameID, 2) || got[0].Moves != 1 {
		t.Fatalf("unexpected results: %+v", got)
	}

	if err := c.Close(ctx, view.GameID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := rec.all(); len(got) != 1 {
		t.Fatalf("closing an untouched deal should not record: %+v", got)
	}
	if err := c.Close(ctx, view.GameID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("second close: %v", err)
	}
}

func TestExpireIdle(t *testing.T) {
	c, rec, clock := newTestCoordinator(t)
	ctx := context.Background()
	old, _ := c.CreateGame(ctx)
	_, _ = c.Do(ctx, old.GameID, func(b *board.Board) error { b.Draw(); return nil })

	clock.Advance(20 * time.Minute)
	fresh, _ := c.CreateGame(ctx)

	if n := c.expireIdle(ctx, clock.Now(), 10*time.Minute); n != 1 {
		t.Fatalf("expected 1 expired game, got %d", n)
	}
	if _, err := c.Snapshot(ctx, old.GameID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expired game still reachable: %v", err)
	}
	if _, err := c.Snapshot(ctx, fresh.GameID); err != nil {
		t.Fatalf("fresh game expired: %v", err)
	}
	got := rec.all()
	if len(got) != 1 || got[0].Outcome != store.OutcomeExpired || got[0].DurationMS != (20*time.Minute).Milliseconds() {
		t.Fatalf("unexpected results: %+v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 live game, got %d", c.Len())
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	ctx := context.Background()
	view, _ := c.CreateGame(ctx)

	replay, err := c.Replay(view.GameID, "")
	if err != nil || len(replay) != 1 || replay[0].Event.Kind != notify.KindNewGame {
		t.Fatalf("unexpected replay: %+v err=%v", replay, err)
	}

	ch, cancel, err := c.Subscribe(view.GameID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	_, _ = c.Do(ctx, view.GameID, func(b *board.Board) error { b.Hint(); return nil })

	select {
	case rec := <-ch:
		if rec.Event.Kind != notify.KindHint || rec.Event.GameID != view.GameID {
			t.Fatalf("unexpected record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	if err := c.Close(ctx, view.GameID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, open := <-ch; open {
		t.Fatal("close should end the subscription")
	}
	if _, _, err := c.Subscribe(view.GameID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("subscribe after close: %v", err)
	}
}

func TestShutdownRecordsPlayedGames(t *testing.T) {
	c, rec, _ := newTestCoordinator(t)
	ctx := context.Background()
	played, _ := c.CreateGame(ctx)
	_, _ = c.CreateGame(ctx)
	_, _ = c.Do(ctx, played.GameID, func(b *board.Board) error { b.Draw(); return nil })

	c.Shutdown(ctx)
	if c.Len() != 0 {
		t.Fatalf("expected no games after shutdown, got %d", c.Len())
	}
	got := rec.all()
	if len(got) != 1 || got[0].GameID != DealID(played.GameID, 1) {
		t.Fatalf("unexpected results: %+v", got)
	}
}
