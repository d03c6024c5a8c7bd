package gateway

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"klondike/internal/ads"
	"klondike/internal/board"
	"klondike/internal/game"
	"klondike/internal/game/viewmodel"
	"klondike/internal/notify"
	"klondike/internal/store"

	"github.com/rs/zerolog/log"
)

var ErrGameNotFound = errors.New("game_not_found")

// ResultRecorder persists finished games. *store.Store satisfies it.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r store.Result) (bool, error)
}

type Options struct {
	HistoryLimit    int
	EventBufferSize int
	// ShuffleSeed, when non-zero, makes the n-th created game deal from
	// seed+n so whole sessions can be replayed.
	ShuffleSeed int64
	Ads         ads.Service
	Recorder    ResultRecorder
	// Sink also receives every game's events, after the per-game buffer.
	Sink notify.Sink
	Now  func() time.Time
	// RevealHidden disables face-down masking in snapshots.
	RevealHidden bool
}

type entry struct {
	mu       sync.Mutex
	board    *board.Board
	buffer   *notify.Buffer
	lastSeen time.Time
	// recorded is the deal number whose result has been written.
	recorded int
	closed   bool
}

// Coordinator owns every live game. Access to one game is serialized by its
// entry lock; the coordinator lock only guards the map.
type Coordinator struct {
	opts Options

	mu    sync.Mutex
	games map[string]*entry
	seq   int64
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sink == nil {
		opts.Sink = notify.Nop
	}
	if opts.Ads == nil {
		opts.Ads = ads.Disabled{}
	}
	return &Coordinator{opts: opts, games: map[string]*entry{}}
}

// StartJanitor expires idle games every interval until ctx is done.
func (c *Coordinator) StartJanitor(ctx context.Context, interval, idleTTL time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := c.expireIdle(ctx, now, idleTTL); n > 0 {
					log.Info().Int("expired", n).Msg("idle games expired")
				}
			}
		}
	}()
}

func (c *Coordinator) CreateGame(ctx context.Context) (viewmodel.BoardStateView, error) {
	id := store.NewGameID()
	buf := notify.NewBuffer(c.opts.EventBufferSize)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	b := board.New(game.NewEngine(c.rand(seq), c.opts.Now), board.Options{
		GameID:       id,
		HistoryLimit: c.opts.HistoryLimit,
		Sink:         notify.Multi(buf, c.opts.Sink),
		Ads:          c.opts.Ads,
		Now:          c.opts.Now,
	})
	e := &entry{board: b, buffer: buf, lastSeen: c.opts.Now()}

	c.mu.Lock()
	c.games[id] = e
	c.mu.Unlock()

	metricGamesCreated.Add(1)
	metricGamesActive.Add(1)
	log.Info().Str("game_id", id).Int64("seq", seq).Msg("game created")

	e.mu.Lock()
	defer e.mu.Unlock()
	return c.viewLocked(e), nil
}

func (c *Coordinator) Snapshot(ctx context.Context, id string) (viewmodel.BoardStateView, error) {
	return c.Do(ctx, id, func(*board.Board) error { return nil })
}

// Do runs fn against the game's board with exclusive access and returns the
// resulting snapshot. A win or a replaced deal is recorded once.
func (c *Coordinator) Do(ctx context.Context, id string, fn func(b *board.Board) error) (viewmodel.BoardStateView, error) {
	e, err := c.lookup(id)
	if err != nil {
		return viewmodel.BoardStateView{}, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return viewmodel.BoardStateView{}, ErrGameNotFound
	}
	prev, prevDeal := e.board.State(), e.board.Games()
	fnErr := fn(e.board)
	e.lastSeen = c.opts.Now()

	var pending []store.Result
	if deal := e.board.Games(); deal != prevDeal && e.recorded != prevDeal && prev.Moves > 0 {
		pending = append(pending, c.resultLocked(id, prevDeal, prev, store.OutcomeAbandoned))
		e.recorded = prevDeal
	}
	if s := e.board.State(); s.Won && e.recorded != e.board.Games() {
		pending = append(pending, c.resultLocked(id, e.board.Games(), s, store.OutcomeWon))
		e.recorded = e.board.Games()
		metricGamesWon.Add(1)
	}
	view := c.viewLocked(e)
	e.mu.Unlock()

	c.record(ctx, pending)
	return view, fnErr
}

// Close ends a game and records it if it was played but not finished.
func (c *Coordinator) Close(ctx context.Context, id string) error {
	c.mu.Lock()
	e, ok := c.games[id]
	delete(c.games, id)
	c.mu.Unlock()
	if !ok {
		return ErrGameNotFound
	}
	c.finish(ctx, id, e, store.OutcomeAbandoned)
	log.Info().Str("game_id", id).Msg("game closed")
	return nil
}

// Subscribe streams id's events from now on. The returned func releases the
// subscription.
func (c *Coordinator) Subscribe(id string) (<-chan notify.Record, func(), error) {
	e, err := c.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	ch := e.buffer.Subscribe()
	return ch, func() { e.buffer.Unsubscribe(ch) }, nil
}

// Replay returns id's buffered events after lastEventID.
func (c *Coordinator) Replay(id, lastEventID string) ([]notify.Record, error) {
	e, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.buffer.ReplayAfter(lastEventID), nil
}

func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.games)
}

// Shutdown closes every game, recording the unfinished ones.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	games := c.games
	c.games = map[string]*entry{}
	c.mu.Unlock()
	for id, e := range games {
		c.finish(ctx, id, e, store.OutcomeAbandoned)
	}
}

func (c *Coordinator) expireIdle(ctx context.Context, now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	expired := map[string]*entry{}
	for id, e := range c.games {
		e.mu.Lock()
		idle := now.Sub(e.lastSeen) > ttl
		e.mu.Unlock()
		if idle {
			expired[id] = e
			delete(c.games, id)
		}
	}
	c.mu.Unlock()

	for id, e := range expired {
		c.finish(ctx, id, e, store.OutcomeExpired)
		metricGamesExpired.Add(1)
		log.Debug().Str("game_id", id).Msg("game expired")
	}
	return len(expired)
}

// finish marks e closed, records the current deal if needed and releases
// its watchers. e must already be out of the map.
func (c *Coordinator) finish(ctx context.Context, id string, e *entry, outcome store.Outcome) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	var pending []store.Result
	if s, deal := e.board.State(), e.board.Games(); e.recorded != deal && s.Moves > 0 {
		pending = append(pending, c.resultLocked(id, deal, s, outcome))
		e.recorded = deal
	}
	e.mu.Unlock()

	metricGamesActive.Add(-1)
	e.buffer.Close()
	c.record(ctx, pending)
}

func (c *Coordinator) lookup(id string) (*entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return e, nil
}

func (c *Coordinator) viewLocked(e *entry) viewmodel.BoardStateView {
	flags := viewmodel.HistoryFlags{CanUndo: e.board.CanUndo(), CanRedo: e.board.CanRedo()}
	return viewmodel.BuildBoardState(e.board.ID(), e.board.State(), flags, c.opts.Now(), c.opts.RevealHidden)
}

func (c *Coordinator) resultLocked(id string, deal int, s game.GameState, outcome store.Outcome) store.Result {
	now := c.opts.Now()
	ended := s.EndTime
	if ended.IsZero() {
		ended = now
	}
	return store.Result{
		GameID:     DealID(id, deal),
		Outcome:    outcome,
		Moves:      s.Moves,
		DurationMS: s.Elapsed(now).Milliseconds(),
		StartedAt:  s.StartTime,
		EndedAt:    ended,
	}
}

func (c *Coordinator) record(ctx context.Context, results []store.Result) {
	if c.opts.Recorder == nil {
		return
	}
	for _, r := range results {
		if _, err := c.opts.Recorder.RecordResult(ctx, r); err != nil {
			log.Error().Err(err).Str("game_id", r.GameID).Str("outcome", string(r.Outcome)).Msg("record result failed")
		}
	}
}

func (c *Coordinator) rand(seq int64) *rand.Rand {
	if c.opts.ShuffleSeed != 0 {
		return rand.New(rand.NewSource(c.opts.ShuffleSeed + seq))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() + seq))
}

// DealID names one deal of a game; a game id hosts a new deal after every
// "new game".
func DealID(gameID string, deal int) string {
	return gameID + "#" + strconv.Itoa(deal)
}
