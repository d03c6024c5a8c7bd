package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var ErrInvalidResult = errors.New("invalid_result")

const resultColumns = `id, game_id, outcome, moves, duration_ms, started_at, ended_at, created_at`

// RecordResult stores r once per game; a second result for the same game is
// ignored and reports false.
func (s *Store) RecordResult(ctx context.Context, r Result) (bool, error) {
	if r.GameID == "" {
		return false, ErrInvalidResult
	}
	switch r.Outcome {
	case OutcomeWon, OutcomeAbandoned, OutcomeExpired:
	default:
		return false, ErrInvalidResult
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.EndedAt.IsZero() {
		r.EndedAt = time.Now()
	}
	tag, err := s.Pool.Exec(ctx, `
		INSERT INTO game_results (id, game_id, outcome, moves, duration_ms, started_at, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (game_id) DO NOTHING
	`, r.ID, r.GameID, string(r.Outcome), r.Moves, r.DurationMS, timestamptzParam(r.StartedAt), timestamptzParam(r.EndedAt))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetResult(ctx context.Context, gameID string) (Result, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+resultColumns+` FROM game_results WHERE game_id = $1`, gameID)
	r, err := scanResult(row)
	if err != nil {
		return Result{}, mapNotFound(err)
	}
	return r, nil
}

// ListResults returns the newest results first.
func (s *Store) ListResults(ctx context.Context, limit, offset int) ([]Result, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+resultColumns+` FROM game_results ORDER BY ended_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT
			COUNT(1),
			COUNT(1) FILTER (WHERE outcome = 'won'),
			MIN(moves) FILTER (WHERE outcome = 'won'),
			MIN(duration_ms) FILTER (WHERE outcome = 'won')
		FROM game_results
	`)
	var st Stats
	var best pgtype.Int4
	var fastest pgtype.Int8
	if err := row.Scan(&st.Games, &st.Wins, &best, &fastest); err != nil {
		return Stats{}, err
	}
	if st.Games > 0 {
		st.WinRate = float64(st.Wins) / float64(st.Games)
	}
	st.BestMoves = int4Ptr(best)
	st.FastestWinMS = int8Ptr(fastest)
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var outcome string
	var started, ended, created pgtype.Timestamptz
	if err := row.Scan(&r.ID, &r.GameID, &outcome, &r.Moves, &r.DurationMS, &started, &ended, &created); err != nil {
		return Result{}, err
	}
	r.Outcome = Outcome(outcome)
	r.StartedAt = started.Time
	r.EndedAt = ended.Time
	r.CreatedAt = created.Time
	return r, nil
}
