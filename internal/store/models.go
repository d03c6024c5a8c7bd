package store

import "time"

// Outcome says how a game left the server.
type Outcome string

const (
	OutcomeWon       Outcome = "won"
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeExpired   Outcome = "expired"
)

type Result struct {
	ID         string    `json:"id"`
	GameID     string    `json:"game_id"`
	Outcome    Outcome   `json:"outcome"`
	Moves      int       `json:"moves"`
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type Stats struct {
	Games        int64   `json:"games"`
	Wins         int64   `json:"wins"`
	WinRate      float64 `json:"win_rate"`
	BestMoves    *int    `json:"best_moves,omitempty"`
	FastestWinMS *int64  `json:"fastest_win_ms,omitempty"`
}
