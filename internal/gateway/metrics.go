package gateway

import "expvar"

var (
	metricGamesCreated = expvar.NewInt("games_created_total")
	metricGamesActive  = expvar.NewInt("games_active")
	metricGamesWon     = expvar.NewInt("games_won_total")
	metricGamesExpired = expvar.NewInt("games_expired_total")
)
