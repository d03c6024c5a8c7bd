package httptransport

import "expvar"

var (
	metricGameActionTotal  = expvar.NewInt("game_action_total")
	metricGameActionErrors = expvar.NewInt("game_action_errors_total")

	metricResultsQueryTotal  = expvar.NewInt("results_query_total")
	metricResultsQueryErrors = expvar.NewInt("results_query_errors_total")
)
