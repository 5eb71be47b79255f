package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync metrics
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_sync_runs_total",
		Help: "The total number of stats sync runs by terminal status",
	}, []string{"status"})
	SyncPlayersUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_sync_players_updated_total",
		Help: "The total number of players whose snapshots were upserted across all runs",
	})
	SyncPlayerErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_sync_player_errors_total",
		Help: "The total number of per-player failures tolerated during sync runs",
	})
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pool_sync_duration_seconds",
		Help:    "Wall-clock duration of full sync runs",
		Buckets: prometheus.DefBuckets,
	})

	// Classifier metrics
	RoundFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_round_classification_fallbacks_total",
		Help: "The total number of game identifiers that fell back to the default round",
	})
)
