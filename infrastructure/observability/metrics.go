package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values
const (
	OutcomeAggregated = "aggregated"
	OutcomeGuest      = "guest"
	OutcomeDuplicate  = "duplicate"
	OutcomeRecorded   = "recorded"
	OutcomeFailed     = "failed"

	RankKindRanking = "ranking"
	RankKindDuel    = "duel"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	resultsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_results_recorded_total",
		Help: "Game results received, by game type and outcome",
	}, []string{"game_type", "outcome"})

	duelsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_duels_completed_total",
		Help: "Duel completions received, by game type and outcome",
	}, []string{"game_type", "outcome"})

	duelPointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_duel_points_awarded_total",
		Help: "Duel points awarded to winners",
	}, []string{"game_type"})

	guestGamesMigrated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leaderboard_guest_games_migrated_total",
		Help: "Guest game results moved onto accounts",
	})

	rankRecomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leaderboard_rank_recompute_duration_seconds",
		Help:    "Duration of a full partition rank recompute",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	rankRowsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_rank_rows_updated_total",
		Help: "Rows whose rank changed during recompute",
	}, []string{"kind"})

	overallCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_overall_cache_lookups_total",
		Help: "Overall leaderboard cache lookups by result",
	}, []string{"result"})

	notificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_notifications_failed_total",
		Help: "Duel notifications that could not be delivered",
	}, []string{"notifier"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_events_published_total",
		Help: "Events published to the message broker",
	}, []string{"subject", "outcome"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leaderboard_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func RecordResult(gameType, outcome string) {
	resultsRecorded.WithLabelValues(gameType, outcome).Inc()
}

func RecordDuel(gameType, outcome string, pointsAwarded int64) {
	duelsCompleted.WithLabelValues(gameType, outcome).Inc()
	if pointsAwarded > 0 {
		duelPointsAwarded.WithLabelValues(gameType).Add(float64(pointsAwarded))
	}
}

func RecordGuestMigration(games int) {
	guestGamesMigrated.Add(float64(games))
}

// ObserveRankRecompute records one partition recompute
func ObserveRankRecompute(kind string, started time.Time, rowsUpdated int) {
	rankRecomputeDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	rankRowsUpdated.WithLabelValues(kind).Add(float64(rowsUpdated))
}

func RecordOverallCacheLookup(result string) {
	overallCacheLookups.WithLabelValues(result).Inc()
}

func RecordNotificationFailure(notifier string) {
	notificationsFailed.WithLabelValues(notifier).Inc()
}

func RecordEventPublished(subject, outcome string) {
	eventsPublished.WithLabelValues(subject, outcome).Inc()
}

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
