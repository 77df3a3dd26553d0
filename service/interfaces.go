package service

import (
	"context"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/models"
)

// GameResultRepository defines data access for the append-only game result log
type GameResultRepository interface {
	// Insert stores a result. It returns false without error when the game id
	// was already recorded.
	Insert(ctx context.Context, result *models.GameResult) (bool, error)

	// GetByGameID retrieves a result by its game id, nil when absent
	GetByGameID(ctx context.Context, gameID string) (*models.GameResult, error)

	// ReassignGuest moves every result owned by guestID to playerID and returns the moved rows
	ReassignGuest(ctx context.Context, guestID, playerID string) ([]*models.GameResult, error)

	// ListTop returns account-owned results ordered by score descending, oldest first on ties.
	// gameType "overall" spans every game type; a nil window spans all time.
	ListTop(ctx context.Context, gameType string, window *models.TimeWindow, limit, offset int) ([]*models.GameResult, error)

	// GetPlayerSummary returns count, sum, average and best score of a player's results
	GetPlayerSummary(ctx context.Context, playerID, gameType string, window *models.TimeWindow) (*models.UserGameStats, error)

	// CountScoresAbove counts account-owned results with a score strictly greater than score
	CountScoresAbove(ctx context.Context, gameType string, window *models.TimeWindow, score int64) (int64, error)
}

// RankingAggregateRepository defines data access for period-scoped ranking aggregates
type RankingAggregateRepository interface {
	// Upsert atomically adds a contribution to its aggregate row, creating the row if needed
	Upsert(ctx context.Context, contribution models.RankingContribution) error

	// ListPartition returns every row of a partition
	ListPartition(ctx context.Context, partition models.RankingPartition) ([]*models.RankingAggregate, error)

	// UpdateRanks persists rank assignments for a partition
	UpdateRanks(ctx context.Context, partition models.RankingPartition, updates []models.RankUpdate) error

	// ListPage returns a page of a partition in the requested ordering
	ListPage(ctx context.Context, partition models.RankingPartition, sortBy models.SortBy, limit, offset int) ([]*models.RankingAggregate, error)

	// CountPartition returns the number of rows in a partition
	CountPartition(ctx context.Context, partition models.RankingPartition) (int64, error)

	// Get returns a player's row in a partition, nil when absent
	Get(ctx context.Context, playerID string, partition models.RankingPartition) (*models.RankingAggregate, error)

	// ListPartitions returns every partition that has at least one row
	ListPartitions(ctx context.Context) ([]models.RankingPartition, error)
}

// DuelResultRepository defines data access for the append-only duel log
type DuelResultRepository interface {
	// Insert stores a duel. It returns false without error when the same completion
	// (seed and both players) was already recorded.
	Insert(ctx context.Context, duel *models.DuelResult) (bool, error)

	// GetByCompletion retrieves the stored duel for a seed and player pair, nil when absent
	GetByCompletion(ctx context.Context, duelSeed, challengerID, accepterID string) (*models.DuelResult, error)
}

// DuelStatRepository defines data access for per game type duel stats
type DuelStatRepository interface {
	// Get returns a player's stat row, nil when the player has no duels for the game type
	Get(ctx context.Context, playerID, gameType string) (*models.DuelStat, error)

	// RecordWin atomically adds a win and points
	RecordWin(ctx context.Context, playerID, gameType string, points int64, profile models.PlayerProfile) error

	// RecordLoss atomically adds a loss; points are unchanged
	RecordLoss(ctx context.Context, playerID, gameType string, profile models.PlayerProfile) error

	// ListPartition returns every stat row of a game type
	ListPartition(ctx context.Context, gameType string) ([]*models.DuelStat, error)

	// UpdateRanks persists rank assignments for a game type
	UpdateRanks(ctx context.Context, gameType string, updates []models.RankUpdate) error

	// ListPage returns a page ordered by stored rank
	ListPage(ctx context.Context, gameType string, limit, offset int) ([]*models.DuelStat, error)

	// Count returns the number of players with duel stats for a game type
	Count(ctx context.Context, gameType string) (int64, error)

	// ListGameTypes returns every game type that has duel stats
	ListGameTypes(ctx context.Context) ([]string, error)

	// SumByPlayer returns each player's wins, losses, duels and points summed over all game types
	SumByPlayer(ctx context.Context) ([]*models.DuelStat, error)
}

// PartitionLocker serializes writers of the same leaderboard partition
type PartitionLocker interface {
	// Lock takes transaction scoped locks on the given keys in the order given
	Lock(ctx context.Context, keys ...string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases queued events
	Commit() error

	// Rollback rolls back the transaction and drops queued events
	Rollback() error

	// Repository getters
	GameResultRepository() GameResultRepository
	RankingAggregateRepository() RankingAggregateRepository
	DuelResultRepository() DuelResultRepository
	DuelStatRepository() DuelStatRepository
	PartitionLocker() PartitionLocker
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// RankingService records game results and maintains ranking aggregates
type RankingService interface {
	// RecordResult stores a completed game and, for accounts, folds it into every
	// period aggregate and re-ranks the affected partitions
	RecordResult(ctx context.Context, input RecordResultInput) (*models.RecordOutcome, error)

	// MigrateGuestResults moves a guest's results onto an account and replays their aggregation
	MigrateGuestResults(ctx context.Context, guestID, playerID string) (*models.MigrationOutcome, error)
}

// DuelService records completed duels and maintains duel stats
type DuelService interface {
	// CompleteDuel decides the winner, awards points and re-ranks the game type's duel partition
	CompleteDuel(ctx context.Context, input CompleteDuelInput) (*models.DuelOutcome, error)
}

// DuelJudge decides the winner of a duel
type DuelJudge interface {
	// Decide returns the winning and losing participant
	Decide(challenger, accepter models.DuelParticipant) (winner, loser models.DuelParticipant)
}

// LeaderboardService answers leaderboard read queries
type LeaderboardService interface {
	GetRankings(ctx context.Context, query RankingsQuery) (*models.RankingsPage, error)

	// GetUserRank returns nil when the player has no aggregate in the partition
	GetUserRank(ctx context.Context, playerID, gameType string, period models.Period, periodKey string) (*models.RankingAggregate, error)

	GetTopGames(ctx context.Context, query TopGamesQuery) ([]models.TopGameEntry, error)

	GetUserGameStats(ctx context.Context, playerID, gameType string, period *models.Period) (*models.UserGameStats, error)

	GetDuelLeaderboard(ctx context.Context, gameType string, limit, offset int) (*models.DuelLeaderboardPage, error)

	// GetDuelStat returns nil when the player has no duels for the game type
	GetDuelStat(ctx context.Context, playerID, gameType string) (*models.DuelStat, error)
}

// OverallLeaderboardService serves the duel leaderboard summed across game types
type OverallLeaderboardService interface {
	GetOverallLeaderboard(ctx context.Context, limit, offset int) (*models.DuelLeaderboardPage, error)

	// Invalidate drops any cached copy so the next read recomputes from duel stats
	Invalidate(ctx context.Context)
}

// OverallLeaderboardCache stores the ranked overall leaderboard between duel completions
type OverallLeaderboardCache interface {
	// Get returns the cached entries and whether they were present
	Get(ctx context.Context) ([]models.DuelLeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []models.DuelLeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

// RepairService recomputes ranks for partitions from their stored rows
type RepairService interface {
	RepairAll(ctx context.Context) (*RepairReport, error)
	RepairRankingPartition(ctx context.Context, partition models.RankingPartition) (int, error)
	RepairDuelPartition(ctx context.Context, gameType string) (int, error)
}
