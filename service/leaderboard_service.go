package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/models"
)

// leaderboardService implements the LeaderboardService interface. It only reads.
type leaderboardService struct {
	uowFactory UnitOfWorkFactory
	gameTypes  GameTypes
	now        func() time.Time
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(uowFactory UnitOfWorkFactory, gameTypes GameTypes) LeaderboardService {
	return &leaderboardService{
		uowFactory: uowFactory,
		gameTypes:  gameTypes,
		now:        time.Now,
	}
}

// GetRankings returns one page of a partition. SortByBest follows the stored rank,
// SortByTotal orders by cumulative score and numbers rows by their position in
// that ordering; the stored rank is returned unchanged in both modes.
func (s *leaderboardService) GetRankings(ctx context.Context, query RankingsQuery) (*models.RankingsPage, error) {
	partition, err := s.partition(query.GameType, query.Period, query.PeriodKey)
	if err != nil {
		return nil, err
	}
	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = models.SortByBest
	}
	if sortBy != models.SortByBest && sortBy != models.SortByTotal {
		return nil, fmt.Errorf("%w: unknown sort mode %q", ErrInvalidInput, sortBy)
	}
	limit, offset := normalizePage(query.Limit, query.Offset)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.RankingAggregateRepository()
	rows, err := repo.ListPage(ctx, partition, sortBy, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get rankings for %s: %w", partition, err)
	}
	total, err := repo.CountPartition(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("failed to count rankings for %s: %w", partition, err)
	}

	entries := make([]models.RankingEntry, len(rows))
	for i, row := range rows {
		entries[i] = models.RankingEntry{RankingAggregate: row, Position: offset + i + 1}
	}

	return &models.RankingsPage{
		Partition: partition,
		SortBy:    sortBy,
		Entries:   entries,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *leaderboardService) GetUserRank(ctx context.Context, playerID, gameType string, period models.Period, periodKey string) (*models.RankingAggregate, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: playerId is required", ErrInvalidInput)
	}
	partition, err := s.partition(gameType, period, periodKey)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	aggregate, err := uow.RankingAggregateRepository().Get(ctx, playerID, partition)
	if err != nil {
		return nil, fmt.Errorf("failed to get rank of %s in %s: %w", playerID, partition, err)
	}
	return aggregate, nil
}

// GetTopGames lists individual results, so a player can appear more than once
func (s *leaderboardService) GetTopGames(ctx context.Context, query TopGamesQuery) ([]models.TopGameEntry, error) {
	if err := s.gameTypes.ValidateQuery(query.GameType); err != nil {
		return nil, err
	}
	limit, offset := normalizePage(query.Limit, query.Offset)
	window := s.window(query.Period)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	results, err := uow.GameResultRepository().ListTop(ctx, query.GameType, window, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get top games for %s: %w", query.GameType, err)
	}

	entries := make([]models.TopGameEntry, len(results))
	for i, r := range results {
		entries[i] = models.TopGameEntry{GameResult: r, PlayerID: r.Owner.ID(), Position: offset + i + 1}
	}
	return entries, nil
}

// GetUserGameStats places the player's best single game among all individual results
// by counting strictly better scores.
func (s *leaderboardService) GetUserGameStats(ctx context.Context, playerID, gameType string, period *models.Period) (*models.UserGameStats, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: playerId is required", ErrInvalidInput)
	}
	if err := s.gameTypes.ValidateQuery(gameType); err != nil {
		return nil, err
	}
	window := s.window(period)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.GameResultRepository()
	stats, err := repo.GetPlayerSummary(ctx, playerID, gameType, window)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats for %s: %w", playerID, err)
	}
	stats.PlayerID = playerID
	stats.GameType = gameType
	stats.Period = period

	if stats.GamesPlayed > 0 {
		better, err := repo.CountScoresAbove(ctx, gameType, window, stats.BestScore)
		if err != nil {
			return nil, fmt.Errorf("failed to rank best game of %s: %w", playerID, err)
		}
		rank := better + 1
		stats.BestGameRank = &rank
	}

	return stats, nil
}

func (s *leaderboardService) GetDuelLeaderboard(ctx context.Context, gameType string, limit, offset int) (*models.DuelLeaderboardPage, error) {
	if err := s.gameTypes.Validate(gameType); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.DuelStatRepository()
	stats, err := repo.ListPage(ctx, gameType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel leaderboard for %s: %w", gameType, err)
	}
	total, err := repo.Count(ctx, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to count duel leaderboard for %s: %w", gameType, err)
	}

	entries := make([]models.DuelLeaderboardEntry, len(stats))
	for i, st := range stats {
		entries[i] = models.EntryFromDuelStat(st)
	}

	return &models.DuelLeaderboardPage{
		GameType: gameType,
		Entries:  entries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (s *leaderboardService) GetDuelStat(ctx context.Context, playerID, gameType string) (*models.DuelStat, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: playerId is required", ErrInvalidInput)
	}
	if err := s.gameTypes.Validate(gameType); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stat, err := uow.DuelStatRepository().Get(ctx, playerID, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel stats for %s: %w", playerID, err)
	}
	return stat, nil
}

func (s *leaderboardService) partition(gameType string, period models.Period, periodKey string) (models.RankingPartition, error) {
	if err := s.gameTypes.ValidateQuery(gameType); err != nil {
		return models.RankingPartition{}, err
	}
	if _, err := models.ParsePeriod(string(period)); err != nil {
		return models.RankingPartition{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if periodKey == "" {
		periodKey = models.PeriodKey(period, s.now())
	}
	return models.RankingPartition{GameType: gameType, Period: period, PeriodKey: periodKey}, nil
}

func (s *leaderboardService) window(period *models.Period) *models.TimeWindow {
	if period == nil {
		return nil
	}
	return models.WindowFor(*period, s.now())
}
