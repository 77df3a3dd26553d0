package api

import (
	"context"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/stretchr/testify/mock"
)

type mockRankingService struct {
	mock.Mock
}

func (m *mockRankingService) RecordResult(ctx context.Context, input service.RecordResultInput) (*models.RecordOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecordOutcome), args.Error(1)
}

func (m *mockRankingService) MigrateGuestResults(ctx context.Context, guestID, playerID string) (*models.MigrationOutcome, error) {
	args := m.Called(ctx, guestID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MigrationOutcome), args.Error(1)
}

type mockDuelService struct {
	mock.Mock
}

func (m *mockDuelService) CompleteDuel(ctx context.Context, input service.CompleteDuelInput) (*models.DuelOutcome, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelOutcome), args.Error(1)
}

type mockLeaderboardService struct {
	mock.Mock
}

func (m *mockLeaderboardService) GetRankings(ctx context.Context, query service.RankingsQuery) (*models.RankingsPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RankingsPage), args.Error(1)
}

func (m *mockLeaderboardService) GetUserRank(ctx context.Context, playerID, gameType string, period models.Period, periodKey string) (*models.RankingAggregate, error) {
	args := m.Called(ctx, playerID, gameType, period, periodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RankingAggregate), args.Error(1)
}

func (m *mockLeaderboardService) GetTopGames(ctx context.Context, query service.TopGamesQuery) ([]models.TopGameEntry, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TopGameEntry), args.Error(1)
}

func (m *mockLeaderboardService) GetUserGameStats(ctx context.Context, playerID, gameType string, period *models.Period) (*models.UserGameStats, error) {
	args := m.Called(ctx, playerID, gameType, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGameStats), args.Error(1)
}

func (m *mockLeaderboardService) GetDuelLeaderboard(ctx context.Context, gameType string, limit, offset int) (*models.DuelLeaderboardPage, error) {
	args := m.Called(ctx, gameType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelLeaderboardPage), args.Error(1)
}

func (m *mockLeaderboardService) GetDuelStat(ctx context.Context, playerID, gameType string) (*models.DuelStat, error) {
	args := m.Called(ctx, playerID, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelStat), args.Error(1)
}

type mockOverallService struct {
	mock.Mock
}

func (m *mockOverallService) GetOverallLeaderboard(ctx context.Context, limit, offset int) (*models.DuelLeaderboardPage, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelLeaderboardPage), args.Error(1)
}

func (m *mockOverallService) Invalidate(ctx context.Context) {
	m.Called(ctx)
}
