package service

import (
	"context"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/models"

	"github.com/stretchr/testify/mock"
)

// MockGameResultRepository is a mock implementation of GameResultRepository
type MockGameResultRepository struct {
	mock.Mock
}

func (m *MockGameResultRepository) Insert(ctx context.Context, result *models.GameResult) (bool, error) {
	args := m.Called(ctx, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameResultRepository) GetByGameID(ctx context.Context, gameID string) (*models.GameResult, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameResult), args.Error(1)
}

func (m *MockGameResultRepository) ReassignGuest(ctx context.Context, guestID, playerID string) ([]*models.GameResult, error) {
	args := m.Called(ctx, guestID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameResult), args.Error(1)
}

func (m *MockGameResultRepository) ListTop(ctx context.Context, gameType string, window *models.TimeWindow, limit, offset int) ([]*models.GameResult, error) {
	args := m.Called(ctx, gameType, window, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameResult), args.Error(1)
}

func (m *MockGameResultRepository) GetPlayerSummary(ctx context.Context, playerID, gameType string, window *models.TimeWindow) (*models.UserGameStats, error) {
	args := m.Called(ctx, playerID, gameType, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGameStats), args.Error(1)
}

func (m *MockGameResultRepository) CountScoresAbove(ctx context.Context, gameType string, window *models.TimeWindow, score int64) (int64, error) {
	args := m.Called(ctx, gameType, window, score)
	return args.Get(0).(int64), args.Error(1)
}

// MockRankingAggregateRepository is a mock implementation of RankingAggregateRepository
type MockRankingAggregateRepository struct {
	mock.Mock
}

func (m *MockRankingAggregateRepository) Upsert(ctx context.Context, contribution models.RankingContribution) error {
	args := m.Called(ctx, contribution)
	return args.Error(0)
}

func (m *MockRankingAggregateRepository) ListPartition(ctx context.Context, partition models.RankingPartition) ([]*models.RankingAggregate, error) {
	args := m.Called(ctx, partition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RankingAggregate), args.Error(1)
}

func (m *MockRankingAggregateRepository) UpdateRanks(ctx context.Context, partition models.RankingPartition, updates []models.RankUpdate) error {
	args := m.Called(ctx, partition, updates)
	return args.Error(0)
}

func (m *MockRankingAggregateRepository) ListPage(ctx context.Context, partition models.RankingPartition, sortBy models.SortBy, limit, offset int) ([]*models.RankingAggregate, error) {
	args := m.Called(ctx, partition, sortBy, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RankingAggregate), args.Error(1)
}

func (m *MockRankingAggregateRepository) CountPartition(ctx context.Context, partition models.RankingPartition) (int64, error) {
	args := m.Called(ctx, partition)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRankingAggregateRepository) Get(ctx context.Context, playerID string, partition models.RankingPartition) (*models.RankingAggregate, error) {
	args := m.Called(ctx, playerID, partition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RankingAggregate), args.Error(1)
}

func (m *MockRankingAggregateRepository) ListPartitions(ctx context.Context) ([]models.RankingPartition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RankingPartition), args.Error(1)
}

// MockDuelResultRepository is a mock implementation of DuelResultRepository
type MockDuelResultRepository struct {
	mock.Mock
}

func (m *MockDuelResultRepository) Insert(ctx context.Context, duel *models.DuelResult) (bool, error) {
	args := m.Called(ctx, duel)
	return args.Bool(0), args.Error(1)
}

func (m *MockDuelResultRepository) GetByCompletion(ctx context.Context, duelSeed, challengerID, accepterID string) (*models.DuelResult, error) {
	args := m.Called(ctx, duelSeed, challengerID, accepterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelResult), args.Error(1)
}

// MockDuelStatRepository is a mock implementation of DuelStatRepository
type MockDuelStatRepository struct {
	mock.Mock
}

func (m *MockDuelStatRepository) Get(ctx context.Context, playerID, gameType string) (*models.DuelStat, error) {
	args := m.Called(ctx, playerID, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DuelStat), args.Error(1)
}

func (m *MockDuelStatRepository) RecordWin(ctx context.Context, playerID, gameType string, points int64, profile models.PlayerProfile) error {
	args := m.Called(ctx, playerID, gameType, points, profile)
	return args.Error(0)
}

func (m *MockDuelStatRepository) RecordLoss(ctx context.Context, playerID, gameType string, profile models.PlayerProfile) error {
	args := m.Called(ctx, playerID, gameType, profile)
	return args.Error(0)
}

func (m *MockDuelStatRepository) ListPartition(ctx context.Context, gameType string) ([]*models.DuelStat, error) {
	args := m.Called(ctx, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DuelStat), args.Error(1)
}

func (m *MockDuelStatRepository) UpdateRanks(ctx context.Context, gameType string, updates []models.RankUpdate) error {
	args := m.Called(ctx, gameType, updates)
	return args.Error(0)
}

func (m *MockDuelStatRepository) ListPage(ctx context.Context, gameType string, limit, offset int) ([]*models.DuelStat, error) {
	args := m.Called(ctx, gameType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DuelStat), args.Error(1)
}

func (m *MockDuelStatRepository) Count(ctx context.Context, gameType string) (int64, error) {
	args := m.Called(ctx, gameType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDuelStatRepository) ListGameTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDuelStatRepository) SumByPlayer(ctx context.Context) ([]*models.DuelStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DuelStat), args.Error(1)
}

// MockPartitionLocker is a mock implementation of PartitionLocker
type MockPartitionLocker struct {
	mock.Mock
}

func (m *MockPartitionLocker) Lock(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Transaction calls are
// mocked; repository getters return whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	gameResultRepo GameResultRepository
	rankingRepo    RankingAggregateRepository
	duelResultRepo DuelResultRepository
	duelStatRepo   DuelStatRepository
	locker         PartitionLocker
	eventBus       EventPublisher
}

// SetRepositories installs the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	gameResults GameResultRepository,
	rankings RankingAggregateRepository,
	duelResults DuelResultRepository,
	duelStats DuelStatRepository,
	locker PartitionLocker,
	eventBus EventPublisher,
) {
	m.gameResultRepo = gameResults
	m.rankingRepo = rankings
	m.duelResultRepo = duelResults
	m.duelStatRepo = duelStats
	m.locker = locker
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GameResultRepository() GameResultRepository {
	return m.gameResultRepo
}

func (m *MockUnitOfWork) RankingAggregateRepository() RankingAggregateRepository {
	return m.rankingRepo
}

func (m *MockUnitOfWork) DuelResultRepository() DuelResultRepository {
	return m.duelResultRepo
}

func (m *MockUnitOfWork) DuelStatRepository() DuelStatRepository {
	return m.duelStatRepo
}

func (m *MockUnitOfWork) PartitionLocker() PartitionLocker {
	return m.locker
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockOverallLeaderboardCache is a mock implementation of OverallLeaderboardCache
type MockOverallLeaderboardCache struct {
	mock.Mock
}

func (m *MockOverallLeaderboardCache) Get(ctx context.Context) ([]models.DuelLeaderboardEntry, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.DuelLeaderboardEntry), args.Bool(1), args.Error(2)
}

func (m *MockOverallLeaderboardCache) Set(ctx context.Context, entries []models.DuelLeaderboardEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockOverallLeaderboardCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
