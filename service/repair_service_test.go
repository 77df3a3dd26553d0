package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRepairService_RepairRankingPartition(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewRepairService(m.factory, 1)

	partition := models.RankingPartition{GameType: "alps", Period: models.PeriodAllTime, PeriodKey: models.AllTimeKey}
	// p2 was left with a stale rank
	rows := []*models.RankingAggregate{
		{PlayerID: "p1", BestScore: 95, TotalGames: 2, Rank: intPtr(1)},
		{PlayerID: "p2", BestScore: 90, TotalGames: 1, Rank: intPtr(5)},
	}

	m.expectWriteTransaction()
	m.locker.On("Lock", ctx, []string{partition.LockKey()}).Return(nil)
	m.rankings.On("ListPartition", ctx, partition).Return(rows, nil)
	m.rankings.On("UpdateRanks", ctx, partition, []models.RankUpdate{{PlayerID: "p2", Rank: 2}}).Return(nil)

	updated, err := svc.RepairRankingPartition(ctx, partition)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	m.assertAll(t)
}

func TestRepairService_RepairRankingPartition_NothingStale(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewRepairService(m.factory, 1)

	partition := models.RankingPartition{GameType: "alps", Period: models.PeriodAllTime, PeriodKey: models.AllTimeKey}
	m.expectWriteTransaction()
	m.locker.On("Lock", ctx, mock.Anything).Return(nil)
	m.rankings.On("ListPartition", ctx, partition).Return([]*models.RankingAggregate{
		{PlayerID: "p1", BestScore: 95, Rank: intPtr(1)},
	}, nil)

	updated, err := svc.RepairRankingPartition(ctx, partition)

	require.NoError(t, err)
	assert.Zero(t, updated)
	m.rankings.AssertNotCalled(t, "UpdateRanks", mock.Anything, mock.Anything, mock.Anything)
}

func TestRepairService_RepairDuelPartition(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewRepairService(m.factory, 1)

	m.expectWriteTransaction()
	m.locker.On("Lock", ctx, []string{"duel:world"}).Return(nil)
	m.duelStats.On("ListPartition", ctx, "world").Return([]*models.DuelStat{
		{PlayerID: "b", DuelPoints: 3, Wins: 1, TotalDuels: 1},
		{PlayerID: "a", DuelPoints: 9, Wins: 2, TotalDuels: 2, Rank: intPtr(1)},
	}, nil)
	m.duelStats.On("UpdateRanks", ctx, "world", []models.RankUpdate{{PlayerID: "b", Rank: 2}}).Return(nil)

	updated, err := svc.RepairDuelPartition(ctx, "world")

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	m.assertAll(t)
}

func TestRepairService_RepairAll(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewRepairService(m.factory, 2)

	partitions := []models.RankingPartition{
		{GameType: "alps", Period: models.PeriodAllTime, PeriodKey: models.AllTimeKey},
		{GameType: models.GameTypeOverall, Period: models.PeriodAllTime, PeriodKey: models.AllTimeKey},
	}

	m.expectWriteTransaction()
	m.rankings.On("ListPartitions", mock.Anything).Return(partitions, nil)
	m.duelStats.On("ListGameTypes", mock.Anything).Return([]string{"alps"}, nil)
	m.locker.On("Lock", mock.Anything, mock.Anything).Return(nil)
	for _, p := range partitions {
		m.rankings.On("ListPartition", mock.Anything, p).Return([]*models.RankingAggregate{
			{PlayerID: "p1", BestScore: 10},
		}, nil).Once()
		m.rankings.On("UpdateRanks", mock.Anything, p, []models.RankUpdate{{PlayerID: "p1", Rank: 1}}).Return(nil).Once()
	}
	m.duelStats.On("ListPartition", mock.Anything, "alps").Return([]*models.DuelStat{
		{PlayerID: "a", DuelPoints: 3, Rank: intPtr(1)},
	}, nil)

	report, err := svc.RepairAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, report.RankingPartitions)
	assert.Equal(t, 1, report.DuelPartitions)
	assert.Equal(t, 2, report.RowsUpdated)
	m.locker.AssertNumberOfCalls(t, "Lock", 3)
	m.assertAll(t)
}

func TestRepairService_RepairAll_StopsOnError(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	svc := NewRepairService(m.factory, 1)

	partition := models.RankingPartition{GameType: "alps", Period: models.PeriodAllTime, PeriodKey: models.AllTimeKey}
	m.expectReadTransaction()
	m.rankings.On("ListPartitions", mock.Anything).Return([]models.RankingPartition{partition}, nil)
	m.duelStats.On("ListGameTypes", mock.Anything).Return([]string{}, nil)
	m.locker.On("Lock", mock.Anything, mock.Anything).Return(errors.New("lock timeout"))

	_, err := svc.RepairAll(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock timeout")
	m.uow.AssertNotCalled(t, "Commit")
}
