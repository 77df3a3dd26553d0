package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/MichiMauch/geomaster.world-sub001/repository/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingAggregateRepository_Upsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRankingAggregateRepository(testDB.DB)
	ctx := context.Background()

	at := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	partition := models.RankingPartition{GameType: "alps", Period: models.PeriodDaily, PeriodKey: "2024-04-02"}

	for i, score := range []int64{80, 95, 60} {
		require.NoError(t, repo.Upsert(ctx, testutil.CreateTestContribution("p", partition, score, at.Add(time.Duration(i)*time.Minute))))
	}

	aggregate, err := repo.Get(ctx, "p", partition)
	require.NoError(t, err)
	require.NotNil(t, aggregate)

	assert.Equal(t, int64(3), aggregate.TotalGames)
	assert.Equal(t, int64(235), aggregate.TotalScore)
	assert.Equal(t, int64(95), aggregate.BestScore)
	assert.InDelta(t, 78.33, aggregate.AverageScore, 0.01)
	assert.Nil(t, aggregate.Rank)
	require.NotNil(t, aggregate.PlayerName)
	assert.Equal(t, "Player p", *aggregate.PlayerName)
	assert.True(t, at.Add(2*time.Minute).Equal(aggregate.UpdatedAt))

	other := partition
	other.PeriodKey = "2024-04-03"
	missing, err := repo.Get(ctx, "p", other)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRankingAggregateRepository_ConcurrentUpsertsDoNotLoseUpdates(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRankingAggregateRepository(testDB.DB)
	ctx := context.Background()

	partition := models.RankingPartition{GameType: "alps", Period: models.PeriodAllTime, PeriodKey: models.AllTimeKey}

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			errs <- repo.Upsert(ctx, testutil.CreateTestContribution("p", partition, score, time.Now()))
		}(int64(i + 1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	aggregate, err := repo.Get(ctx, "p", partition)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), aggregate.TotalGames)
	assert.Equal(t, int64(writers*(writers+1)/2), aggregate.TotalScore)
	assert.Equal(t, int64(writers), aggregate.BestScore)
}

func TestRankingAggregateRepository_RanksAndPages(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewRankingAggregateRepository(testDB.DB)
	ctx := context.Background()

	at := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	partition := models.RankingPartition{GameType: "alps", Period: models.PeriodMonthly, PeriodKey: "2024-04"}

	// alice: best 90 over 3 games, total 210. bob: best 95, total 95. carol: best 70 over 4, total 250.
	contributions := map[string][]int64{
		"alice": {90, 60, 60},
		"bob":   {95},
		"carol": {70, 60, 60, 60},
	}
	for player, scores := range contributions {
		for _, score := range scores {
			require.NoError(t, repo.Upsert(ctx, testutil.CreateTestContribution(player, partition, score, at)))
		}
	}

	rows, err := repo.ListPartition(ctx, partition)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	updates := models.AssignRankingRanks(rows)
	require.Len(t, updates, 3)
	require.NoError(t, repo.UpdateRanks(ctx, partition, updates))

	t.Run("best order follows stored rank", func(t *testing.T) {
		page, err := repo.ListPage(ctx, partition, models.SortByBest, 10, 0)
		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, []string{"bob", "alice", "carol"}, playerIDs(page))
		for i, row := range page {
			require.NotNil(t, row.Rank)
			assert.Equal(t, i+1, *row.Rank)
		}
	})

	t.Run("total order ignores stored rank", func(t *testing.T) {
		page, err := repo.ListPage(ctx, partition, models.SortByTotal, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"carol", "alice", "bob"}, playerIDs(page))
		assert.Equal(t, 3, *page[0].Rank)
	})

	t.Run("count and pagination", func(t *testing.T) {
		count, err := repo.CountPartition(ctx, partition)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		page, err := repo.ListPage(ctx, partition, models.SortByBest, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, playerIDs(page))
	})

	t.Run("partitions are listed", func(t *testing.T) {
		partitions, err := repo.ListPartitions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.RankingPartition{partition}, partitions)
	})
}

func playerIDs(rows []*models.RankingAggregate) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.PlayerID
	}
	return ids
}
