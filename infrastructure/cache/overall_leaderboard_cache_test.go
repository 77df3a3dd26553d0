package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestNewOverallLeaderboardCache_RejectsTTL(t *testing.T) {
	_, err := NewOverallLeaderboardCache(nil, "", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestOverallLeaderboardCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, setupRedis(t))
	require.NoError(t, err)
	defer client.Close()

	cache, err := NewOverallLeaderboardCache(client, "test:", time.Minute)
	require.NoError(t, err)

	t.Run("miss on empty cache", func(t *testing.T) {
		entries, ok, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, entries)
	})

	t.Run("round trip keeps order and profile", func(t *testing.T) {
		name := "Anna"
		stored := []models.DuelLeaderboardEntry{
			{PlayerID: "a", Wins: 4, Losses: 1, TotalDuels: 5, WinRate: 0.8, DuelPoints: 18, Rank: 1, PlayerName: &name},
			{PlayerID: "b", Wins: 2, Losses: 2, TotalDuels: 4, WinRate: 0.5, DuelPoints: 9, Rank: 2},
		}
		require.NoError(t, cache.Set(ctx, stored))

		entries, ok, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, stored, entries)

		ttl, err := client.TTL(ctx, "test:duels:overall").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("empty leaderboard is a hit", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, nil))

		entries, ok, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, entries)
	})

	t.Run("invalidate drops the value", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, []models.DuelLeaderboardEntry{{PlayerID: "a", Rank: 1}}))
		require.NoError(t, cache.Invalidate(ctx))

		_, ok, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
