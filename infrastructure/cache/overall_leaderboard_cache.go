// Package cache keeps derived leaderboards in Redis between the writes that invalidate them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces every key written by this package
	DefaultKeyPrefix = "leaderboard:"

	overallKey = "duels:overall"
)

// ErrInvalidTTL is returned when the cache is built with a non-positive TTL
var ErrInvalidTTL = errors.New("cache: ttl must be positive")

// OverallLeaderboardCache stores the ranked overall duel leaderboard as one JSON value
type OverallLeaderboardCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewOverallLeaderboardCache creates a cache whose entries expire after ttl. An empty
// prefix falls back to DefaultKeyPrefix.
func NewOverallLeaderboardCache(client *redis.Client, prefix string, ttl time.Duration) (*OverallLeaderboardCache, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &OverallLeaderboardCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (c *OverallLeaderboardCache) key() string {
	return c.prefix + overallKey
}

// Get returns the cached entries, false when nothing is cached
func (c *OverallLeaderboardCache) Get(ctx context.Context) ([]models.DuelLeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", c.key(), err)
	}

	var entries []models.DuelLeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s: %w", c.key(), err)
	}
	return entries, true, nil
}

func (c *OverallLeaderboardCache) Set(ctx context.Context, entries []models.DuelLeaderboardEntry) error {
	if entries == nil {
		entries = []models.DuelLeaderboardEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode overall leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, c.key(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.key(), err)
	}
	return nil
}

func (c *OverallLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", c.key(), err)
	}
	return nil
}

// NewClient parses a redis:// URL and verifies the server answers
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
