package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/infrastructure/observability"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	overallFlightKey      = "overall"
	overallComputeTimeout = 30 * time.Second
)

// overallLeaderboardService derives the cross game type duel leaderboard from duel stats.
// The ranked list is cached whole and paginated in memory.
type overallLeaderboardService struct {
	uowFactory UnitOfWorkFactory
	cache      OverallLeaderboardCache
	flight     singleflight.Group
	generation atomic.Uint64
	bypass     atomic.Bool
}

// NewOverallLeaderboardService creates the service; cache may be nil to always recompute
func NewOverallLeaderboardService(uowFactory UnitOfWorkFactory, cache OverallLeaderboardCache) OverallLeaderboardService {
	return &overallLeaderboardService{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

func (s *overallLeaderboardService) GetOverallLeaderboard(ctx context.Context, limit, offset int) (*models.DuelLeaderboardPage, error) {
	limit, offset = normalizePage(limit, offset)

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	page := &models.DuelLeaderboardPage{
		GameType: models.GameTypeOverall,
		Entries:  []models.DuelLeaderboardEntry{},
		Total:    int64(len(entries)),
		Limit:    limit,
		Offset:   offset,
	}
	if offset < len(entries) {
		end := min(offset+limit, len(entries))
		page.Entries = entries[offset:end]
	}
	return page, nil
}

// Invalidate drops the cached leaderboard. Loads that started earlier will not
// write their now stale result back. When the cache cannot be cleared, reads bypass
// it until a fresh board has been written.
func (s *overallLeaderboardService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	s.flight.Forget(overallFlightKey)
	if s.cache == nil {
		return
	}
	s.dropCached(ctx)
}

func (s *overallLeaderboardService) dropCached(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.bypass.Store(true)
		log.WithError(err).Warn("Failed to invalidate overall leaderboard cache, bypassing it until rewritten")
	}
}

func (s *overallLeaderboardService) load(ctx context.Context) ([]models.DuelLeaderboardEntry, error) {
	if s.cache != nil && !s.bypass.Load() {
		entries, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			observability.RecordOverallCacheLookup(observability.CacheError)
			log.WithError(err).Warn("Overall leaderboard cache read failed, recomputing")
		case ok:
			observability.RecordOverallCacheLookup(observability.CacheHit)
			return entries, nil
		default:
			observability.RecordOverallCacheLookup(observability.CacheMiss)
		}
	}

	v, err, _ := s.flight.Do(overallFlightKey, func() (interface{}, error) {
		// Every joined caller waits on this compute, so it must not end with the first caller's request
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), overallComputeTimeout)
		defer cancel()

		generation := s.generation.Load()
		entries, err := s.compute(flightCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.generation.Load() == generation {
			s.store(flightCtx, generation, entries)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.DuelLeaderboardEntry), nil
}

// store writes a computed board. An Invalidate that lands while the write is in
// flight bumps the generation and the write is removed again.
func (s *overallLeaderboardService) store(ctx context.Context, generation uint64, entries []models.DuelLeaderboardEntry) {
	if err := s.cache.Set(ctx, entries); err != nil {
		log.WithError(err).Warn("Failed to cache overall leaderboard")
		return
	}
	if s.generation.Load() != generation {
		s.dropCached(ctx)
		return
	}
	s.bypass.Store(false)
}

func (s *overallLeaderboardService) compute(ctx context.Context) ([]models.DuelLeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sums, err := uow.DuelStatRepository().SumByPlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum duel stats: %w", err)
	}
	return models.RankOverallEntries(sums), nil
}
