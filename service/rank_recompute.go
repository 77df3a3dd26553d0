package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/infrastructure/observability"
	"github.com/MichiMauch/geomaster.world-sub001/models"
)

// recomputeRankingPartition re-ranks every row of a partition from scratch. The caller
// must hold the partition lock inside the same unit of work.
func recomputeRankingPartition(ctx context.Context, uow UnitOfWork, partition models.RankingPartition) (int, error) {
	started := time.Now()
	repo := uow.RankingAggregateRepository()

	rows, err := repo.ListPartition(ctx, partition)
	if err != nil {
		return 0, fmt.Errorf("failed to load partition %s: %w", partition, err)
	}

	updates := models.AssignRankingRanks(rows)
	if len(updates) > 0 {
		if err := repo.UpdateRanks(ctx, partition, updates); err != nil {
			return 0, fmt.Errorf("failed to update ranks for partition %s: %w", partition, err)
		}
	}

	observability.ObserveRankRecompute(observability.RankKindRanking, started, len(updates))
	return len(updates), nil
}

// recomputeDuelPartition re-ranks every duel stat of a game type from scratch
func recomputeDuelPartition(ctx context.Context, uow UnitOfWork, gameType string) (int, error) {
	started := time.Now()
	repo := uow.DuelStatRepository()

	rows, err := repo.ListPartition(ctx, gameType)
	if err != nil {
		return 0, fmt.Errorf("failed to load duel stats for %s: %w", gameType, err)
	}

	updates := models.AssignDuelRanks(rows)
	if len(updates) > 0 {
		if err := repo.UpdateRanks(ctx, gameType, updates); err != nil {
			return 0, fmt.Errorf("failed to update duel ranks for %s: %w", gameType, err)
		}
	}

	observability.ObserveRankRecompute(observability.RankKindDuel, started, len(updates))
	return len(updates), nil
}

func lockKeys(partitions []models.RankingPartition) []string {
	keys := make([]string, len(partitions))
	for i, p := range partitions {
		keys[i] = p.LockKey()
	}
	return keys
}
