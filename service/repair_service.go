package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// repairService re-derives ranks from stored rows. Each partition is repaired in its
// own transaction under the same lock the aggregators take.
type repairService struct {
	uowFactory  UnitOfWorkFactory
	concurrency int
}

// NewRepairService creates a repair service running up to concurrency partitions at once
func NewRepairService(uowFactory UnitOfWorkFactory, concurrency int) RepairService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &repairService{
		uowFactory:  uowFactory,
		concurrency: concurrency,
	}
}

func (s *repairService) RepairAll(ctx context.Context) (*RepairReport, error) {
	partitions, gameTypes, err := s.listPartitions(ctx)
	if err != nil {
		return nil, err
	}

	var updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, partition := range partitions {
		g.Go(func() error {
			n, err := s.RepairRankingPartition(gctx, partition)
			updated.Add(int64(n))
			return err
		})
	}
	for _, gameType := range gameTypes {
		g.Go(func() error {
			n, err := s.RepairDuelPartition(gctx, gameType)
			updated.Add(int64(n))
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RepairReport{
		RankingPartitions: len(partitions),
		DuelPartitions:    len(gameTypes),
		RowsUpdated:       int(updated.Load()),
	}

	entry := log.WithFields(log.Fields{
		"rankingPartitions": report.RankingPartitions,
		"duelPartitions":    report.DuelPartitions,
		"rowsUpdated":       report.RowsUpdated,
	})
	if report.RowsUpdated > 0 {
		entry.Warn("Rank repair corrected stale ranks")
	} else {
		entry.Debug("Rank repair found nothing to correct")
	}

	return report, nil
}

func (s *repairService) RepairRankingPartition(ctx context.Context, partition models.RankingPartition) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PartitionLocker().Lock(ctx, partition.LockKey()); err != nil {
		return 0, fmt.Errorf("failed to lock partition %s: %w", partition, err)
	}

	updated, err := recomputeRankingPartition(ctx, uow, partition)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

func (s *repairService) RepairDuelPartition(ctx context.Context, gameType string) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PartitionLocker().Lock(ctx, models.DuelLockKey(gameType)); err != nil {
		return 0, fmt.Errorf("failed to lock duel partition %s: %w", gameType, err)
	}

	updated, err := recomputeDuelPartition(ctx, uow, gameType)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

func (s *repairService) listPartitions(ctx context.Context) ([]models.RankingPartition, []string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	partitions, err := uow.RankingAggregateRepository().ListPartitions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ranking partitions: %w", err)
	}
	gameTypes, err := uow.DuelStatRepository().ListGameTypes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list duel game types: %w", err)
	}
	return partitions, gameTypes, nil
}
