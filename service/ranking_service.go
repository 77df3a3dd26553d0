package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/infrastructure/observability"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	log "github.com/sirupsen/logrus"
)

// rankingService implements the RankingService interface
type rankingService struct {
	uowFactory UnitOfWorkFactory
	gameTypes  GameTypes
	now        func() time.Time
}

// NewRankingService creates a new ranking service
func NewRankingService(uowFactory UnitOfWorkFactory, gameTypes GameTypes) RankingService {
	return &rankingService{
		uowFactory: uowFactory,
		gameTypes:  gameTypes,
		now:        time.Now,
	}
}

// RecordResult stores the result and updates all eight aggregates it contributes to in
// one transaction. A game id that was already stored is acknowledged without aggregating again.
func (s *rankingService) RecordResult(ctx context.Context, input RecordResultInput) (*models.RecordOutcome, error) {
	owner, err := s.validateResult(input)
	if err != nil {
		return nil, err
	}

	result := &models.GameResult{
		GameID:        strings.TrimSpace(input.GameID),
		Owner:         owner,
		GameType:      input.GameType,
		TotalScore:    input.TotalScore,
		AverageScore:  input.AverageScore,
		TotalDistance: input.TotalDistance,
		CompletedAt:   s.now().UTC(),
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	inserted, err := uow.GameResultRepository().Insert(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to store game result %s: %w", result.GameID, err)
	}

	if !inserted {
		existing, err := uow.GameResultRepository().GetByGameID(ctx, result.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to load game result %s: %w", result.GameID, err)
		}
		log.WithFields(log.Fields{
			"gameId":   result.GameID,
			"gameType": result.GameType,
		}).Info("Game result already recorded, skipping aggregation")
		observability.RecordResult(result.GameType, observability.OutcomeDuplicate)
		return &models.RecordOutcome{Result: existing, Duplicate: true}, nil
	}

	outcome := &models.RecordOutcome{Result: result}

	if owner.IsAccount() {
		contribution := models.RankingContribution{
			PlayerID:   owner.ID(),
			Score:      result.TotalScore,
			Profile:    input.Profile,
			RecordedAt: result.CompletedAt,
		}
		partitions, err := s.aggregate(ctx, uow, []*models.GameResult{result}, contribution)
		if err != nil {
			return nil, err
		}
		outcome.Partitions = partitions
	}

	uow.EventBus().Publish(newResultRecordedEvent(result))

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metricOutcome := observability.OutcomeAggregated
	if owner.IsGuest() {
		metricOutcome = observability.OutcomeGuest
	}
	observability.RecordResult(result.GameType, metricOutcome)

	log.WithFields(log.Fields{
		"gameId":     result.GameID,
		"owner":      owner.String(),
		"gameType":   result.GameType,
		"totalScore": result.TotalScore,
		"partitions": len(outcome.Partitions),
	}).Debug("Recorded game result")

	return outcome, nil
}

// MigrateGuestResults rewrites ownership of every result still linked to guestID and
// replays their aggregation onto playerID. Rows leave the guest in the same statement
// that claims them, so a second or concurrent run finds nothing to migrate.
func (s *rankingService) MigrateGuestResults(ctx context.Context, guestID, playerID string) (*models.MigrationOutcome, error) {
	guestID = strings.TrimSpace(guestID)
	playerID = strings.TrimSpace(playerID)
	if guestID == "" || playerID == "" {
		return nil, fmt.Errorf("%w: guestId and playerId are required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	moved, err := uow.GameResultRepository().ReassignGuest(ctx, guestID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign results of guest %s: %w", guestID, err)
	}

	outcome := &models.MigrationOutcome{GuestID: guestID, PlayerID: playerID, MigratedGames: len(moved)}
	if len(moved) == 0 {
		return outcome, nil
	}

	contribution := models.RankingContribution{
		PlayerID:   playerID,
		RecordedAt: s.now().UTC(),
	}
	partitions, err := s.aggregate(ctx, uow, moved, contribution)
	if err != nil {
		return nil, err
	}
	outcome.Partitions = partitions

	uow.EventBus().Publish(events.GuestMigratedEvent{
		GuestID:       guestID,
		PlayerID:      playerID,
		MigratedGames: len(moved),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	observability.RecordGuestMigration(len(moved))
	log.WithFields(log.Fields{
		"guestId":    guestID,
		"playerId":   playerID,
		"games":      len(moved),
		"partitions": len(partitions),
	}).Info("Migrated guest results")

	return outcome, nil
}

// aggregate folds results into their period aggregates and re-ranks every touched
// partition. Each result lands in the windows of its own completion time; base carries
// the player, profile and write time shared by all contributions.
func (s *rankingService) aggregate(ctx context.Context, uow UnitOfWork, results []*models.GameResult, base models.RankingContribution) ([]models.RankingPartition, error) {
	var all []models.RankingPartition
	for _, r := range results {
		all = append(all, models.PartitionsFor(r.GameType, r.CompletedAt)...)
	}
	partitions := models.SortPartitions(all)

	if err := uow.PartitionLocker().Lock(ctx, lockKeys(partitions)...); err != nil {
		return nil, fmt.Errorf("failed to lock ranking partitions: %w", err)
	}

	repo := uow.RankingAggregateRepository()
	for _, r := range results {
		for _, partition := range models.PartitionsFor(r.GameType, r.CompletedAt) {
			contribution := base
			contribution.Partition = partition
			contribution.Score = r.TotalScore
			if err := repo.Upsert(ctx, contribution); err != nil {
				return nil, fmt.Errorf("failed to upsert aggregate %s for %s: %w", partition, base.PlayerID, err)
			}
		}
	}

	for _, partition := range partitions {
		if _, err := recomputeRankingPartition(ctx, uow, partition); err != nil {
			return nil, err
		}
	}

	return partitions, nil
}

func (s *rankingService) validateResult(input RecordResultInput) (models.Identity, error) {
	if strings.TrimSpace(input.GameID) == "" {
		return models.Identity{}, fmt.Errorf("%w: gameId is required", ErrInvalidInput)
	}
	if err := s.gameTypes.Validate(input.GameType); err != nil {
		return models.Identity{}, err
	}
	owner, err := input.Identity()
	if err != nil {
		return models.Identity{}, err
	}
	if input.TotalScore < 0 {
		return models.Identity{}, fmt.Errorf("%w: totalScore must not be negative", ErrInvalidInput)
	}
	if !validScore(input.AverageScore) || !validScore(input.TotalDistance) {
		return models.Identity{}, fmt.Errorf("%w: averageScore and totalDistance must be finite and not negative", ErrInvalidInput)
	}
	return owner, nil
}

func newResultRecordedEvent(result *models.GameResult) events.ResultRecordedEvent {
	ev := events.ResultRecordedEvent{
		GameID:      result.GameID,
		GameType:    result.GameType,
		TotalScore:  result.TotalScore,
		CompletedAt: result.CompletedAt,
	}
	if result.Owner.IsAccount() {
		ev.PlayerID = result.Owner.ID()
	} else {
		ev.GuestID = result.Owner.ID()
	}
	return ev
}
