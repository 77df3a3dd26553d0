package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/infrastructure/observability"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// duelService implements the DuelService interface
type duelService struct {
	uowFactory UnitOfWorkFactory
	gameTypes  GameTypes
	judge      DuelJudge
	overall    OverallLeaderboardService
	now        func() time.Time
}

// NewDuelService creates a new duel service. overall, when set, has its cached board
// dropped after every committed duel and before CompleteDuel returns.
func NewDuelService(uowFactory UnitOfWorkFactory, gameTypes GameTypes, judge DuelJudge, overall OverallLeaderboardService) DuelService {
	return &duelService{
		uowFactory: uowFactory,
		gameTypes:  gameTypes,
		judge:      judge,
		overall:    overall,
		now:        time.Now,
	}
}

// CompleteDuel records the duel, awards the winner's points (with the catch-up bonus
// when the loser was not behind), counts the loss and re-ranks the game type.
// Redelivery of the same completion returns the stored duel without touching stats.
func (s *duelService) CompleteDuel(ctx context.Context, input CompleteDuelInput) (*models.DuelOutcome, error) {
	input = input.normalized()
	if err := s.validateDuel(input); err != nil {
		return nil, err
	}

	winner, loser := s.judge.Decide(input.Challenger, input.Accepter)

	duel := &models.DuelResult{
		ID:               uuid.NewString(),
		DuelSeed:         input.DuelSeed,
		GameType:         input.GameType,
		ChallengerID:     input.Challenger.PlayerID,
		ChallengerGameID: input.Challenger.GameID,
		ChallengerScore:  input.Challenger.Score,
		ChallengerTime:   input.Challenger.Time,
		AccepterID:       input.Accepter.PlayerID,
		AccepterGameID:   input.Accepter.GameID,
		AccepterScore:    input.Accepter.Score,
		AccepterTime:     input.Accepter.Time,
		WinnerID:         winner.PlayerID,
		CompletedAt:      s.now().UTC(),
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PartitionLocker().Lock(ctx, models.DuelLockKey(duel.GameType)); err != nil {
		return nil, fmt.Errorf("failed to lock duel partition %s: %w", duel.GameType, err)
	}

	inserted, err := uow.DuelResultRepository().Insert(ctx, duel)
	if err != nil {
		return nil, fmt.Errorf("failed to store duel %s: %w", duel.DuelSeed, err)
	}
	if !inserted {
		existing, err := uow.DuelResultRepository().GetByCompletion(ctx, duel.DuelSeed, duel.ChallengerID, duel.AccepterID)
		if err != nil {
			return nil, fmt.Errorf("failed to load duel %s: %w", duel.DuelSeed, err)
		}
		log.WithFields(log.Fields{
			"duelSeed":     duel.DuelSeed,
			"challengerId": duel.ChallengerID,
			"accepterId":   duel.AccepterID,
		}).Info("Duel already completed, skipping stats update")
		observability.RecordDuel(duel.GameType, observability.OutcomeDuplicate, 0)
		return &models.DuelOutcome{Duel: existing, Duplicate: true}, nil
	}

	stats := uow.DuelStatRepository()

	// Both balances are read before either player is written
	winnerBefore, err := s.currentPoints(ctx, stats, winner.PlayerID, duel.GameType)
	if err != nil {
		return nil, err
	}
	loserBefore, err := s.currentPoints(ctx, stats, loser.PlayerID, duel.GameType)
	if err != nil {
		return nil, err
	}

	earned := models.DuelPointsEarned(winnerBefore, loserBefore)

	if err := stats.RecordWin(ctx, winner.PlayerID, duel.GameType, earned, winner.Profile); err != nil {
		return nil, fmt.Errorf("failed to record win for %s: %w", winner.PlayerID, err)
	}
	if err := stats.RecordLoss(ctx, loser.PlayerID, duel.GameType, loser.Profile); err != nil {
		return nil, fmt.Errorf("failed to record loss for %s: %w", loser.PlayerID, err)
	}

	if _, err := recomputeDuelPartition(ctx, uow, duel.GameType); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.DuelCompletedEvent{
		DuelID:       duel.ID,
		DuelSeed:     duel.DuelSeed,
		GameType:     duel.GameType,
		ChallengerID: duel.ChallengerID,
		AccepterID:   duel.AccepterID,
		AccepterName: displayName(input.Accepter),
		WinnerID:     duel.WinnerID,
		PointsEarned: earned,
		CompletedAt:  duel.CompletedAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.overall != nil {
		s.overall.Invalidate(context.WithoutCancel(ctx))
	}

	observability.RecordDuel(duel.GameType, observability.OutcomeRecorded, earned)
	log.WithFields(log.Fields{
		"duelId":       duel.ID,
		"gameType":     duel.GameType,
		"winnerId":     winner.PlayerID,
		"loserId":      duel.LoserID(),
		"pointsEarned": earned,
	}).Info("Completed duel")

	return &models.DuelOutcome{
		Duel:                duel,
		WinnerPointsBefore:  winnerBefore,
		LoserPointsBefore:   loserBefore,
		PointsEarned:        earned,
		CatchUpBonusAwarded: earned > models.DuelWinPoints,
	}, nil
}

func (s *duelService) currentPoints(ctx context.Context, stats DuelStatRepository, playerID, gameType string) (int64, error) {
	stat, err := stats.Get(ctx, playerID, gameType)
	if err != nil {
		return 0, fmt.Errorf("failed to get duel stats for %s: %w", playerID, err)
	}
	if stat == nil {
		return 0, nil
	}
	return stat.DuelPoints, nil
}

func (s *duelService) validateDuel(input CompleteDuelInput) error {
	if input.DuelSeed == "" {
		return fmt.Errorf("%w: duelSeed is required", ErrInvalidInput)
	}
	if err := s.gameTypes.Validate(input.GameType); err != nil {
		return err
	}
	for _, side := range []struct {
		name string
		p    models.DuelParticipant
	}{{"challenger", input.Challenger}, {"accepter", input.Accepter}} {
		if side.p.PlayerID == "" || side.p.GameID == "" {
			return fmt.Errorf("%w: %s playerId and gameId are required", ErrInvalidInput, side.name)
		}
		if side.p.Score < 0 || side.p.Time < 0 {
			return fmt.Errorf("%w: %s score and time must not be negative", ErrInvalidInput, side.name)
		}
	}
	if input.Challenger.PlayerID == input.Accepter.PlayerID {
		return fmt.Errorf("%w: a player cannot duel themselves", ErrInvalidInput)
	}
	return nil
}

func displayName(p models.DuelParticipant) string {
	if p.Profile.Name != nil && *p.Profile.Name != "" {
		return *p.Profile.Name
	}
	return p.PlayerID
}
