package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichiMauch/geomaster.world-sub001/database"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/jackc/pgx/v5"
)

// DuelResultRepository implements the DuelResultRepository interface
type DuelResultRepository struct {
	q queryable
}

// NewDuelResultRepository creates a new duel result repository
func NewDuelResultRepository(db *database.DB) *DuelResultRepository {
	return &DuelResultRepository{q: db.Pool}
}

func newDuelResultRepositoryWithTx(tx queryable) *DuelResultRepository {
	return &DuelResultRepository{q: tx}
}

// Insert stores a duel unless the same seed and players were already recorded
func (r *DuelResultRepository) Insert(ctx context.Context, d *models.DuelResult) (bool, error) {
	query := `
		INSERT INTO duel_results (
			id, duel_seed, game_type,
			challenger_id, challenger_game_id, challenger_score, challenger_time,
			accepter_id, accepter_game_id, accepter_score, accepter_time,
			winner_id, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (duel_seed, challenger_id, accepter_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query,
		d.ID, d.DuelSeed, d.GameType,
		d.ChallengerID, d.ChallengerGameID, d.ChallengerScore, d.ChallengerTime,
		d.AccepterID, d.AccepterGameID, d.AccepterScore, d.AccepterTime,
		d.WinnerID, d.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert duel %s: %w", d.DuelSeed, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByCompletion retrieves a duel by seed and player pair
func (r *DuelResultRepository) GetByCompletion(ctx context.Context, duelSeed, challengerID, accepterID string) (*models.DuelResult, error) {
	query := `
		SELECT
			id::text, duel_seed, game_type,
			challenger_id, challenger_game_id, challenger_score, challenger_time,
			accepter_id, accepter_game_id, accepter_score, accepter_time,
			winner_id, completed_at
		FROM duel_results
		WHERE duel_seed = $1 AND challenger_id = $2 AND accepter_id = $3
	`

	var d models.DuelResult
	err := r.q.QueryRow(ctx, query, duelSeed, challengerID, accepterID).Scan(
		&d.ID, &d.DuelSeed, &d.GameType,
		&d.ChallengerID, &d.ChallengerGameID, &d.ChallengerScore, &d.ChallengerTime,
		&d.AccepterID, &d.AccepterGameID, &d.AccepterScore, &d.AccepterTime,
		&d.WinnerID, &d.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duel %s: %w", duelSeed, err)
	}
	return &d, nil
}
