package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MichiMauch/geomaster.world-sub001/database"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/jackc/pgx/v5"
)

const gameResultColumns = `game_id, user_id, guest_id, game_type, total_score, average_score, total_distance, completed_at`

// GameResultRepository implements the GameResultRepository interface
type GameResultRepository struct {
	q queryable
}

// NewGameResultRepository creates a new game result repository
func NewGameResultRepository(db *database.DB) *GameResultRepository {
	return &GameResultRepository{q: db.Pool}
}

func newGameResultRepositoryWithTx(tx queryable) *GameResultRepository {
	return &GameResultRepository{q: tx}
}

// Insert stores a result, ignoring a game id that is already present
func (r *GameResultRepository) Insert(ctx context.Context, result *models.GameResult) (bool, error) {
	if !result.Owner.Valid() {
		return false, fmt.Errorf("game result %s has no valid owner", result.GameID)
	}
	userID, guestID := result.Owner.Columns()

	query := `
		INSERT INTO game_results (game_id, user_id, guest_id, game_type, total_score, average_score, total_distance, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query,
		result.GameID,
		userID,
		guestID,
		result.GameType,
		result.TotalScore,
		result.AverageScore,
		result.TotalDistance,
		result.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert game result %s: %w", result.GameID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetByGameID retrieves a result by its game id
func (r *GameResultRepository) GetByGameID(ctx context.Context, gameID string) (*models.GameResult, error) {
	query := `SELECT ` + gameResultColumns + ` FROM game_results WHERE game_id = $1`

	result, err := scanGameResult(r.q.QueryRow(ctx, query, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game result %s: %w", gameID, err)
	}
	return result, nil
}

// ReassignGuest claims every guest row for the player in a single statement
func (r *GameResultRepository) ReassignGuest(ctx context.Context, guestID, playerID string) ([]*models.GameResult, error) {
	query := `
		UPDATE game_results
		SET user_id = $2, guest_id = NULL
		WHERE guest_id = $1
		RETURNING ` + gameResultColumns

	rows, err := r.q.Query(ctx, query, guestID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign results of guest %s: %w", guestID, err)
	}
	defer rows.Close()

	results, err := collectGameResults(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan reassigned results of guest %s: %w", guestID, err)
	}
	return results, nil
}

// ListTop returns account owned results best first
func (r *GameResultRepository) ListTop(ctx context.Context, gameType string, window *models.TimeWindow, limit, offset int) ([]*models.GameResult, error) {
	where, args := resultFilter(gameType, window, "")
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM game_results
		WHERE %s
		ORDER BY total_score DESC, completed_at ASC, game_id ASC
		LIMIT $%d OFFSET $%d
	`, gameResultColumns, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list top games for %s: %w", gameType, err)
	}
	defer rows.Close()

	results, err := collectGameResults(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan top games for %s: %w", gameType, err)
	}
	return results, nil
}

// GetPlayerSummary aggregates a player's results. A player without results gets a zero summary.
func (r *GameResultRepository) GetPlayerSummary(ctx context.Context, playerID, gameType string, window *models.TimeWindow) (*models.UserGameStats, error) {
	where, args := resultFilter(gameType, window, playerID)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_score), 0)::bigint,
			COALESCE(AVG(total_score), 0)::float8,
			COALESCE(MAX(total_score), 0)
		FROM game_results
		WHERE ` + where

	stats := &models.UserGameStats{PlayerID: playerID, GameType: gameType}
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&stats.GamesPlayed,
		&stats.TotalScore,
		&stats.AverageScore,
		&stats.BestScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize games of %s: %w", playerID, err)
	}
	return stats, nil
}

// CountScoresAbove counts account owned results scoring strictly more than score
func (r *GameResultRepository) CountScoresAbove(ctx context.Context, gameType string, window *models.TimeWindow, score int64) (int64, error) {
	where, args := resultFilter(gameType, window, "")
	args = append(args, score)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM game_results WHERE %s AND total_score > $%d`, where, len(args))

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scores above %d: %w", score, err)
	}
	return count, nil
}

// resultFilter builds the WHERE clause shared by the read queries. Only account owned
// rows are considered; guests never appear on leaderboards.
func resultFilter(gameType string, window *models.TimeWindow, playerID string) (string, []any) {
	conditions := []string{"user_id IS NOT NULL"}
	var args []any

	if playerID != "" {
		args = append(args, playerID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if gameType != models.GameTypeOverall {
		args = append(args, gameType)
		conditions = append(conditions, fmt.Sprintf("game_type = $%d", len(args)))
	}
	if window != nil {
		args = append(args, window.Start, window.End)
		conditions = append(conditions, fmt.Sprintf("completed_at >= $%d AND completed_at < $%d", len(args)-1, len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func scanGameResult(row pgx.Row) (*models.GameResult, error) {
	var (
		result  models.GameResult
		userID  *string
		guestID *string
	)
	err := row.Scan(
		&result.GameID,
		&userID,
		&guestID,
		&result.GameType,
		&result.TotalScore,
		&result.AverageScore,
		&result.TotalDistance,
		&result.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	owner, err := models.IdentityFromColumns(userID, guestID)
	if err != nil {
		return nil, fmt.Errorf("game result %s: %w", result.GameID, err)
	}
	result.Owner = owner
	return &result, nil
}

func collectGameResults(rows pgx.Rows) ([]*models.GameResult, error) {
	results := []*models.GameResult{}
	for rows.Next() {
		result, err := scanGameResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
