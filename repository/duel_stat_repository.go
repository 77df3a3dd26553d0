package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichiMauch/geomaster.world-sub001/database"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/jackc/pgx/v5"
)

const duelStatColumns = `user_id, game_type, wins, losses, total_duels, win_rate, duel_points, rank, player_name, player_image, updated_at`

// DuelStatRepository implements the DuelStatRepository interface
type DuelStatRepository struct {
	q queryable
}

// NewDuelStatRepository creates a new duel stat repository
func NewDuelStatRepository(db *database.DB) *DuelStatRepository {
	return &DuelStatRepository{q: db.Pool}
}

func newDuelStatRepositoryWithTx(tx queryable) *DuelStatRepository {
	return &DuelStatRepository{q: tx}
}

// Get returns a player's stats for a game type
func (r *DuelStatRepository) Get(ctx context.Context, playerID, gameType string) (*models.DuelStat, error) {
	query := `SELECT ` + duelStatColumns + ` FROM duel_stats WHERE user_id = $1 AND game_type = $2`

	stat, err := scanDuelStat(r.q.QueryRow(ctx, query, playerID, gameType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duel stats of %s for %s: %w", playerID, gameType, err)
	}
	return stat, nil
}

// RecordWin adds a win and points; the win rate is derived in the same statement
func (r *DuelStatRepository) RecordWin(ctx context.Context, playerID, gameType string, points int64, profile models.PlayerProfile) error {
	query := `
		INSERT INTO duel_stats (user_id, game_type, wins, losses, total_duels, win_rate, duel_points, player_name, player_image, updated_at)
		VALUES ($1, $2, 1, 0, 1, 1, $3, $4, $5, NOW())
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			wins         = duel_stats.wins + 1,
			total_duels  = duel_stats.total_duels + 1,
			win_rate     = (duel_stats.wins + 1)::float8 / (duel_stats.total_duels + 1),
			duel_points  = duel_stats.duel_points + EXCLUDED.duel_points,
			player_name  = COALESCE(EXCLUDED.player_name, duel_stats.player_name),
			player_image = COALESCE(EXCLUDED.player_image, duel_stats.player_image),
			updated_at   = NOW()
	`

	if _, err := r.q.Exec(ctx, query, playerID, gameType, points, profile.Name, profile.Image); err != nil {
		return fmt.Errorf("failed to record duel win of %s for %s: %w", playerID, gameType, err)
	}
	return nil
}

// RecordLoss adds a loss; points are never reduced
func (r *DuelStatRepository) RecordLoss(ctx context.Context, playerID, gameType string, profile models.PlayerProfile) error {
	query := `
		INSERT INTO duel_stats (user_id, game_type, wins, losses, total_duels, win_rate, duel_points, player_name, player_image, updated_at)
		VALUES ($1, $2, 0, 1, 1, 0, 0, $3, $4, NOW())
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			losses       = duel_stats.losses + 1,
			total_duels  = duel_stats.total_duels + 1,
			win_rate     = duel_stats.wins::float8 / (duel_stats.total_duels + 1),
			player_name  = COALESCE(EXCLUDED.player_name, duel_stats.player_name),
			player_image = COALESCE(EXCLUDED.player_image, duel_stats.player_image),
			updated_at   = NOW()
	`

	if _, err := r.q.Exec(ctx, query, playerID, gameType, profile.Name, profile.Image); err != nil {
		return fmt.Errorf("failed to record duel loss of %s for %s: %w", playerID, gameType, err)
	}
	return nil
}

// ListPartition returns every stat row of a game type
func (r *DuelStatRepository) ListPartition(ctx context.Context, gameType string) ([]*models.DuelStat, error) {
	query := `SELECT ` + duelStatColumns + ` FROM duel_stats WHERE game_type = $1`

	rows, err := r.q.Query(ctx, query, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to list duel stats for %s: %w", gameType, err)
	}
	defer rows.Close()

	stats, err := collectDuelStats(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan duel stats for %s: %w", gameType, err)
	}
	return stats, nil
}

// UpdateRanks writes rank assignments in one batch round trip
func (r *DuelStatRepository) UpdateRanks(ctx context.Context, gameType string, updates []models.RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE duel_stats SET rank = $3 WHERE user_id = $1 AND game_type = $2`, u.PlayerID, gameType, u.Rank)
	}

	br := r.q.SendBatch(ctx, batch)
	for _, u := range updates {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to set duel rank %d for %s in %s: %w", u.Rank, u.PlayerID, gameType, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close duel rank batch for %s: %w", gameType, err)
	}
	return nil
}

// ListPage returns a page ordered by stored rank
func (r *DuelStatRepository) ListPage(ctx context.Context, gameType string, limit, offset int) ([]*models.DuelStat, error) {
	query := `SELECT ` + duelStatColumns + `
		FROM duel_stats
		WHERE game_type = $1
		ORDER BY rank ASC NULLS LAST, duel_points DESC, user_id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, gameType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list duel leaderboard for %s: %w", gameType, err)
	}
	defer rows.Close()

	stats, err := collectDuelStats(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan duel leaderboard for %s: %w", gameType, err)
	}
	return stats, nil
}

// Count returns how many players dueled in a game type
func (r *DuelStatRepository) Count(ctx context.Context, gameType string) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM duel_stats WHERE game_type = $1`, gameType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count duel stats for %s: %w", gameType, err)
	}
	return count, nil
}

// ListGameTypes returns the game types that have duel stats
func (r *DuelStatRepository) ListGameTypes(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT game_type FROM duel_stats ORDER BY game_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list duel game types: %w", err)
	}
	defer rows.Close()

	var gameTypes []string
	for rows.Next() {
		var gameType string
		if err := rows.Scan(&gameType); err != nil {
			return nil, fmt.Errorf("failed to scan duel game type: %w", err)
		}
		gameTypes = append(gameTypes, gameType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duel game types: %w", err)
	}
	return gameTypes, nil
}

// SumByPlayer sums each player's stats over every game type. Win rate and rank are
// left for the caller to derive from the sums; the newest profile snapshot wins.
func (r *DuelStatRepository) SumByPlayer(ctx context.Context) ([]*models.DuelStat, error) {
	query := `
		SELECT
			user_id,
			SUM(wins)::bigint,
			SUM(losses)::bigint,
			SUM(total_duels)::bigint,
			SUM(duel_points)::bigint,
			(ARRAY_AGG(player_name ORDER BY updated_at DESC) FILTER (WHERE player_name IS NOT NULL))[1],
			(ARRAY_AGG(player_image ORDER BY updated_at DESC) FILTER (WHERE player_image IS NOT NULL))[1],
			MAX(updated_at)
		FROM duel_stats
		GROUP BY user_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum duel stats: %w", err)
	}
	defer rows.Close()

	sums := []*models.DuelStat{}
	for rows.Next() {
		s := &models.DuelStat{GameType: models.GameTypeOverall}
		if err := rows.Scan(&s.PlayerID, &s.Wins, &s.Losses, &s.TotalDuels, &s.DuelPoints, &s.PlayerName, &s.PlayerImage, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan duel stat sum: %w", err)
		}
		sums = append(sums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duel stat sums: %w", err)
	}
	return sums, nil
}

func scanDuelStat(row pgx.Row) (*models.DuelStat, error) {
	var s models.DuelStat
	err := row.Scan(
		&s.PlayerID,
		&s.GameType,
		&s.Wins,
		&s.Losses,
		&s.TotalDuels,
		&s.WinRate,
		&s.DuelPoints,
		&s.Rank,
		&s.PlayerName,
		&s.PlayerImage,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectDuelStats(rows pgx.Rows) ([]*models.DuelStat, error) {
	stats := []*models.DuelStat{}
	for rows.Next() {
		s, err := scanDuelStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
