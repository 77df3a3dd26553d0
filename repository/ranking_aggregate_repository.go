package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichiMauch/geomaster.world-sub001/database"
	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/jackc/pgx/v5"
)

const rankingAggregateColumns = `user_id, game_type, period, period_key, total_score, total_games, average_score, best_score, rank, player_name, player_image, updated_at`

// RankingAggregateRepository implements the RankingAggregateRepository interface
type RankingAggregateRepository struct {
	q queryable
}

// NewRankingAggregateRepository creates a new ranking aggregate repository
func NewRankingAggregateRepository(db *database.DB) *RankingAggregateRepository {
	return &RankingAggregateRepository{q: db.Pool}
}

func newRankingAggregateRepositoryWithTx(tx queryable) *RankingAggregateRepository {
	return &RankingAggregateRepository{q: tx}
}

// Upsert adds one result to the aggregate in a single statement, so concurrent
// writers of the same row cannot lose each other's increments.
func (r *RankingAggregateRepository) Upsert(ctx context.Context, c models.RankingContribution) error {
	query := `
		INSERT INTO ranking_aggregates (
			user_id, game_type, period, period_key,
			total_score, total_games, average_score, best_score,
			player_name, player_image, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $5, $7, $8, $9)
		ON CONFLICT (user_id, game_type, period, period_key) DO UPDATE SET
			total_score   = ranking_aggregates.total_score + EXCLUDED.total_score,
			total_games   = ranking_aggregates.total_games + 1,
			average_score = (ranking_aggregates.total_score + EXCLUDED.total_score)::float8 / (ranking_aggregates.total_games + 1),
			best_score    = GREATEST(ranking_aggregates.best_score, EXCLUDED.best_score),
			player_name   = COALESCE(EXCLUDED.player_name, ranking_aggregates.player_name),
			player_image  = COALESCE(EXCLUDED.player_image, ranking_aggregates.player_image),
			updated_at    = EXCLUDED.updated_at
	`

	_, err := r.q.Exec(ctx, query,
		c.PlayerID,
		c.Partition.GameType,
		string(c.Partition.Period),
		c.Partition.PeriodKey,
		c.Score,
		float64(c.Score),
		c.Profile.Name,
		c.Profile.Image,
		c.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert aggregate %s for %s: %w", c.Partition, c.PlayerID, err)
	}
	return nil
}

// ListPartition returns every row of a partition in no particular order
func (r *RankingAggregateRepository) ListPartition(ctx context.Context, p models.RankingPartition) ([]*models.RankingAggregate, error) {
	query := `SELECT ` + rankingAggregateColumns + `
		FROM ranking_aggregates
		WHERE game_type = $1 AND period = $2 AND period_key = $3`

	rows, err := r.q.Query(ctx, query, p.GameType, string(p.Period), p.PeriodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list partition %s: %w", p, err)
	}
	defer rows.Close()

	aggregates, err := collectRankingAggregates(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan partition %s: %w", p, err)
	}
	return aggregates, nil
}

// UpdateRanks writes rank assignments in one batch round trip
func (r *RankingAggregateRepository) UpdateRanks(ctx context.Context, p models.RankingPartition, updates []models.RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `
		UPDATE ranking_aggregates
		SET rank = $5
		WHERE user_id = $1 AND game_type = $2 AND period = $3 AND period_key = $4
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.PlayerID, p.GameType, string(p.Period), p.PeriodKey, u.Rank)
	}

	br := r.q.SendBatch(ctx, batch)
	for _, u := range updates {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to set rank %d for %s in %s: %w", u.Rank, u.PlayerID, p, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close rank batch for %s: %w", p, err)
	}
	return nil
}

// ListPage returns a page of a partition. SortByBest follows the stored rank,
// SortByTotal orders by cumulative score.
func (r *RankingAggregateRepository) ListPage(ctx context.Context, p models.RankingPartition, sortBy models.SortBy, limit, offset int) ([]*models.RankingAggregate, error) {
	orderBy := `rank ASC NULLS LAST, best_score DESC, total_games ASC, updated_at ASC, user_id ASC`
	if sortBy == models.SortByTotal {
		orderBy = `total_score DESC, rank ASC NULLS LAST, user_id ASC`
	}

	query := `SELECT ` + rankingAggregateColumns + `
		FROM ranking_aggregates
		WHERE game_type = $1 AND period = $2 AND period_key = $3
		ORDER BY ` + orderBy + `
		LIMIT $4 OFFSET $5`

	rows, err := r.q.Query(ctx, query, p.GameType, string(p.Period), p.PeriodKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings for %s: %w", p, err)
	}
	defer rows.Close()

	aggregates, err := collectRankingAggregates(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rankings for %s: %w", p, err)
	}
	return aggregates, nil
}

// CountPartition returns the number of ranked players in a partition
func (r *RankingAggregateRepository) CountPartition(ctx context.Context, p models.RankingPartition) (int64, error) {
	query := `SELECT COUNT(*) FROM ranking_aggregates WHERE game_type = $1 AND period = $2 AND period_key = $3`

	var count int64
	if err := r.q.QueryRow(ctx, query, p.GameType, string(p.Period), p.PeriodKey).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count partition %s: %w", p, err)
	}
	return count, nil
}

// Get returns one player's aggregate
func (r *RankingAggregateRepository) Get(ctx context.Context, playerID string, p models.RankingPartition) (*models.RankingAggregate, error) {
	query := `SELECT ` + rankingAggregateColumns + `
		FROM ranking_aggregates
		WHERE user_id = $1 AND game_type = $2 AND period = $3 AND period_key = $4`

	aggregate, err := scanRankingAggregate(r.q.QueryRow(ctx, query, playerID, p.GameType, string(p.Period), p.PeriodKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aggregate of %s in %s: %w", playerID, p, err)
	}
	return aggregate, nil
}

// ListPartitions returns every partition with at least one row
func (r *RankingAggregateRepository) ListPartitions(ctx context.Context) ([]models.RankingPartition, error) {
	query := `
		SELECT DISTINCT game_type, period, period_key
		FROM ranking_aggregates
		ORDER BY game_type, period, period_key
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer rows.Close()

	var partitions []models.RankingPartition
	for rows.Next() {
		var (
			p      models.RankingPartition
			period string
		)
		if err := rows.Scan(&p.GameType, &period, &p.PeriodKey); err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		p.Period = models.Period(period)
		partitions = append(partitions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partitions: %w", err)
	}
	return partitions, nil
}

func scanRankingAggregate(row pgx.Row) (*models.RankingAggregate, error) {
	var (
		a      models.RankingAggregate
		period string
	)
	err := row.Scan(
		&a.PlayerID,
		&a.GameType,
		&period,
		&a.PeriodKey,
		&a.TotalScore,
		&a.TotalGames,
		&a.AverageScore,
		&a.BestScore,
		&a.Rank,
		&a.PlayerName,
		&a.PlayerImage,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Period = models.Period(period)
	return &a, nil
}

func collectRankingAggregates(rows pgx.Rows) ([]*models.RankingAggregate, error) {
	aggregates := []*models.RankingAggregate{}
	for rows.Next() {
		a, err := scanRankingAggregate(rows)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return aggregates, nil
}
