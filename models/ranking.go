package models

import (
	"fmt"
	"sort"
	"time"
)

// RankingPartition identifies one ranked leaderboard
type RankingPartition struct {
	GameType  string
	Period    Period
	PeriodKey string
}

// LockKey is the advisory lock key serializing writers of this partition
func (p RankingPartition) LockKey() string {
	return fmt.Sprintf("ranking:%s:%s:%s", p.GameType, p.Period, p.PeriodKey)
}

func (p RankingPartition) String() string {
	return fmt.Sprintf("%s/%s/%s", p.GameType, p.Period, p.PeriodKey)
}

// PartitionsFor returns the eight partitions a result for gameType completed at t contributes to
func PartitionsFor(gameType string, t time.Time) []RankingPartition {
	partitions := make([]RankingPartition, 0, len(AllPeriods)*2)
	for _, period := range AllPeriods {
		key := PeriodKey(period, t)
		partitions = append(partitions,
			RankingPartition{GameType: gameType, Period: period, PeriodKey: key},
			RankingPartition{GameType: GameTypeOverall, Period: period, PeriodKey: key},
		)
	}
	return partitions
}

// SortPartitions orders partitions by lock key and drops duplicates
func SortPartitions(partitions []RankingPartition) []RankingPartition {
	seen := make(map[RankingPartition]struct{}, len(partitions))
	unique := make([]RankingPartition, 0, len(partitions))
	for _, p := range partitions {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].LockKey() < unique[j].LockKey()
	})
	return unique
}

// RankingAggregate is the running summary of one player's results in one partition
type RankingAggregate struct {
	PlayerID     string    `db:"user_id" json:"playerId"`
	GameType     string    `db:"game_type" json:"gameType"`
	Period       Period    `db:"period" json:"period"`
	PeriodKey    string    `db:"period_key" json:"periodKey"`
	TotalScore   int64     `db:"total_score" json:"totalScore"`
	TotalGames   int64     `db:"total_games" json:"totalGames"`
	AverageScore float64   `db:"average_score" json:"averageScore"`
	BestScore    int64     `db:"best_score" json:"bestScore"`
	Rank         *int      `db:"rank" json:"rank,omitempty"`
	PlayerName   *string   `db:"player_name" json:"playerName,omitempty"`
	PlayerImage  *string   `db:"player_image" json:"playerImage,omitempty"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Partition returns the partition the aggregate belongs to
func (a *RankingAggregate) Partition() RankingPartition {
	return RankingPartition{GameType: a.GameType, Period: a.Period, PeriodKey: a.PeriodKey}
}

// RankingContribution is the delta one game result applies to an aggregate
type RankingContribution struct {
	PlayerID   string
	Partition  RankingPartition
	Score      int64
	Profile    PlayerProfile
	RecordedAt time.Time
}

// SortRankingAggregates orders rows best first: higher best score, then fewer games,
// then the earlier update, then player id so equal rows still get a stable order.
func SortRankingAggregates(rows []*RankingAggregate) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.BestScore != b.BestScore {
			return a.BestScore > b.BestScore
		}
		if a.TotalGames != b.TotalGames {
			return a.TotalGames < b.TotalGames
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.PlayerID < b.PlayerID
	})
}

// RankUpdate is a rank assignment that differs from what is stored
type RankUpdate struct {
	PlayerID string
	Rank     int
}

// AssignRankingRanks sorts rows, sets rank = position + 1 on each, and returns the
// assignments that changed.
func AssignRankingRanks(rows []*RankingAggregate) []RankUpdate {
	SortRankingAggregates(rows)
	var changed []RankUpdate
	for i, row := range rows {
		rank := i + 1
		if row.Rank == nil || *row.Rank != rank {
			changed = append(changed, RankUpdate{PlayerID: row.PlayerID, Rank: rank})
		}
		row.Rank = &rank
	}
	return changed
}
