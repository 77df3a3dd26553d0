package models

import (
	"time"
)

// GameTypeOverall is the pseudo game type aggregating every variant
const GameTypeOverall = "overall"

// PlayerProfile is the display snapshot copied onto aggregate rows on write
type PlayerProfile struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

// GameResult is one completed solo or ranked game. Rows are immutable once inserted,
// apart from guest to account migration rewriting the owner.
type GameResult struct {
	GameID        string    `db:"game_id" json:"gameId"`
	Owner         Identity  `db:"-" json:"-"`
	GameType      string    `db:"game_type" json:"gameType"`
	TotalScore    int64     `db:"total_score" json:"totalScore"`
	AverageScore  float64   `db:"average_score" json:"averageScore"`
	TotalDistance float64   `db:"total_distance" json:"totalDistance"`
	CompletedAt   time.Time `db:"completed_at" json:"completedAt"`
}

// RecordOutcome describes what RecordResult did with a result
type RecordOutcome struct {
	Result     *GameResult
	Duplicate  bool // the game id was already recorded and nothing was aggregated
	Partitions []RankingPartition
}

// MigrationOutcome summarizes a guest to account migration
type MigrationOutcome struct {
	GuestID       string
	PlayerID      string
	MigratedGames int
	Partitions    []RankingPartition
}
