package models

import (
	"sort"
	"time"
)

const (
	// DuelWinPoints is awarded to every duel winner
	DuelWinPoints int64 = 3
	// DuelCatchUpBonus is added when the loser had at least as many points as the winner
	DuelCatchUpBonus int64 = 3
)

// DuelParticipant is one side of a completed duel
type DuelParticipant struct {
	PlayerID string        `json:"playerId"`
	GameID   string        `json:"gameId"`
	Score    int64         `json:"score"`
	Time     int64         `json:"time"` // seconds taken
	Profile  PlayerProfile `json:"profile"`
}

// DuelResult is the immutable record of one completed duel
type DuelResult struct {
	ID               string    `db:"id" json:"id"`
	DuelSeed         string    `db:"duel_seed" json:"duelSeed"`
	GameType         string    `db:"game_type" json:"gameType"`
	ChallengerID     string    `db:"challenger_id" json:"challengerId"`
	ChallengerGameID string    `db:"challenger_game_id" json:"challengerGameId"`
	ChallengerScore  int64     `db:"challenger_score" json:"challengerScore"`
	ChallengerTime   int64     `db:"challenger_time" json:"challengerTime"`
	AccepterID       string    `db:"accepter_id" json:"accepterId"`
	AccepterGameID   string    `db:"accepter_game_id" json:"accepterGameId"`
	AccepterScore    int64     `db:"accepter_score" json:"accepterScore"`
	AccepterTime     int64     `db:"accepter_time" json:"accepterTime"`
	WinnerID         string    `db:"winner_id" json:"winnerId"`
	CompletedAt      time.Time `db:"completed_at" json:"completedAt"`
}

// LoserID returns the participant that did not win
func (d *DuelResult) LoserID() string {
	if d.WinnerID == d.ChallengerID {
		return d.AccepterID
	}
	return d.ChallengerID
}

// DuelStat is one player's duel record for one game type
type DuelStat struct {
	PlayerID    string    `db:"user_id" json:"playerId"`
	GameType    string    `db:"game_type" json:"gameType"`
	Wins        int64     `db:"wins" json:"wins"`
	Losses      int64     `db:"losses" json:"losses"`
	TotalDuels  int64     `db:"total_duels" json:"totalDuels"`
	WinRate     float64   `db:"win_rate" json:"winRate"`
	DuelPoints  int64     `db:"duel_points" json:"duelPoints"`
	Rank        *int      `db:"rank" json:"rank,omitempty"`
	PlayerName  *string   `db:"player_name" json:"playerName,omitempty"`
	PlayerImage *string   `db:"player_image" json:"playerImage,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// DuelOutcome describes what CompleteDuel did
type DuelOutcome struct {
	Duel                *DuelResult
	Duplicate           bool
	WinnerPointsBefore  int64
	LoserPointsBefore   int64
	PointsEarned        int64
	CatchUpBonusAwarded bool
}

// DuelPointsEarned returns the points a winner gains given both players' points before the duel
func DuelPointsEarned(winnerBefore, loserBefore int64) int64 {
	if loserBefore >= winnerBefore {
		return DuelWinPoints + DuelCatchUpBonus
	}
	return DuelWinPoints
}

// WinRate returns wins / total as a fraction, 0 when there were no duels
func WinRate(wins, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// DuelLockKey is the advisory lock key serializing writers of a duel partition
func DuelLockKey(gameType string) string {
	return "duel:" + gameType
}

// SortDuelStats orders stats by duel points, wins, win rate and total duels, all descending,
// falling back to player id.
func SortDuelStats(rows []*DuelStat) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.DuelPoints != b.DuelPoints {
			return a.DuelPoints > b.DuelPoints
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.TotalDuels != b.TotalDuels {
			return a.TotalDuels > b.TotalDuels
		}
		return a.PlayerID < b.PlayerID
	})
}

// AssignDuelRanks sorts rows, sets contiguous ranks, and returns the changed assignments
func AssignDuelRanks(rows []*DuelStat) []RankUpdate {
	SortDuelStats(rows)
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
