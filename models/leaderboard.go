package models

import "fmt"

// SortBy selects the ordering of a rankings page
type SortBy string

const (
	// SortByBest orders by the stored best-score rank
	SortByBest SortBy = "best"
	// SortByTotal orders by cumulative score; positions are computed per request
	SortByTotal SortBy = "total"
)

// ParseSortBy validates a sort mode, defaulting to SortByBest when empty
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortByBest:
		return SortByBest, nil
	case SortByTotal:
		return SortByTotal, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// RankingEntry is one row of a rankings page. Rank is the stored best-score rank,
// Position is the row's place in the requested ordering.
type RankingEntry struct {
	*RankingAggregate
	Position int `json:"position"`
}

// RankingsPage is a paginated slice of one ranking partition
type RankingsPage struct {
	Partition RankingPartition `json:"-"`
	SortBy    SortBy           `json:"sortBy"`
	Entries   []RankingEntry   `json:"entries"`
	Total     int64            `json:"total"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

// TopGameEntry is an individual result in the top games listing
type TopGameEntry struct {
	*GameResult
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
}

// UserGameStats summarizes a player's individual results for one game type
type UserGameStats struct {
	PlayerID     string  `json:"playerId"`
	GameType     string  `json:"gameType"`
	Period       *Period `json:"period,omitempty"`
	GamesPlayed  int64   `json:"gamesPlayed"`
	TotalScore   int64   `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
	BestScore    int64   `json:"bestScore"`
	BestGameRank *int64  `json:"bestGameRank,omitempty"` // nil when the player has no games
}

// DuelLeaderboardEntry is a duel standing, either stored per game type or summed across them
type DuelLeaderboardEntry struct {
	PlayerID    string  `json:"playerId"`
	Wins        int64   `json:"wins"`
	Losses      int64   `json:"losses"`
	TotalDuels  int64   `json:"totalDuels"`
	WinRate     float64 `json:"winRate"`
	DuelPoints  int64   `json:"duelPoints"`
	Rank        int     `json:"rank"`
	PlayerName  *string `json:"playerName,omitempty"`
	PlayerImage *string `json:"playerImage,omitempty"`
}

// DuelLeaderboardPage is a paginated duel leaderboard
type DuelLeaderboardPage struct {
	GameType string                 `json:"gameType"`
	Entries  []DuelLeaderboardEntry `json:"entries"`
	Total    int64                  `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

// EntryFromDuelStat converts a stored duel stat into a leaderboard entry
func EntryFromDuelStat(s *DuelStat) DuelLeaderboardEntry {
	entry := DuelLeaderboardEntry{
		PlayerID:    s.PlayerID,
		Wins:        s.Wins,
		Losses:      s.Losses,
		TotalDuels:  s.TotalDuels,
		WinRate:     s.WinRate,
		DuelPoints:  s.DuelPoints,
		PlayerName:  s.PlayerName,
		PlayerImage: s.PlayerImage,
	}
	if s.Rank != nil {
		entry.Rank = *s.Rank
	}
	return entry
}

// RankOverallEntries derives win rate and rank from summed duel stats. The ordering
// matches SortDuelStats.
func RankOverallEntries(sums []*DuelStat) []DuelLeaderboardEntry {
	for _, s := range sums {
		s.WinRate = WinRate(s.Wins, s.TotalDuels)
	}
	AssignDuelRanks(sums)
	entries := make([]DuelLeaderboardEntry, len(sums))
	for i, s := range sums {
		entries[i] = EntryFromDuelStat(s)
	}
	return entries
}
