package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/MichiMauch/geomaster.world-sub001/models"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// RecordResultInput is one completed solo or ranked game
type RecordResultInput struct {
	GameID        string               `json:"gameId"`
	PlayerID      string               `json:"playerId,omitempty"`
	GuestID       string               `json:"guestId,omitempty"`
	GameType      string               `json:"gameType"`
	TotalScore    int64                `json:"totalScore"`
	AverageScore  float64              `json:"averageScore"`
	TotalDistance float64              `json:"totalDistance"`
	Profile       models.PlayerProfile `json:"profile"`
}

// Identity resolves the owner of the result
func (in RecordResultInput) Identity() (models.Identity, error) {
	player := strings.TrimSpace(in.PlayerID)
	guest := strings.TrimSpace(in.GuestID)
	switch {
	case player != "" && guest == "":
		return models.AccountIdentity(player), nil
	case player == "" && guest != "":
		return models.GuestIdentity(guest), nil
	default:
		return models.Identity{}, ErrAmbiguousIdentity
	}
}

// CompleteDuelInput is one completed duel
type CompleteDuelInput struct {
	DuelSeed   string                 `json:"duelSeed"`
	GameType   string                 `json:"gameType"`
	Challenger models.DuelParticipant `json:"challenger"`
	Accepter   models.DuelParticipant `json:"accepter"`
}

// normalized trims the identifiers that key the duel log and duel stats
func (in CompleteDuelInput) normalized() CompleteDuelInput {
	in.DuelSeed = strings.TrimSpace(in.DuelSeed)
	in.GameType = strings.TrimSpace(in.GameType)
	for _, p := range []*models.DuelParticipant{&in.Challenger, &in.Accepter} {
		p.PlayerID = strings.TrimSpace(p.PlayerID)
		p.GameID = strings.TrimSpace(p.GameID)
	}
	return in
}

// RankingsQuery selects a page of one ranking partition. An empty PeriodKey means
// the current window of Period.
type RankingsQuery struct {
	GameType  string
	Period    models.Period
	PeriodKey string
	Limit     int
	Offset    int
	SortBy    models.SortBy
}

// TopGamesQuery selects a page of individual results. A nil Period spans all time.
type TopGamesQuery struct {
	GameType string
	Period   *models.Period
	Limit    int
	Offset   int
}

// RepairReport summarizes a repair pass
type RepairReport struct {
	RankingPartitions int
	DuelPartitions    int
	RowsUpdated       int
}

// GameTypes is the set of accepted game types
type GameTypes map[string]struct{}

// NewGameTypes builds the accepted set. "overall" is reserved and never accepted as input.
func NewGameTypes(gameTypes []string) GameTypes {
	set := make(GameTypes, len(gameTypes))
	for _, gt := range gameTypes {
		gt = strings.TrimSpace(gt)
		if gt == "" || gt == models.GameTypeOverall {
			continue
		}
		set[gt] = struct{}{}
	}
	return set
}

// Validate rejects empty, reserved and unconfigured game types
func (g GameTypes) Validate(gameType string) error {
	if gameType == "" {
		return fmt.Errorf("%w: gameType is required", ErrInvalidInput)
	}
	if _, ok := g[gameType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGameType, gameType)
	}
	return nil
}

// ValidateQuery is Validate but also accepts "overall"
func (g GameTypes) ValidateQuery(gameType string) error {
	if gameType == models.GameTypeOverall {
		return nil
	}
	return g.Validate(gameType)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func validScore(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
