package testutil

import (
	"fmt"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/models"
)

// CreateTestGameResult creates an account owned result completed at the given time
func CreateTestGameResult(gameID, playerID, gameType string, score int64, completedAt time.Time) *models.GameResult {
	return &models.GameResult{
		GameID:        gameID,
		Owner:         models.AccountIdentity(playerID),
		GameType:      gameType,
		TotalScore:    score,
		AverageScore:  float64(score) / 5,
		TotalDistance: 1234.5,
		CompletedAt:   completedAt.UTC(),
	}
}

// CreateTestGuestResult creates a guest owned result
func CreateTestGuestResult(gameID, guestID, gameType string, score int64, completedAt time.Time) *models.GameResult {
	result := CreateTestGameResult(gameID, "", gameType, score, completedAt)
	result.Owner = models.GuestIdentity(guestID)
	return result
}

// CreateTestContribution creates a contribution to one partition
func CreateTestContribution(playerID string, partition models.RankingPartition, score int64, at time.Time) models.RankingContribution {
	name := fmt.Sprintf("Player %s", playerID)
	return models.RankingContribution{
		PlayerID:   playerID,
		Partition:  partition,
		Score:      score,
		Profile:    models.PlayerProfile{Name: &name},
		RecordedAt: at.UTC(),
	}
}

// CreateTestDuelResult creates a duel won by the challenger
func CreateTestDuelResult(id, seed, gameType, challengerID, accepterID string) *models.DuelResult {
	return &models.DuelResult{
		ID:               id,
		DuelSeed:         seed,
		GameType:         gameType,
		ChallengerID:     challengerID,
		ChallengerGameID: seed + "-c",
		ChallengerScore:  4200,
		ChallengerTime:   95,
		AccepterID:       accepterID,
		AccepterGameID:   seed + "-a",
		AccepterScore:    3100,
		AccepterTime:     80,
		WinnerID:         challengerID,
		CompletedAt:      time.Now().UTC(),
	}
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
