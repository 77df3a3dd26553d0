package service

import "github.com/MichiMauch/geomaster.world-sub001/models"

type scoreThenTimeJudge struct{}

// NewScoreThenTimeJudge returns the standard comparator: the higher score wins, a
// lower time breaks score ties, and a full tie goes to the challenger.
func NewScoreThenTimeJudge() DuelJudge {
	return scoreThenTimeJudge{}
}

func (scoreThenTimeJudge) Decide(challenger, accepter models.DuelParticipant) (models.DuelParticipant, models.DuelParticipant) {
	switch {
	case accepter.Score > challenger.Score:
		return accepter, challenger
	case accepter.Score < challenger.Score:
		return challenger, accepter
	case accepter.Time < challenger.Time:
		return accepter, challenger
	default:
		return challenger, accepter
	}
}
