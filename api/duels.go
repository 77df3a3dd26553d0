package api

import (
	"net/http"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/go-chi/chi/v5"
)

// CompleteDuelResponse reports the stored duel and the points it awarded
type CompleteDuelResponse struct {
	Duel                *models.DuelResult `json:"duel"`
	Duplicate           bool               `json:"duplicate"`
	PointsEarned        int64              `json:"pointsEarned"`
	CatchUpBonusAwarded bool               `json:"catchUpBonusAwarded"`
}

// completeDuel handles POST /api/v1/duels
func (s *Server) completeDuel(w http.ResponseWriter, r *http.Request) {
	var input service.CompleteDuelInput
	if err := decodeBody(w, r, &input); err != nil {
		serviceError(w, r, err)
		return
	}

	outcome, err := s.duels.CompleteDuel(r.Context(), input)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if outcome.Duplicate {
		status = http.StatusOK
	}
	jsonResponse(w, status, CompleteDuelResponse{
		Duel:                outcome.Duel,
		Duplicate:           outcome.Duplicate,
		PointsEarned:        outcome.PointsEarned,
		CatchUpBonusAwarded: outcome.CatchUpBonusAwarded,
	})
}

func (s *Server) getDuelLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	page, err := s.leaderboards.GetDuelLeaderboard(r.Context(), chi.URLParam(r, "gameType"), limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if page.Entries == nil {
		page.Entries = []models.DuelLeaderboardEntry{}
	}
	jsonResponse(w, http.StatusOK, page)
}

func (s *Server) getOverallLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	page, err := s.overall.GetOverallLeaderboard(r.Context(), limit, offset)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

func (s *Server) getDuelStat(w http.ResponseWriter, r *http.Request) {
	stat, err := s.leaderboards.GetDuelStat(r.Context(), chi.URLParam(r, "playerId"), chi.URLParam(r, "gameType"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if stat == nil {
		jsonResponse(w, http.StatusOK, RankLookupResponse{Ranked: false})
		return
	}
	jsonResponse(w, http.StatusOK, RankLookupResponse{Ranked: true, Entry: stat})
}
