package api

import (
	"fmt"
	"net/http"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/go-chi/chi/v5"
)

// RankingsResponse is a page of one ranking partition
type RankingsResponse struct {
	GameType  string `json:"gameType"`
	Period    string `json:"period"`
	PeriodKey string `json:"periodKey"`
	*models.RankingsPage
}

// getRankings handles GET /api/v1/rankings/{gameType}?period=&periodKey=&sortBy=&limit=&offset=
func (s *Server) getRankings(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	sortBy, err := models.ParseSortBy(r.URL.Query().Get("sortBy"))
	if err != nil {
		serviceError(w, r, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	limit, offset, err := pageParams(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	page, err := s.leaderboards.GetRankings(r.Context(), service.RankingsQuery{
		GameType:  chi.URLParam(r, "gameType"),
		Period:    period,
		PeriodKey: r.URL.Query().Get("periodKey"),
		SortBy:    sortBy,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	if page.Entries == nil {
		page.Entries = []models.RankingEntry{}
	}
	jsonResponse(w, http.StatusOK, RankingsResponse{
		GameType:     page.Partition.GameType,
		Period:       string(page.Partition.Period),
		PeriodKey:    page.Partition.PeriodKey,
		RankingsPage: page,
	})
}

func (s *Server) getUserRank(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	aggregate, err := s.leaderboards.GetUserRank(r.Context(),
		chi.URLParam(r, "playerId"),
		chi.URLParam(r, "gameType"),
		period,
		r.URL.Query().Get("periodKey"),
	)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if aggregate == nil {
		jsonResponse(w, http.StatusOK, RankLookupResponse{Ranked: false})
		return
	}
	jsonResponse(w, http.StatusOK, RankLookupResponse{Ranked: true, Entry: aggregate})
}

func (s *Server) getTopGames(w http.ResponseWriter, r *http.Request) {
	period, err := optionalPeriodParam(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	limit, offset, err := pageParams(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	entries, err := s.leaderboards.GetTopGames(r.Context(), service.TopGamesQuery{
		GameType: chi.URLParam(r, "gameType"),
		Period:   period,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.TopGameEntry{}
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"gameType": chi.URLParam(r, "gameType"),
		"entries":  entries,
	})
}

func (s *Server) getUserGameStats(w http.ResponseWriter, r *http.Request) {
	period, err := optionalPeriodParam(r)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	stats, err := s.leaderboards.GetUserGameStats(r.Context(), chi.URLParam(r, "playerId"), chi.URLParam(r, "gameType"), period)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
