package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/go-chi/chi/v5"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 64 << 10

// RecordResultResponse acknowledges a stored game
type RecordResultResponse struct {
	*models.GameResult
	PlayerID          string `json:"playerId,omitempty"`
	GuestID           string `json:"guestId,omitempty"`
	Duplicate         bool   `json:"duplicate"`
	PartitionsUpdated int    `json:"partitionsUpdated"`
}

// MigrateGuestResponse reports how many guest games moved onto the account
type MigrateGuestResponse struct {
	GuestID           string `json:"guestId"`
	PlayerID          string `json:"playerId"`
	MigratedGames     int    `json:"migratedGames"`
	PartitionsUpdated int    `json:"partitionsUpdated"`
}

type migrateGuestRequest struct {
	PlayerID string `json:"playerId"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

// recordResult handles POST /api/v1/results. A redelivered game id is answered with
// 200 and the stored result; a new one with 201.
func (s *Server) recordResult(w http.ResponseWriter, r *http.Request) {
	var input service.RecordResultInput
	if err := decodeBody(w, r, &input); err != nil {
		serviceError(w, r, err)
		return
	}

	outcome, err := s.rankings.RecordResult(r.Context(), input)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if outcome.Duplicate {
		status = http.StatusOK
	}
	resp := RecordResultResponse{
		GameResult:        outcome.Result,
		Duplicate:         outcome.Duplicate,
		PartitionsUpdated: len(outcome.Partitions),
	}
	if outcome.Result.Owner.IsAccount() {
		resp.PlayerID = outcome.Result.Owner.ID()
	} else {
		resp.GuestID = outcome.Result.Owner.ID()
	}
	jsonResponse(w, status, resp)
}

func (s *Server) migrateGuest(w http.ResponseWriter, r *http.Request) {
	var req migrateGuestRequest
	if err := decodeBody(w, r, &req); err != nil {
		serviceError(w, r, err)
		return
	}

	outcome, err := s.rankings.MigrateGuestResults(r.Context(), chi.URLParam(r, "guestId"), req.PlayerID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, MigrateGuestResponse{
		GuestID:           outcome.GuestID,
		PlayerID:          outcome.PlayerID,
		MigratedGames:     outcome.MigratedGames,
		PartitionsUpdated: len(outcome.Partitions),
	})
}
