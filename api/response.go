package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MichiMauch/geomaster.world-sub001/service"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RankLookupResponse answers single-player rank lookups. Entry is omitted when the
// player has no row in the partition.
type RankLookupResponse struct {
	Ranked bool        `json:"ranked"`
	Entry  interface{} `json:"entry,omitempty"`
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, ErrorResponse{Error: message})
}

// serviceError maps service errors onto status codes. Validation errors are echoed;
// anything else is logged and hidden behind a generic message.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnknownGameType),
		errors.Is(err, service.ErrAmbiguousIdentity):
		errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}
