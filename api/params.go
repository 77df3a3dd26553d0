package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/MichiMauch/geomaster.world-sub001/models"
	"github.com/MichiMauch/geomaster.world-sub001/service"
)

// pageParams reads limit and offset. Absent values are left at zero so the service
// applies its defaults.
func pageParams(r *http.Request) (int, int, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", service.ErrInvalidInput, name)
	}
	return v, nil
}

// periodParam defaults to alltime
func periodParam(r *http.Request) (models.Period, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return models.PeriodAllTime, nil
	}
	p, err := models.ParsePeriod(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return p, nil
}

// optionalPeriodParam returns nil for an absent period or alltime, both meaning no time filter
func optionalPeriodParam(r *http.Request) (*models.Period, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return nil, nil
	}
	p, err := models.ParsePeriod(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	if p == models.PeriodAllTime {
		return nil, nil
	}
	return &p, nil
}
