package controller

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
)

const (
	defaultLatestLimit = 10
	maxLatestLimit     = 1000
	defaultRunsLimit   = 20
	maxRunsLimit       = 100
	maxSpeciesLimit    = 500
	maxTopN            = 50
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrDatasetNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, dataset.ErrDatasetNotFound), errors.Is(err, types.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseIntParam reads an optional integer query parameter bounded by [lo, hi].
func parseIntParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' (expected integer)", name)
	}
	if n < lo {
		return 0, fmt.Errorf("'%s' must be >= %d", name, lo)
	}
	if n > hi {
		return 0, fmt.Errorf("'%s' must be <= %d", name, hi)
	}
	return n, nil
}

func parseLatestQuery(r *http.Request) (limit int, err error) {
	return parseIntParam(r, "limit", defaultLatestLimit, 1, maxLatestLimit)
}

func parseSpeciesQuery(r *http.Request) (limit, offset int, err error) {
	limit, err = parseIntParam(r, "limit", 0, 1, maxSpeciesLimit)
	if err != nil {
		return 0, 0, err
	}
	offset, err = parseIntParam(r, "offset", 0, 0, 1<<31-1)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func parseRunsQuery(r *http.Request) (stationID string, page, limit int, err error) {
	stationID = strings.TrimSpace(r.URL.Query().Get("station_id"))
	limit, err = parseIntParam(r, "limit", defaultRunsLimit, 1, maxRunsLimit)
	if err != nil {
		return "", 0, 0, err
	}
	return stationID, parsePage(r), limit, nil
}

// parsePage returns the 1-based page number from the request (default 1, min 1).
func parsePage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parseReadingQuery reads the form fields of the results partial.
func parseReadingQuery(r *http.Request) (reading recommend.SensorReading, topN int, err error) {
	q := r.URL.Query()
	fields := []struct {
		name   string
		dst    *float64
		lo, hi float64
	}{
		{name: "ph", dst: &reading.PH, lo: 0, hi: 14},
		{name: "moisture", dst: &reading.SoilMoisture, lo: 0, hi: 100},
		{name: "temperature", dst: &reading.Temperature, lo: -50, hi: 70},
	}
	for _, f := range fields {
		s := strings.TrimSpace(q.Get(f.name))
		if s == "" {
			return recommend.SensorReading{}, 0, fmt.Errorf("'%s' is required", f.name)
		}
		v, convErr := strconv.ParseFloat(s, 64)
		if convErr != nil || math.IsNaN(v) {
			return recommend.SensorReading{}, 0, fmt.Errorf("invalid '%s' (expected number)", f.name)
		}
		if v < f.lo || v > f.hi {
			return recommend.SensorReading{}, 0, fmt.Errorf("'%s' must be between %g and %g", f.name, f.lo, f.hi)
		}
		*f.dst = v
	}
	reading.Location = strings.TrimSpace(q.Get("location"))

	topN, err = parseIntParam(r, "top_n", 0, 1, maxTopN)
	if err != nil {
		return recommend.SensorReading{}, 0, err
	}
	return reading, topN, nil
}
