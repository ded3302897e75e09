package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not loaded", err: dataset.ErrDatasetNotLoaded, want: http.StatusServiceUnavailable},
		{name: "not found wrapped", err: fmt.Errorf("%w: data.csv", dataset.ErrDatasetNotFound), want: http.StatusNotFound},
		{name: "run not found", err: types.ErrRunNotFound, want: http.StatusNotFound},
		{name: "empty", err: dataset.ErrEmptyDataset, want: http.StatusUnprocessableEntity},
		{name: "other", err: errors.New("disk I/O error"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d; want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseLatestQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr string
	}{
		{query: "", want: defaultLatestLimit},
		{query: "limit=5", want: 5},
		{query: "limit=1000", want: 1000},
		{query: "limit=abc", wantErr: "expected integer"},
		{query: "limit=0", wantErr: "must be >= 1"},
		{query: "limit=1001", wantErr: "must be <= 1000"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			got, err := parseLatestQuery(req)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v; want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("limit = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestParseRunsQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?station_id=+plot-7+&page=3&limit=50", nil)
	station, page, limit, err := parseRunsQuery(req)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if station != "plot-7" || page != 3 || limit != 50 {
		t.Errorf("got %q/%d/%d", station, page, limit)
	}

	req = httptest.NewRequest(http.MethodGet, "/x?page=-2", nil)
	_, page, limit, err = parseRunsQuery(req)
	if err != nil || page != 1 || limit != defaultRunsLimit {
		t.Errorf("defaults: page %d limit %d err %v", page, limit, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/x?limit=101", nil)
	if _, _, _, err := parseRunsQuery(req); err == nil {
		t.Error("limit=101 accepted")
	}
}

func TestParseSpeciesQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=10&offset=20", nil)
	limit, offset, err := parseSpeciesQuery(req)
	if err != nil || limit != 10 || offset != 20 {
		t.Errorf("got %d/%d err %v", limit, offset, err)
	}

	for _, q := range []string{"offset=-1", "limit=0", "limit=501", "offset=x"} {
		req := httptest.NewRequest(http.MethodGet, "/x?"+q, nil)
		if _, _, err := parseSpeciesQuery(req); err == nil {
			t.Errorf("%s accepted", q)
		}
	}
}

func TestParseReadingQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{name: "valid", query: "ph=6.5&moisture=50&temperature=25&top_n=5"},
		{name: "missing ph", query: "moisture=50&temperature=25", wantErr: "'ph' is required"},
		{name: "bad moisture", query: "ph=6&moisture=wet&temperature=25", wantErr: "invalid 'moisture'"},
		{name: "nan", query: "ph=NaN&moisture=50&temperature=25", wantErr: "invalid 'ph'"},
		{name: "ph out of range", query: "ph=15&moisture=50&temperature=25", wantErr: "'ph' must be between 0 and 14"},
		{name: "top_n out of range", query: "ph=6&moisture=50&temperature=25&top_n=99", wantErr: "'top_n' must be <= 50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/partials/recommendations?"+tt.query, nil)
			reading, topN, err := parseReadingQuery(req)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v; want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if reading.PH != 6.5 || reading.SoilMoisture != 50 || reading.Temperature != 25 || topN != 5 {
				t.Errorf("got %+v topN %d", reading, topN)
			}
		})
	}
}
