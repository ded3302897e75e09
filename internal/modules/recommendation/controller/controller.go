package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/service"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
)

// RecommendationService is the part of service.Service the HTTP layer uses.
type RecommendationService interface {
	LoadDataset(ctx context.Context) (types.DatasetStatus, error)
	DatasetStatus() types.DatasetStatus
	DefaultTopN() int
	ClearDataset()
	Species(limit, offset int) (types.SpeciesPage, error)
	Preview(reading recommend.SensorReading, topN int) ([]recommend.Recommendation, error)
	Recommend(ctx context.Context, req service.RunRequest) (types.Run, error)
	GetRun(ctx context.Context, id string) (types.Run, error)
	ListRuns(ctx context.Context, stationID string, page, limit int) (types.RunPage, error)
	LatestReadings(ctx context.Context, stationID string, limit int) ([]types.StoredReading, error)
}

type RecommendationController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type recommendationControllerImpl struct {
	service RecommendationService
	logger  *slog.Logger
}

func NewRecommendationController(service RecommendationService, logger *slog.Logger) RecommendationController {
	if logger == nil {
		logger = slog.Default()
	}
	return &recommendationControllerImpl{service: service, logger: logger}
}

func (c *recommendationControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /partials/recommendations", c.handleRecommendationsPartial)

	mux.HandleFunc("GET /api/v1/dataset", c.handleDatasetStatus)
	mux.HandleFunc("POST /api/v1/dataset/reload", c.handleDatasetReload)
	mux.HandleFunc("DELETE /api/v1/dataset", c.handleDatasetClear)
	mux.HandleFunc("GET /api/v1/species", c.handleSpecies)

	mux.HandleFunc("POST /api/v1/recommendations", c.handleRecommend)
	mux.HandleFunc("GET /api/v1/recommendations", c.handleListRuns)
	mux.HandleFunc("GET /api/v1/recommendations/{id}", c.handleGetRun)

	mux.HandleFunc("GET /api/v1/stations/{id}/readings/latest", c.handleLatestReadings)
}
