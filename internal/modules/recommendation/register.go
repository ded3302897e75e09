package recommendation

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/config"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/controller"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/repository"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/service"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/mqtt"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/scoring"
)

// RegisterFeature wires the recommendation module: HTTP routes on mux and, when
// source is non-nil, the sensor reading handler. The returned service is used by
// the caller for the startup dataset load.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, source mqtt.ReadingSource, cfg config.Config, logger *slog.Logger) (*service.Service, error) {
	strategy, err := scoring.ByName(cfg.ScoringStrategy)
	if err != nil {
		return nil, fmt.Errorf("scoring strategy: %w", err)
	}

	store := dataset.NewStore()
	loader := dataset.NewLoader(dataset.NewIngestor(dataset.DefaultColumnMapping(), logger), store, logger)

	recommendationRepository := repository.NewRepository(db)
	recommendationService := service.NewService(
		recommendationRepository,
		store,
		loader,
		recommend.NewRanker(strategy),
		service.Options{DatasetPath: cfg.DatasetPath, DefaultTopN: cfg.DefaultTopN},
		logger,
	)
	recommendationController := controller.NewRecommendationController(recommendationService, logger)
	recommendationController.RegisterRoutes(mux)

	if source != nil {
		recommendationService.Register(source)
	}
	return recommendationService, nil
}
