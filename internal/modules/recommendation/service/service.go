package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/metrics"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/repository"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
)

const (
	defaultSpeciesLimit = 50
	maxSpeciesLimit     = 500
	defaultRunLimit     = 20
)

type Options struct {
	// DatasetPath is the catalog read by LoadDataset. Empty disables loading.
	DatasetPath string
	DefaultTopN int
}

// RunRequest describes one scoring request and where it came from.
type RunRequest struct {
	Reading   recommend.SensorReading
	TopN      int
	Source    string
	StationID string
	ReadingID *int64
}

type Service struct {
	repository repository.RecommendationRepository
	store      *dataset.Store
	loader     *dataset.Loader
	ranker     *recommend.Ranker
	opts       Options
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(
	repository repository.RecommendationRepository,
	store *dataset.Store,
	loader *dataset.Loader,
	ranker *recommend.Ranker,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = recommend.DefaultTopN
	}
	return &Service{
		repository: repository,
		store:      store,
		loader:     loader,
		ranker:     ranker,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// LoadDataset reads the configured catalog and swaps it in. The previous
// snapshot survives any failure.
func (s *Service) LoadDataset(ctx context.Context) (types.DatasetStatus, error) {
	if err := ctx.Err(); err != nil {
		return types.DatasetStatus{}, err
	}
	if s.opts.DatasetPath == "" {
		err := fmt.Errorf("%w: DATASET_PATH is not set", dataset.ErrDatasetNotFound)
		metrics.RecordDatasetLoad(err, 0)
		return s.DatasetStatus(), err
	}

	profiles, err := s.loader.LoadFile(s.opts.DatasetPath)
	metrics.RecordDatasetLoad(err, len(profiles))
	if err != nil {
		s.logger.Error("dataset load failed", "path", s.opts.DatasetPath, "error", err)
		return s.DatasetStatus(), err
	}
	return s.DatasetStatus(), nil
}

func (s *Service) DatasetStatus() types.DatasetStatus {
	status := types.DatasetStatus{
		Strategy: s.ranker.Strategy(),
		Path:     s.opts.DatasetPath,
	}
	snap, err := s.store.Snapshot()
	if err != nil {
		return status
	}
	loadedAt := snap.LoadedAt()
	status.Loaded = true
	status.LastUpdated = &loadedAt
	status.SpeciesCount = snap.Len()
	return status
}

func (s *Service) DefaultTopN() int {
	return s.opts.DefaultTopN
}

func (s *Service) ClearDataset() {
	s.store.Clear()
	metrics.RecordDatasetCleared()
	s.logger.Info("dataset cleared")
}

// Species pages through the loaded catalog in ID order.
func (s *Service) Species(limit, offset int) (types.SpeciesPage, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return types.SpeciesPage{}, err
	}
	if limit <= 0 {
		limit = defaultSpeciesLimit
	}
	limit = min(limit, maxSpeciesLimit)
	offset = max(offset, 0)

	profiles := snap.Profiles()
	start := min(offset, len(profiles))
	end := min(start+limit, len(profiles))
	return types.SpeciesPage{
		Species: profiles[start:end],
		Total:   len(profiles),
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// Preview scores a reading against the current snapshot without recording a run.
func (s *Service) Preview(reading recommend.SensorReading, topN int) ([]recommend.Recommendation, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.opts.DefaultTopN
	}
	return s.ranker.Recommend(reading, snap.Profiles(), topN)
}

// Recommend scores the reading and stores the result as a run.
func (s *Service) Recommend(ctx context.Context, req RunRequest) (types.Run, error) {
	start := time.Now()
	run, err := s.recommend(ctx, req)
	metrics.RecordRecommendation(req.Source, err, s.ranker.Strategy(), time.Since(start))
	return run, err
}

func (s *Service) recommend(ctx context.Context, req RunRequest) (types.Run, error) {
	topN := req.TopN
	if topN <= 0 {
		topN = s.opts.DefaultTopN
	}
	results, err := s.Preview(req.Reading, topN)
	if err != nil {
		return types.Run{}, err
	}

	created := s.now().UTC()
	reading := req.Reading
	if reading.Timestamp.IsZero() {
		reading.Timestamp = created
	}
	run := types.Run{
		ID:        s.newID(),
		Source:    req.Source,
		StationID: req.StationID,
		ReadingID: req.ReadingID,
		Reading:   reading,
		Strategy:  s.ranker.Strategy(),
		TopN:      topN,
		Results:   results,
		CreatedAt: created,
	}
	if err := s.repository.InsertRun(ctx, run); err != nil {
		return types.Run{}, fmt.Errorf("store run: %w", err)
	}

	s.logger.Debug("recommendation run stored",
		"run_id", run.ID,
		"source", run.Source,
		"station_id", run.StationID,
		"results", len(run.Results),
	)
	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (types.Run, error) {
	return s.repository.GetRun(ctx, id)
}

// ListRuns returns one page of runs, newest first. page is 1-based.
func (s *Service) ListRuns(ctx context.Context, stationID string, page, limit int) (types.RunPage, error) {
	page = max(page, 1)
	if limit <= 0 {
		limit = defaultRunLimit
	}
	total, err := s.repository.CountRuns(ctx, stationID)
	if err != nil {
		return types.RunPage{}, err
	}
	runs, err := s.repository.ListRuns(ctx, stationID, limit, (page-1)*limit)
	if err != nil {
		return types.RunPage{}, err
	}
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return types.RunPage{
		Runs:       runs,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) LatestReadings(ctx context.Context, stationID string, limit int) ([]types.StoredReading, error) {
	return s.repository.GetLatestReadings(ctx, stationID, limit)
}

// IsDatasetStateError reports errors caused by the catalog state rather than the
// request or storage.
func IsDatasetStateError(err error) bool {
	return errors.Is(err, dataset.ErrDatasetNotLoaded) || errors.Is(err, dataset.ErrEmptyDataset)
}
