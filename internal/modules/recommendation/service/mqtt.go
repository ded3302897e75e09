package service

import (
	"context"
	"fmt"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/mqtt"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/telemetry"
)

// Register attaches the service to the sensor stream.
func (s *Service) Register(source mqtt.ReadingSource) {
	source.SetMessageHandler(s.HandleReading)
}

// HandleReading stores a station reading and, when a catalog is loaded, records
// a recommendation run for it. Readings that arrive before a catalog is loaded
// are kept and not scored.
func (s *Service) HandleReading(ctx context.Context, r telemetry.Reading) error {
	s.logger.Debug("processing sensor reading",
		"station_id", r.StationID,
		"timestamp", r.Timestamp,
	)

	stored := types.StoredReading{
		StationID:    r.StationID,
		RecordedAt:   r.Timestamp.UTC(),
		PH:           *r.PH,
		SoilMoisture: *r.SoilMoisture,
		Temperature:  *r.Temperature,
		Location:     r.Location,
	}
	readingID, err := s.repository.InsertReading(ctx, stored)
	if err != nil {
		s.logger.Error("failed to insert reading",
			"station_id", r.StationID,
			"error", err,
		)
		return fmt.Errorf("store reading: %w", err)
	}

	req := RunRequest{
		Reading: recommend.SensorReading{
			PH:           stored.PH,
			SoilMoisture: stored.SoilMoisture,
			Temperature:  stored.Temperature,
			Location:     stored.Location,
			Timestamp:    stored.RecordedAt,
		},
		Source:    types.SourceMQTT,
		StationID: r.StationID,
		ReadingID: &readingID,
	}
	if r.TopN != nil {
		req.TopN = *r.TopN
	}

	run, err := s.Recommend(ctx, req)
	if err != nil {
		if IsDatasetStateError(err) {
			s.logger.Warn("reading stored without recommendation",
				"station_id", r.StationID,
				"reading_id", readingID,
				"reason", err.Error(),
			)
			return nil
		}
		s.logger.Error("failed to recommend for reading",
			"station_id", r.StationID,
			"reading_id", readingID,
			"error", err,
		)
		return err
	}

	s.logger.Info("recommendation run created",
		"run_id", run.ID,
		"station_id", r.StationID,
		"top_species", topSpecies(run),
	)
	return nil
}

func topSpecies(run types.Run) string {
	if len(run.Results) == 0 {
		return ""
	}
	return run.Results[0].CommonName
}
