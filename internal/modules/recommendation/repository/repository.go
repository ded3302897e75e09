package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/modules/recommendation/types"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-latest-readings.sql
var getLatestReadingsSQL string

//go:embed sql/insert-run.sql
var insertRunSQL string

//go:embed sql/get-run.sql
var getRunSQL string

//go:embed sql/list-runs.sql
var listRunsSQL string

//go:embed sql/count-runs.sql
var countRunsSQL string

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type RecommendationRepository interface {
	InsertReading(ctx context.Context, reading types.StoredReading) (int64, error)
	GetLatestReadings(ctx context.Context, stationID string, limit int) ([]types.StoredReading, error)
	InsertRun(ctx context.Context, run types.Run) error
	GetRun(ctx context.Context, id string) (types.Run, error)
	// ListRuns returns runs newest first; an empty stationID matches all runs.
	ListRuns(ctx context.Context, stationID string, limit int, offset int) ([]types.Run, error)
	CountRuns(ctx context.Context, stationID string) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) RecommendationRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertReading(ctx context.Context, reading types.StoredReading) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.StationID,
		formatTime(reading.RecordedAt),
		reading.PH,
		reading.SoilMoisture,
		reading.Temperature,
		reading.Location,
	)
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert reading id: %w", err)
	}
	return id, nil
}

func (r *repositoryImpl) GetLatestReadings(ctx context.Context, stationID string, limit int) ([]types.StoredReading, error) {
	rows, err := r.db.QueryContext(ctx, getLatestReadingsSQL, stationID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close latest readings rows", "error", err)
		}
	}()

	out := []types.StoredReading{}
	for rows.Next() {
		var (
			rec types.StoredReading
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.StationID, &ts, &rec.PH, &rec.SoilMoisture, &rec.Temperature, &rec.Location); err != nil {
			return nil, err
		}
		if rec.RecordedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) InsertRun(ctx context.Context, run types.Run) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	var readingID any
	if run.ReadingID != nil {
		readingID = *run.ReadingID
	}

	_, err = r.db.ExecContext(ctx, insertRunSQL,
		run.ID,
		run.Source,
		run.StationID,
		readingID,
		run.Reading.PH,
		run.Reading.SoilMoisture,
		run.Reading.Temperature,
		run.Reading.Location,
		formatTime(run.Reading.Timestamp),
		run.Strategy,
		run.TopN,
		string(results),
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetRun(ctx context.Context, id string) (types.Run, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, getRunSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", types.ErrRunNotFound, id)
	}
	return run, err
}

func (r *repositoryImpl) ListRuns(ctx context.Context, stationID string, limit int, offset int) ([]types.Run, error) {
	rows, err := r.db.QueryContext(ctx, listRunsSQL, stationID, stationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close runs rows", "error", err)
		}
	}()

	out := []types.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountRuns(ctx context.Context, stationID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countRunsSQL, stationID, stationID).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (types.Run, error) {
	var (
		run        types.Run
		readingID  sql.NullInt64
		observedAt string
		results    string
		createdAt  string
	)
	err := s.Scan(
		&run.ID,
		&run.Source,
		&run.StationID,
		&readingID,
		&run.Reading.PH,
		&run.Reading.SoilMoisture,
		&run.Reading.Temperature,
		&run.Reading.Location,
		&observedAt,
		&run.Strategy,
		&run.TopN,
		&results,
		&createdAt,
	)
	if err != nil {
		return types.Run{}, err
	}
	if readingID.Valid {
		id := readingID.Int64
		run.ReadingID = &id
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return types.Run{}, err
	}
	if run.Reading.Timestamp, err = parseTime(observedAt); err != nil {
		return types.Run{}, err
	}
	run.Results = []recommend.Recommendation{}
	if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
		return types.Run{}, fmt.Errorf("decode results of run %s: %w", run.ID, err)
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
