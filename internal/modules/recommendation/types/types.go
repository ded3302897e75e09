package types

import (
	"errors"
	"time"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/recommend"
)

var ErrRunNotFound = errors.New("recommendation run not found")

// Run sources.
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// StoredReading is a sensor reading as persisted from the MQTT stream.
type StoredReading struct {
	ID           int64     `json:"id"`
	StationID    string    `json:"stationId"`
	RecordedAt   time.Time `json:"recordedAt"`
	PH           float64   `json:"ph"`
	SoilMoisture float64   `json:"soilMoisture"`
	Temperature  float64   `json:"temperature"`
	Location     string    `json:"location,omitempty"`
}

// Run is one scored request with the ranked species it produced.
type Run struct {
	ID        string                     `json:"id"`
	Source    string                     `json:"source"`
	StationID string                     `json:"stationId,omitempty"`
	ReadingID *int64                     `json:"readingId,omitempty"`
	Reading   recommend.SensorReading    `json:"reading"`
	Strategy  string                     `json:"strategy"`
	TopN      int                        `json:"topN"`
	Results   []recommend.Recommendation `json:"recommendations"`
	CreatedAt time.Time                  `json:"createdAt"`
}

type RunPage struct {
	Runs       []Run `json:"runs"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int   `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type DatasetStatus struct {
	Loaded       bool       `json:"loaded"`
	LastUpdated  *time.Time `json:"lastUpdated"`
	SpeciesCount int        `json:"speciesCount"`
	Strategy     string     `json:"strategy"`
	Path         string     `json:"path,omitempty"`
}

// RecommendRequest is the body of POST /api/v1/recommendations.
type RecommendRequest struct {
	PH           *float64 `json:"ph" validate:"required,gte=0,lte=14"`
	SoilMoisture *float64 `json:"soilMoisture" validate:"required,gte=0,lte=100"`
	Temperature  *float64 `json:"temperature" validate:"required,gte=-50,lte=70"`
	Location     string   `json:"location" validate:"max=128"`
	TopN         int      `json:"topN" validate:"gte=0,lte=50"`
}

type SpeciesPage struct {
	Species []dataset.SpeciesProfile `json:"species"`
	Total   int                      `json:"total"`
	Limit   int                      `json:"limit"`
	Offset  int                      `json:"offset"`
}
