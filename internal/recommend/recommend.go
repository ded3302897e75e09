package recommend

import (
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/dataset"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/scoring"
)

const DefaultTopN = 3

const (
	weightPH           = 0.25
	weightMoisture     = 0.30
	weightTemperature  = 0.25
	weightSuccess      = 0.10
	weightAdaptability = 0.10

	minConfidence = 0.05
	maxConfidence = 1.0

	overallConfidenceWeight = 0.7
	overallSuccessWeight    = 0.3
)

// Differences below these are ties and fall through to the next sort key.
const (
	overallTie     = 0.05
	confidenceTie  = 0.03
	successRateTie = 5
)

type SensorReading struct {
	PH           float64   `json:"ph"`
	SoilMoisture float64   `json:"soilMoisture"`
	Temperature  float64   `json:"temperature"`
	Location     string    `json:"location,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

type Recommendation struct {
	Rank           int    `json:"rank"`
	SpeciesID      string `json:"speciesId"`
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
	Category       string `json:"category"`
	IsNative       bool   `json:"isNative"`

	ConfidenceScore       float64 `json:"confidenceScore"`
	OverallScore          float64 `json:"overallScore"`
	MoistureCompatibility float64 `json:"moistureCompatibility"`
	PHCompatibility       float64 `json:"pHCompatibility"`
	TempCompatibility     float64 `json:"tempCompatibility"`

	PrefMoisture float64 `json:"prefMoisture"`
	PrefPH       float64 `json:"prefpH"`
	PrefTemp     float64 `json:"prefTemp"`

	MoistureRange string `json:"moistureRange"`
	PHRange       string `json:"pHRange"`
	TempRange     string `json:"tempRange"`

	SuccessRate       int `json:"successRate"`
	AdaptabilityScore int `json:"adaptabilityScore"`
}

// Ranker scores species against a reading. It keeps no per-call state and is safe
// for concurrent use.
type Ranker struct {
	strategy scoring.Strategy
}

func NewRanker(strategy scoring.Strategy) *Ranker {
	if strategy == nil {
		strategy = scoring.Tapered{}
	}
	return &Ranker{strategy: strategy}
}

func (r *Ranker) Strategy() string {
	return r.strategy.Name()
}

// Recommend returns up to topN species ordered best first. topN <= 0 means
// DefaultTopN. The order is fully determined by the reading and the input order
// of species.
func (r *Ranker) Recommend(reading SensorReading, species []dataset.SpeciesProfile, topN int) ([]Recommendation, error) {
	if len(species) == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	recs := make([]Recommendation, 0, len(species))
	for _, sp := range species {
		recs = append(recs, r.evaluate(reading, sp))
	}

	slices.SortStableFunc(recs, compare)

	recs = recs[:min(topN, len(recs))]
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs, nil
}

func (r *Ranker) evaluate(reading SensorReading, sp dataset.SpeciesProfile) Recommendation {
	phScore := r.strategy.Score(reading.PH, sp.PHMin, sp.PHMax)
	moistureScore := r.strategy.Score(reading.SoilMoisture, sp.MoistureMin, sp.MoistureMax)
	tempScore := r.strategy.Score(reading.Temperature, sp.TempMin, sp.TempMax)

	success := float64(sp.SuccessRate) / 100
	adapt := float64(sp.AdaptabilityScore) / 100

	confidence := phScore*weightPH +
		moistureScore*weightMoisture +
		tempScore*weightTemperature +
		success*weightSuccess +
		adapt*weightAdaptability
	confidence = math.Min(math.Max(confidence, minConfidence), maxConfidence)

	return Recommendation{
		SpeciesID:             sp.ID,
		CommonName:            sp.CommonName,
		ScientificName:        sp.ScientificName,
		Category:              sp.Category,
		IsNative:              sp.IsNative,
		ConfidenceScore:       confidence,
		OverallScore:          confidence*overallConfidenceWeight + success*overallSuccessWeight,
		MoistureCompatibility: moistureScore,
		PHCompatibility:       phScore,
		TempCompatibility:     tempScore,
		PrefMoisture:          sp.PrefMoisture,
		PrefPH:                sp.PrefPH,
		PrefTemp:              sp.PrefTemp,
		MoistureRange:         formatRange(sp.MoistureMin, sp.MoistureMax, "%"),
		PHRange:               formatRange(sp.PHMin, sp.PHMax, ""),
		TempRange:             formatRange(sp.TempMin, sp.TempMax, "°C"),
		SuccessRate:           sp.SuccessRate,
		AdaptabilityScore:     sp.AdaptabilityScore,
	}
}

// compare orders best first: overall score, then confidence, success rate and
// adaptability, treating near-equal values as ties.
func compare(a, b Recommendation) int {
	if d := a.OverallScore - b.OverallScore; math.Abs(d) >= overallTie {
		return descending(d)
	}
	if d := a.ConfidenceScore - b.ConfidenceScore; math.Abs(d) >= confidenceTie {
		return descending(d)
	}
	if d := a.SuccessRate - b.SuccessRate; d >= successRateTie || d <= -successRateTie {
		return descending(float64(d))
	}
	return b.AdaptabilityScore - a.AdaptabilityScore
}

func descending(d float64) int {
	if d > 0 {
		return -1
	}
	return 1
}

func formatRange(lo, hi float64, unit string) string {
	return formatNumber(lo) + "-" + formatNumber(hi) + unit
}

func formatNumber(v float64) string {
	r := math.Round(v*10) / 10
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
