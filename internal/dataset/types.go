package dataset

import "errors"

var (
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrEmptyDataset     = errors.New("dataset is empty")
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
)

// Row is one raw tabular record keyed by its header cell.
type Row map[string]string

// SpeciesProfile is one species' normalized tolerance ranges and quality metrics.
// It holds only value fields, so copying a profile copies all of it.
type SpeciesProfile struct {
	ID             string `json:"id"`
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`

	SoilType           string `json:"soilType"`
	Category           string `json:"category"`
	ClimateSuitability string `json:"climateSuitability"`
	GrowthRate         string `json:"growthRate"`
	Uses               string `json:"uses"`
	IsNative           bool   `json:"isNative"`

	MoistureMin float64 `json:"moistureMin"`
	MoistureMax float64 `json:"moistureMax"`
	PHMin       float64 `json:"pHMin"`
	PHMax       float64 `json:"pHMax"`
	TempMin     float64 `json:"tempMin"`
	TempMax     float64 `json:"tempMax"`

	PrefMoisture float64 `json:"prefMoisture"`
	PrefPH       float64 `json:"prefpH"`
	PrefTemp     float64 `json:"prefTemp"`

	SuccessRate       int `json:"successRate"`
	AdaptabilityScore int `json:"adaptabilityScore"`
}
