package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

const unknownValue = "Unknown"

// headerRows is added to a zero-based record index to get the spreadsheet row number.
const headerRows = 2

var nativeValues = map[string]bool{
	"true":   true,
	"yes":    true,
	"y":      true,
	"1":      true,
	"native": true,
}

type tolerance struct {
	floor  float64
	factor float64
	lo, hi float64
	clamp  bool
}

var (
	moistureTolerance    = tolerance{floor: 5, factor: 0.2, lo: 0, hi: 100, clamp: true}
	phTolerance          = tolerance{floor: 0.5, factor: 0.1, lo: 0, hi: 14, clamp: true}
	temperatureTolerance = tolerance{floor: 2, factor: 0.15}
)

// bounds derives the species range as mid ± max(floor, mid·factor).
func (t tolerance) bounds(mid float64) (float64, float64) {
	half := math.Max(t.floor, mid*t.factor)
	lo, hi := mid-half, mid+half
	if t.clamp {
		lo = math.Min(math.Max(lo, t.lo), t.hi)
		hi = math.Min(math.Max(hi, t.lo), t.hi)
	}
	return lo, hi
}

type Ingestor struct {
	mapping ColumnMapping
	logger  *slog.Logger
}

// NewIngestor returns an ingestor for the given mapping; nil arguments fall back to
// DefaultColumnMapping and slog.Default.
func NewIngestor(mapping ColumnMapping, logger *slog.Logger) *Ingestor {
	if mapping == nil {
		mapping = DefaultColumnMapping()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{mapping: mapping, logger: logger}
}

func (in *Ingestor) Mapping() ColumnMapping {
	return in.mapping
}

// ParseDataset converts raw rows into profiles. Rows that cannot be parsed are
// logged and skipped; they never fail the whole dataset.
func (in *Ingestor) ParseDataset(rows []Row) []SpeciesProfile {
	out := make([]SpeciesProfile, 0, len(rows))
	for i, row := range rows {
		rowNum := i + headerRows
		p, err := in.parseRowSafe(row)
		if err != nil {
			in.logger.Warn("skipping dataset row", "row", rowNum, "error", err)
			continue
		}
		p.ID = fmt.Sprintf("seed_%03d", len(out)+1)
		out = append(out, p)
	}
	in.logger.Info("dataset parsed", "valid", len(out), "total", len(rows))
	return out
}

func (in *Ingestor) parseRowSafe(row Row) (p SpeciesProfile, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing row: %v", r)
		}
	}()
	return in.parseRow(row)
}

func (in *Ingestor) parseRow(row Row) (SpeciesProfile, error) {
	m := in.mapping

	moistureRaw, _ := m.Lookup(row, FieldSoilMoisture)
	phRaw, _ := m.Lookup(row, FieldPH)
	tempRaw, _ := m.Lookup(row, FieldTemperature)

	moisture := ParseRange(moistureRaw)
	ph := ParseRange(phRaw)
	temp := ParseRange(tempRaw)
	if !moisture.Valid || !ph.Valid || !temp.Valid {
		return SpeciesProfile{}, fmt.Errorf("invalid range data (moisture=%q ph=%q temperature=%q)", moistureRaw, phRaw, tempRaw)
	}

	common := m.lookupOr(row, FieldCommonName, unknownValue)
	scientific := m.lookupOr(row, FieldScientificName, unknownValue)
	if common == unknownValue || scientific == unknownValue {
		return SpeciesProfile{}, fmt.Errorf("missing species name (common=%q scientific=%q)", common, scientific)
	}

	nativeRaw, _ := m.Lookup(row, FieldNative)
	isNative := nativeValues[strings.ToLower(nativeRaw)]

	defaultSuccess, defaultAdapt := 75, 80
	if isNative {
		defaultSuccess, defaultAdapt = 85, 90
	}

	p := SpeciesProfile{
		CommonName:         common,
		ScientificName:     scientific,
		SoilType:           m.lookupOr(row, FieldSoilType, unknownValue),
		Category:           m.lookupOr(row, FieldCategory, unknownValue),
		ClimateSuitability: m.lookupOr(row, FieldClimateSuitability, unknownValue),
		GrowthRate:         m.lookupOr(row, FieldGrowthRate, unknownValue),
		Uses:               m.lookupOr(row, FieldUses, unknownValue),
		IsNative:           isNative,
		PrefMoisture:       midpoint(moisture),
		PrefPH:             midpoint(ph),
		PrefTemp:           midpoint(temp),
		SuccessRate:        in.percentOr(row, FieldSuccessRate, defaultSuccess),
		AdaptabilityScore:  in.percentOr(row, FieldAdaptabilityScore, defaultAdapt),
	}
	p.MoistureMin, p.MoistureMax = moistureTolerance.bounds(p.PrefMoisture)
	p.PHMin, p.PHMax = phTolerance.bounds(p.PrefPH)
	p.TempMin, p.TempMax = temperatureTolerance.bounds(p.PrefTemp)
	return p, nil
}

func (in *Ingestor) percentOr(row Row, field Field, fallback int) int {
	raw, ok := in.mapping.Lookup(row, field)
	if !ok {
		return fallback
	}
	n, ok := leadingInt(raw)
	if !ok {
		return fallback
	}
	return min(max(n, 0), 100)
}

// leadingInt parses an optional sign followed by digits, ignoring any trailing text,
// so "85", "85%" and "85.5" all yield 85.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func midpoint(r Range) float64 {
	return round1((r.Min + r.Max) / 2)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
