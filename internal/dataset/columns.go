package dataset

import (
	"slices"
	"strings"
)

// Field names a logical column of the species catalog.
type Field string

const (
	FieldSoilMoisture       Field = "soil_moisture"
	FieldPH                 Field = "ph"
	FieldTemperature        Field = "temperature"
	FieldNative             Field = "native"
	FieldCommonName         Field = "common_name"
	FieldScientificName     Field = "scientific_name"
	FieldSoilType           Field = "soil_type"
	FieldCategory           Field = "category"
	FieldSuccessRate        Field = "success_rate"
	FieldAdaptabilityScore  Field = "adaptability_score"
	FieldClimateSuitability Field = "climate_suitability"
	FieldGrowthRate         Field = "growth_rate"
	FieldUses               Field = "uses"
)

// ColumnMapping lists, per field, the header names accepted for it in priority order.
type ColumnMapping map[Field][]string

// DefaultColumnMapping returns the header aliases found in the catalogs we ingest.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		FieldSoilMoisture:       {"Soil Moisture", "Moisture", "Preferred Moisture"},
		FieldPH:                 {"pH Range", "pH", "Preferred pH"},
		FieldTemperature:        {"Temperature", "Preferred Temperature", "Temp"},
		FieldNative:             {"Native", "Is Native"},
		FieldCommonName:         {"Common Name", "common_name"},
		FieldScientificName:     {"Scientific Name", "scientific_name"},
		FieldSoilType:           {"Soil Type", "soil_type"},
		FieldCategory:           {"Category", "category"},
		FieldSuccessRate:        {"Success Rate (%)", "Success Rate", "success_rate"},
		FieldAdaptabilityScore:  {"Adaptability Score", "adaptability_score"},
		FieldClimateSuitability: {"Climate Suitability", "climate_suitability"},
		FieldGrowthRate:         {"Growth Rate", "growth_rate"},
		FieldUses:               {"Uses", "uses"},
	}
}

// Fields returns the mapped fields in a stable order.
func (m ColumnMapping) Fields() []Field {
	out := make([]Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the first non-empty cell among the field's aliases.
func (m ColumnMapping) Lookup(row Row, field Field) (string, bool) {
	for _, alias := range m[field] {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v, true
		}
	}
	return "", false
}

func (m ColumnMapping) lookupOr(row Row, field Field, fallback string) string {
	if v, ok := m.Lookup(row, field); ok {
		return v
	}
	return fallback
}
