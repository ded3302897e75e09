package dataset

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Range is the result of ParseRange. Min and Max are meaningful only when Valid.
type Range struct {
	Min   float64
	Max   float64
	Valid bool
}

var rangeNormalizer = strings.NewReplacer(
	"°C", "",
	"%", "",
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2212", "-", // minus sign
)

// ParseRange turns cells like "40-60%", "6.5–7.5", "25°C" or "7" into a range.
// Empty, "N/A" and any other non-numeric input yield an invalid range.
func ParseRange(raw string) Range {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, rangeNormalizer.Replace(raw))

	if !strings.Contains(s, "-") {
		v, ok := parseFinite(s)
		if !ok {
			return Range{}
		}
		return Range{Min: v, Max: v, Valid: true}
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Range{}
	}
	a, ok := parseFinite(parts[0])
	if !ok {
		return Range{}
	}
	b, ok := parseFinite(parts[1])
	if !ok {
		return Range{}
	}
	return Range{Min: math.Min(a, b), Max: math.Max(a, b), Valid: true}
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
