// Package scoring rates how well one observed value fits one tolerance range.
//
// Two models are available. Tapered rewards values near the centre of the range
// and decays exponentially outside it; Linear treats the whole range as ideal and
// decays linearly outside it. Both return values in [0, 1] and share the same
// handling of missing data: a 0-0 range scores NeutralScore and non-finite input
// scores 0.
package scoring

import (
	"fmt"
	"math"
	"sort"
)

const (
	// NeutralScore is returned for a 0-0 range, which marks absent source data.
	NeutralScore = 0.3

	// EdgeScore is the Tapered score at either edge of the range.
	EdgeScore = 0.8

	minOutsideTolerance = 5.0
	toleranceFactor     = 0.8
)

const (
	NameTapered = "tapered"
	NameLinear  = "linear"
)

type Strategy interface {
	Name() string
	Score(value, lo, hi float64) float64
}

var strategies = map[string]Strategy{
	NameTapered: Tapered{},
	NameLinear:  Linear{},
}

// ByName returns the registered strategy with the given name.
func ByName(name string) (Strategy, error) {
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown scoring strategy %q (allowed: %v)", name, Names())
	}
	return s, nil
}

func Names() []string {
	out := make([]string, 0, len(strategies))
	for n := range strategies {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type Tapered struct{}

func (Tapered) Name() string { return NameTapered }

func (Tapered) Score(value, lo, hi float64) float64 {
	if s, done := guard(value, lo, hi); done {
		return s
	}
	if value >= lo && value <= hi {
		half := (hi - lo) / 2
		if half == 0 {
			return 1
		}
		center := (lo + hi) / 2
		return clamp01(1 - (1-EdgeScore)*math.Abs(value-center)/half)
	}
	return clamp01(math.Exp(-outsideDistance(value, lo, hi) / outsideTolerance(lo, hi)))
}

type Linear struct{}

func (Linear) Name() string { return NameLinear }

func (Linear) Score(value, lo, hi float64) float64 {
	if s, done := guard(value, lo, hi); done {
		return s
	}
	if value >= lo && value <= hi {
		return 1
	}
	return clamp01(1 - outsideDistance(value, lo, hi)/outsideTolerance(lo, hi))
}

func guard(value, lo, hi float64) (float64, bool) {
	if !finite(value) || !finite(lo) || !finite(hi) {
		return 0, true
	}
	if lo == 0 && hi == 0 {
		return NeutralScore, true
	}
	return 0, false
}

func outsideDistance(value, lo, hi float64) float64 {
	if value < lo {
		return lo - value
	}
	return value - hi
}

func outsideTolerance(lo, hi float64) float64 {
	return math.Max(toleranceFactor*(hi-lo), minOutsideTolerance)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
