package greedy

import (
	"math"

	"github.com/seedlab-io/influmax/pkg/rrset"
)

/*
EstimateInfl() computes, for each prefix of the seed sequence, the fraction
of RR sets hit by that prefix, scaled by the eligible population size. The
result is the cumulative spread estimate per seed added.

An empty table yields zero spread for every prefix (SamplingExhausted is not
fatal).
*/
func EstimateInfl(T *rrset.Table, index *rrset.CoverageIndex, seeds []uint32, population int) ([]float64, error) {
	if err := T.Validate(); err != nil {
		return nil, err
	}
	if index == nil {
		return nil, ErrNilIndex
	}

	m := index.Size()
	spreads := make([]float64, len(seeds))
	if m == 0 {
		return spreads, nil
	}

	covered := make([]bool, m)
	hits := 0

	for i, seed := range seeds {
		for _, setID := range index.SetsByNode[seed] {
			if !covered[setID] {
				covered[setID] = true
				hits++
			}
		}

		spreads[i] = float64(population) * float64(hits) / float64(m)
	}

	return spreads, nil
}

// WeightMode enumerates how the per-time spread estimates of the time-indexed
// algorithms are combined.
type WeightMode int

const (
	// every time step weights 1 (the default)
	WeightUniform WeightMode = iota

	// time step t weights 1/(t+1)
	WeightLinear

	// time step t weights 2^-t
	WeightExponential
)

// Weight() returns the weight of time step t under the given mode.
// Unknown modes default to uniform.
func Weight(mode WeightMode, t int) float64 {
	switch mode {
	case WeightLinear:
		return 1.0 / float64(t+1)
	case WeightExponential:
		return math.Pow(2, -float64(t))
	default:
		return 1.0
	}
}

// CombineSpreads() combines per-time spread estimates into a single value,
// weighting time step t by Weight(mode, t).
func CombineSpreads(mode WeightMode, spreadByTime []float64) float64 {
	total := 0.0
	for t, spread := range spreadByTime {
		total += Weight(mode, t) * spread
	}
	return total
}
