/*
The shapley package implements per-node value accumulation during sampling.
Instead of retaining the RR-set table for a greedy pass, every generated RR
set immediately credits each of its members and is then discarded, so memory
stays constant in the number of samples beyond the per-node accumulators.

# REFERENCES

[1] W. Chen, S. Teng; "Interplay between social influence and network
centrality: a comparative study on Shapley centrality and single-node-influence
centrality"; WWW 2017 (the ASV-RR algorithm).
*/
package shapley

import (
	"context"
	"sort"

	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
	"github.com/seedlab-io/influmax/pkg/sampler"
)

// CreditMode selects how much an RR set credits each of its members.
type CreditMode int

const (
	// each member of an RR set R is credited 1/|R| (Shapley fair division)
	CreditShapley CreditMode = iota

	// each member is credited 1 (single-node influence)
	CreditSingleNode
)

// Accumulator holds the running weighted hit counts. No RR-set membership is
// retained.
type Accumulator struct {
	Values map[uint32]float64
	Hits   map[uint32]int64
	Rounds int64
}

// NewAccumulator() creates and returns a new empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Values: make(map[uint32]float64),
		Hits:   make(map[uint32]int64),
	}
}

// Consume() credits the members of one RR set and counts the round.
// Degenerate empty sets still count as a round.
func (A *Accumulator) Consume(set models.RRSet, mode CreditMode) {
	A.Rounds++
	if len(set) == 0 {
		return
	}

	credit := 1.0
	if mode == CreditShapley {
		credit = 1.0 / float64(len(set))
	}

	for _, nodeID := range set {
		A.Values[nodeID] += credit
		A.Hits[nodeID]++
	}
}

// Engine wires a sampler to an accumulator through a scratch table that is
// drained after every batch.
type Engine struct {
	Acc *Accumulator

	sampler *sampler.Sampler
	scratch *rrset.Table
	mode    CreditMode
}

// NewEngine() creates a value-accumulation engine over the population.
func NewEngine(factory models.CascadeFactory, population []uint32,
	policy sampler.Policy, mode CreditMode) (*Engine, error) {

	scratch := rrset.NewTable()
	s, err := sampler.New(scratch, factory, population, policy)
	if err != nil {
		return nil, err
	}

	return &Engine{
		Acc:     NewAccumulator(),
		sampler: s,
		scratch: scratch,
		mode:    mode,
	}, nil
}

// AddRRSimulation() generates numIter RR sets, credits the accumulator with
// each of them, and discards them. It returns the sampling work stats.
func (e *Engine) AddRRSimulation(ctx context.Context, numIter int) (sampler.Stats, error) {
	stats, err := e.sampler.AddRRSimulation(ctx, numIter)
	if err != nil {
		return stats, err
	}

	for _, set := range e.scratch.Sets {
		e.Acc.Consume(set, e.mode)
	}

	e.scratch.Reset()
	return stats, nil
}

// Rounds() returns the number of RR sets consumed so far.
func (e *Engine) Rounds() int64 {
	return e.Acc.Rounds
}

// Influence() returns the estimated per-node values, scaled by
// population/rounds for unbiasedness.
func (e *Engine) Influence(population int) models.InfluenceMap {
	influence := make(models.InfluenceMap, len(e.Acc.Values))
	if e.Acc.Rounds == 0 {
		return influence
	}

	scale := float64(population) / float64(e.Acc.Rounds)
	for nodeID, value := range e.Acc.Values {
		influence[nodeID] = scale * value
	}

	return influence
}

// TopK() returns the k nodes with the highest accumulated value, in
// descending order (ties break on the smallest nodeID), with their scaled
// estimates. Fewer than k are returned if fewer nodes were ever hit.
func (e *Engine) TopK(k, population int) ([]models.Seed, error) {
	if k < 0 {
		return nil, models.ErrInvalidSeedSize
	}

	influence := e.Influence(population)

	seeds := make([]models.Seed, 0, len(influence))
	for nodeID, value := range influence {
		seeds = append(seeds, models.Seed{Node: nodeID, Spread: value})
	}

	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].Spread != seeds[j].Spread {
			return seeds[i].Spread > seeds[j].Spread
		}
		return seeds[i].Node < seeds[j].Node
	})

	if len(seeds) > k {
		seeds = seeds[:k]
	}

	return seeds, nil
}
