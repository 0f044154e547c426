/*
The algo package implements the influence maximization orchestrators. Each
published algorithm is a stopping-rule state machine over the same sampling,
coverage and selection core, so the whole family collapses into a single
Run() call parameterized by a variant tag.

An Orchestrator owns its RR-set table, targets and coverage index
exclusively. One instance handles exactly one Run invocation at a time:
concurrent overlapping Run calls on the same instance are unsafe.

Run() is atomic with respect to its output: a partial result is never
returned, and the optional ResultStore is only written after a fully
completed run.
*/
package algo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seedlab-io/influmax/pkg/greedy"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
	"github.com/seedlab-io/influmax/pkg/sampler"
	"github.com/seedlab-io/influmax/pkg/utils/logger"
)

// Variant enumerates the stopping-rule state machines.
type Variant int

const (
	// one sampling call of a caller-specified size, one greedy pass
	Fixed Variant = iota

	// exponentially growing batches until the visited-work criterion is met
	AdaptiveDoubling

	// cheap lower bound first, then the exact required sample count
	TwoPhase

	// log2(n) doubling iterations with a martingale stopping test
	GeometricMartingale

	// per-time-step tables and (node, time) seeds
	TimeIndexed

	// per-node value accumulation during sampling (Shapley / SNI)
	ValueAccumulation

	// continuous activation budget via water-filling
	ContinuousBudget
)

// String() returns the conventional name of the variant.
func (v Variant) String() string {
	switch v {
	case Fixed:
		return "rr"
	case AdaptiveDoubling:
		return "rr_error"
	case TwoPhase:
		return "timplus"
	case GeometricMartingale:
		return "imm"
	case TimeIndexed:
		return "prm_imm"
	case ValueAccumulation:
		return "asvrr"
	case ContinuousBudget:
		return "cimm"
	default:
		return "unknown"
	}
}

// Strategy enumerates the seed selection strategies of the time-indexed
// variant. All of them consume the same per-time coverage indices.
type Strategy int

const (
	// exact weighted top-k over all (node, time) pairs
	StrategyTopK Strategy = iota

	// seed budget split uniformly across time steps
	StrategyUniform

	// seed budget split in decreasing shares over time
	StrategyDecreasing

	// seed budget split at random across time steps
	StrategyRandom

	// one merged index, each seed assigned to its best time
	StrategyReuse
)

// Config carries the algorithm knobs. Zero values fall back to the defaults
// set by NewConfig().
type Config struct {
	Variant Variant

	K   int     // seed budget (or top-k for value accumulation)
	Eps float64 // approximation slack, in (0,1)
	Ell float64 // confidence exponent: failure probability 1/n^ell

	// fixed-sample: number of RR sets; 0 means the Borgs default
	Rounds int

	// adaptive algorithms never loop more than MaxRounds times
	MaxRounds int

	// geometric-martingale bound-fix selector (0 or 1)
	Mode int

	// time-indexed knobs
	Horizon    int
	Weights    greedy.WeightMode
	Strategy   Strategy
	Kp0        float64
	Kb0        float64
	M0         float64

	// value accumulation: rank by single-node influence instead of Shapley
	SingleNode bool

	// continuous budget knobs
	Budget   float64
	StepSize float64
	Delta    float64

	// execution policy for the sampling workers
	Policy sampler.Policy

	Log   *logger.Aggregate  // optional
	Store models.ResultStore // optional, written only on success
}

// NewConfig() returns a Config with the published defaults.
func NewConfig(variant Variant, k int) Config {
	return Config{
		Variant:   variant,
		K:         k,
		Eps:       0.1,
		Ell:       1.0,
		MaxRounds: 64,
		Horizon:   1,
		Weights:   greedy.WeightUniform,
		Strategy:  StrategyTopK,
		Kp0:       990,
		Kb0:       10,
		M0:        50,
		Budget:    1.0,
		StepSize:  0.1,
		Delta:     1.0,
		Policy:    sampler.DefaultPolicy(),
	}
}

// Timing records where a run spent its time.
type Timing struct {
	Sampling  time.Duration
	Selection time.Duration
	Samples   int
}

// Result is the outcome of one completed run.
type Result struct {
	// discrete seed sequence with cumulative spread per prefix
	Seeds []models.Seed

	// (node, time) seeds of the time-indexed variant
	TimedSeeds []models.TimedSeed

	// continuous budget allocation of the continuous variant
	Allocation greedy.Allocation

	// per-node values of the value-accumulation variant
	Influence models.InfluenceMap

	// final spread estimate
	Spread float64

	// non-fatal condition, e.g. the stopping bound was never met
	Warning error

	Timing Timing
}

// Orchestrator wires the sampling engine, the coverage index and the
// selection routines into one of the published procedures.
type Orchestrator struct {
	graph   models.Graph
	factory models.CascadeFactory
	config  Config

	population []uint32
	n          int
	m          int

	table   *rrset.Table
	sampler *sampler.Sampler
	index   *rrset.CoverageIndex

	samples   int
	sampling  time.Duration
	selection time.Duration
}

// New() validates the parameters and returns an Orchestrator. The table and
// index start empty and grow monotonically during the run.
func New(ctx context.Context, graph models.Graph, factory models.CascadeFactory, config Config) (*Orchestrator, error) {
	if graph == nil {
		return nil, models.ErrNilGraph
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, models.ErrNilCascade
	}

	n := graph.NodeCount(ctx)
	if config.K < 0 || config.K > n {
		return nil, models.ErrInvalidSeedSize
	}
	if config.Eps <= 0 || config.Eps >= 1 {
		return nil, models.ErrInvalidEpsilon
	}
	if config.Ell <= 0 {
		return nil, models.ErrInvalidEll
	}
	if config.Variant == TimeIndexed && config.Horizon <= 0 {
		return nil, models.ErrInvalidHorizon
	}
	if config.Variant == ContinuousBudget && config.Budget <= 0 {
		return nil, models.ErrInvalidBudget
	}
	if config.MaxRounds <= 0 {
		config.MaxRounds = 64
	}

	population, err := graph.AllNodes(ctx)
	if err != nil {
		return nil, err
	}

	table := rrset.NewTable()
	s, err := sampler.New(table, factory, population, config.Policy)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		graph:      graph,
		factory:    factory,
		config:     config,
		population: population,
		n:          n,
		m:          graph.EdgeCount(ctx),
		table:      table,
		sampler:    s,
	}, nil
}

// Run() executes the configured variant and returns its result.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	var result *Result
	var err error

	switch o.config.Variant {
	case Fixed:
		result, err = o.runFixed(ctx)
	case AdaptiveDoubling:
		result, err = o.runAdaptiveDoubling(ctx)
	case TwoPhase:
		result, err = o.runTwoPhase(ctx)
	case GeometricMartingale:
		result, err = o.runGeometric(ctx)
	case TimeIndexed:
		result, err = o.runTimeIndexed(ctx)
	case ValueAccumulation:
		result, err = o.runValueAccumulation(ctx)
	case ContinuousBudget:
		result, err = o.runContinuousBudget(ctx)
	default:
		return nil, ErrUnknownVariant
	}

	if err != nil {
		return nil, err
	}

	result.Timing = Timing{
		Sampling:  o.sampling,
		Selection: o.selection,
		Samples:   o.samples,
	}

	if result.Warning != nil {
		o.warnf("%s: %v", o.config.Variant, result.Warning)
	}

	if err := o.persist(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// sample appends batch RR sets to the table, timing the call.
func (o *Orchestrator) sample(ctx context.Context, batch int) (sampler.Stats, error) {
	start := time.Now()
	stats, err := o.sampler.AddRRSimulation(ctx, batch)
	o.sampling += time.Since(start)

	if err == nil {
		o.samples += batch
	}
	return stats, err
}

// rebuild discards the previous coverage index and rebuilds it wholesale
// from the current table.
func (o *Orchestrator) rebuild() error {
	index, err := rrset.BuildIndex(o.table)
	if err != nil {
		return err
	}

	o.index = index
	return nil
}

// selectSeeds runs one greedy pass of size k and packages the seeds with
// their cumulative spread estimates.
func (o *Orchestrator) selectSeeds(k int) ([]models.Seed, float64, error) {
	start := time.Now()
	defer func() { o.selection += time.Since(start) }()

	nodes, _, err := greedy.Select(o.table, o.index, k)
	if err != nil {
		return nil, 0, err
	}

	spreads, err := greedy.EstimateInfl(o.table, o.index, nodes, o.n)
	if err != nil {
		return nil, 0, err
	}

	seeds := make([]models.Seed, len(nodes))
	for i, nodeID := range nodes {
		seeds[i] = models.Seed{Node: nodeID, Spread: spreads[i]}
	}

	spread := 0.0
	if len(spreads) > 0 {
		spread = spreads[len(spreads)-1]
	}

	return seeds, spread, nil
}

// persist writes the result to the configured store, if any.
func (o *Orchestrator) persist(ctx context.Context, result *Result) error {
	if o.config.Store == nil {
		return nil
	}

	if err := o.config.Store.SetSeeds(ctx, o.config.Variant.String(), result.Seeds); err != nil {
		return fmt.Errorf("failed to persist seeds: %w", err)
	}

	if len(result.Influence) > 0 {
		if err := o.config.Store.SetInfluence(ctx, result.Influence); err != nil {
			return fmt.Errorf("failed to persist influence: %w", err)
		}
	}

	return nil
}

func (o *Orchestrator) warnf(s string, v ...interface{}) {
	if o.config.Log != nil {
		o.config.Log.Warn(s, v...)
	}
}

//---------------------------------ERROR-CODES---------------------------------

var ErrUnknownVariant = errors.New("unknown algorithm variant")
var ErrUnknownStrategy = errors.New("unknown seed selection strategy")
var ErrBoundNotMet = errors.New("the stopping bound was not met within the round cap")
