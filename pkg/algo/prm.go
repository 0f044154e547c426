package algo

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/seedlab-io/influmax/pkg/bounds"
	"github.com/seedlab-io/influmax/pkg/greedy"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
	"github.com/seedlab-io/influmax/pkg/sampler"
)

// stride between the seed bases of the per-time samplers, so their worker
// seeds never collide for any sane worker count.
const timeSeedStride = 1_000_003

// timeSlice bundles the sampling state of one discrete time step.
type timeSlice struct {
	table   *rrset.Table
	sampler *sampler.Sampler
	index   *rrset.CoverageIndex

	seeds  []uint32
	gains  []float64
	spread float64
}

/*
runTimeIndexed implements the time-indexed martingale algorithm (PRM-IMM):
the geometric-martingale procedure repeated over a horizon of discrete time
steps, with a private RR-set table and coverage index per step.

Seeds are (node, time) pairs. The configured strategy decides how the seed
budget is spent across time steps, and the configured weighting mode decides
how the per-time spread estimates combine into one value. The Mode flag
selects the same two bound fixes as the geometric-martingale variant.
*/
func (o *Orchestrator) runTimeIndexed(ctx context.Context) (*Result, error) {
	k, eps, horizon := o.config.K, o.config.Eps, o.config.Horizon

	ell := o.config.Ell
	if o.config.Mode == 0 {
		ell *= 1.0 + math.Ln2/math.Log(float64(o.n))
	}

	epsPrime := math.Sqrt2 * eps
	lambdaPrime, err := bounds.LambdaPrime(epsPrime, k, ell, o.n)
	if err != nil {
		return nil, err
	}

	lambdaStar, err := bounds.LambdaStar(eps, k, ell, o.n)
	if err != nil {
		return nil, err
	}

	seedBases := sliceSeedBases(o.config.Policy.SeedBase, horizon)

	slices := make([]*timeSlice, horizon)
	for t := range slices {

		policy := o.config.Policy
		policy.SeedBase = seedBases[t]

		table := rrset.NewTable()
		s, err := sampler.New(table, o.factory, o.population, policy)
		if err != nil {
			return nil, err
		}

		slices[t] = &timeSlice{table: table, sampler: s}
	}

	// lower-bound doubling on the first time step only; the per-time
	// diffusions share the model, so one estimate serves the whole horizon
	iterations := int(math.Ceil(math.Log2(float64(o.n)))) - 1
	if iterations < 1 {
		iterations = 1
	}
	if iterations > o.config.MaxRounds {
		iterations = o.config.MaxRounds
	}

	var warning error
	lowerBound := 1.0
	first := slices[0]

	satisfied := false
	for i := 1; i <= iterations; i++ {

		x := float64(o.n) / math.Pow(2, float64(i))
		required := int(math.Ceil(lambdaPrime / x))

		if err := o.sampleSlice(ctx, first, required); err != nil {
			return nil, err
		}

		nodes, _, err := greedy.Select(first.table, first.index, k)
		if err != nil {
			return nil, err
		}

		spreads, err := greedy.EstimateInfl(first.table, first.index, nodes, o.n)
		if err != nil {
			return nil, err
		}

		spread := 0.0
		if len(spreads) > 0 {
			spread = spreads[len(spreads)-1]
		}

		if spread >= (1.0+epsPrime)*x {
			lowerBound = spread / (1.0 + epsPrime)
			satisfied = true
			break
		}
	}

	if !satisfied {
		warning = ErrBoundNotMet
	}

	theta := int(math.Ceil(lambdaStar / lowerBound))
	if floor := int(o.config.M0); theta < floor {
		theta = floor
	}

	if o.config.Mode == 1 {
		first.table.Reset()
	}

	for _, slice := range slices {
		if err := o.sampleSlice(ctx, slice, theta); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	defer func() { o.selection += time.Since(start) }()

	var timedSeeds []models.TimedSeed
	switch o.config.Strategy {
	case StrategyTopK:
		timedSeeds, err = o.pickTopK(slices, k)
	case StrategyUniform:
		timedSeeds, err = o.pickSplit(slices, o.splitUniform(horizon, k))
	case StrategyDecreasing:
		timedSeeds, err = o.pickSplit(slices, o.splitDecreasing(horizon, k))
	case StrategyRandom:
		timedSeeds, err = o.pickSplit(slices, o.splitRandom(horizon, k))
	case StrategyReuse:
		timedSeeds, err = o.pickReuse(slices, k)
	default:
		return nil, ErrUnknownStrategy
	}

	if err != nil {
		return nil, err
	}

	spreadByTime := make([]float64, horizon)
	for t, slice := range slices {
		spreadByTime[t] = slice.spread
	}

	spread := greedy.CombineSpreads(o.config.Weights, spreadByTime)
	return &Result{TimedSeeds: timedSeeds, Spread: spread, Warning: warning}, nil
}

// sliceSeedBases resolves the seed base of each per-time sampler: one base
// (explicit, or a single wall-clock draw when zero) strided by time step, so
// adjacent steps never share worker seeds.
func sliceSeedBases(base int64, horizon int) []int64 {
	if base == 0 {
		base = time.Now().UnixNano()
	}

	bases := make([]int64, horizon)
	for t := range bases {
		bases[t] = base + int64(t)*timeSeedStride
	}
	return bases
}

// sampleSlice tops the slice's table up to the required size and rebuilds its
// coverage index.
func (o *Orchestrator) sampleSlice(ctx context.Context, slice *timeSlice, required int) error {
	if delta := required - slice.table.Size(); delta > 0 {

		start := time.Now()
		_, err := slice.sampler.AddRRSimulation(ctx, delta)
		o.sampling += time.Since(start)

		if err != nil {
			return err
		}
		o.samples += delta
	}

	index, err := rrset.BuildIndex(slice.table)
	if err != nil {
		return err
	}

	slice.index = index
	return nil
}

// selectSlice runs one greedy pass of size k on the slice, recording its seed
// sequence, gain sequence and unweighted spread estimate.
func (o *Orchestrator) selectSlice(slice *timeSlice, k int) error {
	nodes, gains, err := greedy.Select(slice.table, slice.index, k)
	if err != nil {
		return err
	}

	slice.seeds = nodes
	slice.gains = gains

	slice.spread = 0
	for _, gain := range gains {
		slice.spread += float64(o.n) * gain
	}

	return nil
}

/*
pickTopK implements the exact weighted top-k strategy: a joint greedy over all
(node, time) pairs. Covering an RR set in one time step never changes the
marginal degrees of another step, so the joint greedy reduces to merging the
per-time greedy gain sequences in weighted order.
*/
func (o *Orchestrator) pickTopK(slices []*timeSlice, k int) ([]models.TimedSeed, error) {
	for _, slice := range slices {
		if err := o.selectSlice(slice, k); err != nil {
			return nil, err
		}
	}

	next := make([]int, len(slices))
	timedSeeds := make([]models.TimedSeed, 0, k)
	cumulative := 0.0

	// per-time slices are reset and re-filled below once the picks are known
	for _, slice := range slices {
		slice.spread = 0
	}

	for len(timedSeeds) < k {

		// best remaining weighted marginal gain; ties break on the
		// earliest time step
		bestTime := -1
		bestGain := 0.0
		for t, slice := range slices {
			if next[t] >= len(slice.gains) {
				continue
			}

			gain := greedy.Weight(o.config.Weights, t) * float64(o.n) * slice.gains[next[t]]
			if gain > bestGain {
				bestGain = gain
				bestTime = t
			}
		}

		if bestTime < 0 {
			break
		}

		slice := slices[bestTime]
		node := slice.seeds[next[bestTime]]
		next[bestTime]++

		slice.spread += float64(o.n) * slice.gains[next[bestTime]-1]
		cumulative += bestGain

		timedSeeds = append(timedSeeds, models.TimedSeed{
			Node:   node,
			Time:   bestTime,
			Spread: cumulative,
		})
	}

	return timedSeeds, nil
}

// pickSplit spends counts[t] seeds on time step t via independent per-time
// greedy passes, enumerating the seeds in time order.
func (o *Orchestrator) pickSplit(slices []*timeSlice, counts []int) ([]models.TimedSeed, error) {
	timedSeeds := make([]models.TimedSeed, 0)
	cumulative := 0.0

	for t, slice := range slices {
		if err := o.selectSlice(slice, counts[t]); err != nil {
			return nil, err
		}

		weight := greedy.Weight(o.config.Weights, t)
		for i, node := range slice.seeds {
			cumulative += weight * float64(o.n) * slice.gains[i]
			timedSeeds = append(timedSeeds, models.TimedSeed{
				Node:   node,
				Time:   t,
				Spread: cumulative,
			})
		}
	}

	return timedSeeds, nil
}

// splitUniform spreads the seed budget evenly over the horizon, earlier steps
// absorbing the remainder.
func (o *Orchestrator) splitUniform(horizon, k int) []int {
	counts := make([]int, horizon)
	for t := range counts {
		counts[t] = k / horizon
		if t < k%horizon {
			counts[t]++
		}
	}
	return counts
}

/*
splitDecreasing front-loads the seed budget: the first time step takes the
kp0/(kp0+kb0) share, and the rest is split over the later steps in decreasing
proportion. With the default 990/10 split the opening step dominates.
*/
func (o *Orchestrator) splitDecreasing(horizon, k int) []int {
	counts := make([]int, horizon)
	if horizon == 1 {
		counts[0] = k
		return counts
	}

	counts[0] = int(math.Round(float64(k) * o.config.Kp0 / (o.config.Kp0 + o.config.Kb0)))
	remaining := k - counts[0]

	// later steps share the remainder proportionally to (horizon - t)
	total := 0
	for t := 1; t < horizon; t++ {
		total += horizon - t
	}

	assigned := 0
	for t := 1; t < horizon; t++ {
		counts[t] = remaining * (horizon - t) / total
		assigned += counts[t]
	}

	// leftover from integer division goes to the earliest later steps
	for t := 1; assigned < remaining; t++ {
		counts[t]++
		assigned++
	}

	return counts
}

// splitRandom assigns each seed a uniformly random time step.
func (o *Orchestrator) splitRandom(horizon, k int) []int {
	seed := o.config.Policy.SeedBase
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	counts := make([]int, horizon)
	for i := 0; i < k; i++ {
		counts[rng.Intn(horizon)]++
	}

	return counts
}

/*
pickReuse implements the index-reuse strategy: all per-time tables are merged
into one, a single greedy pass picks k nodes, and each node is then assigned
the time step where its weighted coverage degree is highest.
*/
func (o *Orchestrator) pickReuse(slices []*timeSlice, k int) ([]models.TimedSeed, error) {
	merged := rrset.NewTable()
	for _, slice := range slices {
		if err := merged.AppendBatch(slice.table.Sets, slice.table.Targets); err != nil {
			return nil, err
		}
	}

	index, err := rrset.BuildIndex(merged)
	if err != nil {
		return nil, err
	}

	nodes, _, err := greedy.Select(merged, index, k)
	if err != nil {
		return nil, err
	}

	spreads, err := greedy.EstimateInfl(merged, index, nodes, o.n)
	if err != nil {
		return nil, err
	}

	timedSeeds := make([]models.TimedSeed, len(nodes))
	for i, node := range nodes {

		bestTime := 0
		bestScore := -1.0
		for t, slice := range slices {
			score := greedy.Weight(o.config.Weights, t) * float64(slice.index.Degree(node))
			if score > bestScore {
				bestScore = score
				bestTime = t
			}
		}

		timedSeeds[i] = models.TimedSeed{Node: node, Time: bestTime, Spread: spreads[i]}
	}

	// per-time spreads of the chosen node set, for the combined estimate
	for _, slice := range slices {
		perTime, err := greedy.EstimateInfl(slice.table, slice.index, nodes, o.n)
		if err != nil {
			return nil, err
		}

		slice.spread = 0
		if len(perTime) > 0 {
			slice.spread = perTime[len(perTime)-1]
		}
	}

	return timedSeeds, nil
}
