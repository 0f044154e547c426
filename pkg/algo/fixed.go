package algo

import (
	"context"

	"github.com/seedlab-io/influmax/pkg/bounds"
)

/*
runFixed implements the baseline algorithm: one sampling call of a
caller-specified size, one greedy pass. With Rounds == 0, the sample count
falls back to the Borgs default for (n, m, eps).
*/
func (o *Orchestrator) runFixed(ctx context.Context) (*Result, error) {
	rounds := o.config.Rounds
	if rounds <= 0 {
		defaultRounds, err := bounds.DefaultRounds(o.n, o.m, o.config.Eps)
		if err != nil {
			return nil, err
		}
		rounds = int(defaultRounds)
	}

	if _, err := o.sample(ctx, rounds); err != nil {
		return nil, err
	}

	if err := o.rebuild(); err != nil {
		return nil, err
	}

	seeds, spread, err := o.selectSeeds(o.config.K)
	if err != nil {
		return nil, err
	}

	return &Result{Seeds: seeds, Spread: spread}, nil
}

/*
runAdaptiveDoubling implements the error-bounded entry of the baseline
algorithm: exponentially growing sample batches, stopping once the total
traversal work reaches the Borgs threshold for (n, m, eps) or the round cap
is hit. The sample count never shrinks.
*/
func (o *Orchestrator) runAdaptiveDoubling(ctx context.Context) (*Result, error) {
	threshold, err := bounds.DefaultRounds(o.n, o.m, o.config.Eps)
	if err != nil {
		return nil, err
	}

	var warning error
	var workDone float64
	batch := o.n

	satisfied := false
	for round := 0; round < o.config.MaxRounds; round++ {

		stats, err := o.sample(ctx, batch)
		if err != nil {
			return nil, err
		}

		// exhausted sampling: every draw came back empty, more rounds
		// can't help and the result degenerates to zero spread
		if stats.EdgesVisited == 0 && stats.NodesVisited == 0 {
			break
		}

		workDone += float64(stats.EdgesVisited + stats.NodesVisited)
		if workDone >= threshold {
			satisfied = true
			break
		}

		batch *= 2
	}

	if !satisfied {
		warning = ErrBoundNotMet
	}

	if err := o.rebuild(); err != nil {
		return nil, err
	}

	seeds, spread, err := o.selectSeeds(o.config.K)
	if err != nil {
		return nil, err
	}

	return &Result{Seeds: seeds, Spread: spread, Warning: warning}, nil
}
