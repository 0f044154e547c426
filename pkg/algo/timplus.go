package algo

import (
	"context"
	"math"

	"github.com/seedlab-io/influmax/pkg/bounds"
)

/*
runTwoPhase implements the two-phase algorithm (TimPlus).

Phase 1 derives a cheap lower bound on the optimal spread: for decreasing
candidate bounds lb = n/2^i, it samples up to StepThreshold(n, lb, ell) RR
sets and accepts once the greedy spread estimate clears (1+eps')*lb.

Phase 2 computes the exact required sample count RThreshold(eps, lb, k, ell),
samples the remaining delta, and runs one final greedy pass.
*/
func (o *Orchestrator) runTwoPhase(ctx context.Context) (*Result, error) {
	k, eps, ell := o.config.K, o.config.Eps, o.config.Ell

	epsPrime, err := bounds.EpsPrime(eps, k, ell)
	if err != nil {
		return nil, err
	}

	var warning error
	optLB := 1.0

	phases := int(math.Ceil(math.Log2(float64(o.n))))
	if phases < 1 {
		phases = 1
	}
	if phases > o.config.MaxRounds {
		phases = o.config.MaxRounds
	}

	satisfied := false
	for i := 1; i <= phases; i++ {

		lb := float64(o.n) / math.Pow(2, float64(i))
		if lb < 1 {
			lb = 1
		}

		required, err := bounds.StepThreshold(o.n, lb, ell)
		if err != nil {
			return nil, err
		}

		if delta := int(required) - o.table.Size(); delta > 0 {
			if _, err := o.sample(ctx, delta); err != nil {
				return nil, err
			}
		}

		if err := o.rebuild(); err != nil {
			return nil, err
		}

		_, spread, err := o.selectSeeds(k)
		if err != nil {
			return nil, err
		}

		if spread >= (1.0+epsPrime)*lb {
			optLB = spread / (1.0 + epsPrime)
			satisfied = true
			break
		}
	}

	if !satisfied {
		warning = ErrBoundNotMet
	}

	required, err := bounds.RThreshold(eps, optLB, k, ell, o.n)
	if err != nil {
		return nil, err
	}

	if delta := int(required) - o.table.Size(); delta > 0 {
		if _, err := o.sample(ctx, delta); err != nil {
			return nil, err
		}
	}

	if err := o.rebuild(); err != nil {
		return nil, err
	}

	seeds, spread, err := o.selectSeeds(k)
	if err != nil {
		return nil, err
	}

	return &Result{Seeds: seeds, Spread: spread, Warning: warning}, nil
}
