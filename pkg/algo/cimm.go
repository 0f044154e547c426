package algo

import (
	"context"
	"math"
	"time"

	"github.com/seedlab-io/influmax/pkg/bounds"
	"github.com/seedlab-io/influmax/pkg/greedy"
)

/*
runContinuousBudget implements the continuous-budget martingale algorithm
(CIMM): the geometric-martingale sampling schedule followed by a stepwise
water-filling allocation of the activation budget instead of a discrete
greedy pass.

The doubling stopping test still uses the discrete greedy spread with k set
to ceil(Budget), since a discrete seed set of that size lower-bounds the best
continuous allocation of the same budget under the concave activation.
*/
func (o *Orchestrator) runContinuousBudget(ctx context.Context) (*Result, error) {
	eps := o.config.Eps
	k := int(math.Ceil(o.config.Budget))
	if k > o.n {
		k = o.n
	}

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

	iterations := int(math.Ceil(math.Log2(float64(o.n)))) - 1
	if iterations < 1 {
		iterations = 1
	}
	if iterations > o.config.MaxRounds {
		iterations = o.config.MaxRounds
	}

	var warning error
	lowerBound := 1.0

	satisfied := false
	for i := 1; i <= iterations; i++ {

		x := float64(o.n) / math.Pow(2, float64(i))
		required := int(math.Ceil(lambdaPrime / x))

		if delta := required - o.table.Size(); delta > 0 {
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

	if o.config.Mode == 1 {
		o.table.Reset()
	}

	if delta := theta - o.table.Size(); delta > 0 {
		if _, err := o.sample(ctx, delta); err != nil {
			return nil, err
		}
	}

	if err := o.rebuild(); err != nil {
		return nil, err
	}

	start := time.Now()
	allocation, spread, err := greedy.AllocateBudget(o.table, o.index,
		o.config.Budget, o.config.StepSize, o.config.Delta, o.n)
	o.selection += time.Since(start)

	if err != nil {
		return nil, err
	}

	return &Result{Allocation: allocation, Spread: spread, Warning: warning}, nil
}
