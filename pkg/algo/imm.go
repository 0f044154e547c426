package algo

import (
	"context"
	"math"

	"github.com/seedlab-io/influmax/pkg/bounds"
)

/*
runGeometric implements the martingale algorithm (IMM), with the two published
fixes for the union-bound flaw of the original paper, selected by Mode:

  - Mode 0 inflates the confidence exponent to ell*(1 + ln2/ln n) so the
    doubling phase and the final phase each hold with probability 1 - 1/(2n^ell).
  - Mode 1 keeps ell as given but discards every RR set generated during the
    doubling phase and resamples the final theta from scratch, restoring
    independence between the lower-bound estimate and the final selection.
*/
func (o *Orchestrator) runGeometric(ctx context.Context) (*Result, error) {
	k, eps := o.config.K, o.config.Eps

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
		// independence fix: the lower-bound samples are biased towards the
		// seed set that produced them, so the final theta is drawn fresh
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

	seeds, spread, err := o.selectSeeds(k)
	if err != nil {
		return nil, err
	}

	return &Result{Seeds: seeds, Spread: spread, Warning: warning}, nil
}
