package algo

import (
	"context"
	"math"
	"time"

	"github.com/seedlab-io/influmax/pkg/bounds"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/shapley"
)

/*
runValueAccumulation implements the sampling-phase value accumulation
algorithms (ASV-RR and SNI): every generated RR set credits its members and
is discarded, so no table survives the run.

The sample count is the martingale bound for k=1 evaluated at the trivial
lower bound, capped by Rounds when set. With SingleNode, per-hit credit is 1
(single-node influence); otherwise it is 1/|R| (Shapley value).
*/
func (o *Orchestrator) runValueAccumulation(ctx context.Context) (*Result, error) {
	mode := shapley.CreditShapley
	if o.config.SingleNode {
		mode = shapley.CreditSingleNode
	}

	engine, err := shapley.NewEngine(o.factory, o.population, o.config.Policy, mode)
	if err != nil {
		return nil, err
	}

	rounds := o.config.Rounds
	if rounds <= 0 {
		lambdaStar, err := bounds.LambdaStar(o.config.Eps, 1, o.config.Ell, o.n)
		if err != nil {
			return nil, err
		}
		rounds = int(math.Ceil(lambdaStar))
	}

	start := time.Now()
	if _, err := engine.AddRRSimulation(ctx, rounds); err != nil {
		return nil, err
	}
	o.sampling += time.Since(start)
	o.samples += rounds

	start = time.Now()
	defer func() { o.selection += time.Since(start) }()

	seeds, err := engine.TopK(o.config.K, o.n)
	if err != nil {
		return nil, err
	}

	spread := 0.0
	for _, seed := range seeds {
		spread += seed.Spread
	}

	// cumulative prefixes, consistent with the greedy variants
	cumulative := 0.0
	prefixed := make([]models.Seed, len(seeds))
	for i, seed := range seeds {
		cumulative += seed.Spread
		prefixed[i] = models.Seed{Node: seed.Node, Spread: cumulative}
	}

	return &Result{
		Seeds:     prefixed,
		Influence: engine.Influence(o.n),
		Spread:    spread,
	}, nil
}
