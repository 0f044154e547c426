package shapley

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/seedlab-io/influmax/pkg/cascade"
	"github.com/seedlab-io/influmax/pkg/graph/memgraph"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/sampler"
)

func TestAccumulatorConsume(t *testing.T) {
	t.Run("shapley credit is inverse to set size", func(t *testing.T) {
		A := NewAccumulator()

		A.Consume(models.RRSet{1, 2}, CreditShapley)
		A.Consume(models.RRSet{1}, CreditShapley)
		A.Consume(models.RRSet{}, CreditShapley)

		if A.Rounds != 3 {
			t.Errorf("Consume(): expected 3 rounds, got %d", A.Rounds)
		}

		if math.Abs(A.Values[1]-1.5) > 1e-12 {
			t.Errorf("Consume(): expected value 1.5 for node 1, got %f", A.Values[1])
		}

		if math.Abs(A.Values[2]-0.5) > 1e-12 {
			t.Errorf("Consume(): expected value 0.5 for node 2, got %f", A.Values[2])
		}

		if A.Hits[1] != 2 || A.Hits[2] != 1 {
			t.Errorf("Consume(): unexpected hit counts %v", A.Hits)
		}
	})

	t.Run("single-node credit is one per hit", func(t *testing.T) {
		A := NewAccumulator()

		A.Consume(models.RRSet{1, 2, 3}, CreditSingleNode)
		A.Consume(models.RRSet{1}, CreditSingleNode)

		if math.Abs(A.Values[1]-2.0) > 1e-12 {
			t.Errorf("Consume(): expected value 2 for node 1, got %f", A.Values[1])
		}
	})
}

func TestEngine(t *testing.T) {
	ctx := context.Background()
	g := memgraph.SetupGraph("chain5")
	population := []uint32{1, 2, 3, 4, 5}

	t.Run("scratch table is drained", func(t *testing.T) {
		e, err := NewEngine(cascade.DeterministicFactory(ctx, g), population,
			sampler.Policy{Workers: 2, SeedBase: 69}, CreditShapley)
		if err != nil {
			t.Fatalf("NewEngine(): expected nil, got %v", err)
		}

		if _, err := e.AddRRSimulation(ctx, 100); err != nil {
			t.Fatalf("AddRRSimulation(): expected nil, got %v", err)
		}

		if e.Rounds() != 100 {
			t.Errorf("Rounds(): expected 100, got %d", e.Rounds())
		}

		if e.scratch.Size() != 0 {
			t.Errorf("AddRRSimulation(): expected drained scratch table, got size %d", e.scratch.Size())
		}
	})

	t.Run("single node influence on the chain", func(t *testing.T) {
		e, err := NewEngine(cascade.DeterministicFactory(ctx, g), population,
			sampler.Policy{Workers: 1, SeedBase: 69}, CreditSingleNode)
		if err != nil {
			t.Fatalf("NewEngine(): expected nil, got %v", err)
		}

		if _, err := e.AddRRSimulation(ctx, 2000); err != nil {
			t.Fatalf("AddRRSimulation(): expected nil, got %v", err)
		}

		// node 1 reaches every target, so it's hit by every RR set:
		// its estimated influence is the whole population
		influence := e.Influence(5)
		if math.Abs(influence[1]-5.0) > 1e-9 {
			t.Errorf("Influence(): expected 5 for node 1, got %f", influence[1])
		}

		// node 5 only reaches itself; each target is uniform, so its
		// estimate concentrates around 1
		if influence[5] < 0.5 || influence[5] > 1.5 {
			t.Errorf("Influence(): expected ~1 for node 5, got %f", influence[5])
		}
	})

	t.Run("top-k ordering", func(t *testing.T) {
		e, err := NewEngine(cascade.DeterministicFactory(ctx, g), population,
			sampler.Policy{Workers: 1, SeedBase: 69}, CreditSingleNode)
		if err != nil {
			t.Fatalf("NewEngine(): expected nil, got %v", err)
		}

		if _, err := e.AddRRSimulation(ctx, 2000); err != nil {
			t.Fatalf("AddRRSimulation(): expected nil, got %v", err)
		}

		if _, err := e.TopK(-1, 5); !errors.Is(err, models.ErrInvalidSeedSize) {
			t.Errorf("TopK(): expected %v, got %v", models.ErrInvalidSeedSize, err)
		}

		seeds, err := e.TopK(3, 5)
		if err != nil {
			t.Fatalf("TopK(): expected nil, got %v", err)
		}

		if len(seeds) != 3 {
			t.Fatalf("TopK(): expected 3 seeds, got %d", len(seeds))
		}

		// on the chain, upstream nodes dominate: 1, then 2, then 3
		if seeds[0].Node != 1 || seeds[1].Node != 2 || seeds[2].Node != 3 {
			t.Errorf("TopK(): expected [1 2 3], got %v", seeds)
		}

		for i := 1; i < len(seeds); i++ {
			if seeds[i].Spread > seeds[i-1].Spread {
				t.Errorf("TopK(): values are not descending: %v", seeds)
			}
		}
	})

	t.Run("no samples yields empty influence", func(t *testing.T) {
		e, _ := NewEngine(cascade.DeterministicFactory(ctx, g), population,
			sampler.DefaultPolicy(), CreditShapley)

		if influence := e.Influence(5); len(influence) != 0 {
			t.Errorf("Influence(): expected empty map, got %v", influence)
		}
	})
}
