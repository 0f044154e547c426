/*
The sampler package implements the RR-set sampling engine. Generation is
embarrassingly parallel: each worker owns a private cascade oracle (built
from the factory with a distinct seed) and accumulates RR sets into a private
buffer; the buffers are concatenated into the shared table only after all
workers have joined. The table is therefore never mutated concurrently.

Running with more than one worker forfeits the bit-exact reproducibility of
the RR-set sequence, but preserves the statistical guarantees.
*/
package sampler

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
	"golang.org/x/sync/errgroup"
)

// Policy is the injected execution policy: how many workers to run and the
// base of the per-worker randomness sources. A SeedBase of 0 means seeding
// from the wall clock.
type Policy struct {
	Workers  int
	SeedBase int64
}

// DefaultPolicy() returns a sequential, wall-clock seeded policy.
func DefaultPolicy() Policy {
	return Policy{Workers: 1, SeedBase: 0}
}

// Stats records the work done by one sampling call. The bound formulas and
// the time-weighting consume these totals.
type Stats struct {
	EdgesVisited int64
	NodesVisited int64
}

// Sampler appends RR sets to a table by invoking private cascade oracles.
type Sampler struct {
	table      *rrset.Table
	factory    models.CascadeFactory
	population []uint32
	policy     Policy

	nextSeed int64
}

// New() creates a Sampler over the table. The population is the slice of
// eligible target nodes; targets are drawn uniformly from it.
func New(table *rrset.Table, factory models.CascadeFactory, population []uint32, policy Policy) (*Sampler, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, models.ErrNilCascade
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	if policy.Workers <= 0 {
		policy.Workers = 1
	}

	seedBase := policy.SeedBase
	if seedBase == 0 {
		seedBase = time.Now().UnixNano()
	}

	return &Sampler{
		table:      table,
		factory:    factory,
		population: population,
		policy:     policy,
		nextSeed:   seedBase,
	}, nil
}

// Table() returns the underlying RR-set table.
func (s *Sampler) Table() *rrset.Table {
	return s.table
}

// Population() returns the number of eligible target nodes.
func (s *Sampler) Population() int {
	return len(s.population)
}

/*
AddRRSimulation() appends numIter new RR sets and their targets to the table,
returning the total edges and nodes visited while generating them.

Each RR set is produced by choosing a target uniformly from the eligible
population and invoking the oracle's ReverseSample(). Degenerate draws are
appended like any other.
*/
func (s *Sampler) AddRRSimulation(ctx context.Context, numIter int) (Stats, error) {
	if numIter < 0 {
		return Stats{}, ErrInvalidIterations
	}
	if numIter == 0 {
		return Stats{}, nil
	}

	return s.run(ctx, numIter, nil)
}

// AddRRSimulationFor() appends one RR set per externally supplied target.
func (s *Sampler) AddRRSimulationFor(ctx context.Context, targets []uint32) (Stats, error) {
	if len(targets) == 0 {
		return Stats{}, nil
	}

	return s.run(ctx, len(targets), targets)
}

// run generates numIter RR sets across the configured workers. If targets is
// non-nil, it supplies the target of each iteration; otherwise targets are
// drawn uniformly from the population.
func (s *Sampler) run(ctx context.Context, numIter int, targets []uint32) (Stats, error) {
	workers := s.policy.Workers
	if workers > numIter {
		workers = numIter
	}

	edgeCounter := xsync.NewCounter()
	nodeCounter := xsync.NewCounter()

	// per-worker buffers, merged after the barrier
	setBuffers := make([][]models.RRSet, workers)
	targetBuffers := make([][]uint32, workers)

	var group errgroup.Group
	for w := 0; w < workers; w++ {

		workerID := w
		iterations := numIter / workers
		if workerID < numIter%workers {
			iterations++
		}

		seed := s.nextSeed + int64(workerID)
		oracle := s.factory(seed)
		rng := rand.New(rand.NewSource(seed + 1))

		group.Go(func() error {
			sets := make([]models.RRSet, 0, iterations)
			tgts := make([]uint32, 0, iterations)

			for i := 0; i < iterations; i++ {

				var target uint32
				if targets != nil {
					target = targets[workerID+i*workers]
				} else {
					target = s.population[rng.Intn(len(s.population))]
				}

				set, edgesVisited, err := oracle.ReverseSample(target)
				if err != nil {
					return err
				}

				edgeCounter.Add(int64(edgesVisited))
				nodeCounter.Add(int64(len(set)))

				sets = append(sets, set)
				tgts = append(tgts, target)
			}

			setBuffers[workerID] = sets
			targetBuffers[workerID] = tgts
			return nil
		})
	}

	// the synchronization barrier: no table mutation before this point
	if err := group.Wait(); err != nil {
		return Stats{}, err
	}

	s.nextSeed += int64(workers)

	for w := 0; w < workers; w++ {
		if err := s.table.AppendBatch(setBuffers[w], targetBuffers[w]); err != nil {
			return Stats{}, err
		}
	}

	_ = ctx
	return Stats{
		EdgesVisited: edgeCounter.Value(),
		NodesVisited: nodeCounter.Value(),
	}, nil
}

//---------------------------------ERROR-CODES---------------------------------

var ErrEmptyPopulation = errors.New("the population of eligible targets is empty")
var ErrInvalidIterations = errors.New("the number of iterations should be non-negative")
