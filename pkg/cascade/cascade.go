/*
The cascade package implements the diffusion oracles. Each oracle exposes one
operation, ReverseSample(), that performs a single stochastic draw of the
diffusion process backwards from a target node, returning the set of nodes
whose activation could have caused the target to activate.

Oracles are NOT safe for concurrent use: each sampling worker must own a
private instance, built via the Factory functions.

# REFERENCES

[1] D. Kempe, J. Kleinberg, E. Tardos; "Maximizing the spread of influence
through a social network"; KDD 2003.
*/
package cascade

import (
	"context"
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/seedlab-io/influmax/pkg/models"
)

// IndependentCascade draws reverse-reachable sets under the independent
// cascade model. With prob <= 0, the edge (u --> v) is live with probability
// 1/indegree(v) (the weighted cascade of [1]); otherwise every edge is live
// with the fixed probability prob.
type IndependentCascade struct {
	ctx   context.Context
	graph models.Graph
	prob  float64
	rng   *rand.Rand
}

// NewIndependentCascade() returns a weighted-cascade oracle over the graph.
func NewIndependentCascade(ctx context.Context, graph models.Graph, rng *rand.Rand) *IndependentCascade {
	return &IndependentCascade{
		ctx:   ctx,
		graph: graph,
		prob:  0,
		rng:   rng,
	}
}

// NewUniformCascade() returns an oracle where every edge is live with the
// same fixed probability.
func NewUniformCascade(ctx context.Context, graph models.Graph, prob float64, rng *rand.Rand) *IndependentCascade {
	return &IndependentCascade{
		ctx:   ctx,
		graph: graph,
		prob:  prob,
		rng:   rng,
	}
}

// Factory() returns a models.CascadeFactory producing private weighted-cascade
// oracles, one per sampling worker.
func Factory(ctx context.Context, graph models.Graph) models.CascadeFactory {
	return func(seed int64) models.Cascade {
		return NewIndependentCascade(ctx, graph, rand.New(rand.NewSource(seed)))
	}
}

// UniformFactory() is like Factory() with a fixed edge probability.
func UniformFactory(ctx context.Context, graph models.Graph, prob float64) models.CascadeFactory {
	return func(seed int64) models.Cascade {
		return NewUniformCascade(ctx, graph, prob, rand.New(rand.NewSource(seed)))
	}
}

/*
ReverseSample() performs one backward-reachability draw from target.

It runs a breadth-first traversal over the predecessors of the frontier,
keeping each incoming edge alive with the model's probability. A node enters
the RR set the first time it's reached over a live edge. The returned count
is the number of edges examined during the draw.
*/
func (c *IndependentCascade) ReverseSample(target uint32) (models.RRSet, int, error) {
	if c == nil || c.graph == nil {
		return nil, 0, models.ErrNilCascade
	}

	if !c.graph.ContainsNode(c.ctx, target) {
		return nil, 0, models.ErrNodeNotFound
	}

	visited := mapset.NewSet[uint32](target)
	set := models.RRSet{target}
	queue := []uint32{target}
	edgesVisited := 0

	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]

		predecessors, err := c.graph.Predecessors(c.ctx, nodeID)
		if err != nil {
			return nil, edgesVisited, err
		}

		if len(predecessors) == 0 {
			continue
		}

		liveProb := c.prob
		if liveProb <= 0 {
			liveProb = 1.0 / float64(len(predecessors))
		}

		for _, pred := range predecessors {
			edgesVisited++

			if c.rng.Float64() > liveProb {
				continue
			}

			if visited.Contains(pred) {
				continue
			}

			visited.Add(pred)
			set = append(set, pred)
			queue = append(queue, pred)
		}
	}

	return set, edgesVisited, nil
}

// Deterministic is a cascade where every edge is always live, so the RR set
// of a target is exactly the set of nodes that can reach it. It's mainly
// useful in tests, where sampling noise has to be ruled out.
type Deterministic struct {
	ctx   context.Context
	graph models.Graph
}

// NewDeterministic() returns a full-activation oracle over the graph.
func NewDeterministic(ctx context.Context, graph models.Graph) *Deterministic {
	return &Deterministic{ctx: ctx, graph: graph}
}

// DeterministicFactory() returns a models.CascadeFactory producing
// full-activation oracles. The seed is ignored.
func DeterministicFactory(ctx context.Context, graph models.Graph) models.CascadeFactory {
	return func(seed int64) models.Cascade {
		_ = seed
		return NewDeterministic(ctx, graph)
	}
}

// ReverseSample() returns all the nodes that can reach target.
func (c *Deterministic) ReverseSample(target uint32) (models.RRSet, int, error) {
	if c == nil || c.graph == nil {
		return nil, 0, models.ErrNilCascade
	}

	if !c.graph.ContainsNode(c.ctx, target) {
		return nil, 0, models.ErrNodeNotFound
	}

	visited := mapset.NewSet[uint32](target)
	set := models.RRSet{target}
	queue := []uint32{target}
	edgesVisited := 0

	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]

		predecessors, err := c.graph.Predecessors(c.ctx, nodeID)
		if err != nil {
			return nil, edgesVisited, err
		}

		for _, pred := range predecessors {
			edgesVisited++

			if visited.Contains(pred) {
				continue
			}

			visited.Add(pred)
			set = append(set, pred)
			queue = append(queue, pred)
		}
	}

	return set, edgesVisited, nil
}
