// The memgraph package implements the models.Graph interface in memory,
// decoupling tests and the CLI from any particular graph backend.
package memgraph

import (
	"context"
	"math/rand"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/seedlab-io/influmax/pkg/models"
)

type NodeSet mapset.Set[uint32]

// Graph is a simple in-memory directed graph.
type Graph struct {

	// maps that associate each nodeID with the set of its successors/predecessors
	Succ map[uint32]NodeSet
	Pred map[uint32]NodeSet
}

// NewGraph() creates and returns a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		Succ: make(map[uint32]NodeSet),
		Pred: make(map[uint32]NodeSet),
	}
}

// Validate() returns an error if the graph is nil or has no nodes.
func (g *Graph) Validate() error {
	if g == nil {
		return models.ErrNilGraph
	}
	if len(g.Succ) == 0 {
		return models.ErrEmptyGraph
	}
	return nil
}

// AddNode() adds nodeID to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(nodeID uint32) {
	if _, exists := g.Succ[nodeID]; exists {
		return
	}

	g.Succ[nodeID] = mapset.NewSet[uint32]()
	g.Pred[nodeID] = mapset.NewSet[uint32]()
}

// AddEdge() adds the directed edge (from --> to), adding the endpoints if missing.
func (g *Graph) AddEdge(from, to uint32) {
	g.AddNode(from)
	g.AddNode(to)

	g.Succ[from].Add(to)
	g.Pred[to].Add(from)
}

// NodeCount() returns the number of nodes in the graph (ignores errors).
func (g *Graph) NodeCount(ctx context.Context) int {
	_ = ctx
	if g == nil {
		return 0
	}
	return len(g.Succ)
}

// EdgeCount() returns the number of edges in the graph (ignores errors).
func (g *Graph) EdgeCount(ctx context.Context) int {
	_ = ctx
	if g == nil {
		return 0
	}

	edges := 0
	for _, succ := range g.Succ {
		edges += succ.Cardinality()
	}
	return edges
}

// ContainsNode() returns whether nodeID is found in the graph.
func (g *Graph) ContainsNode(ctx context.Context, nodeID uint32) bool {
	_ = ctx
	if err := g.Validate(); err != nil {
		return false
	}

	_, exists := g.Succ[nodeID]
	return exists
}

// AllNodes() returns a slice with the IDs of all the nodes, sorted for
// deterministic iteration.
func (g *Graph) AllNodes(ctx context.Context) ([]uint32, error) {
	_ = ctx
	if err := g.Validate(); err != nil {
		return nil, err
	}

	nodeIDs := make([]uint32, 0, len(g.Succ))
	for nodeID := range g.Succ {
		nodeIDs = append(nodeIDs, nodeID)
	}

	slices.Sort(nodeIDs)
	return nodeIDs, nil
}

// Successors() returns the sorted slice of direct successors of nodeID.
// ToSlice() follows map iteration order, so seeded consumers need the sort.
func (g *Graph) Successors(ctx context.Context, nodeID uint32) ([]uint32, error) {
	_ = ctx
	if err := g.Validate(); err != nil {
		return nil, err
	}

	succ, exists := g.Succ[nodeID]
	if !exists {
		return nil, models.ErrNodeNotFound
	}

	successors := succ.ToSlice()
	slices.Sort(successors)
	return successors, nil
}

// Predecessors() returns the sorted slice of direct predecessors of nodeID.
// ToSlice() follows map iteration order, so seeded consumers need the sort.
func (g *Graph) Predecessors(ctx context.Context, nodeID uint32) ([]uint32, error) {
	_ = ctx
	if err := g.Validate(); err != nil {
		return nil, err
	}

	pred, exists := g.Pred[nodeID]
	if !exists {
		return nil, models.ErrNodeNotFound
	}

	predecessors := pred.ToSlice()
	slices.Sort(predecessors)
	return predecessors, nil
}

// InDegree() returns the number of predecessors of nodeID (ignores errors).
func (g *Graph) InDegree(ctx context.Context, nodeID uint32) int {
	_ = ctx
	if g == nil {
		return 0
	}

	pred, exists := g.Pred[nodeID]
	if !exists {
		return 0
	}
	return pred.Cardinality()
}

// ------------------------------------HELPERS----------------------------------

// SetupGraph() returns a graph fixture based on the graphType.
func SetupGraph(graphType string) *Graph {
	switch graphType {

	case "nil":
		return nil

	case "empty":
		return NewGraph()

	case "one-node":
		g := NewGraph()
		g.AddNode(0)
		return g

	case "dandlings":
		// five nodes, no edges
		g := NewGraph()
		for nodeID := uint32(0); nodeID < 5; nodeID++ {
			g.AddNode(nodeID)
		}
		return g

	case "triangle":
		// 0 --> 1 --> 2 --> 0
		g := NewGraph()
		g.AddEdge(0, 1)
		g.AddEdge(1, 2)
		g.AddEdge(2, 0)
		return g

	case "chain5":
		// 1 --> 2 --> 3 --> 4 --> 5
		g := NewGraph()
		g.AddEdge(1, 2)
		g.AddEdge(2, 3)
		g.AddEdge(3, 4)
		g.AddEdge(4, 5)
		return g

	case "star":
		// 0 points to 1,2,3,4
		g := NewGraph()
		g.AddEdge(0, 1)
		g.AddEdge(0, 2)
		g.AddEdge(0, 3)
		g.AddEdge(0, 4)
		return g

	default:
		return nil // default to nil
	}
}

// GenerateGraph() returns a random graph with a specified number of nodes and
// successors per node. The successors of a node won't include itself and
// won't have repetitions.
func GenerateGraph(nodesNum, successorsPerNode int, rng *rand.Rand) *Graph {
	if successorsPerNode >= nodesNum {
		return nil
	}

	g := NewGraph()
	for i := 0; i < nodesNum; i++ {
		g.AddNode(uint32(i))
	}

	for i := 0; i < nodesNum; i++ {
		for g.Succ[uint32(i)].Cardinality() != successorsPerNode {

			succ := uint32(rng.Intn(nodesNum))
			if succ == uint32(i) {
				continue
			}

			g.AddEdge(uint32(i), succ)
		}
	}

	return g
}
