/*
The models package defines the fundamental structures and interfaces used in this project.
Interfaces:

Graph:
The Graph interface abstracts a read-only directed graph, allowing for
multiple implementations (in-memory, database backed...).

Cascade:
The Cascade interface abstracts one stochastic draw of the diffusion process,
returning the set of nodes that could have activated a given target.

ResultStore:
The ResultStore interface abstracts the persistence of computed influence
scores and seed sequences.
*/
package models

import (
	"context"
	"errors"
)

// RRSet represents the slice of nodeIDs that are backward-reachable from one
// randomly chosen target under one stochastic realization of the diffusion
// (e.g. {1,2,77,5}). An empty RRSet is a valid degenerate draw.
type RRSet []uint32

// Validate returns the appropriate error if the RRSet is nil.
// Empty sets are valid, since a draw can activate nobody.
func Validate(set RRSet) error {
	if set == nil {
		return ErrNilRRSet
	}
	return nil
}

// Seed is one chosen seed node together with the cumulative spread estimate
// of the seed sequence up to and including it.
type Seed struct {
	Node   uint32
	Spread float64
}

// TimedSeed is a seed tagged with the discrete time step it's scheduled at.
// It's used by the time-indexed algorithms.
type TimedSeed struct {
	Node   uint32
	Time   int
	Spread float64
}

// InfluenceMap associates each nodeID with its estimated influence value.
type InfluenceMap map[uint32]float64

// The Graph interface abstracts the read-only graph collaborator.
type Graph interface {
	// Validate() returns the appropriate error if the graph is nil or empty.
	Validate() error

	// NodeCount() returns the number of nodes in the graph (ignores errors).
	NodeCount(ctx context.Context) int

	// EdgeCount() returns the number of edges in the graph (ignores errors).
	EdgeCount(ctx context.Context) int

	// ContainsNode() returns whether nodeID is found in the graph.
	ContainsNode(ctx context.Context, nodeID uint32) bool

	// AllNodes() returns a slice with the IDs of all nodes in the graph.
	AllNodes(ctx context.Context) ([]uint32, error)

	// Successors() returns the direct successors of nodeID, in ascending order.
	Successors(ctx context.Context, nodeID uint32) ([]uint32, error)

	// Predecessors() returns the direct predecessors of nodeID, in ascending
	// order. Seeded cascade draws rely on the order being stable.
	Predecessors(ctx context.Context, nodeID uint32) ([]uint32, error)

	// InDegree() returns the number of predecessors of nodeID (ignores errors).
	InDegree(ctx context.Context, nodeID uint32) int
}

// The Cascade interface abstracts the diffusion oracle. The oracle owns all
// randomness and model semantics; the core only consumes its draws.
type Cascade interface {
	// ReverseSample() performs one stochastic backward-reachability draw from
	// target, returning the RRSet and the number of edges visited.
	ReverseSample(target uint32) (RRSet, int, error)
}

// CascadeFactory returns a private Cascade instance for a worker, seeded with
// the given value. Each concurrent sampling worker owns its own instance to
// avoid shared-randomness contention.
type CascadeFactory func(seed int64) Cascade

// The ResultStore interface abstracts the persistence of computed results.
type ResultStore interface {
	// Validate() returns the appropriate error if the store is nil or unreachable.
	Validate() error

	// SetInfluence() persists the influence value of each node in the map.
	SetInfluence(ctx context.Context, influence InfluenceMap) error

	// Influence() returns the persisted influence value of nodeID.
	Influence(ctx context.Context, nodeID uint32) (float64, error)

	// SetSeeds() persists the ordered seed sequence computed by the named algorithm.
	SetSeeds(ctx context.Context, algo string, seeds []Seed) error

	// Seeds() returns the persisted seed sequence of the named algorithm.
	Seeds(ctx context.Context, algo string) ([]Seed, error)
}

//---------------------------------ERROR-CODES---------------------------------

// RRSet errors
var ErrNilRRSet = errors.New("nil RRSet")

// Graph errors
var ErrNilGraph = errors.New("graph pointer is nil")
var ErrEmptyGraph = errors.New("graph is empty")
var ErrNodeNotFound = errors.New("node not found in the graph")
var ErrNilCascade = errors.New("nil Cascade pointer")

// parameter errors
var ErrInvalidSeedSize = errors.New("seed size k should be a number between 0 and n (included)")
var ErrInvalidEpsilon = errors.New("epsilon should be a number between 0 and 1 (excluded)")
var ErrInvalidEll = errors.New("ell should be greater than zero")
var ErrInvalidBudget = errors.New("budget should be greater than zero")
var ErrInvalidHorizon = errors.New("time horizon should be greater than zero")

// store errors
var ErrNilStore = errors.New("nil ResultStore pointer")
var ErrAlgoNotFound = errors.New("algorithm not found in the store")
