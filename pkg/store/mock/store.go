package mock

import (
	"context"

	"github.com/seedlab-io/influmax/pkg/models"
)

// the in-memory version of the ResultStore interface.
type ResultStore struct {
	// Associates a nodeID to its persisted influence value
	InfluenceIndex map[uint32]float64

	// Associates an algorithm name to its persisted seed sequence
	SeedIndex map[string][]models.Seed
}

// NewStore() creates a new empty ResultStore.
func NewStore() *ResultStore {
	return &ResultStore{
		InfluenceIndex: make(map[uint32]float64),
		SeedIndex:      make(map[string][]models.Seed),
	}
}

// Validate() returns the appropriate error if the store is nil.
func (s *ResultStore) Validate() error {
	if s == nil {
		return models.ErrNilStore
	}
	return nil
}

// SetInfluence() persists the influence value of each node in the map.
func (s *ResultStore) SetInfluence(ctx context.Context, influence models.InfluenceMap) error {
	if err := s.Validate(); err != nil {
		return err
	}

	for nodeID, value := range influence {
		s.InfluenceIndex[nodeID] = value
	}

	_ = ctx
	return nil
}

// Influence() returns the persisted influence value of nodeID.
func (s *ResultStore) Influence(ctx context.Context, nodeID uint32) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	value, exists := s.InfluenceIndex[nodeID]
	if !exists {
		return 0, models.ErrNodeNotFound
	}

	_ = ctx
	return value, nil
}

// SetSeeds() persists the ordered seed sequence computed by the named algorithm.
func (s *ResultStore) SetSeeds(ctx context.Context, algo string, seeds []models.Seed) error {
	if err := s.Validate(); err != nil {
		return err
	}

	stored := make([]models.Seed, len(seeds))
	copy(stored, seeds)
	s.SeedIndex[algo] = stored

	_ = ctx
	return nil
}

// Seeds() returns the persisted seed sequence of the named algorithm.
func (s *ResultStore) Seeds(ctx context.Context, algo string) ([]models.Seed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	seeds, exists := s.SeedIndex[algo]
	if !exists {
		return nil, models.ErrAlgoNotFound
	}

	_ = ctx
	return seeds, nil
}

// ------------------------------------HELPERS----------------------------------

// function that returns a ResultStore setup based on the storeType.
func SetupStore(storeType string) *ResultStore {
	switch storeType {
	case "nil":
		return nil

	case "empty":
		return NewStore()

	case "one-algo":
		store := NewStore()
		store.SeedIndex["rr"] = []models.Seed{{Node: 0, Spread: 1.0}}
		store.InfluenceIndex[0] = 1.0
		return store

	default:
		return nil
	}
}
