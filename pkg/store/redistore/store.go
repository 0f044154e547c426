// The redistore package implements the ResultStore interface on Redis, so
// computed influence values and seed sequences survive process restarts and
// can be read by other services.
package redistore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/utils/redisutils"
)

// ResultStore fullfills the ResultStore interface defined in models.
type ResultStore struct {
	client *redis.Client
}

// NewStore() creates a new instance of ResultStore using the provided
// Redis client.
func NewStore(cl *redis.Client) (*ResultStore, error) {
	if cl == nil {
		return nil, ErrNilClientPointer
	}

	return &ResultStore{client: cl}, nil
}

// Validate() returns the appropriate error if the store or its client is nil.
func (s *ResultStore) Validate() error {
	if s == nil {
		return models.ErrNilStore
	}

	if s.client == nil {
		return ErrNilClientPointer
	}

	return nil
}

// SetInfluence() persists the influence value of each node in the map, as
// fields of one Redis hash.
func (s *ResultStore) SetInfluence(ctx context.Context, influence models.InfluenceMap) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if len(influence) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for nodeID, value := range influence {
		pipe.HSet(ctx, KeyInfluence(), redisutils.FormatID(nodeID), value)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("SetInfluence() failed to execute: %w", err)
	}

	return nil
}

// Influence() returns the persisted influence value of nodeID.
func (s *ResultStore) Influence(ctx context.Context, nodeID uint32) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	strVal, err := s.client.HGet(ctx, KeyInfluence(), redisutils.FormatID(nodeID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, models.ErrNodeNotFound
	}
	if err != nil {
		return 0, err
	}

	return redisutils.ParseFloat64(strVal)
}

// SetSeeds() persists the ordered seed sequence computed by the named
// algorithm, as one formatted string.
func (s *ResultStore) SetSeeds(ctx context.Context, algo string, seeds []models.Seed) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := s.client.Set(ctx, KeySeeds(algo), FormatSeeds(seeds), 0).Err(); err != nil {
		return fmt.Errorf("SetSeeds(%v) failed to execute: %w", algo, err)
	}

	return nil
}

// Seeds() returns the persisted seed sequence of the named algorithm.
func (s *ResultStore) Seeds(ctx context.Context, algo string) ([]models.Seed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	strSeeds, err := s.client.Get(ctx, KeySeeds(algo)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrAlgoNotFound
	}
	if err != nil {
		return nil, err
	}

	return ParseSeeds(strSeeds)
}

//---------------------------------ERROR-CODES---------------------------------

var ErrNilClientPointer = errors.New("nil redis client pointer")
var ErrInvalidSeedFormat = errors.New("invalid seed format in redis")
