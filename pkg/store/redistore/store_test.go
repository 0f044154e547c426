package redistore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/utils/redisutils"
)

// setupTestClient returns a client to the test Redis instance, skipping the
// test if the instance is unreachable.
func setupTestClient(t *testing.T) *redis.Client {
	t.Helper()

	cl := redisutils.SetupTestClient()
	if err := cl.Ping(context.Background()).Err(); err != nil {
		t.Skipf("test redis unreachable: %v", err)
	}

	return cl
}

func TestNewStore(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		if _, err := NewStore(nil); !errors.Is(err, ErrNilClientPointer) {
			t.Errorf("NewStore(): expected %v, got %v", ErrNilClientPointer, err)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		var store *ResultStore

		if err := store.Validate(); !errors.Is(err, models.ErrNilStore) {
			t.Errorf("Validate(): expected %v, got %v", models.ErrNilStore, err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		cl := setupTestClient(t)
		defer redisutils.CleanupRedis(cl)

		store, err := NewStore(cl)
		if err != nil {
			t.Fatalf("NewStore(): expected nil, got %v", err)
		}

		if err := store.Validate(); err != nil {
			t.Errorf("Validate(): expected nil, got %v", err)
		}
	})
}

func TestInfluence(t *testing.T) {
	ctx := context.Background()

	t.Run("node not found", func(t *testing.T) {
		cl := setupTestClient(t)
		defer redisutils.CleanupRedis(cl)

		store, _ := NewStore(cl)
		if _, err := store.Influence(ctx, 69); !errors.Is(err, models.ErrNodeNotFound) {
			t.Errorf("Influence(): expected %v, got %v", models.ErrNodeNotFound, err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		cl := setupTestClient(t)
		defer redisutils.CleanupRedis(cl)

		store, _ := NewStore(cl)
		influence := models.InfluenceMap{0: 1.5, 1: 0.5}

		if err := store.SetInfluence(ctx, influence); err != nil {
			t.Fatalf("SetInfluence(): expected nil, got %v", err)
		}

		value, err := store.Influence(ctx, 0)
		if err != nil {
			t.Fatalf("Influence(): expected nil, got %v", err)
		}

		if value != 1.5 {
			t.Errorf("Influence(): expected 1.5, got %f", value)
		}
	})
}

func TestSeeds(t *testing.T) {
	ctx := context.Background()

	t.Run("algo not found", func(t *testing.T) {
		cl := setupTestClient(t)
		defer redisutils.CleanupRedis(cl)

		store, _ := NewStore(cl)
		if _, err := store.Seeds(ctx, "imm"); !errors.Is(err, models.ErrAlgoNotFound) {
			t.Errorf("Seeds(): expected %v, got %v", models.ErrAlgoNotFound, err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		cl := setupTestClient(t)
		defer redisutils.CleanupRedis(cl)

		store, _ := NewStore(cl)
		seeds := []models.Seed{{Node: 1, Spread: 3.0}, {Node: 2, Spread: 4.25}}

		if err := store.SetSeeds(ctx, "imm", seeds); err != nil {
			t.Fatalf("SetSeeds(): expected nil, got %v", err)
		}

		stored, err := store.Seeds(ctx, "imm")
		if err != nil {
			t.Fatalf("Seeds(): expected nil, got %v", err)
		}

		if !reflect.DeepEqual(stored, seeds) {
			t.Errorf("Seeds(): expected %v, got %v", seeds, stored)
		}
	})
}
