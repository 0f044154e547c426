package mock

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/seedlab-io/influmax/pkg/models"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name          string
		storeType     string
		expectedError error
	}{
		{
			name:          "nil store",
			storeType:     "nil",
			expectedError: models.ErrNilStore,
		},
		{
			name:          "empty store",
			storeType:     "empty",
			expectedError: nil,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			store := SetupStore(test.storeType)

			if err := store.Validate(); !errors.Is(err, test.expectedError) {
				t.Errorf("Validate(): expected %v, got %v", test.expectedError, err)
			}
		})
	}
}

func TestInfluence(t *testing.T) {
	ctx := context.Background()

	t.Run("node not found", func(t *testing.T) {
		store := SetupStore("empty")

		if _, err := store.Influence(ctx, 69); !errors.Is(err, models.ErrNodeNotFound) {
			t.Errorf("Influence(): expected %v, got %v", models.ErrNodeNotFound, err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		store := SetupStore("empty")
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
		store := SetupStore("empty")

		if _, err := store.Seeds(ctx, "imm"); !errors.Is(err, models.ErrAlgoNotFound) {
			t.Errorf("Seeds(): expected %v, got %v", models.ErrAlgoNotFound, err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		store := SetupStore("empty")
		seeds := []models.Seed{{Node: 1, Spread: 3.0}, {Node: 2, Spread: 4.0}}

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

	t.Run("stored sequence is a copy", func(t *testing.T) {
		store := SetupStore("empty")
		seeds := []models.Seed{{Node: 1, Spread: 3.0}}

		if err := store.SetSeeds(ctx, "rr", seeds); err != nil {
			t.Fatalf("SetSeeds(): expected nil, got %v", err)
		}

		seeds[0].Node = 69
		stored, _ := store.Seeds(ctx, "rr")

		if stored[0].Node != 1 {
			t.Errorf("SetSeeds(): expected an independent copy, got %v", stored)
		}
	})
}
