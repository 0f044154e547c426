package rrset

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/seedlab-io/influmax/pkg/models"
)

func TestTableAppend(t *testing.T) {
	testCases := []struct {
		name          string
		table         *Table
		set           models.RRSet
		expectedError error
	}{
		{
			name:          "nil table",
			table:         nil,
			set:           models.RRSet{0},
			expectedError: ErrNilTable,
		},
		{
			name:          "nil RRSet",
			table:         NewTable(),
			set:           nil,
			expectedError: models.ErrNilRRSet,
		},
		{
			name:  "empty RRSet is a valid degenerate draw",
			table: NewTable(),
			set:   models.RRSet{},
		},
		{
			name:  "valid",
			table: NewTable(),
			set:   models.RRSet{0, 1, 2},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := test.table.Append(test.set, 0)

			if !errors.Is(err, test.expectedError) {
				t.Fatalf("Append(): expected %v, got %v", test.expectedError, err)
			}

			if err == nil && test.table.Size() != 1 {
				t.Errorf("Append(): expected size 1, got %d", test.table.Size())
			}
		})
	}
}

func TestTableAppendBatch(t *testing.T) {
	t.Run("mismatched targets", func(t *testing.T) {
		T := NewTable()
		err := T.AppendBatch([]models.RRSet{{0}, {1}}, []uint32{0})

		if !errors.Is(err, ErrMismatchedTargets) {
			t.Errorf("AppendBatch(): expected %v, got %v", ErrMismatchedTargets, err)
		}
	})

	t.Run("valid batch", func(t *testing.T) {
		T := NewTable()
		if err := T.AppendBatch([]models.RRSet{{0}, {0, 1}}, []uint32{0, 1}); err != nil {
			t.Fatalf("AppendBatch(): expected nil, got %v", err)
		}

		if T.Size() != 2 {
			t.Errorf("AppendBatch(): expected size 2, got %d", T.Size())
		}

		if err := T.Validate(); err != nil {
			t.Errorf("Validate(): expected nil, got %v", err)
		}
	})
}

func TestBuildIndex(t *testing.T) {
	t.Run("documented scenario", func(t *testing.T) {
		T := NewTable()
		sets := []models.RRSet{{1}, {1}, {1, 2}, {2}, {3}}
		if err := T.AppendBatch(sets, []uint32{1, 1, 1, 2, 3}); err != nil {
			t.Fatalf("AppendBatch(): expected nil, got %v", err)
		}

		index, err := BuildIndex(T)
		if err != nil {
			t.Fatalf("BuildIndex(): expected nil, got %v", err)
		}

		expectedDegrees := map[uint32]int{1: 3, 2: 2, 3: 1}
		if !reflect.DeepEqual(index.Degrees, expectedDegrees) {
			t.Errorf("BuildIndex(): expected %v, got %v", expectedDegrees, index.Degrees)
		}

		expectedSets := map[uint32][]int{1: {0, 1, 2}, 2: {2, 3}, 3: {4}}
		if !reflect.DeepEqual(index.SetsByNode, expectedSets) {
			t.Errorf("BuildIndex(): expected %v, got %v", expectedSets, index.SetsByNode)
		}
	})

	// degree[v] must equal the number of RR sets containing v, exactly,
	// for any table state right after a rebuild.
	t.Run("degree invariant on random tables", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))

		for iteration := 0; iteration < 10; iteration++ {
			T := NewTable()

			setsNum := rng.Intn(200)
			for i := 0; i < setsNum; i++ {
				set := models.RRSet{}
				seen := map[uint32]bool{}

				for j := 0; j < rng.Intn(10); j++ {
					nodeID := uint32(rng.Intn(50))
					if !seen[nodeID] {
						seen[nodeID] = true
						set = append(set, nodeID)
					}
				}

				if err := T.Append(set, uint32(rng.Intn(50))); err != nil {
					t.Fatalf("Append(): expected nil, got %v", err)
				}
			}

			index, err := BuildIndex(T)
			if err != nil {
				t.Fatalf("BuildIndex(): expected nil, got %v", err)
			}

			// brute-force recount
			for nodeID := uint32(0); nodeID < 50; nodeID++ {
				count := 0
				for _, set := range T.Sets {
					for _, member := range set {
						if member == nodeID {
							count++
						}
					}
				}

				if index.Degree(nodeID) != count {
					t.Errorf("Degree(%d): expected %d, got %d", nodeID, count, index.Degree(nodeID))
				}
			}

			if index.Size() != T.Size() {
				t.Errorf("Size(): expected %d, got %d", T.Size(), index.Size())
			}
		}
	})

	t.Run("mismatched table", func(t *testing.T) {
		T := &Table{Sets: []models.RRSet{{0}}, Targets: []uint32{}}

		if _, err := BuildIndex(T); !errors.Is(err, ErrMismatchedTargets) {
			t.Errorf("BuildIndex(): expected %v, got %v", ErrMismatchedTargets, err)
		}
	})
}
