package greedy

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
)

// setupTable returns a table built from the given sets, using the first node
// of each set as its target (targets don't matter for selection).
func setupTable(t *testing.T, sets []models.RRSet) (*rrset.Table, *rrset.CoverageIndex) {
	t.Helper()

	T := rrset.NewTable()
	for _, set := range sets {
		target := uint32(0)
		if len(set) > 0 {
			target = set[0]
		}

		if err := T.Append(set, target); err != nil {
			t.Fatalf("Append(): expected nil, got %v", err)
		}
	}

	index, err := rrset.BuildIndex(T)
	if err != nil {
		t.Fatalf("BuildIndex(): expected nil, got %v", err)
	}

	return T, index
}

func TestSelect(t *testing.T) {
	t.Run("invalid seed size", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}})

		if _, _, err := Select(T, index, -1); !errors.Is(err, models.ErrInvalidSeedSize) {
			t.Errorf("Select(): expected %v, got %v", models.ErrInvalidSeedSize, err)
		}
	})

	t.Run("documented scenario", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}, {1}, {1, 2}, {2}, {3}})

		seeds, gains, err := Select(T, index, 1)
		if err != nil {
			t.Fatalf("Select(): expected nil, got %v", err)
		}

		if !reflect.DeepEqual(seeds, []uint32{1}) {
			t.Errorf("Select(): expected seeds [1], got %v", seeds)
		}

		if math.Abs(gains[0]-3.0/5.0) > 1e-12 {
			t.Errorf("Select(): expected gain 3/5, got %f", gains[0])
		}
	})

	t.Run("marginal degrees after the first pick", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}, {1}, {1, 2}, {2}, {3}})

		seeds, gains, err := Select(T, index, 3)
		if err != nil {
			t.Fatalf("Select(): expected nil, got %v", err)
		}

		// after picking 1, node 2 covers only set {2}, so it ties with 3
		// on degree 1 and wins on the smaller ID
		if !reflect.DeepEqual(seeds, []uint32{1, 2, 3}) {
			t.Errorf("Select(): expected seeds [1 2 3], got %v", seeds)
		}

		expectedGains := []float64{3.0 / 5.0, 1.0 / 5.0, 1.0 / 5.0}
		for i := range expectedGains {
			if math.Abs(gains[i]-expectedGains[i]) > 1e-12 {
				t.Errorf("Select(): expected gains %v, got %v", expectedGains, gains)
			}
		}
	})

	t.Run("deterministic tie-break on smallest ID", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{7, 3}, {3, 7}})

		seeds, _, err := Select(T, index, 2)
		if err != nil {
			t.Fatalf("Select(): expected nil, got %v", err)
		}

		if !reflect.DeepEqual(seeds, []uint32{3}) {
			t.Errorf("Select(): expected seeds [3], got %v", seeds)
		}
	})

	t.Run("no reselection and early stop", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}, {1}, {2}})

		seeds, _, err := Select(T, index, 10)
		if err != nil {
			t.Fatalf("Select(): expected nil, got %v", err)
		}

		if !reflect.DeepEqual(seeds, []uint32{1, 2}) {
			t.Errorf("Select(): expected seeds [1 2], got %v", seeds)
		}
	})

	t.Run("diminishing returns on random tables", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))

		for iteration := 0; iteration < 10; iteration++ {

			sets := make([]models.RRSet, 0, 100)
			for i := 0; i < 100; i++ {
				set := models.RRSet{}
				seen := map[uint32]bool{}

				for j := 0; j < 1+rng.Intn(8); j++ {
					nodeID := uint32(rng.Intn(30))
					if !seen[nodeID] {
						seen[nodeID] = true
						set = append(set, nodeID)
					}
				}
				sets = append(sets, set)
			}

			T, index := setupTable(t, sets)
			_, gains, err := Select(T, index, 10)
			if err != nil {
				t.Fatalf("Select(): expected nil, got %v", err)
			}

			for i := 1; i < len(gains); i++ {
				if gains[i] > gains[i-1]+1e-12 {
					t.Errorf("Select(): gains are not non-increasing: %v", gains)
				}
			}
		}
	})
}

func TestEstimateInfl(t *testing.T) {
	t.Run("cumulative prefixes", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}, {1}, {1, 2}, {2}, {3}})

		spreads, err := EstimateInfl(T, index, []uint32{1, 2, 3}, 3)
		if err != nil {
			t.Fatalf("EstimateInfl(): expected nil, got %v", err)
		}

		// prefixes hit 3/5, 4/5 and 5/5 of the table, scaled by n=3
		expected := []float64{3.0 * 3.0 / 5.0, 3.0 * 4.0 / 5.0, 3.0}
		for i := range expected {
			if math.Abs(spreads[i]-expected[i]) > 1e-12 {
				t.Errorf("EstimateInfl(): expected %v, got %v", expected, spreads)
			}
		}
	})

	t.Run("empty table yields zero spread", func(t *testing.T) {
		T := rrset.NewTable()
		index, err := rrset.BuildIndex(T)
		if err != nil {
			t.Fatalf("BuildIndex(): expected nil, got %v", err)
		}

		spreads, err := EstimateInfl(T, index, []uint32{1, 2}, 100)
		if err != nil {
			t.Fatalf("EstimateInfl(): expected nil, got %v", err)
		}

		if !reflect.DeepEqual(spreads, []float64{0, 0}) {
			t.Errorf("EstimateInfl(): expected zero spreads, got %v", spreads)
		}
	})
}

func TestWeight(t *testing.T) {
	testCases := []struct {
		name     string
		mode     WeightMode
		t        int
		expected float64
	}{
		{name: "uniform", mode: WeightUniform, t: 5, expected: 1.0},
		{name: "linear at 0", mode: WeightLinear, t: 0, expected: 1.0},
		{name: "linear at 3", mode: WeightLinear, t: 3, expected: 0.25},
		{name: "exponential at 0", mode: WeightExponential, t: 0, expected: 1.0},
		{name: "exponential at 2", mode: WeightExponential, t: 2, expected: 0.25},
		{name: "unknown defaults to uniform", mode: WeightMode(99), t: 7, expected: 1.0},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if got := Weight(test.mode, test.t); math.Abs(got-test.expected) > 1e-12 {
				t.Errorf("Weight(): expected %f, got %f", test.expected, got)
			}
		})
	}

	t.Run("combine", func(t *testing.T) {
		spreads := []float64{10, 20, 40}

		if got := CombineSpreads(WeightUniform, spreads); math.Abs(got-70.0) > 1e-12 {
			t.Errorf("CombineSpreads(): expected 70, got %f", got)
		}

		if got := CombineSpreads(WeightExponential, spreads); math.Abs(got-30.0) > 1e-12 {
			t.Errorf("CombineSpreads(): expected 30, got %f", got)
		}
	})
}

func TestAllocateBudget(t *testing.T) {
	t.Run("invalid budget", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}})

		if _, _, err := AllocateBudget(T, index, 0, 0.1, 1.0, 10); !errors.Is(err, models.ErrInvalidBudget) {
			t.Errorf("AllocateBudget(): expected %v, got %v", models.ErrInvalidBudget, err)
		}
	})

	t.Run("dominant node takes the whole budget", func(t *testing.T) {
		T, index := setupTable(t, []models.RRSet{{1}, {1}, {1}, {2}})

		allocation, spread, err := AllocateBudget(T, index, 1.0, 1.0, 1.0, 4)
		if err != nil {
			t.Fatalf("AllocateBudget(): expected nil, got %v", err)
		}

		if math.Abs(allocation[1]-1.0) > 1e-12 {
			t.Errorf("AllocateBudget(): expected all budget on node 1, got %v", allocation)
		}

		// 3 of 4 sets hit with probability 1-1/e, scaled by n/m = 1
		expected := 3.0 * (1.0 - math.Exp(-1))
		if math.Abs(spread-expected) > 1e-9 {
			t.Errorf("AllocateBudget(): expected spread %f, got %f", expected, spread)
		}
	})

	t.Run("spread is monotone in budget", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))

		sets := make([]models.RRSet, 0, 50)
		for i := 0; i < 50; i++ {
			set := models.RRSet{}
			seen := map[uint32]bool{}
			for j := 0; j < 1+rng.Intn(5); j++ {
				nodeID := uint32(rng.Intn(20))
				if !seen[nodeID] {
					seen[nodeID] = true
					set = append(set, nodeID)
				}
			}
			sets = append(sets, set)
		}

		T, index := setupTable(t, sets)

		previous := 0.0
		for _, budget := range []float64{0.5, 1.0, 2.0, 4.0} {
			_, spread, err := AllocateBudget(T, index, budget, 0.25, 1.0, 20)
			if err != nil {
				t.Fatalf("AllocateBudget(): expected nil, got %v", err)
			}

			if spread < previous-1e-9 {
				t.Errorf("AllocateBudget(): spread decreased from %f to %f", previous, spread)
			}
			previous = spread
		}
	})

	t.Run("empty table allocates nothing", func(t *testing.T) {
		T := rrset.NewTable()
		index, _ := rrset.BuildIndex(T)

		allocation, spread, err := AllocateBudget(T, index, 1.0, 0.1, 1.0, 10)
		if err != nil {
			t.Fatalf("AllocateBudget(): expected nil, got %v", err)
		}

		if len(allocation) != 0 || spread != 0 {
			t.Errorf("AllocateBudget(): expected empty allocation, got %v with spread %f", allocation, spread)
		}
	})
}

func BenchmarkSelect(b *testing.B) {

	// initial setup
	rng := rand.New(rand.NewSource(69))
	T := rrset.NewTable()

	for i := 0; i < 10000; i++ {
		set := models.RRSet{}
		seen := map[uint32]bool{}
		for j := 0; j < 1+rng.Intn(20); j++ {
			nodeID := uint32(rng.Intn(2000))
			if !seen[nodeID] {
				seen[nodeID] = true
				set = append(set, nodeID)
			}
		}

		if err := T.Append(set, set[0]); err != nil {
			b.Fatalf("Append() failed: %v", err)
		}
	}

	index, err := rrset.BuildIndex(T)
	if err != nil {
		b.Fatalf("BuildIndex() failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {

		_, _, err := Select(T, index, 50)
		if err != nil {
			b.Fatalf("Select() failed: %v", err)
		}
	}
}
