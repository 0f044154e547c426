package greedy

import (
	"math"
	"sort"

	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
)

// Activation returns the probability that a node with allocated budget x
// activates: p(x) = 1 - e^(-delta*x), monotone and concave in x.
func Activation(delta, x float64) float64 {
	return 1.0 - math.Exp(-delta*x)
}

// Allocation associates each nodeID with its share of the continuous budget.
type Allocation map[uint32]float64

/*
AllocateBudget() spreads a continuous activation budget across nodes via a
stepwise water-filling greedy: at every step it grants stepSize budget to the
node with the largest marginal gain in expected coverage, until the total
budget is exhausted.

Under p(x) = 1 - e^(-delta*x), granting stepSize to node v multiplies the
miss probability of every RR set containing v by e^(-delta*stepSize), so the
marginal gain of v is proportional to the summed miss probabilities of its
sets. Those sums are maintained incrementally.

It returns the allocation and the final spread estimate
population/m * sum over sets of (1 - missProb).
*/
func AllocateBudget(T *rrset.Table, index *rrset.CoverageIndex,
	budget, stepSize, delta float64, population int) (Allocation, float64, error) {

	if err := T.Validate(); err != nil {
		return nil, 0, err
	}
	if index == nil {
		return nil, 0, ErrNilIndex
	}
	if budget <= 0 {
		return nil, 0, models.ErrInvalidBudget
	}
	if stepSize <= 0 || stepSize > budget {
		stepSize = budget
	}

	m := index.Size()
	allocation := make(Allocation)
	if m == 0 {
		return allocation, 0, nil
	}

	// missProb[j] is the probability that no member of RR set j activates
	missProb := make([]float64, m)
	for j := range missProb {
		missProb[j] = 1.0
	}

	// gainSum[v] = sum of missProb[j] over the sets containing v
	gainSum := make(map[uint32]float64, len(index.Degrees))
	for nodeID, degree := range index.Degrees {
		gainSum[nodeID] = float64(degree)
	}

	// sorted node list for deterministic tie-breaking
	nodeIDs := make([]uint32, 0, len(gainSum))
	for nodeID := range gainSum {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })

	decay := math.Exp(-delta * stepSize)

	for remaining := budget; remaining > 1e-12; remaining -= stepSize {
		if stepSize > remaining {
			stepSize = remaining
			decay = math.Exp(-delta * stepSize)
		}

		// pick the node with the largest summed miss probability
		var best uint32
		bestGain := -1.0
		for _, nodeID := range nodeIDs {
			if gainSum[nodeID] > bestGain {
				bestGain = gainSum[nodeID]
				best = nodeID
			}
		}

		if bestGain <= 0 {
			break
		}

		allocation[best] += stepSize

		// decay the miss probability of every set containing best, and
		// propagate the drop to the gain sums of the sets' members
		for _, setID := range index.SetsByNode[best] {
			drop := missProb[setID] * (1.0 - decay)
			missProb[setID] -= drop

			for _, member := range T.Sets[setID] {
				gainSum[member] -= drop
			}
		}
	}

	spread := EstimateBudgetInfl(T, index, allocation, delta, population)
	return allocation, spread, nil
}

// EstimateBudgetInfl() evaluates the spread of a continuous allocation by
// reweighting the RR-set coverage fractions by the per-node activation
// probabilities.
func EstimateBudgetInfl(T *rrset.Table, index *rrset.CoverageIndex,
	allocation Allocation, delta float64, population int) float64 {

	m := index.Size()
	if m == 0 {
		return 0
	}

	hits := 0.0
	for _, set := range T.Sets {

		miss := 1.0
		for _, nodeID := range set {
			miss *= 1.0 - Activation(delta, allocation[nodeID])
		}

		hits += 1.0 - miss
	}

	return float64(population) * hits / float64(m)
}
