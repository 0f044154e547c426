/*
The greedy package implements the submodular selection routines that consume
the coverage index: the lazy greedy seed selection, the prefix spread
estimation, and the continuous water-filling budget allocation.

Selection is strictly sequential, since the seed order carries the
diminishing-returns semantics. The coverage index must be fully rebuilt
before any pass begins.
*/
package greedy

import (
	"container/heap"
	"errors"

	"github.com/seedlab-io/influmax/pkg/models"
	"github.com/seedlab-io/influmax/pkg/rrset"
)

/*
Select() picks up to k seeds by lazy greedy over the coverage index.

At every step the node with the maximum remaining coverage degree is chosen
(ties break on the smallest nodeID), the RR sets it covers are marked, and
the degrees of the nodes sharing those sets are decremented. Degrees always
reflect marginal coverage, so the recorded gain sequence is non-increasing.

Gains are fractions of the RR-set table covered at each step; the spread
estimator scales them by the population. Selection stops early when no
remaining node covers anything, returning a partial seed sequence.
*/
func Select(T *rrset.Table, index *rrset.CoverageIndex, k int) ([]uint32, []float64, error) {
	if err := T.Validate(); err != nil {
		return nil, nil, err
	}
	if index == nil {
		return nil, nil, ErrNilIndex
	}
	if k < 0 {
		return nil, nil, models.ErrInvalidSeedSize
	}

	m := index.Size()
	covered := make([]bool, m)

	// remaining marginal degrees, updated as sets get covered
	degrees := make(map[uint32]int, len(index.Degrees))
	for nodeID, degree := range index.Degrees {
		degrees[nodeID] = degree
	}

	pq := make(degreeHeap, 0, len(degrees))
	for nodeID, degree := range degrees {
		pq = append(pq, nodeDegree{nodeID: nodeID, degree: degree})
	}
	heap.Init(&pq)

	seeds := make([]uint32, 0, k)
	gains := make([]float64, 0, k)

	for len(seeds) < k && pq.Len() > 0 {

		top := heap.Pop(&pq).(nodeDegree)

		// stale entry: re-push with the current marginal degree
		if top.degree != degrees[top.nodeID] {
			top.degree = degrees[top.nodeID]
			heap.Push(&pq, top)
			continue
		}

		if top.degree == 0 {
			break
		}

		// cover the RR sets of the chosen node and decrement the degree
		// of every node that shared a newly covered set
		newlyCovered := 0
		for _, setID := range index.SetsByNode[top.nodeID] {
			if covered[setID] {
				continue
			}

			covered[setID] = true
			newlyCovered++

			for _, member := range T.Sets[setID] {
				degrees[member]--
			}
		}

		seeds = append(seeds, top.nodeID)
		gains = append(gains, float64(newlyCovered)/float64(m))
	}

	return seeds, gains, nil
}

// nodeDegree is one entry of the lazy greedy priority queue.
type nodeDegree struct {
	nodeID uint32
	degree int
}

// degreeHeap is a max-heap on degree; ties break on the smallest nodeID.
type degreeHeap []nodeDegree

func (h degreeHeap) Len() int { return len(h) }

func (h degreeHeap) Less(i, j int) bool {
	if h[i].degree != h[j].degree {
		return h[i].degree > h[j].degree
	}
	return h[i].nodeID < h[j].nodeID
}

func (h degreeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *degreeHeap) Push(x any) {
	*h = append(*h, x.(nodeDegree))
}

func (h *degreeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

//---------------------------------ERROR-CODES---------------------------------

var ErrNilIndex = errors.New("nil CoverageIndex pointer")
