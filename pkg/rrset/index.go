package rrset

// CoverageIndex maps each node to the positions of the RR sets that contain
// it. Degrees is the exact count of those positions, a proxy for marginal
// influence. The index is rebuilt wholesale after each sampling batch, never
// patched incrementally while sampling is in flight.
type CoverageIndex struct {
	Degrees    map[uint32]int
	SetsByNode map[uint32][]int

	size int
}

// BuildIndex() scans the table and returns a fresh CoverageIndex.
// For every node v, Degrees[v] == len(SetsByNode[v]) holds exactly.
func BuildIndex(T *Table) (*CoverageIndex, error) {
	if err := T.Validate(); err != nil {
		return nil, err
	}

	index := &CoverageIndex{
		Degrees:    make(map[uint32]int),
		SetsByNode: make(map[uint32][]int),
		size:       len(T.Sets),
	}

	for i, set := range T.Sets {
		for _, nodeID := range set {
			index.Degrees[nodeID]++
			index.SetsByNode[nodeID] = append(index.SetsByNode[nodeID], i)
		}
	}

	return index, nil
}

// Degree() returns the number of RR sets containing nodeID (ignores errors).
func (index *CoverageIndex) Degree(nodeID uint32) int {
	if index == nil {
		return 0
	}
	return index.Degrees[nodeID]
}

// Size() returns the number of RR sets the index was built over.
func (index *CoverageIndex) Size() int {
	if index == nil {
		return 0
	}
	return index.size
}
