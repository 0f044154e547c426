// The rrset package implements the append-only RR-set table and the coverage
// index that the selection algorithms consume.
package rrset

import (
	"errors"

	"github.com/seedlab-io/influmax/pkg/models"
)

// Table is the append-only ordered sequence of RR sets, together with the
// parallel sequence of targets used to generate each of them. The targets are
// needed for unbiased scaling of the coverage fractions.
type Table struct {
	Sets    []models.RRSet
	Targets []uint32
}

// NewTable() creates and returns a new empty Table.
func NewTable() *Table {
	return &Table{
		Sets:    []models.RRSet{},
		Targets: []uint32{},
	}
}

// Validate() returns the appropriate error if the table is nil or if the
// sets and targets sequences have different lengths.
func (T *Table) Validate() error {
	if T == nil {
		return ErrNilTable
	}
	if len(T.Sets) != len(T.Targets) {
		return ErrMismatchedTargets
	}
	return nil
}

// Size() returns the number of RR sets in the table (ignores errors).
func (T *Table) Size() int {
	if T == nil {
		return 0
	}
	return len(T.Sets)
}

// Append() appends one RR set and its target to the table.
func (T *Table) Append(set models.RRSet, target uint32) error {
	if err := T.Validate(); err != nil {
		return err
	}
	if err := models.Validate(set); err != nil {
		return err
	}

	T.Sets = append(T.Sets, set)
	T.Targets = append(T.Targets, target)
	return nil
}

// AppendBatch() appends a batch of RR sets and their targets to the table.
// It's used to merge per-worker buffers after a sampling barrier.
func (T *Table) AppendBatch(sets []models.RRSet, targets []uint32) error {
	if err := T.Validate(); err != nil {
		return err
	}
	if len(sets) != len(targets) {
		return ErrMismatchedTargets
	}

	T.Sets = append(T.Sets, sets...)
	T.Targets = append(T.Targets, targets...)
	return nil
}

// Reset() discards all RR sets and targets. It's used by the algorithms that
// resample from scratch before the final selection pass.
func (T *Table) Reset() {
	if T == nil {
		return
	}
	T.Sets = T.Sets[:0]
	T.Targets = T.Targets[:0]
}

//---------------------------------ERROR-CODES---------------------------------

var ErrNilTable = errors.New("nil Table pointer")
var ErrMismatchedTargets = errors.New("the number of RR sets and targets don't match")
