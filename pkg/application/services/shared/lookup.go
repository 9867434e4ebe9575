package shared

import (
	"fmt"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// PairKey identifies a product at a branch
type PairKey struct {
	Product entities.ProductID
	Branch  entities.BranchID
}

// String returns the "product|branch" form used in logs and error lists
func (k PairKey) String() string {
	return fmt.Sprintf("%s|%s", k.Product, k.Branch)
}

// PairTable is a lookup table keyed by product and branch. It is built once per run and
// read concurrently afterwards; it is not safe for concurrent writes.
type PairTable[T any] map[PairKey]T

// NewPairTable creates an empty table
func NewPairTable[T any](capacity int) PairTable[T] {
	return make(PairTable[T], capacity)
}

// Get returns the value for a product at a branch, or the zero value
func (t PairTable[T]) Get(product entities.ProductID, branch entities.BranchID) T {
	return t[PairKey{product, branch}]
}

// Lookup returns the value and whether it is present
func (t PairTable[T]) Lookup(product entities.ProductID, branch entities.BranchID) (T, bool) {
	v, ok := t[PairKey{product, branch}]
	return v, ok
}

// Set stores a value for a product at a branch
func (t PairTable[T]) Set(product entities.ProductID, branch entities.BranchID, value T) {
	t[PairKey{product, branch}] = value
}

// Has reports whether a value exists for a product at a branch
func (t PairTable[T]) Has(product entities.ProductID, branch entities.BranchID) bool {
	_, ok := t[PairKey{product, branch}]
	return ok
}

// Size returns the number of stored pairs
func (t PairTable[T]) Size() int {
	return len(t)
}

// MultipleTable maps products to their sales multiple for one run
type MultipleTable map[entities.ProductID]int

// NewMultipleTable builds the table from product configuration
func NewMultipleTable(products []*entities.Product) MultipleTable {
	table := make(MultipleTable, len(products))
	for _, p := range products {
		table[p.ID] = p.SalesMultiple
	}
	return table
}

// Multiple returns the sales multiple of a product; unknown products ship in single units
func (t MultipleTable) Multiple(product entities.ProductID) int {
	if m, ok := t[product]; ok && m > 1 {
		return m
	}
	return 1
}
