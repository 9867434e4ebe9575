package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID represents a unique product identifier
type ProductID string

// Quantity represents an integer quantity of stock units
type Quantity int64

// Product represents a catalog product as seen by the redistribution engine
type Product struct {
	ID              ProductID
	Description     string
	CatalogGroup    string
	SalesMultiple   int
	CombinedGroupID string // empty when the product has no combined group
	UnitPrice       decimal.Decimal
}

// NewProduct creates a validated Product
func NewProduct(
	id ProductID,
	description, catalogGroup string,
	salesMultiple int,
	combinedGroupID string,
	unitPrice decimal.Decimal,
) (*Product, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if description == "" {
		return nil, fmt.Errorf("description cannot be empty")
	}
	if salesMultiple < 1 {
		return nil, fmt.Errorf("sales multiple must be at least 1, got %d", salesMultiple)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", unitPrice)
	}

	return &Product{
		ID:              id,
		Description:     description,
		CatalogGroup:    catalogGroup,
		SalesMultiple:   salesMultiple,
		CombinedGroupID: combinedGroupID,
		UnitPrice:       unitPrice,
	}, nil
}

// HasCombinedGroup reports whether the product belongs to a combined group
func (p *Product) HasCombinedGroup() bool {
	return p.CombinedGroupID != ""
}

// CombinedGroup is a set of mutually substitutable products
type CombinedGroup struct {
	ID      string
	Members []ProductID
}

// NewCombinedGroup creates a validated CombinedGroup. Duplicate members are dropped,
// keeping the first occurrence.
func NewCombinedGroup(id string, members []ProductID) (*CombinedGroup, error) {
	if id == "" {
		return nil, fmt.Errorf("group id cannot be empty")
	}

	seen := make(map[ProductID]bool, len(members))
	unique := make([]ProductID, 0, len(members))
	for _, m := range members {
		if string(m) == "" {
			return nil, fmt.Errorf("group %s has an empty member id", id)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}

	return &CombinedGroup{ID: id, Members: unique}, nil
}
