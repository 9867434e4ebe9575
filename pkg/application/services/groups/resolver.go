// Package groups resolves combined substitution groups and aggregates sales and stock
// across group siblings.
package groups

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/sales"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// Resolver holds the product to group mapping of one engine run. It is immutable after Load
// and safe for concurrent use.
type Resolver struct {
	groupOf map[entities.ProductID]string
	members map[string][]entities.ProductID
	sales   *sales.Aggregator
	stock   repositories.StockRepository
}

// Load reads the whole membership table in one call and builds both directions of the
// mapping. A product listed in more than one group stays in the first group read.
func Load(
	ctx context.Context,
	repo repositories.CombinedGroupRepository,
	aggregator *sales.Aggregator,
	stock repositories.StockRepository,
	logger zerolog.Logger,
) (*Resolver, error) {
	groups, err := repo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load combined groups: %w", err)
	}

	r := &Resolver{
		groupOf: make(map[entities.ProductID]string),
		members: make(map[string][]entities.ProductID, len(groups)),
		sales:   aggregator,
		stock:   stock,
	}

	for _, g := range groups {
		for _, m := range g.Members {
			if existing, ok := r.groupOf[m]; ok {
				if existing != g.ID {
					logger.Warn().
						Str("product", string(m)).
						Str("group", g.ID).
						Str("kept_group", existing).
						Msg("product listed in more than one combined group")
				}
				continue
			}
			r.groupOf[m] = g.ID
			r.members[g.ID] = append(r.members[g.ID], m)
		}
	}

	logger.Debug().Int("groups", len(r.members)).Int("products", len(r.groupOf)).Msg("combined groups loaded")
	return r, nil
}

// GroupOf returns the group id of a product and whether it has one
func (r *Resolver) GroupOf(product entities.ProductID) (string, bool) {
	id, ok := r.groupOf[product]
	return id, ok
}

// Siblings returns the members of the product's group in group order, optionally
// including the product itself. It returns nil when the product has no group.
func (r *Resolver) Siblings(product entities.ProductID, includeSelf bool) []entities.ProductID {
	id, ok := r.groupOf[product]
	if !ok {
		return nil
	}

	members := r.members[id]
	siblings := make([]entities.ProductID, 0, len(members))
	for _, m := range members {
		if m == product && !includeSelf {
			continue
		}
		siblings = append(siblings, m)
	}
	return siblings
}

// GroupSales sums sales across the product's group at a branch over the last windowDays
func (r *Resolver) GroupSales(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	windowDays int,
	includeSelf bool,
) (entities.Quantity, error) {
	siblings := r.Siblings(product, includeSelf)
	if len(siblings) == 0 {
		return 0, nil
	}
	return r.sales.Sales(ctx, sales.Query{
		Products:   siblings,
		Branch:     branch,
		WindowDays: windowDays,
	})
}

// GroupStock sums on-hand stock across the product's group at a branch
func (r *Resolver) GroupStock(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	includeSelf bool,
) (entities.Quantity, error) {
	siblings := r.Siblings(product, includeSelf)
	if len(siblings) == 0 {
		return 0, nil
	}

	positions, err := r.stock.StockForProducts(ctx, siblings, branch)
	if err != nil {
		return 0, fmt.Errorf("failed to read group stock for %s at %s: %w", product, branch, err)
	}

	var total entities.Quantity
	for _, p := range siblings {
		total += positions[p].OnHand
	}
	return total, nil
}

// Size returns the number of groups
func (r *Resolver) Size() int {
	return len(r.members)
}
