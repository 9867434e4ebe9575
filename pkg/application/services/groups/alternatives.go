package groups

import (
	"context"
	"fmt"
	"sort"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// Alternatives returns the siblings of a product that hold available stock at the origin,
// most stock first. Ties keep group order.
func (r *Resolver) Alternatives(
	ctx context.Context,
	product entities.ProductID,
	origin entities.BranchID,
	products repositories.ProductRepository,
) ([]entities.AlternativeProduct, error) {
	siblings := r.Siblings(product, false)
	if len(siblings) == 0 {
		return nil, nil
	}

	positions, err := r.stock.StockForProducts(ctx, siblings, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to read origin stock of alternatives for %s: %w", product, err)
	}

	var alternatives []entities.AlternativeProduct
	for _, sibling := range siblings {
		available := positions[sibling].Available()
		if available <= 0 {
			continue
		}

		description := string(sibling)
		if p, err := products.GetProduct(ctx, sibling); err == nil {
			description = p.Description
		}

		alternatives = append(alternatives, entities.AlternativeProduct{
			ProductID:   sibling,
			Description: description,
			OriginStock: available,
		})
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].OriginStock > alternatives[j].OriginStock
	})
	return alternatives, nil
}
