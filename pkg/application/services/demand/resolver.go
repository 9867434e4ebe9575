// Package demand resolves per-branch need for a product through the sales, group,
// minimum-stock and zero-stock fallbacks.
package demand

import (
	"context"
	"fmt"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/groups"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/sales"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// Resolution is the resolved demand of one product
type Resolution struct {
	ProductID    entities.ProductID
	Origin       entities.BranchID
	OriginSupply entities.Quantity
	TotalNeed    entities.Quantity
	Branches     []entities.BranchDemand // network priority order
	Alternatives []entities.AlternativeProduct
}

// Resolver resolves demand for one engine run. The group resolver it holds is run-scoped.
type Resolver struct {
	network    *entities.Network
	aggregator *sales.Aggregator
	groups     *groups.Resolver
	stock      repositories.StockRepository
	minimum    repositories.MinimumStockRepository
	products   repositories.ProductRepository
}

// NewResolver creates a demand resolver
func NewResolver(
	network *entities.Network,
	aggregator *sales.Aggregator,
	groupResolver *groups.Resolver,
	stock repositories.StockRepository,
	minimum repositories.MinimumStockRepository,
	products repositories.ProductRepository,
) *Resolver {
	return &Resolver{
		network:    network,
		aggregator: aggregator,
		groups:     groupResolver,
		stock:      stock,
		minimum:    minimum,
		products:   products,
	}
}

// Resolve computes the need of every destination branch for a product. Branches are read
// one after another in priority order.
func (r *Resolver) Resolve(
	ctx context.Context,
	product entities.ProductID,
	periodDays int,
	origin entities.BranchID,
) (*Resolution, error) {
	originStock, err := r.stock.GetStock(ctx, product, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to read origin stock of %s: %w", product, err)
	}

	res := &Resolution{
		ProductID:    product,
		Origin:       origin,
		OriginSupply: originStock.Available(),
	}

	for _, branch := range r.network.Destinations() {
		if branch.ID == origin {
			continue
		}
		bd, err := r.resolveBranch(ctx, product, branch, periodDays)
		if err != nil {
			return nil, err
		}
		res.Branches = append(res.Branches, bd)
		res.TotalNeed += bd.Need
	}

	if res.TotalNeed == 0 {
		r.applyMinimumStockFallback(res)
	}
	r.applyZeroStockTieIn(res)

	if res.TotalNeed > res.OriginSupply {
		alternatives, err := r.groups.Alternatives(ctx, product, origin, r.products)
		if err != nil {
			return nil, err
		}
		res.Alternatives = alternatives
	}
	return res, nil
}

// resolveBranch applies own sales, then the group aggregate when own sales are zero
func (r *Resolver) resolveBranch(
	ctx context.Context,
	product entities.ProductID,
	branch entities.Branch,
	periodDays int,
) (entities.BranchDemand, error) {
	bd := entities.BranchDemand{BranchID: branch.ID, BranchName: branch.Name}

	position, err := r.stock.GetStock(ctx, product, branch.ID)
	if err != nil {
		return bd, fmt.Errorf("failed to read stock of %s at %s: %w", product, branch.ID, err)
	}
	bd.OnHand = position.OnHand

	own, err := r.aggregator.ProductSales(ctx, product, branch.ID, periodDays)
	if err != nil {
		return bd, err
	}
	bd.OwnSales = own
	bd.Meta = own

	if own == 0 {
		groupSales, err := r.groups.GroupSales(ctx, product, branch.ID, periodDays, true)
		if err != nil {
			return bd, err
		}
		bd.GroupSales = groupSales
		if groupSales > 0 {
			bd.Meta = groupSales
			bd.UsedGroupFallback = true
		}
	}

	record, err := r.minimum.Get(ctx, product, branch.ID)
	if err != nil {
		return bd, fmt.Errorf("failed to read minimum stock of %s at %s: %w", product, branch.ID, err)
	}
	if record != nil {
		bd.MinimumStock = record.Active()
	}

	bd.Need = needFor(bd.Meta, bd.OnHand)
	return bd, nil
}

// applyMinimumStockFallback lifts branches without need to their minimum stock
func (r *Resolver) applyMinimumStockFallback(res *Resolution) {
	for i := range res.Branches {
		bd := &res.Branches[i]
		if bd.Need != 0 || bd.MinimumStock <= 0 || bd.MinimumStock <= bd.OnHand {
			continue
		}
		bd.Meta = bd.MinimumStock
		bd.Need = needFor(bd.Meta, bd.OnHand)
		bd.UsedMinimumStockFallback = true
		res.TotalNeed += bd.Need
	}
}

// applyZeroStockTieIn gives one unit of need to empty branches, in priority order, while the
// cumulative need is below the origin supply
func (r *Resolver) applyZeroStockTieIn(res *Resolution) {
	for i := range res.Branches {
		if res.TotalNeed >= res.OriginSupply {
			return
		}
		bd := &res.Branches[i]
		if bd.OnHand != 0 || bd.Need != 0 {
			continue
		}
		bd.Meta = 1
		bd.Need = 1
		bd.ZeroStockTieIn = true
		res.TotalNeed++
	}
}

func needFor(meta, onHand entities.Quantity) entities.Quantity {
	if meta <= onHand {
		return 0
	}
	return meta - onHand
}
