// Package sales computes period-bounded sold-quantity aggregates.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// Query selects outbound sales of a product set at a branch over a day window that ends
// OffsetDays before the end of today.
type Query struct {
	Products   []entities.ProductID
	Branch     entities.BranchID
	WindowDays int
	OffsetDays int
}

// Aggregator sums outbound sales over rolling day windows
type Aggregator struct {
	repo  repositories.SalesRepository
	clock shared.Clock
}

// NewAggregator creates a sales aggregator
func NewAggregator(repo repositories.SalesRepository, clock shared.Clock) *Aggregator {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Aggregator{repo: repo, clock: clock}
}

// Now returns the aggregator's notion of the current time
func (a *Aggregator) Now() time.Time {
	return a.clock()
}

// Sales returns the summed outbound-sale quantity selected by the query
func (a *Aggregator) Sales(ctx context.Context, q Query) (entities.Quantity, error) {
	if q.WindowDays <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d days", q.WindowDays)
	}
	if q.OffsetDays < 0 {
		return 0, fmt.Errorf("offset cannot be negative, got %d days", q.OffsetDays)
	}

	products := uniqueProducts(q.Products)
	if len(products) == 0 {
		return 0, nil
	}

	start, end := shared.DayWindow(a.clock(), q.WindowDays, q.OffsetDays)
	total, err := a.repo.SumSales(ctx, products, q.Branch, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to sum sales at %s: %w", q.Branch, err)
	}
	return total, nil
}

// ProductSales returns the sales of one product at a branch over the last windowDays days
func (a *Aggregator) ProductSales(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	windowDays int,
) (entities.Quantity, error) {
	return a.Sales(ctx, Query{
		Products:   []entities.ProductID{product},
		Branch:     branch,
		WindowDays: windowDays,
	})
}

// ProductSalesOffset returns the sales of one product over a window ending offsetDays ago
func (a *Aggregator) ProductSalesOffset(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	windowDays, offsetDays int,
) (entities.Quantity, error) {
	return a.Sales(ctx, Query{
		Products:   []entities.ProductID{product},
		Branch:     branch,
		WindowDays: windowDays,
		OffsetDays: offsetDays,
	})
}

func uniqueProducts(products []entities.ProductID) []entities.ProductID {
	seen := make(map[entities.ProductID]bool, len(products))
	unique := make([]entities.ProductID, 0, len(products))
	for _, p := range products {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	return unique
}
