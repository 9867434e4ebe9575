package repositories

import (
	"context"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// SalesRepository provides read access to outbound-sale movements.
// All windows are half-open: [start, end).
type SalesRepository interface {
	// SumSales returns the summed outbound-sale quantity of the given products at a branch.
	// Each movement line is counted at most once even if a product id repeats.
	SumSales(
		ctx context.Context,
		products []entities.ProductID,
		branch entities.BranchID,
		start, end time.Time,
	) (entities.Quantity, error)

	// SalesTotals returns quantity and revenue per product sold at a branch in one scan.
	SalesTotals(
		ctx context.Context,
		branch entities.BranchID,
		start, end time.Time,
	) (map[entities.ProductID]entities.SalesTotal, error)

	// MonthlySales returns per-product sales for each calendar month of a year at a branch.
	MonthlySales(
		ctx context.Context,
		branch entities.BranchID,
		year int,
	) (map[entities.ProductID][12]entities.Quantity, error)

	// ProductsSoldSince returns the distinct products with any outbound sale since the given time.
	ProductsSoldSince(ctx context.Context, since time.Time) ([]entities.ProductID, error)
}
