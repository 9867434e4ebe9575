package repositories

import (
	"context"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// StockRepository provides access to on-hand and reserved stock
type StockRepository interface {
	// GetStock returns the position of a product at a branch; a missing row is a zero position.
	GetStock(ctx context.Context, product entities.ProductID, branch entities.BranchID) (entities.StockPosition, error)
	StockForProducts(
		ctx context.Context,
		products []entities.ProductID,
		branch entities.BranchID,
	) (map[entities.ProductID]entities.StockPosition, error)
}
