package repositories

import (
	"context"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// MinimumStockRepository stores minimum-stock records and their append-only history
type MinimumStockRepository interface {
	// Get returns the record for a product at a branch, or nil when none exists.
	Get(ctx context.Context, product entities.ProductID, branch entities.BranchID) (*entities.MinimumStockRecord, error)
	ListByBranch(ctx context.Context, branch entities.BranchID) (map[entities.ProductID]*entities.MinimumStockRecord, error)

	// Save upserts the record keyed by product and branch and appends the history entry.
	// The calculated value is written; an existing manual override is preserved.
	Save(ctx context.Context, record *entities.MinimumStockRecord, entry *entities.MinimumStockHistoryEntry) error

	// SetOverride sets (or clears, with nil) the manual override and appends the history entry.
	SetOverride(
		ctx context.Context,
		product entities.ProductID,
		branch entities.BranchID,
		override *entities.Quantity,
		entry *entities.MinimumStockHistoryEntry,
	) error

	History(ctx context.Context, product entities.ProductID, branch entities.BranchID) ([]*entities.MinimumStockHistoryEntry, error)
}
