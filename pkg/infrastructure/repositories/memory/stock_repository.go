package memory

import (
	"context"
	"sync"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

type stockKey struct {
	product entities.ProductID
	branch  entities.BranchID
}

// StockRepository provides in-memory stock positions
type StockRepository struct {
	mu        sync.RWMutex
	positions map[stockKey]entities.StockPosition
}

// NewStockRepository creates a new in-memory stock repository
func NewStockRepository() *StockRepository {
	return &StockRepository{
		positions: make(map[stockKey]entities.StockPosition),
	}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// LoadStock loads stock positions into the repository
func (r *StockRepository) LoadStock(positions []*entities.StockPosition) error {
	for _, p := range positions {
		r.SetStock(*p)
	}
	return nil
}

// SetStock stores a position, replacing any existing one for the same product and branch
func (r *StockRepository) SetStock(position entities.StockPosition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[stockKey{position.ProductID, position.BranchID}] = position
}

// GetStock returns the stock position; a missing position is a zero position
func (r *StockRepository) GetStock(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
) (entities.StockPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if pos, ok := r.positions[stockKey{product, branch}]; ok {
		return pos, nil
	}
	return entities.StockPosition{ProductID: product, BranchID: branch}, nil
}

// StockForProducts returns the positions of several products at a branch
func (r *StockRepository) StockForProducts(
	ctx context.Context,
	products []entities.ProductID,
	branch entities.BranchID,
) (map[entities.ProductID]entities.StockPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[entities.ProductID]entities.StockPosition, len(products))
	for _, p := range products {
		if pos, ok := r.positions[stockKey{p, branch}]; ok {
			result[p] = pos
		} else {
			result[p] = entities.StockPosition{ProductID: p, BranchID: branch}
		}
	}
	return result, nil
}

// GetAllStock returns all stored positions
func (r *StockRepository) GetAllStock() []entities.StockPosition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions := make([]entities.StockPosition, 0, len(r.positions))
	for _, p := range r.positions {
		positions = append(positions, p)
	}
	return positions
}
