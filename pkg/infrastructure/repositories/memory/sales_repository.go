package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// SalesRepository provides in-memory movement storage and sales aggregates
type SalesRepository struct {
	mu        sync.RWMutex
	movements []entities.Movement
	byID      map[string]int
}

// NewSalesRepository creates a new in-memory sales repository
func NewSalesRepository(expectedMovements int) *SalesRepository {
	return &SalesRepository{
		movements: make([]entities.Movement, 0, expectedMovements),
		byID:      make(map[string]int, expectedMovements),
	}
}

// Verify interface compliance
var _ repositories.SalesRepository = (*SalesRepository)(nil)

// LoadMovements loads movements into the repository
func (r *SalesRepository) LoadMovements(movements []*entities.Movement) error {
	for _, m := range movements {
		r.AddMovement(*m)
	}
	return nil
}

// AddMovement stores a movement; a movement with an existing id replaces the stored line
func (r *SalesRepository) AddMovement(m entities.Movement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, exists := r.byID[m.ID]; exists {
		r.movements[idx] = m
		return
	}
	r.byID[m.ID] = len(r.movements)
	r.movements = append(r.movements, m)
}

// SumSales returns the outbound-sale quantity of the products at a branch in [start, end)
func (r *SalesRepository) SumSales(
	ctx context.Context,
	products []entities.ProductID,
	branch entities.BranchID,
	start, end time.Time,
) (entities.Quantity, error) {
	if len(products) == 0 {
		return 0, nil
	}
	wanted := make(map[entities.ProductID]bool, len(products))
	for _, p := range products {
		wanted[p] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var total entities.Quantity
	for i := range r.movements {
		m := &r.movements[i]
		if wanted[m.ProductID] && isSaleIn(m, branch, start, end) {
			total += m.Quantity
		}
	}
	return total, nil
}

// SalesTotals returns quantity and revenue per product sold at a branch in [start, end)
func (r *SalesRepository) SalesTotals(
	ctx context.Context,
	branch entities.BranchID,
	start, end time.Time,
) (map[entities.ProductID]entities.SalesTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[entities.ProductID]entities.SalesTotal)
	for i := range r.movements {
		m := &r.movements[i]
		if !isSaleIn(m, branch, start, end) {
			continue
		}
		t := totals[m.ProductID]
		t.Quantity += m.Quantity
		t.Revenue = t.Revenue.Add(m.Revenue())
		totals[m.ProductID] = t
	}
	return totals, nil
}

// MonthlySales returns per-product sales for each month of the given year at a branch
func (r *SalesRepository) MonthlySales(
	ctx context.Context,
	branch entities.BranchID,
	year int,
) (map[entities.ProductID][12]entities.Quantity, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	r.mu.RLock()
	defer r.mu.RUnlock()

	monthly := make(map[entities.ProductID][12]entities.Quantity)
	for i := range r.movements {
		m := &r.movements[i]
		if !isSaleIn(m, branch, start, end) {
			continue
		}
		months := monthly[m.ProductID]
		months[m.OccurredAt.Month()-1] += m.Quantity
		monthly[m.ProductID] = months
	}
	return monthly, nil
}

// ProductsSoldSince returns the distinct products with an outbound sale at or after since, sorted
func (r *SalesRepository) ProductsSoldSince(ctx context.Context, since time.Time) ([]entities.ProductID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[entities.ProductID]bool)
	for i := range r.movements {
		m := &r.movements[i]
		if m.Kind == entities.OutboundSale && !m.OccurredAt.Before(since) {
			seen[m.ProductID] = true
		}
	}

	products := make([]entities.ProductID, 0, len(seen))
	for p := range seen {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products, nil
}

// GetAllMovements returns a copy of all stored movements
func (r *SalesRepository) GetAllMovements() []entities.Movement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.Movement(nil), r.movements...)
}

func isSaleIn(m *entities.Movement, branch entities.BranchID, start, end time.Time) bool {
	return m.Kind == entities.OutboundSale &&
		m.BranchID == branch &&
		!m.OccurredAt.Before(start) &&
		m.OccurredAt.Before(end)
}
