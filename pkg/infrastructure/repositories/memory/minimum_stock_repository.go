package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

// MinimumStockRepository provides in-memory minimum-stock records and history
type MinimumStockRepository struct {
	mu      sync.RWMutex
	records map[stockKey]*entities.MinimumStockRecord
	history map[stockKey][]*entities.MinimumStockHistoryEntry
}

// NewMinimumStockRepository creates a new in-memory minimum-stock repository
func NewMinimumStockRepository() *MinimumStockRepository {
	return &MinimumStockRepository{
		records: make(map[stockKey]*entities.MinimumStockRecord),
		history: make(map[stockKey][]*entities.MinimumStockHistoryEntry),
	}
}

// Verify interface compliance
var _ repositories.MinimumStockRepository = (*MinimumStockRepository)(nil)

// Get returns a copy of the stored record, or nil
func (r *MinimumStockRepository) Get(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
) (*entities.MinimumStockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[stockKey{product, branch}]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

// ListByBranch returns copies of every record stored for a branch
func (r *MinimumStockRepository) ListByBranch(
	ctx context.Context,
	branch entities.BranchID,
) (map[entities.ProductID]*entities.MinimumStockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[entities.ProductID]*entities.MinimumStockRecord)
	for key, rec := range r.records {
		if key.branch == branch {
			result[key.product] = copyRecord(rec)
		}
	}
	return result, nil
}

// Save upserts the record and appends the entry. An existing row keeps its override as it
// is, including none; the record's override only seeds a new row.
func (r *MinimumStockRepository) Save(
	ctx context.Context,
	record *entities.MinimumStockRecord,
	entry *entities.MinimumStockHistoryEntry,
) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := stockKey{record.ProductID, record.BranchID}
	stored := copyRecord(record)
	if existing, ok := r.records[key]; ok {
		stored.ManualOverride = copyQuantity(existing.ManualOverride)
	}
	r.records[key] = stored

	if entry != nil {
		r.history[key] = append(r.history[key], copyEntry(entry))
	}
	return nil
}

// SetOverride sets or clears the manual override, creating an empty record if needed
func (r *MinimumStockRepository) SetOverride(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	override *entities.Quantity,
	entry *entities.MinimumStockHistoryEntry,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stockKey{product, branch}
	rec, ok := r.records[key]
	if !ok {
		rec = &entities.MinimumStockRecord{ProductID: product, BranchID: branch}
		r.records[key] = rec
	}
	rec.ManualOverride = copyQuantity(override)
	if entry != nil {
		rec.UpdatedAt = entry.CreatedAt
		r.history[key] = append(r.history[key], copyEntry(entry))
	}
	return nil
}

// History returns the entries for a product at a branch, oldest first
func (r *MinimumStockRepository) History(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
) ([]*entities.MinimumStockHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.history[stockKey{product, branch}]
	result := make([]*entities.MinimumStockHistoryEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, copyEntry(e))
	}
	return result, nil
}

// Count returns the number of stored records
func (r *MinimumStockRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func copyRecord(rec *entities.MinimumStockRecord) *entities.MinimumStockRecord {
	c := *rec
	c.ManualOverride = copyQuantity(rec.ManualOverride)
	return &c
}

func copyEntry(e *entities.MinimumStockHistoryEntry) *entities.MinimumStockHistoryEntry {
	c := *e
	c.PreviousValue = copyQuantity(e.PreviousValue)
	if e.PercentChange != nil {
		pct := *e.PercentChange
		c.PercentChange = &pct
	}
	return &c
}

func copyQuantity(q *entities.Quantity) *entities.Quantity {
	if q == nil {
		return nil
	}
	v := *q
	return &v
}
