package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

const recordColumns = `product_id, branch_id, calculated, manual_override, class, safety_factor,
  trend_factor, seasonal_factor, lead_time_days, sales_180, sales_90, sales_previous,
  computed_at, updated_at`

const historyColumns = `entry_id, product_id, branch_id, kind, previous_value, new_value, percent_change,
  class, safety_factor, trend_factor, seasonal_factor, lead_time_days, created_at`

// Get returns the stored record, or nil
func (s *Store) Get(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
) (*entities.MinimumStockRecord, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+recordColumns+` FROM minimum_stock WHERE product_id = ? AND branch_id = ?`),
		string(product), string(branch))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read minimum stock of %s at %s: %w", product, branch, err)
	}
	return rec, nil
}

// ListByBranch returns every record stored for a branch
func (s *Store) ListByBranch(
	ctx context.Context,
	branch entities.BranchID,
) (map[entities.ProductID]*entities.MinimumStockRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+recordColumns+` FROM minimum_stock WHERE branch_id = ?`), string(branch))
	if err != nil {
		return nil, fmt.Errorf("failed to list minimum stock at %s: %w", branch, err)
	}
	defer rows.Close()

	result := make(map[entities.ProductID]*entities.MinimumStockRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result[rec.ProductID] = rec
	}
	return result, rows.Err()
}

// Save upserts the record, keeping an existing manual override, and appends the entry
// in the same transaction
func (s *Store) Save(
	ctx context.Context,
	record *entities.MinimumStockRecord,
	entry *entities.MinimumStockHistoryEntry,
) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	f := record.Factors
	err = s.exec(ctx, tx, `
INSERT INTO minimum_stock (`+recordColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (product_id, branch_id) DO UPDATE SET
  calculated = excluded.calculated,
  class = excluded.class,
  safety_factor = excluded.safety_factor,
  trend_factor = excluded.trend_factor,
  seasonal_factor = excluded.seasonal_factor,
  lead_time_days = excluded.lead_time_days,
  sales_180 = excluded.sales_180,
  sales_90 = excluded.sales_90,
  sales_previous = excluded.sales_previous,
  computed_at = excluded.computed_at,
  updated_at = excluded.updated_at`,
		string(record.ProductID), string(record.BranchID), int64(record.Calculated), nullQuantity(record.ManualOverride),
		f.Class.String(), f.SafetyFactor.String(), f.TrendFactor.String(), f.SeasonalFactor.String(), f.LeadTimeDays,
		int64(record.Sales180), int64(record.Sales90), int64(record.SalesPrevious),
		unixSeconds(record.ComputedAt), unixSeconds(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save minimum stock of %s at %s: %w", record.ProductID, record.BranchID, err)
	}

	if err := s.appendHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// SetOverride sets or clears the manual override, creating an empty record if needed
func (s *Store) SetOverride(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	override *entities.Quantity,
	entry *entities.MinimumStockHistoryEntry,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.setOverride(ctx, tx, product, branch, override, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) setOverride(
	ctx context.Context,
	q querier,
	product entities.ProductID,
	branch entities.BranchID,
	override *entities.Quantity,
	entry *entities.MinimumStockHistoryEntry,
) error {
	var updatedAt time.Time
	if entry != nil {
		updatedAt = entry.CreatedAt
	}

	err := s.exec(ctx, q, `
INSERT INTO minimum_stock (product_id, branch_id, manual_override, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (product_id, branch_id) DO UPDATE SET
  manual_override = excluded.manual_override,
  updated_at = CASE WHEN excluded.updated_at > 0 THEN excluded.updated_at ELSE minimum_stock.updated_at END`,
		string(product), string(branch), nullQuantity(override), unixSeconds(updatedAt))
	if err != nil {
		return fmt.Errorf("failed to set override of %s at %s: %w", product, branch, err)
	}
	return s.appendHistory(ctx, q, entry)
}

// History returns the entries for a product at a branch, oldest first
func (s *Store) History(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
) ([]*entities.MinimumStockHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT `+historyColumns+` FROM minimum_stock_history
WHERE product_id = ? AND branch_id = ?
ORDER BY seq`), string(product), string(branch))
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s at %s: %w", product, branch, err)
	}
	defer rows.Close()

	entries := []*entities.MinimumStockHistoryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) appendHistory(ctx context.Context, q querier, e *entities.MinimumStockHistoryEntry) error {
	if e == nil {
		return nil
	}
	var pct sql.NullString
	if e.PercentChange != nil {
		pct = sql.NullString{String: e.PercentChange.String(), Valid: true}
	}
	f := e.Factors
	err := s.exec(ctx, q, `
INSERT INTO minimum_stock_history (`+historyColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.ProductID), string(e.BranchID), e.Kind.String(), nullQuantity(e.PreviousValue),
		int64(e.NewValue), pct, f.Class.String(), f.SafetyFactor.String(), f.TrendFactor.String(),
		f.SeasonalFactor.String(), f.LeadTimeDays, unixSeconds(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append history of %s at %s: %w", e.ProductID, e.BranchID, err)
	}
	return nil
}

func scanRecord(row scanner) (*entities.MinimumStockRecord, error) {
	var (
		rec                     entities.MinimumStockRecord
		product, branch, class  string
		safety, trend, seasonal string
		override                sql.NullInt64
		computedAt, updatedAt   int64
	)
	err := row.Scan(&product, &branch, &rec.Calculated, &override, &class, &safety, &trend, &seasonal,
		&rec.Factors.LeadTimeDays, &rec.Sales180, &rec.Sales90, &rec.SalesPrevious, &computedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec.ProductID = entities.ProductID(product)
	rec.BranchID = entities.BranchID(branch)
	rec.ManualOverride = quantityFromNull(override)
	rec.ComputedAt = fromUnix(computedAt)
	rec.UpdatedAt = fromUnix(updatedAt)
	if err := parseFactors(&rec.Factors, class, safety, trend, seasonal); err != nil {
		return nil, fmt.Errorf("minimum stock of %s at %s: %w", product, branch, err)
	}
	return &rec, nil
}

func scanEntry(row scanner) (*entities.MinimumStockHistoryEntry, error) {
	var (
		e                       entities.MinimumStockHistoryEntry
		product, branch, kind   string
		class                   string
		safety, trend, seasonal string
		previous                sql.NullInt64
		pct                     sql.NullString
		createdAt               int64
	)
	err := row.Scan(&e.ID, &product, &branch, &kind, &previous, &e.NewValue, &pct,
		&class, &safety, &trend, &seasonal, &e.Factors.LeadTimeDays, &createdAt)
	if err != nil {
		return nil, err
	}

	e.ProductID = entities.ProductID(product)
	e.BranchID = entities.BranchID(branch)
	e.PreviousValue = quantityFromNull(previous)
	e.CreatedAt = fromUnix(createdAt)
	if e.Kind, err = entities.ParseHistoryKind(kind); err != nil {
		return nil, err
	}
	if pct.Valid {
		d, err := decimal.NewFromString(pct.String)
		if err != nil {
			return nil, fmt.Errorf("history entry %s has an invalid percent change %q: %w", e.ID, pct.String, err)
		}
		e.PercentChange = &d
	}
	if err := parseFactors(&e.Factors, class, safety, trend, seasonal); err != nil {
		return nil, fmt.Errorf("history entry %s: %w", e.ID, err)
	}
	return &e, nil
}

func parseFactors(f *entities.MinimumStockFactors, class, safety, trend, seasonal string) error {
	var err error
	if f.Class, err = entities.ParseABCClass(class); err != nil {
		return err
	}
	if f.SafetyFactor, err = decimal.NewFromString(safety); err != nil {
		return fmt.Errorf("invalid safety factor %q: %w", safety, err)
	}
	if f.TrendFactor, err = decimal.NewFromString(trend); err != nil {
		return fmt.Errorf("invalid trend factor %q: %w", trend, err)
	}
	if f.SeasonalFactor, err = decimal.NewFromString(seasonal); err != nil {
		return fmt.Errorf("invalid seasonal factor %q: %w", seasonal, err)
	}
	return nil
}

func nullQuantity(q *entities.Quantity) sql.NullInt64 {
	if q == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*q), Valid: true}
}

func quantityFromNull(n sql.NullInt64) *entities.Quantity {
	if !n.Valid {
		return nil
	}
	q := entities.Quantity(n.Int64)
	return &q
}
