package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

var saleKind = entities.OutboundSale.String()

// AddMovement inserts a movement line; a line with a known id is ignored
func (s *Store) AddMovement(ctx context.Context, m *entities.Movement) error {
	return s.addMovement(ctx, s.db, m)
}

func (s *Store) addMovement(ctx context.Context, q querier, m *entities.Movement) error {
	err := s.exec(ctx, q, `
INSERT INTO movements (movement_id, product_id, branch_id, kind, quantity, unit_price, occurred_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (movement_id) DO NOTHING`,
		m.ID, string(m.ProductID), string(m.BranchID), m.Kind.String(), int64(m.Quantity),
		m.UnitPrice.String(), m.OccurredAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save movement %s: %w", m.ID, err)
	}
	return nil
}

// SumSales returns the outbound-sale quantity of the products at a branch in [start, end)
func (s *Store) SumSales(
	ctx context.Context,
	products []entities.ProductID,
	branch entities.BranchID,
	start, end time.Time,
) (entities.Quantity, error) {
	ids := distinct(products)
	if len(ids) == 0 {
		return 0, nil
	}

	args := append([]any{saleKind, string(branch), start.Unix(), end.Unix()}, idArgs(ids)...)
	var total int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
SELECT CAST(COALESCE(SUM(quantity), 0) AS BIGINT) FROM movements
WHERE kind = ? AND branch_id = ? AND occurred_at >= ? AND occurred_at < ?
  AND product_id IN (`+placeholders(len(ids))+`)`), args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum sales at %s: %w", branch, err)
	}
	return entities.Quantity(total), nil
}

// SalesTotals returns quantity and revenue per product sold at a branch in [start, end).
// Rows are grouped by unit price so revenue is summed exactly in decimal.
func (s *Store) SalesTotals(
	ctx context.Context,
	branch entities.BranchID,
	start, end time.Time,
) (map[entities.ProductID]entities.SalesTotal, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT product_id, unit_price, CAST(SUM(quantity) AS BIGINT) FROM movements
WHERE kind = ? AND branch_id = ? AND occurred_at >= ? AND occurred_at < ?
GROUP BY product_id, unit_price`), saleKind, string(branch), start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to read sales totals at %s: %w", branch, err)
	}
	defer rows.Close()

	totals := make(map[entities.ProductID]entities.SalesTotal)
	for rows.Next() {
		var (
			id, rawPrice string
			qty          int64
		)
		if err := rows.Scan(&id, &rawPrice, &qty); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("movement of %s has an invalid unit price %q: %w", id, rawPrice, err)
		}
		t := totals[entities.ProductID(id)]
		t.Quantity += entities.Quantity(qty)
		t.Revenue = t.Revenue.Add(price.Mul(decimal.NewFromInt(qty)))
		totals[entities.ProductID(id)] = t
	}
	return totals, rows.Err()
}

// MonthlySales returns per-product sales for each UTC month of the given year at a branch
func (s *Store) MonthlySales(
	ctx context.Context,
	branch entities.BranchID,
	year int,
) (map[entities.ProductID][12]entities.Quantity, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	month := s.monthOf("occurred_at")

	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT product_id, `+month+`, CAST(SUM(quantity) AS BIGINT) FROM movements
WHERE kind = ? AND branch_id = ? AND occurred_at >= ? AND occurred_at < ?
GROUP BY product_id, `+month), saleKind, string(branch), start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to read monthly sales at %s: %w", branch, err)
	}
	defer rows.Close()

	monthly := make(map[entities.ProductID][12]entities.Quantity)
	for rows.Next() {
		var (
			id  string
			m   int
			qty int64
		)
		if err := rows.Scan(&id, &m, &qty); err != nil {
			return nil, err
		}
		if m < 1 || m > 12 {
			return nil, fmt.Errorf("unexpected month %d for %s", m, id)
		}
		months := monthly[entities.ProductID(id)]
		months[m-1] += entities.Quantity(qty)
		monthly[entities.ProductID(id)] = months
	}
	return monthly, rows.Err()
}

// ProductsSoldSince returns the distinct products with an outbound sale at or after since, sorted
func (s *Store) ProductsSoldSince(ctx context.Context, since time.Time) ([]entities.ProductID, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT DISTINCT product_id FROM movements
WHERE kind = ? AND occurred_at >= ?
ORDER BY product_id`), saleKind, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list sold products: %w", err)
	}
	defer rows.Close()

	var products []entities.ProductID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		products = append(products, entities.ProductID(id))
	}
	return products, rows.Err()
}
