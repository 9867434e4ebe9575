package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// SetStock stores a position, replacing any existing one for the same product and branch
func (s *Store) SetStock(ctx context.Context, position entities.StockPosition) error {
	return s.setStock(ctx, s.db, position)
}

func (s *Store) setStock(ctx context.Context, q querier, p entities.StockPosition) error {
	err := s.exec(ctx, q, `
INSERT INTO stock (product_id, branch_id, on_hand, reserved) VALUES (?, ?, ?, ?)
ON CONFLICT (product_id, branch_id) DO UPDATE SET
  on_hand = excluded.on_hand,
  reserved = excluded.reserved`,
		string(p.ProductID), string(p.BranchID), int64(p.OnHand), int64(p.Reserved))
	if err != nil {
		return fmt.Errorf("failed to save stock of %s at %s: %w", p.ProductID, p.BranchID, err)
	}
	return nil
}

// GetStock returns the stock position; a missing row is a zero position
func (s *Store) GetStock(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
) (entities.StockPosition, error) {
	pos := entities.StockPosition{ProductID: product, BranchID: branch}
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT on_hand, reserved FROM stock WHERE product_id = ? AND branch_id = ?`),
		string(product), string(branch)).Scan(&pos.OnHand, &pos.Reserved)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return pos, fmt.Errorf("failed to read stock of %s at %s: %w", product, branch, err)
	}
	return pos, nil
}

// StockForProducts returns the positions of several products at a branch
func (s *Store) StockForProducts(
	ctx context.Context,
	products []entities.ProductID,
	branch entities.BranchID,
) (map[entities.ProductID]entities.StockPosition, error) {
	result := make(map[entities.ProductID]entities.StockPosition, len(products))
	ids := distinct(products)
	if len(ids) == 0 {
		return result, nil
	}
	for _, p := range ids {
		result[p] = entities.StockPosition{ProductID: p, BranchID: branch}
	}

	args := append([]any{string(branch)}, idArgs(ids)...)
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT product_id, on_hand, reserved FROM stock
WHERE branch_id = ? AND product_id IN (`+placeholders(len(ids))+`)`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock at %s: %w", branch, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			pos = entities.StockPosition{BranchID: branch}
		)
		if err := rows.Scan(&id, &pos.OnHand, &pos.Reserved); err != nil {
			return nil, err
		}
		pos.ProductID = entities.ProductID(id)
		result[pos.ProductID] = pos
	}
	return result, rows.Err()
}

func distinct(ids []entities.ProductID) []entities.ProductID {
	seen := make(map[entities.ProductID]bool, len(ids))
	out := make([]entities.ProductID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func idArgs(ids []entities.ProductID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	return args
}
