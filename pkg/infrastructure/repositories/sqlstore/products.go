package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
)

const productColumns = `product_id, description, catalog_group, sales_multiple, combined_group, unit_price`

// SaveProduct upserts a product. A combined group id also records the membership.
func (s *Store) SaveProduct(ctx context.Context, product *entities.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.saveProduct(ctx, tx, product); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) saveProduct(ctx context.Context, q querier, p *entities.Product) error {
	err := s.exec(ctx, q, `
INSERT INTO products (`+productColumns+`)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (product_id) DO UPDATE SET
  description = excluded.description,
  catalog_group = excluded.catalog_group,
  sales_multiple = excluded.sales_multiple,
  combined_group = excluded.combined_group,
  unit_price = excluded.unit_price`,
		string(p.ID), p.Description, p.CatalogGroup, p.SalesMultiple, p.CombinedGroupID, p.UnitPrice.String())
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ID, err)
	}
	if p.CombinedGroupID != "" {
		return s.addMember(ctx, q, p.CombinedGroupID, p.ID)
	}
	return nil
}

// SaveGroup records the members of a combined group, merging with existing members
func (s *Store) SaveGroup(ctx context.Context, group *entities.CombinedGroup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range group.Members {
		if err := s.addMember(ctx, tx, group.ID, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) addMember(ctx context.Context, q querier, groupID string, product entities.ProductID) error {
	err := s.exec(ctx, q, `
INSERT INTO combined_group_members (group_id, product_id) VALUES (?, ?)
ON CONFLICT (group_id, product_id) DO NOTHING`, groupID, string(product))
	if err != nil {
		return fmt.Errorf("failed to add %s to group %s: %w", product, groupID, err)
	}
	return nil
}

// GetProduct returns the product for an id
func (s *Store) GetProduct(ctx context.Context, id entities.ProductID) (*entities.Product, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+productColumns+` FROM products WHERE product_id = ?`), string(id))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrProductNotFound, id)
	}
	return p, err
}

// GetProducts returns the products for the given ids, in the same order
func (s *Store) GetProducts(ctx context.Context, ids []entities.ProductID) ([]*entities.Product, error) {
	products := make([]*entities.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// ListProducts returns all products sorted by id
func (s *Store) ListProducts(ctx context.Context) ([]*entities.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*entities.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListGroups returns every combined group sorted by id, members in insertion order
func (s *Store) ListGroups(ctx context.Context) ([]*entities.CombinedGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_id, product_id FROM combined_group_members ORDER BY group_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*entities.CombinedGroup
	for rows.Next() {
		var groupID, product string
		if err := rows.Scan(&groupID, &product); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].ID != groupID {
			groups = append(groups, &entities.CombinedGroup{ID: groupID})
		}
		last := groups[len(groups)-1]
		last.Members = append(last.Members, entities.ProductID(product))
	}
	return groups, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*entities.Product, error) {
	var (
		p     entities.Product
		id    string
		price string
	)
	if err := row.Scan(&id, &p.Description, &p.CatalogGroup, &p.SalesMultiple, &p.CombinedGroupID, &price); err != nil {
		return nil, err
	}
	p.ID = entities.ProductID(id)
	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s has an invalid unit price %q: %w", id, price, err)
	}
	p.UnitPrice = unitPrice
	return &p, nil
}
