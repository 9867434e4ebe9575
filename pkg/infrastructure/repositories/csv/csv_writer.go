package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// WriteScenario writes a scenario directory readable by LoadScenario. Empty groups and
// overrides produce no file.
func WriteScenario(dir string, s *Scenario) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scenario directory: %w", err)
	}

	products := [][]string{{"product_id", "description", "catalog_group", "sales_multiple", "combined_group", "unit_price"}}
	for _, p := range s.Products {
		products = append(products, []string{
			string(p.ID), p.Description, p.CatalogGroup, strconv.Itoa(p.SalesMultiple), p.CombinedGroupID, p.UnitPrice.String(),
		})
	}
	if err := writeRecords(filepath.Join(dir, ProductsFile), products); err != nil {
		return err
	}

	stock := [][]string{{"product_id", "branch_id", "on_hand", "reserved"}}
	for _, pos := range s.Stock {
		stock = append(stock, []string{string(pos.ProductID), string(pos.BranchID), quantity(pos.OnHand), quantity(pos.Reserved)})
	}
	if err := writeRecords(filepath.Join(dir, StockFile), stock); err != nil {
		return err
	}

	movements := [][]string{{"movement_id", "product_id", "branch_id", "kind", "quantity", "unit_price", "occurred_at"}}
	for _, m := range s.Movements {
		movements = append(movements, []string{
			m.ID, string(m.ProductID), string(m.BranchID), m.Kind.String(), quantity(m.Quantity),
			m.UnitPrice.String(), m.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeRecords(filepath.Join(dir, MovementsFile), movements); err != nil {
		return err
	}

	if len(s.Groups) > 0 {
		groups := [][]string{{"group_id", "product_id"}}
		for _, g := range s.Groups {
			for _, m := range g.Members {
				groups = append(groups, []string{g.ID, string(m)})
			}
		}
		if err := writeRecords(filepath.Join(dir, GroupsFile), groups); err != nil {
			return err
		}
	}

	if len(s.Overrides) > 0 {
		overrides := [][]string{{"product_id", "branch_id", "manual_override"}}
		for _, o := range s.Overrides {
			overrides = append(overrides, []string{string(o.ProductID), string(o.BranchID), quantity(o.Value)})
		}
		if err := writeRecords(filepath.Join(dir, OverridesFile), overrides); err != nil {
			return err
		}
	}
	return nil
}

func writeRecords(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}

func quantity(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}
