package sqlstore

import (
	"context"

	csvrepo "github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/csv"
)

// ImportStats counts the rows written by ImportScenario
type ImportStats struct {
	Products  int
	Groups    int
	Stock     int
	Movements int
	Overrides int
}

// ImportScenario writes a loaded scenario in one transaction. Movements already present
// are skipped; overrides are written without history entries.
func (s *Store) ImportScenario(ctx context.Context, scenario *csvrepo.Scenario) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	for _, p := range scenario.Products {
		if err := s.saveProduct(ctx, tx, p); err != nil {
			return stats, err
		}
		stats.Products++
	}
	for _, g := range scenario.Groups {
		for _, m := range g.Members {
			if err := s.addMember(ctx, tx, g.ID, m); err != nil {
				return stats, err
			}
		}
		stats.Groups++
	}
	for _, pos := range scenario.Stock {
		if err := s.setStock(ctx, tx, *pos); err != nil {
			return stats, err
		}
		stats.Stock++
	}
	for _, m := range scenario.Movements {
		if err := s.addMovement(ctx, tx, m); err != nil {
			return stats, err
		}
		stats.Movements++
	}
	for _, o := range scenario.Overrides {
		value := o.Value
		if err := s.setOverride(ctx, tx, o.ProductID, o.BranchID, &value, nil); err != nil {
			return stats, err
		}
		stats.Overrides++
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, err
	}
	return stats, nil
}
