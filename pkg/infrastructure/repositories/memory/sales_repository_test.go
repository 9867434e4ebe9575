package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

func sale(id string, product entities.ProductID, branch entities.BranchID, qty entities.Quantity, price string, at time.Time) entities.Movement {
	return entities.Movement{
		ID:         id,
		ProductID:  product,
		BranchID:   branch,
		Kind:       entities.OutboundSale,
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(price),
		OccurredAt: at,
	}
}

func TestSalesRepository_SumSales(t *testing.T) {
	ctx := context.Background()
	repo := NewSalesRepository(8)
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	repo.AddMovement(sale("M1", "P1", "01", 5, "1", day))
	repo.AddMovement(sale("M2", "P2", "01", 3, "1", day.Add(2*time.Hour)))
	repo.AddMovement(sale("M3", "P1", "02", 7, "1", day))
	repo.AddMovement(sale("M4", "P1", "01", 4, "1", day.AddDate(0, 0, -40)))
	repo.AddMovement(entities.Movement{
		ID: "M5", ProductID: "P1", BranchID: "01", Kind: entities.Inbound, Quantity: 50, OccurredAt: day,
	})

	tests := []struct {
		name     string
		products []entities.ProductID
		branch   entities.BranchID
		start    time.Time
		end      time.Time
		expected entities.Quantity
	}{
		{"single product", []entities.ProductID{"P1"}, "01", day, day.AddDate(0, 0, 1), 5},
		{"two products", []entities.ProductID{"P1", "P2"}, "01", day, day.AddDate(0, 0, 1), 8},
		{"repeated id counted once", []entities.ProductID{"P1", "P1", "P2"}, "01", day, day.AddDate(0, 0, 1), 8},
		{"wider window", []entities.ProductID{"P1"}, "01", day.AddDate(0, 0, -90), day.AddDate(0, 0, 1), 9},
		{"end is exclusive", []entities.ProductID{"P1"}, "01", day.AddDate(0, 0, -90), day, 4},
		{"other branch", []entities.ProductID{"P1"}, "02", day, day.AddDate(0, 0, 1), 7},
		{"no products", nil, "01", day, day.AddDate(0, 0, 1), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.SumSales(ctx, tc.products, tc.branch, tc.start, tc.end)
			if err != nil {
				t.Fatalf("SumSales failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestSalesRepository_ReplacesDuplicateLine(t *testing.T) {
	ctx := context.Background()
	repo := NewSalesRepository(2)
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	repo.AddMovement(sale("M1", "P1", "01", 5, "1", day))
	repo.AddMovement(sale("M1", "P1", "01", 6, "1", day))

	got, _ := repo.SumSales(ctx, []entities.ProductID{"P1"}, "01", day, day.AddDate(0, 0, 1))
	if got != 6 {
		t.Errorf("Expected re-loaded line to replace the original, got %d", got)
	}
	if len(repo.GetAllMovements()) != 1 {
		t.Errorf("Expected 1 stored movement, got %d", len(repo.GetAllMovements()))
	}
}

func TestSalesRepository_BulkAggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewSalesRepository(8)

	repo.AddMovement(sale("M1", "P1", "01", 2, "10.50", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	repo.AddMovement(sale("M2", "P1", "01", 1, "10.50", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)))
	repo.AddMovement(sale("M3", "P2", "01", 4, "2", time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))
	repo.AddMovement(sale("M4", "P2", "01", 9, "2", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	totals, err := repo.SalesTotals(ctx, "01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SalesTotals failed: %v", err)
	}
	if totals["P1"].Quantity != 3 || !totals["P1"].Revenue.Equal(decimal.RequireFromString("31.5")) {
		t.Errorf("Unexpected P1 totals: %+v", totals["P1"])
	}
	if totals["P2"].Quantity != 4 {
		t.Errorf("Expected P2 quantity 4, got %d", totals["P2"].Quantity)
	}

	monthly, err := repo.MonthlySales(ctx, "01", 2025)
	if err != nil {
		t.Fatalf("MonthlySales failed: %v", err)
	}
	if monthly["P1"][time.March-1] != 3 {
		t.Errorf("Expected 3 units of P1 in March, got %d", monthly["P1"][time.March-1])
	}
	if monthly["P2"][time.December-1] != 4 {
		t.Errorf("Expected 4 units of P2 in December, got %d", monthly["P2"][time.December-1])
	}

	sold, err := repo.ProductsSoldSince(ctx, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ProductsSoldSince failed: %v", err)
	}
	if len(sold) != 1 || sold[0] != "P2" {
		t.Errorf("Expected [P2], got %v", sold)
	}
}
