package memory

import (
	"context"
	"testing"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

func TestStockRepository_MissingPositionIsZero(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository()
	repo.SetStock(entities.StockPosition{ProductID: "P1", BranchID: "00", OnHand: 20, Reserved: 5})

	pos, err := repo.GetStock(ctx, "P1", "00")
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if pos.Available() != 15 {
		t.Errorf("Expected 15 available, got %d", pos.Available())
	}

	missing, _ := repo.GetStock(ctx, "P1", "01")
	if missing.OnHand != 0 || missing.ProductID != "P1" || missing.BranchID != "01" {
		t.Errorf("Expected zero position for P1@01, got %+v", missing)
	}

	many, _ := repo.StockForProducts(ctx, []entities.ProductID{"P1", "P2"}, "00")
	if many["P1"].OnHand != 20 || many["P2"].OnHand != 0 {
		t.Errorf("Unexpected positions: %+v", many)
	}
}
