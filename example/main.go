package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/allocation"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/events"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/memory"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	now := time.Now().UTC()

	network, err := entities.NewNetwork("00", "99", []entities.BranchID{"01", "02", "03"}, map[entities.BranchID]string{
		"00": "Distribution Center",
		"01": "Downtown",
		"02": "Harbor",
		"03": "Airport",
	})
	if err != nil {
		fmt.Printf("❌ Invalid network: %v\n", err)
		return
	}

	// Create repositories
	products := memory.NewProductRepository(2)
	sales := memory.NewSalesRepository(8)
	stock := memory.NewStockRepository()
	minimum := memory.NewMinimumStockRepository()

	// A brake pad sold in pairs, short at the distribution center
	pad, _ := entities.NewProduct("BRK-010", "Brake pad set", "BRAKES", 2, "", decimal.RequireFromString("48.90"))
	products.AddProduct(*pad)

	branchSales := map[entities.BranchID]entities.Quantity{"01": 24, "02": 14, "03": 6}
	seq := 0
	for branch, qty := range branchSales {
		seq++
		m, err := entities.NewMovement(fmt.Sprintf("M%d", seq), pad.ID, branch, entities.OutboundSale, qty, pad.UnitPrice, now.AddDate(0, 0, -10))
		if err != nil {
			fmt.Printf("❌ Invalid movement: %v\n", err)
			return
		}
		sales.AddMovement(*m)
	}
	stock.SetStock(entities.StockPosition{ProductID: pad.ID, BranchID: "00", OnHand: 30, Reserved: 4})
	stock.SetStock(entities.StockPosition{ProductID: pad.ID, BranchID: "02", OnHand: 2})

	// Collect deficit events in memory
	eventStore := events.NewInMemoryEventStore(zerolog.Nop())

	service := allocation.NewService(allocation.Dependencies{
		Products:     products,
		Groups:       products,
		Sales:        sales,
		Stock:        stock,
		MinimumStock: minimum,
		Network:      network,
		Publisher:    eventStore,
		Logger:       zerolog.Nop(),
	}, 2)

	fmt.Println("🚚 Planning a 30 day redistribution of BRK-010...")
	report, err := service.Compute(ctx, allocation.Request{Products: []entities.ProductID{pad.ID}, PeriodDays: 30})
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}

	if err := output.New(os.Stdout, output.FormatText).AllocationReport(report); err != nil {
		fmt.Printf("❌ Output failed: %v\n", err)
		return
	}
	fmt.Printf("Deficit events recorded: %d\n", len(eventStore.EventsOfType(events.AllocationDeficitEvent)))
}
