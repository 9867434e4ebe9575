package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/memory"
)

// Fixture bundles the in-memory repositories of one test scenario with a fixed "now"
type Fixture struct {
	Products     *memory.ProductRepository
	Sales        *memory.SalesRepository
	Stock        *memory.StockRepository
	MinimumStock *memory.MinimumStockRepository
	Network      *entities.Network
	Now          time.Time

	nextMovement int
}

// NewFixture creates empty repositories around a network
func NewFixture(now time.Time, network *entities.Network) *Fixture {
	return &Fixture{
		Products:     memory.NewProductRepository(16),
		Sales:        memory.NewSalesRepository(64),
		Stock:        memory.NewStockRepository(),
		MinimumStock: memory.NewMinimumStockRepository(),
		Network:      network,
		Now:          now,
	}
}

// MustNetwork builds a network without names - panics on validation error
func MustNetwork(origin, excluded entities.BranchID, priority ...entities.BranchID) *entities.Network {
	network, err := entities.NewNetwork(origin, excluded, priority, nil)
	if err != nil {
		panic(err)
	}
	return network
}

// Clock returns a clock frozen at the fixture's now
func (f *Fixture) Clock() shared.Clock {
	return shared.FixedClock(f.Now)
}

// AddProduct adds a product with a unit price - panics on validation error
func (f *Fixture) AddProduct(id entities.ProductID, multiple int, group string, price string) {
	product, err := entities.NewProduct(id, "Product "+string(id), "", multiple, group, decimal.RequireFromString(price))
	if err != nil {
		panic(err)
	}
	f.Products.AddProduct(*product)
}

// AddSale records an outbound sale daysAgo days before now
func (f *Fixture) AddSale(product entities.ProductID, branch entities.BranchID, qty entities.Quantity, price string, daysAgo int) {
	f.AddSaleAt(product, branch, qty, price, f.Now.AddDate(0, 0, -daysAgo))
}

// AddSaleAt records an outbound sale at a given time
func (f *Fixture) AddSaleAt(product entities.ProductID, branch entities.BranchID, qty entities.Quantity, price string, at time.Time) {
	f.nextMovement++
	f.Sales.AddMovement(entities.Movement{
		ID:         fmt.Sprintf("M%06d", f.nextMovement),
		ProductID:  product,
		BranchID:   branch,
		Kind:       entities.OutboundSale,
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(price),
		OccurredAt: at,
	})
}

// SetStock sets on-hand and reserved stock of a product at a branch
func (f *Fixture) SetStock(product entities.ProductID, branch entities.BranchID, onHand, reserved entities.Quantity) {
	f.Stock.SetStock(entities.StockPosition{
		ProductID: product,
		BranchID:  branch,
		OnHand:    onHand,
		Reserved:  reserved,
	})
}

// SetMinimumStock stores a calculated minimum stock as if a prior computation produced it
func (f *Fixture) SetMinimumStock(product entities.ProductID, branch entities.BranchID, value entities.Quantity) {
	err := f.MinimumStock.Save(context.Background(), &entities.MinimumStockRecord{
		ProductID:  product,
		BranchID:   branch,
		Calculated: value,
		ComputedAt: f.Now,
		UpdatedAt:  f.Now,
	}, nil)
	if err != nil {
		panic(err)
	}
}

// BuildBranchNetworkTestData builds a small origin plus four destinations scenario: a
// combined filter group, a product sold in boxes of 6 and a product sold nowhere.
func BuildBranchNetworkTestData(now time.Time) *Fixture {
	network, err := entities.NewNetwork("00", "99", []entities.BranchID{"01", "02", "03", "04"}, map[entities.BranchID]string{
		"00": "Distribution Center",
		"01": "Downtown",
		"02": "Harbor",
		"03": "Airport",
		"04": "Uptown",
	})
	if err != nil {
		panic(err)
	}
	f := NewFixture(now, network)

	f.AddProduct("FLT-100", 1, "FILTERS", "12.50")
	f.AddProduct("FLT-101", 1, "FILTERS", "13.00")
	f.AddProduct("PLG-200", 6, "", "4.20")
	f.AddProduct("BLT-300", 1, "", "30.00")

	for i, branch := range network.Priority {
		f.AddSale("FLT-100", branch, entities.Quantity(10+5*i), "12.50", 5)
		f.AddSale("FLT-100", branch, entities.Quantity(8), "12.50", 120)
		f.AddSale("PLG-200", branch, entities.Quantity(18-3*i), "4.20", 20)
	}
	f.AddSale("FLT-101", "02", 40, "13.00", 30)

	f.SetStock("FLT-100", "00", 30, 2)
	f.SetStock("FLT-101", "00", 25, 0)
	f.SetStock("PLG-200", "00", 60, 0)
	f.SetStock("BLT-300", "00", 5, 0)

	f.SetStock("FLT-100", "01", 4, 0)
	f.SetStock("FLT-100", "02", 0, 0)
	f.SetStock("PLG-200", "03", 6, 0)
	return f
}
