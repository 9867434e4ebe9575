package commands

import (
	"context"
	"fmt"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/minstock"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// MinStockConfig holds configuration for the minstock command
type MinStockConfig struct {
	Products []entities.ProductID
	History  bool              // show the audit trail instead of recomputing
	Branch   entities.BranchID // required with History
}

// MinStockCommand recomputes minimum stock for products, or shows a history
type MinStockCommand struct {
	rt     *Runtime
	config MinStockConfig
}

// NewMinStockCommand creates a new minstock command
func NewMinStockCommand(rt *Runtime, config MinStockConfig) *MinStockCommand {
	return &MinStockCommand{rt: rt, config: config}
}

// Execute runs the minstock command
func (c *MinStockCommand) Execute(ctx context.Context) error {
	if len(c.config.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}
	if c.config.History && (len(c.config.Products) != 1 || c.config.Branch == "") {
		return fmt.Errorf("history needs exactly one product and a branch")
	}

	network, err := c.rt.Network()
	if err != nil {
		return err
	}
	stores, err := c.rt.OpenStores(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	publisher, closePublisher, err := c.rt.OpenPublisher()
	if err != nil {
		return err
	}
	defer closePublisher()

	calc := c.rt.calculator(stores, network, publisher)
	if c.config.History {
		entries, err := calc.History(ctx, c.config.Products[0], c.config.Branch)
		if err != nil {
			return err
		}
		return c.rt.writer().History(entries)
	}

	results := make([]*minstock.ProductMinimumStock, 0, len(c.config.Products))
	for _, id := range c.config.Products {
		result, err := calc.ComputeForProduct(ctx, id)
		if err != nil {
			return err
		}
		results = append(results, result)
	}
	return c.rt.writer().MinimumStock(results)
}
