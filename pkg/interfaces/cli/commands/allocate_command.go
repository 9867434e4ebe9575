package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/allocation"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// AllocateConfig holds configuration for the allocate command
type AllocateConfig struct {
	Products   []entities.ProductID // empty means every product
	PeriodDays int
	Origin     entities.BranchID // empty means the network origin
}

// AllocateCommand computes a distribution plan
type AllocateCommand struct {
	rt     *Runtime
	config AllocateConfig
}

// NewAllocateCommand creates a new allocate command
func NewAllocateCommand(rt *Runtime, config AllocateConfig) *AllocateCommand {
	return &AllocateCommand{rt: rt, config: config}
}

// Execute runs the allocate command
func (c *AllocateCommand) Execute(ctx context.Context) error {
	if err := allocation.ValidatePeriod(c.config.PeriodDays); err != nil {
		return err
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

	products := c.config.Products
	if len(products) == 0 {
		all, err := stores.Products.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		for _, p := range all {
			products = append(products, p.ID)
		}
	}

	start := time.Now()
	report, err := c.rt.allocationService(stores, network, publisher).Compute(ctx, allocation.Request{
		Products:   products,
		PeriodDays: c.config.PeriodDays,
		Origin:     c.config.Origin,
	})
	if err != nil {
		return err
	}
	c.rt.Logger.Debug().
		Int("products", len(report.Results)).
		Int("rationed", report.Rationed).
		Int("deficits", report.Deficits).
		Dur("took", time.Since(start)).
		Msg("allocation computed")

	return c.rt.writer().AllocationReport(report)
}
