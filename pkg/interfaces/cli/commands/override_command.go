package commands

import (
	"context"
	"fmt"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// OverrideConfig holds configuration for the override command
type OverrideConfig struct {
	Product entities.ProductID
	Branch  entities.BranchID
	Value   int64
	Clear   bool
}

// OverrideCommand sets or clears a manual minimum stock
type OverrideCommand struct {
	rt     *Runtime
	config OverrideConfig
}

// NewOverrideCommand creates a new override command
func NewOverrideCommand(rt *Runtime, config OverrideConfig) *OverrideCommand {
	return &OverrideCommand{rt: rt, config: config}
}

// Execute runs the override command
func (c *OverrideCommand) Execute(ctx context.Context) error {
	if c.config.Product == "" || c.config.Branch == "" {
		return fmt.Errorf("product and branch are required")
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

	var override *entities.Quantity
	if !c.config.Clear {
		value := entities.Quantity(c.config.Value)
		override = &value
	}

	record, err := c.rt.calculator(stores, network, publisher).
		SetManualOverride(ctx, c.config.Product, c.config.Branch, override)
	if err != nil {
		return err
	}
	return c.rt.writer().Record(record)
}
