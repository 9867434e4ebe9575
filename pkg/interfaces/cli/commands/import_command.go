package commands

import (
	"context"
	"fmt"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/config"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/csv"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/sqlstore"
)

// ImportConfig holds configuration for the import command
type ImportConfig struct {
	ScenarioDir string
}

// ImportCommand loads a CSV scenario into a SQL store
type ImportCommand struct {
	rt     *Runtime
	config ImportConfig
}

// NewImportCommand creates a new import command
func NewImportCommand(rt *Runtime, config ImportConfig) *ImportCommand {
	return &ImportCommand{rt: rt, config: config}
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context) error {
	if c.config.ScenarioDir == "" {
		return fmt.Errorf("a scenario directory is required")
	}

	var (
		store *sqlstore.Store
		err   error
	)
	switch c.rt.Config.Store {
	case config.StoreSQLite:
		store, err = sqlstore.OpenSQLite(ctx, c.rt.Config.DSN)
	case config.StorePostgres:
		store, err = sqlstore.OpenPostgres(ctx, c.rt.Config.DSN)
	default:
		return fmt.Errorf("import needs a sqlite or postgres store, got %s", c.rt.Config.Store)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	scenario, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	stats, err := store.ImportScenario(ctx, scenario)
	if err != nil {
		return fmt.Errorf("failed to import scenario: %w", err)
	}

	c.rt.Logger.Info().
		Str("dialect", store.Dialect().String()).
		Str("dir", c.config.ScenarioDir).
		Int("movements", stats.Movements).
		Msg("scenario imported")
	return c.rt.writer().ImportStats(stats)
}
