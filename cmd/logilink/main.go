package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/config"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/interfaces/cli/commands"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/interfaces/cli/output"
)

// command is implemented by every subcommand
type command interface {
	Execute(ctx context.Context) error
}

// commonFlags are accepted by every subcommand and override the environment
type commonFlags struct {
	envFile  string
	store    string
	dsn      string
	scenario string
	origin   string
	format   string
	verbose  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.envFile, "env", ".env", "Path to a .env file (optional)")
	fs.StringVar(&c.store, "store", "", "Store backend: memory, sqlite, postgres")
	fs.StringVar(&c.dsn, "dsn", "", "SQLite file or PostgreSQL connection string")
	fs.StringVar(&c.scenario, "scenario", "", "Scenario directory with CSV files")
	fs.StringVar(&c.origin, "origin", "", "Origin branch id")
	fs.StringVar(&c.format, "format", "text", "Output format: text, json")
	fs.BoolVar(&c.verbose, "verbose", false, "Enable debug logging")
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-help" || os.Args[1] == "help" {
		showHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var common commonFlags
	common.register(fs)

	var build func(rt *commands.Runtime) command
	switch name {
	case "allocate":
		products := fs.String("products", "", "Comma separated product ids (default: all)")
		period := fs.Int("period", 90, "Sales period in days (7-365)")
		build = func(rt *commands.Runtime) command {
			return commands.NewAllocateCommand(rt, commands.AllocateConfig{
				Products:   parseProducts(*products),
				PeriodDays: *period,
				Origin:     entities.BranchID(common.origin),
			})
		}
	case "minstock":
		products := fs.String("products", "", "Comma separated product ids")
		history := fs.Bool("history", false, "Show the history of one product at -branch")
		branch := fs.String("branch", "", "Branch id for -history")
		build = func(rt *commands.Runtime) command {
			return commands.NewMinStockCommand(rt, commands.MinStockConfig{
				Products: parseProducts(*products),
				History:  *history,
				Branch:   entities.BranchID(*branch),
			})
		}
	case "override":
		product := fs.String("product", "", "Product id")
		branch := fs.String("branch", "", "Destination branch id")
		value := fs.Int64("value", 0, "Manual minimum stock")
		clearOverride := fs.Bool("clear", false, "Clear the manual override")
		build = func(rt *commands.Runtime) command {
			return commands.NewOverrideCommand(rt, commands.OverrideConfig{
				Product: entities.ProductID(*product),
				Branch:  entities.BranchID(*branch),
				Value:   *value,
				Clear:   *clearOverride,
			})
		}
	case "batch":
		progress := fs.Duration("progress", 5*time.Second, "Progress log interval, 0 to disable")
		build = func(rt *commands.Runtime) command {
			return commands.NewBatchCommand(rt, commands.BatchConfig{Progress: *progress})
		}
	case "import":
		build = func(rt *commands.Runtime) command {
			return commands.NewImportCommand(rt, commands.ImportConfig{ScenarioDir: rt.Config.ScenarioDir})
		}
	case "generate":
		products := fs.Int("products", 50, "Number of products")
		groups := fs.Float64("groups", 0.3, "Share of products in combined groups")
		days := fs.Int("days", 400, "Days of sales history")
		seed := fs.Int64("seed", 0, "Random seed (0 = time based)")
		out := fs.String("output", "", "Output directory")
		build = func(rt *commands.Runtime) command {
			return commands.NewGenerateCommand(rt, commands.GenerateConfig{
				Products:   *products,
				GroupShare: *groups,
				Days:       *days,
				Seed:       *seed,
				OutputDir:  *out,
			})
		}
	default:
		showHelp()
		return fmt.Errorf("unknown command: %s", name)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := newRuntime(common)
	if err != nil {
		return err
	}
	return build(rt).Execute(ctx)
}

func newRuntime(common commonFlags) (*commands.Runtime, error) {
	cfg, err := config.Load(common.envFile)
	if err != nil {
		return nil, err
	}
	if common.store != "" {
		cfg.Store = common.store
	}
	if common.dsn != "" {
		cfg.DSN = common.dsn
	}
	if common.scenario != "" {
		cfg.ScenarioDir = common.scenario
	}
	if common.origin != "" {
		cfg.Origin = entities.BranchID(common.origin)
	}

	format, err := output.ParseFormat(common.format)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if common.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("service", "logilink").
		Logger()

	return &commands.Runtime{
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
		Format: format,
	}, nil
}

func parseProducts(raw string) []entities.ProductID {
	var ids []entities.ProductID
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, entities.ProductID(id))
		}
	}
	return ids
}

func showHelp() {
	fmt.Printf(`LogiLink - stock redistribution from a distribution center to branch stores

USAGE:
    logilink <command> [options]

COMMANDS:
    allocate    Compute a distribution plan for products
    minstock    Recompute minimum stock for products, or show a history
    override    Set or clear a manual minimum stock
    batch       Recompute minimum stock for every product sold in the last 180 days
    import      Load a CSV scenario into a sqlite or postgres store
    generate    Write a random scenario directory

COMMON OPTIONS:
    -env <file>         .env file to preload (default: .env, optional)
    -store <backend>    memory, sqlite or postgres (env LOGILINK_STORE)
    -dsn <dsn>          SQLite file or PostgreSQL URL (env LOGILINK_DSN)
    -scenario <dir>     Scenario directory (env LOGILINK_SCENARIO_DIR)
    -origin <id>        Origin branch (env LOGILINK_ORIGIN)
    -format <fmt>       text or json (default: text)
    -verbose            Debug logging

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── products.csv        product_id,description,catalog_group,sales_multiple,combined_group,unit_price
    ├── stock.csv           product_id,branch_id,on_hand,reserved
    ├── movements.csv       movement_id,product_id,branch_id,kind,quantity,unit_price,occurred_at
    ├── groups.csv          group_id,product_id (optional)
    └── minimum_stock.csv   product_id,branch_id,manual_override (optional)

EXAMPLES:
    logilink generate -output scenarios/demo -seed 7
    logilink allocate -scenario scenarios/demo -period 90
    logilink import -store sqlite -dsn logilink.db -scenario scenarios/demo
    logilink batch -store sqlite -dsn logilink.db
    logilink override -store sqlite -dsn logilink.db -product FIL-0001 -branch 01 -value 12
    logilink minstock -store sqlite -dsn logilink.db -products FIL-0001 -history -branch 01
`)
}
