package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/allocation"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/minstock"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/config"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/events"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/csv"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/memory"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/sqlstore"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/interfaces/cli/output"
)

// Runtime carries what every subcommand shares
type Runtime struct {
	Config config.Config
	Logger zerolog.Logger
	Out    io.Writer
	Format output.Format
	Clock  shared.Clock
}

// Stores groups the repositories of one backend
type Stores struct {
	Products     repositories.ProductRepository
	Groups       repositories.CombinedGroupRepository
	Sales        repositories.SalesRepository
	Stock        repositories.StockRepository
	MinimumStock repositories.MinimumStockRepository

	sql *sqlstore.Store
}

// Close releases the backend
func (s *Stores) Close() error {
	if s.sql != nil {
		return s.sql.Close()
	}
	return nil
}

// OpenStores opens the configured backend. The memory backend is filled from the scenario
// directory.
func (r *Runtime) OpenStores(ctx context.Context) (*Stores, error) {
	switch r.Config.Store {
	case config.StoreMemory:
		if r.Config.ScenarioDir == "" {
			return nil, fmt.Errorf("the memory store needs a scenario directory")
		}
		return loadMemoryStores(ctx, r.Config.ScenarioDir, r.Logger)
	case config.StoreSQLite:
		store, err := sqlstore.OpenSQLite(ctx, r.Config.DSN)
		if err != nil {
			return nil, err
		}
		return sqlStores(store), nil
	case config.StorePostgres:
		store, err := sqlstore.OpenPostgres(ctx, r.Config.DSN)
		if err != nil {
			return nil, err
		}
		return sqlStores(store), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", r.Config.Store)
	}
}

func sqlStores(store *sqlstore.Store) *Stores {
	return &Stores{
		Products:     store,
		Groups:       store,
		Sales:        store,
		Stock:        store,
		MinimumStock: store,
		sql:          store,
	}
}

func loadMemoryStores(ctx context.Context, dir string, logger zerolog.Logger) (*Stores, error) {
	scenario, err := csv.NewLoader().LoadScenario(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	products := memory.NewProductRepository(len(scenario.Products))
	if err := products.LoadProducts(scenario.Products); err != nil {
		return nil, err
	}
	if err := products.LoadGroups(scenario.Groups); err != nil {
		return nil, err
	}
	sales := memory.NewSalesRepository(len(scenario.Movements))
	if err := sales.LoadMovements(scenario.Movements); err != nil {
		return nil, err
	}
	stock := memory.NewStockRepository()
	if err := stock.LoadStock(scenario.Stock); err != nil {
		return nil, err
	}
	minimum := memory.NewMinimumStockRepository()
	for _, o := range scenario.Overrides {
		value := o.Value
		if err := minimum.SetOverride(ctx, o.ProductID, o.BranchID, &value, nil); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Str("dir", dir).
		Int("products", len(scenario.Products)).
		Int("movements", len(scenario.Movements)).
		Int("stock", len(scenario.Stock)).
		Msg("scenario loaded")

	return &Stores{
		Products:     products,
		Groups:       products,
		Sales:        sales,
		Stock:        stock,
		MinimumStock: minimum,
	}, nil
}

// OpenPublisher returns the AMQP publisher when a broker URL is configured, else an
// in-memory event store that logs what it receives
func (r *Runtime) OpenPublisher() (events.Publisher, func(), error) {
	if r.Config.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(r.Config.AMQPURL, r.Config.EventsQueue)
		if err != nil {
			return nil, nil, err
		}
		r.Logger.Debug().Str("queue", r.Config.EventsQueue).Msg("publishing events to AMQP")
		return publisher, publisher.Close, nil
	}

	store := events.NewInMemoryEventStore(r.Logger)
	_ = store.Subscribe([]string{
		events.AllocationDeficitEvent,
		events.BatchStartedEvent,
		events.BatchCompletedEvent,
		events.BatchFailedEvent,
		events.MinimumStockOverriddenEvent,
	}, logHandler{logger: r.Logger})
	return store, func() {}, nil
}

// Network returns the configured branch network
func (r *Runtime) Network() (*entities.Network, error) {
	network, err := r.Config.Network()
	if err != nil {
		return nil, fmt.Errorf("invalid branch network: %w", err)
	}
	return network, nil
}

func (r *Runtime) calculator(stores *Stores, network *entities.Network, publisher events.Publisher) *minstock.Calculator {
	return minstock.NewCalculator(minstock.Dependencies{
		Products:  stores.Products,
		Sales:     stores.Sales,
		Store:     stores.MinimumStock,
		Network:   network,
		Publisher: publisher,
		Clock:     r.clock(),
		Logger:    r.Logger,
	})
}

func (r *Runtime) allocationService(stores *Stores, network *entities.Network, publisher events.Publisher) *allocation.Service {
	return allocation.NewService(allocation.Dependencies{
		Products:     stores.Products,
		Groups:       stores.Groups,
		Sales:        stores.Sales,
		Stock:        stores.Stock,
		MinimumStock: stores.MinimumStock,
		Network:      network,
		Publisher:    publisher,
		Clock:        r.clock(),
		Logger:       r.Logger,
	}, r.Config.AllocationWorkers)
}

func (r *Runtime) clock() shared.Clock {
	if r.Clock == nil {
		return shared.SystemClock
	}
	return r.Clock
}

func (r *Runtime) writer() *output.Writer {
	return output.New(r.Out, r.Format)
}

// logHandler writes received events to the log
type logHandler struct {
	logger zerolog.Logger
}

func (h logHandler) Handle(event events.Event) error {
	h.logger.Debug().
		Str("event", event.Type()).
		Str("stream", event.StreamID()).
		Interface("data", event.Data()).
		Msg("event")
	return nil
}

func (h logHandler) CanHandle(string) bool { return true }
