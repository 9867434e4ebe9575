package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/demand"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/groups"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/sales"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/events"
)

const (
	MinPeriodDays = 7
	MaxPeriodDays = 365

	DefaultWorkers = 8
)

var (
	ErrInvalidPeriod = errors.New("analysis period out of range")
	ErrInvalidOrigin = errors.New("invalid origin branch")
)

// Dependencies wires the planning service to its stores
type Dependencies struct {
	Products     repositories.ProductRepository
	Groups       repositories.CombinedGroupRepository
	Sales        repositories.SalesRepository
	Stock        repositories.StockRepository
	MinimumStock repositories.MinimumStockRepository
	Network      *entities.Network
	Publisher    events.Publisher
	Clock        shared.Clock
	Logger       zerolog.Logger
}

// Request selects the products, the sales period and the origin of one planning run.
// An empty origin means the network origin.
type Request struct {
	Products   []entities.ProductID
	PeriodDays int
	Origin     entities.BranchID
}

// Report is the outcome of a planning run, results in request order
type Report struct {
	Origin      entities.BranchID            `json:"origin"`
	PeriodDays  int                          `json:"period_days"`
	GeneratedAt time.Time                    `json:"generated_at"`
	Results     []*entities.AllocationResult `json:"results"`
	Deficits    int                          `json:"deficits"`
	Rationed    int                          `json:"rationed"`
}

// Service computes distribution plans for product sets
type Service struct {
	deps     Dependencies
	priority Priority
	workers  int
}

// NewService creates a planning service; workers bounds the products computed in parallel
func NewService(deps Dependencies, workers int) *Service {
	if deps.Clock == nil {
		deps.Clock = shared.SystemClock
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		deps:     deps,
		priority: PriorityFromNetwork(deps.Network),
		workers:  workers,
	}
}

// ValidatePeriod rejects analysis periods outside 7 to 365 days
func ValidatePeriod(days int) error {
	if days < MinPeriodDays || days > MaxPeriodDays {
		return fmt.Errorf("%w: %d days, expected %d to %d", ErrInvalidPeriod, days, MinPeriodDays, MaxPeriodDays)
	}
	return nil
}

// Compute resolves demand and allocates origin stock for every requested product. Products
// run in parallel; the branches of one product are resolved serially.
func (s *Service) Compute(ctx context.Context, req Request) (*Report, error) {
	if err := ValidatePeriod(req.PeriodDays); err != nil {
		return nil, err
	}

	origin := req.Origin
	if origin == "" {
		origin = s.deps.Network.Origin
	}
	if origin == s.deps.Network.Excluded || s.deps.Network.IsDestination(origin) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrigin, origin)
	}

	report := &Report{
		Origin:      origin,
		PeriodDays:  req.PeriodDays,
		GeneratedAt: s.deps.Clock(),
		Results:     make([]*entities.AllocationResult, len(req.Products)),
	}
	if len(req.Products) == 0 {
		return report, nil
	}

	products, err := s.deps.Products.GetProducts(ctx, req.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	multiples := shared.NewMultipleTable(products)

	aggregator := sales.NewAggregator(s.deps.Sales, s.deps.Clock)
	groupResolver, err := groups.Load(ctx, s.deps.Groups, aggregator, s.deps.Stock, s.deps.Logger)
	if err != nil {
		return nil, err
	}
	resolver := demand.NewResolver(
		s.deps.Network,
		aggregator,
		groupResolver,
		s.deps.Stock,
		s.deps.MinimumStock,
		s.deps.Products,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, product := range products {
		g.Go(func() error {
			result, err := s.computeProduct(gctx, resolver, product, multiples.Multiple(product.ID), req.PeriodDays, origin)
			if err != nil {
				return err
			}
			report.Results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range report.Results {
		switch r.Status {
		case entities.StatusDeficit:
			report.Deficits++
		case entities.StatusRationed:
			report.Rationed++
		}
		if r.Deficit > 0 {
			if err := s.deps.Publisher.Publish(ctx, events.NewAllocationDeficit(r)); err != nil {
				s.deps.Logger.Warn().Err(err).Str("product", string(r.ProductID)).Msg("failed to publish event")
			}
		}
	}

	s.deps.Logger.Info().
		Int("products", len(report.Results)).
		Int("rationed", report.Rationed).
		Int("deficits", report.Deficits).
		Str("origin", string(origin)).
		Msg("allocation computed")
	return report, nil
}

func (s *Service) computeProduct(
	ctx context.Context,
	resolver *demand.Resolver,
	product *entities.Product,
	multiple int,
	periodDays int,
	origin entities.BranchID,
) (*entities.AllocationResult, error) {
	res, err := resolver.Resolve(ctx, product.ID, periodDays, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve demand for %s: %w", product.ID, err)
	}

	in := Input{Supply: res.OriginSupply, Multiple: multiple}
	for _, bd := range res.Branches {
		in.Needs = append(in.Needs, BranchNeed{BranchID: bd.BranchID, Need: bd.Need})
	}
	out := Allocate(in, s.priority)

	result := &entities.AllocationResult{
		ProductID:     product.ID,
		Description:   product.Description,
		Origin:        origin,
		OriginSupply:  res.OriginSupply,
		TotalNeed:     out.TotalNeed,
		Distributed:   out.Distributed,
		Deficit:       out.Deficit,
		Status:        out.Status,
		SalesMultiple: multiple,
		Branches:      make([]entities.BranchAllocation, len(res.Branches)),
		Alternatives:  res.Alternatives,
	}
	for i, bd := range res.Branches {
		allocated := out.Lines[i].Allocated
		result.Branches[i] = entities.BranchAllocation{
			BranchDemand: bd,
			Allocated:    allocated,
			Status:       entities.ClassifyBranch(bd.Need, allocated),
		}
	}

	s.deps.Logger.Debug().
		Str("product", string(product.ID)).
		Int64("supply", int64(res.OriginSupply)).
		Int64("need", int64(out.TotalNeed)).
		Str("status", out.Status.String()).
		Msg("product allocated")
	return result, nil
}
