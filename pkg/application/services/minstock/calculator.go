package minstock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/shared"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/events"
)

var (
	ErrNotDestination   = errors.New("branch is not a destination")
	ErrNegativeOverride = errors.New("manual override cannot be negative")
)

// Dependencies wires the calculator to its stores
type Dependencies struct {
	Products  repositories.ProductRepository
	Sales     repositories.SalesRepository
	Store     repositories.MinimumStockRepository
	Network   *entities.Network
	Publisher events.Publisher
	Clock     shared.Clock
	Logger    zerolog.Logger
}

// Calculator computes and stores minimum-stock records
type Calculator struct {
	products     repositories.ProductRepository
	sales        repositories.SalesRepository
	store        repositories.MinimumStockRepository
	network      *entities.Network
	publisher    events.Publisher
	clock        shared.Clock
	logger       zerolog.Logger
	leadTimeDays int
}

// NewCalculator creates a calculator with the default lead time
func NewCalculator(deps Dependencies) *Calculator {
	return NewCalculatorWithLeadTime(deps, DefaultLeadTimeDays)
}

// NewCalculatorWithLeadTime creates a calculator with a custom base lead time
func NewCalculatorWithLeadTime(deps Dependencies, leadTimeDays int) *Calculator {
	if deps.Clock == nil {
		deps.Clock = shared.SystemClock
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if leadTimeDays <= 0 {
		leadTimeDays = DefaultLeadTimeDays
	}
	return &Calculator{
		products:     deps.Products,
		sales:        deps.Sales,
		store:        deps.Store,
		network:      deps.Network,
		publisher:    deps.Publisher,
		clock:        deps.Clock,
		logger:       deps.Logger,
		leadTimeDays: leadTimeDays,
	}
}

// BranchResult is the outcome of one branch of a product computation
type BranchResult struct {
	BranchID      entities.BranchID            `json:"branch_id"`
	BranchName    string                       `json:"branch_name"`
	Record        *entities.MinimumStockRecord `json:"record,omitempty"`
	Active        entities.Quantity            `json:"active"`
	PercentChange *decimal.Decimal             `json:"percent_change,omitempty"`
	Err           error                        `json:"-"`
	Error         string                       `json:"error,omitempty"`
}

// ProductMinimumStock is the outcome of a product computation across all destinations
type ProductMinimumStock struct {
	ProductID   entities.ProductID `json:"product_id"`
	Description string             `json:"description"`
	Branches    []BranchResult     `json:"branches"`
	Failed      int                `json:"failed"`
}

// branchSales holds the bulk aggregates of one branch
type branchSales struct {
	history   map[entities.ProductID]entities.SalesTotal
	recent    map[entities.ProductID]entities.SalesTotal
	priorYear map[entities.ProductID][12]entities.Quantity
	classes   map[entities.ProductID]entities.ABCClass
}

func (b *branchSales) inputs(product entities.ProductID, month time.Month) Inputs {
	s180 := b.history[product].Quantity
	s90 := b.recent[product].Quantity
	previous := s180 - s90
	if previous < 0 {
		previous = 0
	}
	return Inputs{
		Class:         b.classes[product],
		Sales180:      s180,
		Sales90:       s90,
		SalesPrevious: previous,
		PriorYear:     b.priorYear[product],
		Month:         month,
	}
}

// loadBranchSales runs the branch-wide scans: 180 and 90 day totals and prior-year months.
// The previous 90 day window is the 180 day total minus the recent one.
func (c *Calculator) loadBranchSales(ctx context.Context, branch entities.BranchID, now time.Time) (*branchSales, error) {
	start180, end := shared.DayWindow(now, HistoryWindowDays, 0)
	history, err := c.sales.SalesTotals(ctx, branch, start180, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %d-day sales at %s: %w", HistoryWindowDays, branch, err)
	}

	start90, _ := shared.DayWindow(now, RecentWindowDays, 0)
	recent, err := c.sales.SalesTotals(ctx, branch, start90, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %d-day sales at %s: %w", RecentWindowDays, branch, err)
	}

	priorYear, err := c.sales.MonthlySales(ctx, branch, now.Year()-1)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly sales at %s: %w", branch, err)
	}

	return &branchSales{
		history:   history,
		recent:    recent,
		priorYear: priorYear,
		classes:   ClassifyABC(history),
	}, nil
}

// buildRecord turns inputs into the record to store and its history entry. A prior record that
// was never calculated (override only) counts as no prior value.
func (c *Calculator) buildRecord(
	product entities.ProductID,
	branch entities.BranchID,
	in Inputs,
	prior *entities.MinimumStockRecord,
	now time.Time,
) (*entities.MinimumStockRecord, *entities.MinimumStockHistoryEntry) {
	value, factors := Compute(in, c.leadTimeDays)

	record := &entities.MinimumStockRecord{
		ProductID:     product,
		BranchID:      branch,
		Calculated:    value,
		Factors:       factors,
		Sales180:      in.Sales180,
		Sales90:       in.Sales90,
		SalesPrevious: in.SalesPrevious,
		ComputedAt:    now,
		UpdatedAt:     now,
	}

	var previous *entities.Quantity
	if prior != nil {
		record.ManualOverride = prior.ManualOverride
		if !prior.ComputedAt.IsZero() {
			p := prior.Calculated
			previous = &p
		}
	}

	entry := &entities.MinimumStockHistoryEntry{
		ID:            uuid.NewString(),
		ProductID:     product,
		BranchID:      branch,
		Kind:          entities.HistoryCalculated,
		PreviousValue: previous,
		NewValue:      value,
		PercentChange: entities.PercentChange(previous, value),
		Factors:       factors,
		CreatedAt:     now,
	}
	return record, entry
}

// ComputeForProduct recomputes a product at every destination branch. A failing branch is
// reported in its BranchResult and does not stop the others.
func (c *Calculator) ComputeForProduct(ctx context.Context, productID entities.ProductID) (*ProductMinimumStock, error) {
	product, err := c.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	now := c.clock()
	result := &ProductMinimumStock{
		ProductID:   product.ID,
		Description: product.Description,
	}

	for _, branch := range c.network.Destinations() {
		br := BranchResult{BranchID: branch.ID, BranchName: branch.Name}

		record, entry, err := c.computeBranch(ctx, product.ID, branch.ID, now)
		if err != nil {
			c.logger.Error().Err(err).
				Str("product", string(product.ID)).
				Str("branch", string(branch.ID)).
				Msg("minimum stock computation failed")
			br.Err = err
			br.Error = err.Error()
			result.Failed++
			result.Branches = append(result.Branches, br)
			continue
		}

		br.Record = record
		br.Active = record.Active()
		br.PercentChange = entry.PercentChange
		result.Branches = append(result.Branches, br)

		c.publish(ctx, events.NewMinimumStockRecalculated(entry))
	}

	c.logger.Info().
		Str("product", string(product.ID)).
		Int("branches", len(result.Branches)).
		Int("failed", result.Failed).
		Msg("minimum stock recomputed")
	return result, nil
}

func (c *Calculator) computeBranch(
	ctx context.Context,
	product entities.ProductID,
	branch entities.BranchID,
	now time.Time,
) (*entities.MinimumStockRecord, *entities.MinimumStockHistoryEntry, error) {
	tables, err := c.loadBranchSales(ctx, branch, now)
	if err != nil {
		return nil, nil, err
	}

	prior, err := c.store.Get(ctx, product, branch)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stored minimum stock: %w", err)
	}

	record, entry := c.buildRecord(product, branch, tables.inputs(product, now.Month()), prior, now)
	if err := c.store.Save(ctx, record, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to save minimum stock: %w", err)
	}
	return record, entry, nil
}

// SetManualOverride sets the override of a product at a destination branch, or clears it when
// override is nil, and appends a manual history entry.
func (c *Calculator) SetManualOverride(
	ctx context.Context,
	productID entities.ProductID,
	branch entities.BranchID,
	override *entities.Quantity,
) (*entities.MinimumStockRecord, error) {
	if _, err := c.products.GetProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	if !c.network.IsDestination(branch) {
		return nil, fmt.Errorf("%w: %s", ErrNotDestination, branch)
	}
	if override != nil && *override < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeOverride, *override)
	}

	prior, err := c.store.Get(ctx, productID, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored minimum stock: %w", err)
	}

	var previous *entities.Quantity
	var factors entities.MinimumStockFactors
	var calculated entities.Quantity
	if prior != nil {
		active := prior.Active()
		previous = &active
		factors = prior.Factors
		calculated = prior.Calculated
	}

	newValue := calculated
	if override != nil {
		newValue = *override
	}

	now := c.clock()
	entry := &entities.MinimumStockHistoryEntry{
		ID:            uuid.NewString(),
		ProductID:     productID,
		BranchID:      branch,
		Kind:          entities.HistoryManual,
		PreviousValue: previous,
		NewValue:      newValue,
		PercentChange: entities.PercentChange(previous, newValue),
		Factors:       factors,
		CreatedAt:     now,
	}
	if err := c.store.SetOverride(ctx, productID, branch, override, entry); err != nil {
		return nil, fmt.Errorf("failed to store manual override: %w", err)
	}

	c.logger.Info().
		Str("product", string(productID)).
		Str("branch", string(branch)).
		Bool("cleared", override == nil).
		Msg("minimum stock override updated")
	c.publish(ctx, events.NewMinimumStockOverridden(productID, branch, override))

	record, err := c.store.Get(ctx, productID, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored minimum stock: %w", err)
	}
	return record, nil
}

// History returns the history of a product at a branch, oldest first
func (c *Calculator) History(
	ctx context.Context,
	productID entities.ProductID,
	branch entities.BranchID,
) ([]*entities.MinimumStockHistoryEntry, error) {
	entries, err := c.store.History(ctx, productID, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to read minimum stock history: %w", err)
	}
	return entries, nil
}

func (c *Calculator) publish(ctx context.Context, event events.Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn().Err(err).Str("event", event.Type()).Msg("failed to publish event")
	}
}
