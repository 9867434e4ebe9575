package minstock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/events"
	testhelpers "github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/testing"
)

var testNow = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func newCalculatorFixture(t *testing.T) (*Calculator, *testhelpers.Fixture, *events.InMemoryEventStore) {
	t.Helper()

	f := testhelpers.NewFixture(testNow, testhelpers.MustNetwork("00", "99", "01", "02"))
	f.AddProduct("SLOW", 1, "", "10.00")
	// 36 units over 180 days, evenly split between the recent and previous windows
	f.AddSale("SLOW", "01", 18, "10.00", 5)
	f.AddSale("SLOW", "01", 18, "10.00", 120)
	// sold at the origin only, which is never a destination
	f.AddSale("SLOW", "00", 500, "10.00", 3)

	store := events.NewInMemoryEventStore(zerolog.Nop())
	calc := NewCalculator(Dependencies{
		Products:  f.Products,
		Sales:     f.Sales,
		Store:     f.MinimumStock,
		Network:   f.Network,
		Publisher: store,
		Clock:     f.Clock(),
		Logger:    zerolog.Nop(),
	})
	return calc, f, store
}

func TestCalculator_ComputeForProduct(t *testing.T) {
	ctx := context.Background()
	calc, _, store := newCalculatorFixture(t)

	result, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)
	require.Len(t, result.Branches, 2)
	assert.Zero(t, result.Failed)

	first := result.Branches[0]
	assert.Equal(t, entities.BranchID("01"), first.BranchID)
	require.NotNil(t, first.Record)
	assert.Equal(t, entities.Quantity(8), first.Record.Calculated)
	assert.Equal(t, entities.Quantity(8), first.Active)
	assert.Equal(t, entities.ClassC, first.Record.Factors.Class)
	assert.Equal(t, entities.Quantity(36), first.Record.Sales180)
	assert.Equal(t, entities.Quantity(18), first.Record.Sales90)
	assert.Equal(t, entities.Quantity(18), first.Record.SalesPrevious)
	assert.Nil(t, first.PercentChange, "no prior value")

	second := result.Branches[1]
	assert.Equal(t, entities.Quantity(0), second.Record.Calculated)

	assert.Len(t, store.EventsOfType(events.MinimumStockRecalculatedEvent), 2)
}

// branchFailingStore rejects saves at one branch
type branchFailingStore struct {
	repositories.MinimumStockRepository
	branch entities.BranchID
}

func (s branchFailingStore) Save(ctx context.Context, r *entities.MinimumStockRecord, e *entities.MinimumStockHistoryEntry) error {
	if r.BranchID == s.branch {
		return errors.New("disk full")
	}
	return s.MinimumStockRepository.Save(ctx, r, e)
}

func TestCalculator_FailingBranchDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	_, f, store := newCalculatorFixture(t)
	f.AddSale("SLOW", "02", 18, "10.00", 5)
	f.AddSale("SLOW", "02", 18, "10.00", 120)

	calc := NewCalculator(Dependencies{
		Products:  f.Products,
		Sales:     f.Sales,
		Store:     branchFailingStore{MinimumStockRepository: f.MinimumStock, branch: "01"},
		Network:   f.Network,
		Publisher: store,
		Clock:     f.Clock(),
		Logger:    zerolog.Nop(),
	})

	result, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)
	require.Len(t, result.Branches, 2)
	assert.Equal(t, 1, result.Failed)

	failed := result.Branches[0]
	assert.Equal(t, entities.BranchID("01"), failed.BranchID)
	assert.Nil(t, failed.Record)
	assert.Contains(t, failed.Error, "disk full")
	assert.Error(t, failed.Err)

	ok := result.Branches[1]
	assert.Equal(t, entities.BranchID("02"), ok.BranchID)
	require.NotNil(t, ok.Record)
	assert.Empty(t, ok.Error)
	assert.Equal(t, entities.Quantity(8), ok.Record.Calculated)

	stored, err := f.MinimumStock.Get(ctx, "SLOW", "02")
	require.NoError(t, err)
	require.NotNil(t, stored)
	missing, err := f.MinimumStock.Get(ctx, "SLOW", "01")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Len(t, store.EventsOfType(events.MinimumStockRecalculatedEvent), 1)
}

func TestCalculator_RecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	calc, _, _ := newCalculatorFixture(t)

	_, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)
	result, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)

	for _, br := range result.Branches {
		require.NotNil(t, br.PercentChange, "branch %s", br.BranchID)
		assert.True(t, br.PercentChange.IsZero(), "branch %s", br.BranchID)
	}

	history, err := calc.History(ctx, "SLOW", "01")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entities.Quantity(8), *history[1].PreviousValue)
	assert.Equal(t, entities.Quantity(8), history[1].NewValue)
	assert.Equal(t, entities.HistoryCalculated, history[1].Kind)
}

func TestCalculator_PercentChangeAgainstPriorValue(t *testing.T) {
	ctx := context.Background()
	calc, f, _ := newCalculatorFixture(t)
	f.SetMinimumStock("SLOW", "01", 10)

	result, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)
	require.NotNil(t, result.Branches[0].PercentChange)
	assert.Equal(t, "-20", result.Branches[0].PercentChange.String())
}

func TestCalculator_ManualOverrideWins(t *testing.T) {
	ctx := context.Background()
	calc, _, store := newCalculatorFixture(t)

	_, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)

	override := entities.Quantity(20)
	record, err := calc.SetManualOverride(ctx, "SLOW", "01", &override)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(20), record.Active())
	assert.Equal(t, entities.Quantity(8), record.Calculated)

	// recomputation keeps the override but still refreshes the calculated value
	result, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(20), result.Branches[0].Active)
	assert.Equal(t, entities.Quantity(8), result.Branches[0].Record.Calculated)

	record, err = calc.SetManualOverride(ctx, "SLOW", "01", nil)
	require.NoError(t, err)
	assert.False(t, record.HasOverride())
	assert.Equal(t, entities.Quantity(8), record.Active())

	history, err := calc.History(ctx, "SLOW", "01")
	require.NoError(t, err)
	kinds := make([]entities.HistoryKind, 0, len(history))
	for _, h := range history {
		kinds = append(kinds, h.Kind)
	}
	assert.Equal(t, []entities.HistoryKind{
		entities.HistoryCalculated,
		entities.HistoryManual,
		entities.HistoryCalculated,
		entities.HistoryManual,
	}, kinds)
	assert.Equal(t, "150", history[1].PercentChange.String())

	overridden := store.EventsOfType(events.MinimumStockOverriddenEvent)
	require.Len(t, overridden, 2)
	assert.True(t, overridden[1].Data().(events.MinimumStockOverridden).Cleared)
}

func TestCalculator_OverrideWithoutCalculation(t *testing.T) {
	ctx := context.Background()
	calc, _, _ := newCalculatorFixture(t)

	override := entities.Quantity(3)
	record, err := calc.SetManualOverride(ctx, "SLOW", "02", &override)
	require.NoError(t, err)
	assert.Equal(t, entities.Quantity(3), record.Active())

	// the override-only record is not a prior calculated value
	result, err := calc.ComputeForProduct(ctx, "SLOW")
	require.NoError(t, err)
	assert.Nil(t, result.Branches[1].PercentChange)
	assert.Equal(t, entities.Quantity(3), result.Branches[1].Active)
}

func TestCalculator_Errors(t *testing.T) {
	ctx := context.Background()
	calc, _, _ := newCalculatorFixture(t)

	_, err := calc.ComputeForProduct(ctx, "MISSING")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	override := entities.Quantity(1)
	_, err = calc.SetManualOverride(ctx, "SLOW", "00", &override)
	assert.ErrorIs(t, err, ErrNotDestination)

	negative := entities.Quantity(-1)
	_, err = calc.SetManualOverride(ctx, "SLOW", "01", &negative)
	assert.ErrorIs(t, err, ErrNegativeOverride)

	_, err = calc.SetManualOverride(ctx, "MISSING", "01", &override)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestCalculator_SeasonalHistory(t *testing.T) {
	ctx := context.Background()
	calc, f, _ := newCalculatorFixture(t)

	f.AddProduct("SEASONAL", 1, "", "1.00")
	f.AddSale("SEASONAL", "02", 90, "1.00", 10)
	f.AddSale("SEASONAL", "02", 90, "1.00", 100)
	// October last year held 30 of 120 units: 3x the average month, clamped to 2
	f.AddSaleAt("SEASONAL", "02", 30, "1.00", time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC))
	f.AddSaleAt("SEASONAL", "02", 90, "1.00", time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))

	result, err := calc.ComputeForProduct(ctx, "SEASONAL")
	require.NoError(t, err)

	record := result.Branches[1].Record
	require.NotNil(t, record)
	assert.Equal(t, "2", record.Factors.SeasonalFactor.String())
	// only product sold at 02 so it is class C: ceil(1 * 30 * 1.2 * 1 * 2)
	assert.Equal(t, entities.Quantity(72), record.Calculated)
}
