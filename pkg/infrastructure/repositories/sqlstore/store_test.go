package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/repositories"
	csvrepo "github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/csv"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := OpenSQLite(s.ctx, filepath.Join(s.T().TempDir(), "logilink.db"))
	s.Require().NoError(err)
	s.store = store
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *StoreTestSuite) product(id entities.ProductID, multiple int, group, price string) *entities.Product {
	p, err := entities.NewProduct(id, "Product "+string(id), "PARTS", multiple, group, decimal.RequireFromString(price))
	s.Require().NoError(err)
	return p
}

func (s *StoreTestSuite) sale(id string, p entities.ProductID, b entities.BranchID, qty entities.Quantity, price string, at time.Time) {
	m, err := entities.NewMovement(id, p, b, entities.OutboundSale, qty, decimal.RequireFromString(price), at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddMovement(s.ctx, m))
}

func (s *StoreTestSuite) TestProductsAndGroups() {
	s.Require().NoError(s.store.SaveProduct(s.ctx, s.product("B", 1, "G1", "2.50")))
	s.Require().NoError(s.store.SaveProduct(s.ctx, s.product("A", 6, "G1", "1.10")))
	s.Require().NoError(s.store.SaveProduct(s.ctx, s.product("C", 1, "", "0")))
	s.Require().NoError(s.store.SaveGroup(s.ctx, &entities.CombinedGroup{ID: "G1", Members: []entities.ProductID{"A", "D"}}))

	got, err := s.store.GetProduct(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal(6, got.SalesMultiple)
	s.Equal("G1", got.CombinedGroupID)
	s.True(decimal.RequireFromString("1.1").Equal(got.UnitPrice))

	_, err = s.store.GetProduct(s.ctx, "NOPE")
	s.ErrorIs(err, repositories.ErrProductNotFound)

	all, err := s.store.ListProducts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(entities.ProductID("A"), all[0].ID)
	s.Equal(entities.ProductID("C"), all[2].ID)

	groups, err := s.store.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(groups, 1)
	s.Equal([]entities.ProductID{"B", "A", "D"}, groups[0].Members)

	// Saving again replaces fields and keeps one membership
	updated := s.product("A", 4, "G1", "1.20")
	s.Require().NoError(s.store.SaveProduct(s.ctx, updated))
	got, err = s.store.GetProduct(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal(4, got.SalesMultiple)
	groups, err = s.store.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Len(groups[0].Members, 3)
}

func (s *StoreTestSuite) TestSalesQueries() {
	s.sale("M1", "A", "01", 4, "2.00", now.AddDate(0, 0, -5))
	s.sale("M2", "A", "01", 6, "2.50", now.AddDate(0, 0, -10))
	s.sale("M3", "A", "01", 3, "2.00", now.AddDate(0, 0, -40))
	s.sale("M4", "B", "01", 2, "1.00", now.AddDate(0, 0, -1))
	s.sale("M5", "A", "02", 9, "2.00", now.AddDate(0, 0, -1))
	s.sale("M6", "A", "01", 5, "2.00", time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))
	inbound, err := entities.NewMovement("M7", "A", "01", entities.Inbound, 50, decimal.Zero, now.AddDate(0, 0, -2))
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddMovement(s.ctx, inbound))
	// duplicate ids are ignored
	s.sale("M1", "A", "01", 100, "2.00", now.AddDate(0, 0, -5))

	start, end := now.AddDate(0, 0, -30), now
	sum, err := s.store.SumSales(s.ctx, []entities.ProductID{"A", "A", "B"}, "01", start, end)
	s.Require().NoError(err)
	s.Equal(entities.Quantity(12), sum)

	sum, err = s.store.SumSales(s.ctx, nil, "01", start, end)
	s.Require().NoError(err)
	s.Zero(sum)

	// the end bound is exclusive
	sum, err = s.store.SumSales(s.ctx, []entities.ProductID{"A"}, "01", start, now.AddDate(0, 0, -5))
	s.Require().NoError(err)
	s.Equal(entities.Quantity(6), sum)

	totals, err := s.store.SalesTotals(s.ctx, "01", start, end)
	s.Require().NoError(err)
	s.Equal(entities.Quantity(10), totals["A"].Quantity)
	s.Equal("23", totals["A"].Revenue.String())
	s.Equal(entities.Quantity(2), totals["B"].Quantity)
	s.NotContains(totals, entities.ProductID("C"))

	monthly, err := s.store.MonthlySales(s.ctx, "01", 2025)
	s.Require().NoError(err)
	s.Equal(entities.Quantity(5), monthly["A"][time.March-1])
	s.Len(monthly, 1)

	sold, err := s.store.ProductsSoldSince(s.ctx, now.AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Equal([]entities.ProductID{"A", "B"}, sold)
}

func (s *StoreTestSuite) TestStock() {
	s.Require().NoError(s.store.SetStock(s.ctx, entities.StockPosition{ProductID: "A", BranchID: "00", OnHand: 10, Reserved: 4}))
	s.Require().NoError(s.store.SetStock(s.ctx, entities.StockPosition{ProductID: "A", BranchID: "00", OnHand: 12, Reserved: 4}))

	pos, err := s.store.GetStock(s.ctx, "A", "00")
	s.Require().NoError(err)
	s.Equal(entities.Quantity(8), pos.Available())

	missing, err := s.store.GetStock(s.ctx, "A", "01")
	s.Require().NoError(err)
	s.Equal(entities.StockPosition{ProductID: "A", BranchID: "01"}, missing)

	positions, err := s.store.StockForProducts(s.ctx, []entities.ProductID{"A", "B", "A"}, "00")
	s.Require().NoError(err)
	s.Len(positions, 2)
	s.Equal(entities.Quantity(12), positions["A"].OnHand)
	s.Equal(entities.StockPosition{ProductID: "B", BranchID: "00"}, positions["B"])
}

func (s *StoreTestSuite) TestMinimumStockLifecycle() {
	prev := entities.Quantity(10)
	pct := decimal.RequireFromString("-20")
	factors := entities.MinimumStockFactors{
		Class:          entities.ClassB,
		SafetyFactor:   decimal.RequireFromString("1.5"),
		TrendFactor:    decimal.RequireFromString("0.6667"),
		SeasonalFactor: decimal.NewFromInt(1),
		LeadTimeDays:   33,
	}
	record := &entities.MinimumStockRecord{
		ProductID: "A", BranchID: "01", Calculated: 8, Factors: factors,
		Sales180: 36, Sales90: 18, SalesPrevious: 18, ComputedAt: now, UpdatedAt: now,
	}
	calc := &entities.MinimumStockHistoryEntry{
		ID: "h1", ProductID: "A", BranchID: "01", Kind: entities.HistoryCalculated,
		PreviousValue: &prev, NewValue: 8, PercentChange: &pct, Factors: factors, CreatedAt: now,
	}
	s.Require().NoError(s.store.Save(s.ctx, record, calc))

	override := entities.Quantity(20)
	manual := &entities.MinimumStockHistoryEntry{
		ID: "h2", ProductID: "A", BranchID: "01", Kind: entities.HistoryManual,
		PreviousValue: &record.Calculated, NewValue: 20, CreatedAt: now.Add(time.Hour),
	}
	s.Require().NoError(s.store.SetOverride(s.ctx, "A", "01", &override, manual))

	// recalculation keeps the override
	record.Calculated = 9
	s.Require().NoError(s.store.Save(s.ctx, record, nil))

	got, err := s.store.Get(s.ctx, "A", "01")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(entities.Quantity(9), got.Calculated)
	s.Equal(entities.Quantity(20), got.Active())
	s.Equal(entities.ClassB, got.Factors.Class)
	s.Equal("0.6667", got.Factors.TrendFactor.String())
	s.Equal(33, got.Factors.LeadTimeDays)
	s.Equal(entities.Quantity(18), got.SalesPrevious)
	s.True(now.Equal(got.ComputedAt))

	history, err := s.store.History(s.ctx, "A", "01")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal("h1", history[0].ID)
	s.Equal(entities.Quantity(10), *history[0].PreviousValue)
	s.Equal("-20", history[0].PercentChange.String())
	s.Equal(entities.HistoryManual, history[1].Kind)
	s.Nil(history[1].PercentChange)

	s.Require().NoError(s.store.SetOverride(s.ctx, "A", "01", nil, nil))
	got, err = s.store.Get(s.ctx, "A", "01")
	s.Require().NoError(err)
	s.False(got.HasOverride())
	s.True(now.Equal(got.UpdatedAt))
}

func (s *StoreTestSuite) TestOverrideOnlyRecord() {
	override := entities.Quantity(7)
	s.Require().NoError(s.store.SetOverride(s.ctx, "B", "02", &override, nil))

	got, err := s.store.Get(s.ctx, "B", "02")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.ComputedAt.IsZero())
	s.Equal(entities.Quantity(7), got.Active())

	byBranch, err := s.store.ListByBranch(s.ctx, "02")
	s.Require().NoError(err)
	s.Len(byBranch, 1)

	none, err := s.store.Get(s.ctx, "B", "03")
	s.Require().NoError(err)
	s.Nil(none)

	history, err := s.store.History(s.ctx, "B", "02")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *StoreTestSuite) TestImportScenario() {
	pos, err := entities.NewStockPosition("A", "00", 30, 0)
	s.Require().NoError(err)
	m, err := entities.NewMovement("M1", "A", "01", entities.OutboundSale, 3, decimal.NewFromInt(2), now.AddDate(0, 0, -3))
	s.Require().NoError(err)

	scenario := &csvrepo.Scenario{
		Products:  []*entities.Product{s.product("A", 1, "", "2"), s.product("B", 1, "", "3")},
		Stock:     []*entities.StockPosition{pos},
		Movements: []*entities.Movement{m},
		Groups:    []*entities.CombinedGroup{{ID: "G", Members: []entities.ProductID{"A", "B"}}},
		Overrides: []csvrepo.Override{{ProductID: "B", BranchID: "01", Value: 4}},
	}
	stats, err := s.store.ImportScenario(s.ctx, scenario)
	s.Require().NoError(err)
	s.Equal(ImportStats{Products: 2, Groups: 1, Stock: 1, Movements: 1, Overrides: 1}, stats)

	// importing twice does not duplicate sales
	_, err = s.store.ImportScenario(s.ctx, scenario)
	s.Require().NoError(err)
	sum, err := s.store.SumSales(s.ctx, []entities.ProductID{"A"}, "01", now.AddDate(0, 0, -30), now)
	s.Require().NoError(err)
	s.Equal(entities.Quantity(3), sum)

	rec, err := s.store.Get(s.ctx, "B", "01")
	s.Require().NoError(err)
	s.Equal(entities.Quantity(4), rec.Active())
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	assert.Equal(t, "a = $1 AND b IN ($2,$3)", pg.rebind("a = ? AND b IN ("+placeholders(2)+")"))

	lite := &Store{dialect: SQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestUnixRoundTrip(t *testing.T) {
	require.True(t, fromUnix(unixSeconds(time.Time{})).IsZero())
	assert.True(t, now.Equal(fromUnix(unixSeconds(now))))
}
