// Package minstock computes per product and branch minimum-stock targets from ABC class,
// sales trend and seasonality, interactively for one product or in bulk for the catalog.
package minstock

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

const (
	// HistoryWindowDays is the sales window behind ABC and the average daily demand
	HistoryWindowDays = 180
	// RecentWindowDays splits the history window into recent and previous halves for the trend
	RecentWindowDays = 90
	// DefaultLeadTimeDays is the replenishment lead time before the class buffer
	DefaultLeadTimeDays = 30
)

var (
	classAShare = decimal.RequireFromString("0.80")
	classBShare = decimal.RequireFromString("0.95")

	factorFloor   = decimal.RequireFromString("0.5")
	factorCeiling = decimal.RequireFromString("2.0")

	trendWithoutBaseline = decimal.RequireFromString("1.5")

	one = decimal.NewFromInt(1)
)

// factorPlaces is the precision factors are stored with
const factorPlaces = 4

// ClassParams are the safety factor and lead-time buffer of an ABC class
type ClassParams struct {
	SafetyFactor decimal.Decimal
	BufferDays   int
}

// ParamsFor returns the parameters of a class
func ParamsFor(class entities.ABCClass) ClassParams {
	switch class {
	case entities.ClassA:
		return ClassParams{SafetyFactor: decimal.RequireFromString("2.0"), BufferDays: 5}
	case entities.ClassB:
		return ClassParams{SafetyFactor: decimal.RequireFromString("1.5"), BufferDays: 3}
	default:
		return ClassParams{SafetyFactor: decimal.RequireFromString("1.2"), BufferDays: 0}
	}
}

// ClassifyABC ranks products by revenue descending (ties by product id) and assigns A while
// the cumulative share including the product stays within 80%, B within 95%, C otherwise.
// Products absent from totals are class C; so is everything when total revenue is zero.
func ClassifyABC(totals map[entities.ProductID]entities.SalesTotal) map[entities.ProductID]entities.ABCClass {
	classes := make(map[entities.ProductID]entities.ABCClass, len(totals))

	ranked := make([]entities.ProductID, 0, len(totals))
	total := decimal.Zero
	for id, t := range totals {
		classes[id] = entities.ClassC
		if t.Revenue.IsPositive() {
			ranked = append(ranked, id)
			total = total.Add(t.Revenue)
		}
	}
	if !total.IsPositive() {
		return classes
	}

	sort.Slice(ranked, func(i, j int) bool {
		ri, rj := totals[ranked[i]].Revenue, totals[ranked[j]].Revenue
		if !ri.Equal(rj) {
			return ri.GreaterThan(rj)
		}
		return ranked[i] < ranked[j]
	})

	cumulative := decimal.Zero
	for _, id := range ranked {
		cumulative = cumulative.Add(totals[id].Revenue)
		share := cumulative.Div(total)
		switch {
		case share.LessThanOrEqual(classAShare):
			classes[id] = entities.ClassA
		case share.LessThanOrEqual(classBShare):
			classes[id] = entities.ClassB
		}
	}
	return classes
}

// TrendFactor compares the recent window to the previous one
func TrendFactor(recent, previous entities.Quantity) decimal.Decimal {
	if previous == 0 {
		if recent > 0 {
			return trendWithoutBaseline
		}
		return one
	}
	ratio := decimal.NewFromInt(int64(recent)).Div(decimal.NewFromInt(int64(previous)))
	return clampFactor(ratio)
}

// SeasonalFactor compares a month of the prior year to that year's average month. A prior
// year without sales yields 1.
func SeasonalFactor(priorYear [12]entities.Quantity, month time.Month) decimal.Decimal {
	var yearTotal entities.Quantity
	for _, q := range priorYear {
		yearTotal += q
	}
	if yearTotal <= 0 {
		return one
	}
	// month / (total / 12) == month * 12 / total
	ratio := decimal.NewFromInt(int64(priorYear[month-1]) * 12).Div(decimal.NewFromInt(int64(yearTotal)))
	return clampFactor(ratio)
}

func clampFactor(f decimal.Decimal) decimal.Decimal {
	if f.LessThan(factorFloor) {
		return factorFloor
	}
	if f.GreaterThan(factorCeiling) {
		return factorCeiling
	}
	return f.Round(factorPlaces)
}

// Inputs are the sales figures of one product at one branch
type Inputs struct {
	Class         entities.ABCClass
	Sales180      entities.Quantity
	Sales90       entities.Quantity
	SalesPrevious entities.Quantity
	PriorYear     [12]entities.Quantity
	Month         time.Month
}

// Compute returns the minimum stock and the factors that produced it:
// ceil(sales180 / 180 * (lead + buffer) * safety * trend * seasonal), at least 1 when
// sales180 is positive.
func Compute(in Inputs, leadTimeDays int) (entities.Quantity, entities.MinimumStockFactors) {
	params := ParamsFor(in.Class)
	factors := entities.MinimumStockFactors{
		Class:          in.Class,
		SafetyFactor:   params.SafetyFactor,
		TrendFactor:    TrendFactor(in.Sales90, in.SalesPrevious),
		SeasonalFactor: SeasonalFactor(in.PriorYear, in.Month),
		LeadTimeDays:   leadTimeDays + params.BufferDays,
	}

	if in.Sales180 <= 0 {
		return 0, factors
	}

	// divide last so exact products stay exact
	value := decimal.NewFromInt(int64(in.Sales180)).
		Mul(decimal.NewFromInt(int64(factors.LeadTimeDays))).
		Mul(factors.SafetyFactor).
		Mul(factors.TrendFactor).
		Mul(factors.SeasonalFactor).
		Div(decimal.NewFromInt(HistoryWindowDays)).
		Ceil()

	minimum := entities.Quantity(value.IntPart())
	if minimum < 1 {
		minimum = 1
	}
	return minimum, factors
}
