package minstock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_SlowMoverClassC(t *testing.T) {
	value, factors := Compute(Inputs{
		Class:         entities.ClassC,
		Sales180:      36,
		Sales90:       18,
		SalesPrevious: 18,
		Month:         time.October,
	}, DefaultLeadTimeDays)

	// ceil(0.2 * 30 * 1.2 * 1 * 1) = ceil(7.2)
	if value != 8 {
		t.Errorf("Expected minimum stock 8, got %d", value)
	}
	if factors.LeadTimeDays != 30 {
		t.Errorf("Expected lead time 30, got %d", factors.LeadTimeDays)
	}
	if !factors.SafetyFactor.Equal(dec("1.2")) {
		t.Errorf("Expected safety factor 1.2, got %s", factors.SafetyFactor)
	}
	if !factors.TrendFactor.Equal(dec("1")) || !factors.SeasonalFactor.Equal(dec("1")) {
		t.Errorf("Expected neutral trend and seasonal factors, got %s and %s", factors.TrendFactor, factors.SeasonalFactor)
	}
}

func TestCompute_ClassAUsesBuffer(t *testing.T) {
	value, factors := Compute(Inputs{
		Class:         entities.ClassA,
		Sales180:      180,
		Sales90:       90,
		SalesPrevious: 90,
		Month:         time.March,
	}, DefaultLeadTimeDays)

	// 1/day * 35 * 2.0
	if value != 70 {
		t.Errorf("Expected minimum stock 70, got %d", value)
	}
	if factors.LeadTimeDays != 35 {
		t.Errorf("Expected lead time 35, got %d", factors.LeadTimeDays)
	}
}

func TestCompute_Floor(t *testing.T) {
	tests := []struct {
		name     string
		sales180 entities.Quantity
		expected entities.Quantity
	}{
		{"single sale never computes to zero", 1, 1},
		{"no sales is zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, _ := Compute(Inputs{
				Class:         entities.ClassC,
				Sales180:      tt.sales180,
				SalesPrevious: tt.sales180 * 4, // trend clamps to 0.5
				PriorYear:     [12]entities.Quantity{100},
				Month:         time.June, // seasonal clamps to 0.5
			}, 1)
			if value != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, value)
			}
		})
	}
}

func TestClassifyABC(t *testing.T) {
	totals := map[entities.ProductID]entities.SalesTotal{
		"P1": {Quantity: 7, Revenue: dec("70")},
		"P2": {Quantity: 3, Revenue: dec("15")},
		"P3": {Quantity: 1, Revenue: dec("10")},
		"P4": {Quantity: 5, Revenue: dec("5")},
		"P5": {Quantity: 2, Revenue: dec("0")},
	}

	classes := ClassifyABC(totals)

	expected := map[entities.ProductID]entities.ABCClass{
		"P1": entities.ClassA, // 70%
		"P2": entities.ClassB, // 85%
		"P3": entities.ClassB, // 95%
		"P4": entities.ClassC, // 100%
		"P5": entities.ClassC,
	}
	for id, want := range expected {
		if classes[id] != want {
			t.Errorf("Expected %s to be class %s, got %s", id, want, classes[id])
		}
	}
	if classes["UNSOLD"] != entities.ClassC {
		t.Errorf("Expected unsold product to be class C")
	}
}

func TestClassifyABC_TiesByProductID(t *testing.T) {
	totals := map[entities.ProductID]entities.SalesTotal{
		"B": {Quantity: 1, Revenue: dec("40")},
		"A": {Quantity: 1, Revenue: dec("40")},
		"C": {Quantity: 1, Revenue: dec("20")},
	}

	for i := 0; i < 20; i++ {
		classes := ClassifyABC(totals)
		if classes["A"] != entities.ClassA || classes["B"] != entities.ClassA || classes["C"] != entities.ClassC {
			t.Fatalf("Unexpected classes %v", classes)
		}
	}

	totals["A"] = entities.SalesTotal{Quantity: 1, Revenue: dec("45")}
	totals["B"] = entities.SalesTotal{Quantity: 1, Revenue: dec("45")}
	totals["C"] = entities.SalesTotal{Quantity: 1, Revenue: dec("10")}
	classes := ClassifyABC(totals)
	// A reaches 45%, B 90%
	if classes["A"] != entities.ClassA || classes["B"] != entities.ClassB {
		t.Errorf("Expected A before B on equal revenue, got %v", classes)
	}
}

func TestTrendFactor(t *testing.T) {
	tests := []struct {
		recent, previous entities.Quantity
		expected         string
	}{
		{0, 0, "1"},
		{5, 0, "1.5"},
		{10, 10, "1"},
		{12, 10, "1.2"},
		{30, 10, "2"},
		{1, 10, "0.5"},
		{10, 30, "0.5"},
		{20, 30, "0.6667"},
	}

	for _, tt := range tests {
		got := TrendFactor(tt.recent, tt.previous)
		if !got.Equal(dec(tt.expected)) {
			t.Errorf("TrendFactor(%d, %d) = %s, expected %s", tt.recent, tt.previous, got, tt.expected)
		}
	}
}

func TestSeasonalFactor(t *testing.T) {
	// 120 units over the year, 10 on average
	year := [12]entities.Quantity{5, 5, 5, 5, 5, 5, 5, 5, 0, 15, 40, 25}

	tests := []struct {
		name     string
		history  [12]entities.Quantity
		month    time.Month
		expected string
	}{
		{"no prior year", [12]entities.Quantity{}, time.October, "1"},
		{"busy month", year, time.October, "1.5"},
		{"clamped high", year, time.November, "2"},
		{"clamped low", year, time.September, "0.5"},
		{"quiet month", year, time.January, "0.5"},
		{"above average", year, time.December, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SeasonalFactor(tt.history, tt.month)
			if !got.Equal(dec(tt.expected)) {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParamsFor(t *testing.T) {
	tests := []struct {
		class  entities.ABCClass
		safety string
		buffer int
	}{
		{entities.ClassA, "2.0", 5},
		{entities.ClassB, "1.5", 3},
		{entities.ClassC, "1.2", 0},
	}

	for _, tt := range tests {
		params := ParamsFor(tt.class)
		if !params.SafetyFactor.Equal(dec(tt.safety)) || params.BufferDays != tt.buffer {
			t.Errorf("Unexpected params for class %s: %+v", tt.class, params)
		}
	}
}
