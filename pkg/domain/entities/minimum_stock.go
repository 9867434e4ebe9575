package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ABCClass represents the Pareto revenue tier of a product at a branch
type ABCClass int

const (
	ClassC ABCClass = iota
	ClassB
	ClassA
)

// String method for ABCClass enum
func (c ABCClass) String() string {
	switch c {
	case ClassA:
		return "A"
	case ClassB:
		return "B"
	case ClassC:
		return "C"
	default:
		return "Unknown"
	}
}

// ParseABCClass converts "A", "B" or "C" into an ABCClass
func ParseABCClass(s string) (ABCClass, error) {
	switch s {
	case "A":
		return ClassA, nil
	case "B":
		return ClassB, nil
	case "C":
		return ClassC, nil
	default:
		return ClassC, fmt.Errorf("unknown ABC class: %s", s)
	}
}

// MinimumStockFactors are the inputs that produced a minimum-stock value
type MinimumStockFactors struct {
	Class          ABCClass
	SafetyFactor   decimal.Decimal
	TrendFactor    decimal.Decimal
	SeasonalFactor decimal.Decimal
	LeadTimeDays   int // base lead time plus the class buffer
}

// MinimumStockRecord is the stored minimum-stock target for a product at a branch
type MinimumStockRecord struct {
	ProductID      ProductID
	BranchID       BranchID
	Calculated     Quantity
	ManualOverride *Quantity
	Factors        MinimumStockFactors
	Sales180       Quantity
	Sales90        Quantity
	SalesPrevious  Quantity // sales in the 90-180 day window
	ComputedAt     time.Time
	UpdatedAt      time.Time
}

// Active returns the value the engine uses: the manual override when set, else the calculated value
func (r *MinimumStockRecord) Active() Quantity {
	if r.ManualOverride != nil {
		return *r.ManualOverride
	}
	return r.Calculated
}

// HasOverride reports whether a manual override is active
func (r *MinimumStockRecord) HasOverride() bool {
	return r.ManualOverride != nil
}

// HistoryKind represents what produced a history entry
type HistoryKind int

const (
	HistoryCalculated HistoryKind = iota
	HistoryManual
)

// String method for HistoryKind enum
func (k HistoryKind) String() string {
	switch k {
	case HistoryCalculated:
		return "calculated"
	case HistoryManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseHistoryKind converts the String form back into a HistoryKind
func ParseHistoryKind(s string) (HistoryKind, error) {
	switch s {
	case "calculated":
		return HistoryCalculated, nil
	case "manual":
		return HistoryManual, nil
	default:
		return HistoryCalculated, fmt.Errorf("unknown history kind: %s", s)
	}
}

// MinimumStockHistoryEntry is an append-only audit row of one minimum-stock change
type MinimumStockHistoryEntry struct {
	ID            string
	ProductID     ProductID
	BranchID      BranchID
	Kind          HistoryKind
	PreviousValue *Quantity
	NewValue      Quantity
	PercentChange *decimal.Decimal
	Factors       MinimumStockFactors
	CreatedAt     time.Time
}

// PercentChange returns the variation from previous to current in percent, rounded to two
// places. It is nil when there is no previous value, or when the previous value is zero and
// the current one is not.
func PercentChange(previous *Quantity, current Quantity) *decimal.Decimal {
	if previous == nil {
		return nil
	}
	if *previous == 0 {
		if current == 0 {
			zero := decimal.Zero
			return &zero
		}
		return nil
	}

	prev := decimal.NewFromInt(int64(*previous))
	change := decimal.NewFromInt(int64(current)).Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
	return &change
}
