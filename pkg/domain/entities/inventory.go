package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind represents the kind of a stock movement
type MovementKind int

const (
	OutboundSale MovementKind = iota
	Inbound
	TransferOut
	TransferIn
	Adjustment
	Return
)

// String method for MovementKind enum
func (k MovementKind) String() string {
	switch k {
	case OutboundSale:
		return "OutboundSale"
	case Inbound:
		return "Inbound"
	case TransferOut:
		return "TransferOut"
	case TransferIn:
		return "TransferIn"
	case Adjustment:
		return "Adjustment"
	case Return:
		return "Return"
	default:
		return "Unknown"
	}
}

// ParseMovementKind converts the String form back into a MovementKind
func ParseMovementKind(s string) (MovementKind, error) {
	for k := OutboundSale; k <= Return; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown movement kind: %s", s)
}

// Movement represents a single stock movement line
type Movement struct {
	ID         string
	ProductID  ProductID
	BranchID   BranchID
	Kind       MovementKind
	Quantity   Quantity
	UnitPrice  decimal.Decimal
	OccurredAt time.Time
}

// NewMovement creates a validated Movement
func NewMovement(
	id string,
	productID ProductID,
	branchID BranchID,
	kind MovementKind,
	quantity Quantity,
	unitPrice decimal.Decimal,
	occurredAt time.Time,
) (*Movement, error) {
	if id == "" {
		return nil, fmt.Errorf("movement id cannot be empty")
	}
	if string(productID) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if string(branchID) == "" {
		return nil, fmt.Errorf("branch id cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if occurredAt.IsZero() {
		return nil, fmt.Errorf("movement date cannot be empty")
	}

	return &Movement{
		ID:         id,
		ProductID:  productID,
		BranchID:   branchID,
		Kind:       kind,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// Revenue returns quantity times unit price
func (m *Movement) Revenue() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

// StockPosition represents the stock of one product at one branch
type StockPosition struct {
	ProductID ProductID
	BranchID  BranchID
	OnHand    Quantity
	Reserved  Quantity
}

// NewStockPosition creates a validated StockPosition
func NewStockPosition(productID ProductID, branchID BranchID, onHand, reserved Quantity) (*StockPosition, error) {
	if string(productID) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if string(branchID) == "" {
		return nil, fmt.Errorf("branch id cannot be empty")
	}
	if onHand < 0 {
		return nil, fmt.Errorf("on-hand quantity cannot be negative, got %d", onHand)
	}
	if reserved < 0 {
		return nil, fmt.Errorf("reserved quantity cannot be negative, got %d", reserved)
	}

	return &StockPosition{
		ProductID: productID,
		BranchID:  branchID,
		OnHand:    onHand,
		Reserved:  reserved,
	}, nil
}

// Available returns on-hand stock not reserved or blocked
func (s StockPosition) Available() Quantity {
	if s.Reserved >= s.OnHand {
		return 0
	}
	return s.OnHand - s.Reserved
}

// SalesTotal is a bulk sales aggregate for one product over a window
type SalesTotal struct {
	Quantity Quantity
	Revenue  decimal.Decimal
}
