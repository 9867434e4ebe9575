package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMovement_Validation(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	valid, err := NewMovement("M1", "P1", "01", OutboundSale, 3, decimal.RequireFromString("2.50"), at)
	if err != nil {
		t.Fatalf("Expected valid movement creation to succeed: %v", err)
	}
	if !valid.Revenue().Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("Expected revenue 7.5, got %s", valid.Revenue())
	}

	testCases := []struct {
		name        string
		id          string
		product     ProductID
		branch      BranchID
		quantity    Quantity
		at          time.Time
		expectError string
	}{
		{"empty id", "", "P1", "01", 1, at, "movement id cannot be empty"},
		{"empty product", "M1", "", "01", 1, at, "product id cannot be empty"},
		{"empty branch", "M1", "P1", "", 1, at, "branch id cannot be empty"},
		{"zero quantity", "M1", "P1", "01", 0, at, "quantity must be positive, got 0"},
		{"zero date", "M1", "P1", "01", 1, time.Time{}, "movement date cannot be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMovement(tc.id, tc.product, tc.branch, OutboundSale, tc.quantity, decimal.Zero, tc.at)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestMovementKind_RoundTrip(t *testing.T) {
	for k := OutboundSale; k <= Return; k++ {
		parsed, err := ParseMovementKind(k.String())
		if err != nil {
			t.Fatalf("Expected %s to parse: %v", k, err)
		}
		if parsed != k {
			t.Errorf("Expected %s, got %s", k, parsed)
		}
	}
	if _, err := ParseMovementKind("Teleport"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestStockPosition_Available(t *testing.T) {
	testCases := []struct {
		onHand, reserved Quantity
		expected         Quantity
	}{
		{10, 0, 10},
		{10, 4, 6},
		{10, 10, 0},
		{3, 5, 0},
	}

	for _, tc := range testCases {
		pos := StockPosition{ProductID: "P1", BranchID: "00", OnHand: tc.onHand, Reserved: tc.reserved}
		if got := pos.Available(); got != tc.expected {
			t.Errorf("OnHand=%d Reserved=%d: expected %d, got %d", tc.onHand, tc.reserved, tc.expected, got)
		}
	}

	if _, err := NewStockPosition("P1", "01", -1, 0); err == nil || err.Error() != "on-hand quantity cannot be negative, got -1" {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := NewStockPosition("P1", "01", 1, -1); err == nil || err.Error() != "reserved quantity cannot be negative, got -1" {
		t.Errorf("Unexpected error: %v", err)
	}
}
