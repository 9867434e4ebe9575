package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProduct_Validation(t *testing.T) {
	validProduct, err := NewProduct("P100", "Brake pad", "BRAKES", 4, "G1", decimal.NewFromInt(25))
	if err != nil {
		t.Fatalf("Expected valid product creation to succeed: %v", err)
	}
	if validProduct.SalesMultiple != 4 {
		t.Errorf("Expected sales multiple 4, got %d", validProduct.SalesMultiple)
	}
	if !validProduct.HasCombinedGroup() {
		t.Error("Expected product to belong to a combined group")
	}

	testCases := []struct {
		name        string
		id          ProductID
		description string
		multiple    int
		price       decimal.Decimal
		expectError string
	}{
		{"empty id", "", "desc", 1, decimal.Zero, "product id cannot be empty"},
		{"empty description", "P1", "", 1, decimal.Zero, "description cannot be empty"},
		{"zero multiple", "P1", "desc", 0, decimal.Zero, "sales multiple must be at least 1, got 0"},
		{"negative multiple", "P1", "desc", -2, decimal.Zero, "sales multiple must be at least 1, got -2"},
		{"negative price", "P1", "desc", 1, decimal.NewFromInt(-3), "unit price cannot be negative, got -3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct(tc.id, tc.description, "", tc.multiple, "", tc.price)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestCombinedGroup_DropsDuplicateMembers(t *testing.T) {
	group, err := NewCombinedGroup("G1", []ProductID{"A", "B", "A", "C", "B"})
	if err != nil {
		t.Fatalf("Expected valid group creation to succeed: %v", err)
	}

	expected := []ProductID{"A", "B", "C"}
	if len(group.Members) != len(expected) {
		t.Fatalf("Expected %d members, got %d", len(expected), len(group.Members))
	}
	for i, m := range expected {
		if group.Members[i] != m {
			t.Errorf("Expected member %d to be %s, got %s", i, m, group.Members[i])
		}
	}

	if _, err := NewCombinedGroup("", nil); err == nil || err.Error() != "group id cannot be empty" {
		t.Errorf("Expected 'group id cannot be empty', got %v", err)
	}
	if _, err := NewCombinedGroup("G2", []ProductID{"A", ""}); err == nil {
		t.Error("Expected error for empty member id")
	}
}
