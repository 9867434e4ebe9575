package shared

import (
	"testing"
	"time"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

func TestPairTable_BasicOperations(t *testing.T) {
	table := NewPairTable[entities.Quantity](4)
	if table.Size() != 0 {
		t.Errorf("Expected empty table, got size %d", table.Size())
	}

	table.Set("P1", "01", 5)
	if table.Get("P1", "01") != 5 {
		t.Errorf("Expected 5, got %d", table.Get("P1", "01"))
	}
	if !table.Has("P1", "01") || table.Has("P1", "02") {
		t.Error("Unexpected Has results")
	}
	if _, ok := table.Lookup("P2", "01"); ok {
		t.Error("Expected lookup of missing pair to fail")
	}
	if table.Get("P2", "01") != 0 {
		t.Error("Expected zero value for missing pair")
	}
	if (PairKey{"P1", "01"}).String() != "P1|01" {
		t.Errorf("Unexpected key format: %s", PairKey{"P1", "01"})
	}
}

func TestMultipleTable(t *testing.T) {
	table := NewMultipleTable([]*entities.Product{
		{ID: "BOX", SalesMultiple: 6},
		{ID: "UNIT", SalesMultiple: 1},
	})

	if table.Multiple("BOX") != 6 {
		t.Errorf("Expected 6, got %d", table.Multiple("BOX"))
	}
	if table.Multiple("UNIT") != 1 || table.Multiple("UNKNOWN") != 1 {
		t.Error("Expected single-unit multiple for UNIT and unknown products")
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

	start, end := DayWindow(now, 90, 0)
	if !end.Equal(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected window to end at start of tomorrow, got %v", end)
	}
	if !start.Equal(end.AddDate(0, 0, -90)) {
		t.Errorf("Expected 90-day window, got %v", start)
	}

	prevStart, prevEnd := DayWindow(now, 90, 90)
	if !prevEnd.Equal(start) {
		t.Errorf("Expected offset window to end where the recent one starts, got %v", prevEnd)
	}
	if !prevStart.Equal(start.AddDate(0, 0, -90)) {
		t.Errorf("Unexpected offset window start %v", prevStart)
	}
}
