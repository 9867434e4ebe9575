package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/allocation"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/minstock"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

var generated = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func sampleReport() *allocation.Report {
	return &allocation.Report{
		Origin:      "00",
		PeriodDays:  90,
		GeneratedAt: generated,
		Rationed:    1,
		Results: []*entities.AllocationResult{{
			ProductID:     "FLT-100",
			Description:   "Oil filter",
			Origin:        "00",
			OriginSupply:  1500,
			TotalNeed:     2000,
			Distributed:   1500,
			Deficit:       500,
			Status:        entities.StatusRationed,
			SalesMultiple: 1,
			Branches: []entities.BranchAllocation{{
				BranchDemand: entities.BranchDemand{BranchID: "01", BranchName: "Downtown", Need: 2000, UsedGroupFallback: true},
				Allocated:    1500,
				Status:       entities.BranchPartial,
			}},
			Alternatives: []entities.AlternativeProduct{{ProductID: "FLT-101", Description: "Oil filter XL", OriginStock: 25}},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("csv")
	assert.EqualError(t, err, "unsupported output format: csv")
}

func TestAllocationReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).AllocationReport(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "origin 00  period 90 days  generated 2026-10-14 09:30")
	assert.Contains(t, out, "FLT-100  Oil filter  [rationed]")
	assert.Contains(t, out, "Supply: 1,500  Need: 2,000  Distributed: 1,500  Deficit: 500")
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "group")
	assert.Contains(t, out, "FLT-101")
}

func TestAllocationReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).AllocationReport(sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	results := decoded["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "rationed", first["status"])
	branch := first["branches"].([]any)[0].(map[string]any)
	assert.Equal(t, "partial", branch["status"])
	assert.Equal(t, true, branch["used_group_fallback"])
}

func TestMinimumStock_Text(t *testing.T) {
	pct := decimal.RequireFromString("-20")
	record := &entities.MinimumStockRecord{
		ProductID: "SLOW", BranchID: "01", Calculated: 8, Sales180: 36,
		Factors: entities.MinimumStockFactors{
			Class:          entities.ClassC,
			SafetyFactor:   decimal.RequireFromString("1.2"),
			TrendFactor:    decimal.NewFromInt(1),
			SeasonalFactor: decimal.NewFromInt(1),
			LeadTimeDays:   30,
		},
	}
	results := []*minstock.ProductMinimumStock{{
		ProductID:   "SLOW",
		Description: "Slow mover",
		Branches: []minstock.BranchResult{
			{BranchID: "01", BranchName: "Downtown", Record: record, Active: 8, PercentChange: &pct},
			{BranchID: "02", BranchName: "Harbor", Active: 0},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).MinimumStock(results))
	out := buf.String()
	assert.Contains(t, out, "SLOW  Slow mover")
	assert.Contains(t, out, "-20.00%")
	assert.Contains(t, out, "1.2")
	assert.Contains(t, out, "02     Harbor               error:")
}

func TestJobStatus_Text(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, FormatText)
	w.now = func() time.Time { return generated }

	require.NoError(t, w.JobStatus(minstock.JobStatus{
		ID: "0123456789", Phase: minstock.PhaseRunning, Total: 12000, Processed: 3000,
		Succeeded: 2990, Failed: 10, ETA: 3 * time.Minute,
	}))
	out := buf.String()
	assert.Contains(t, out, "Batch 01234567: running  3,000/12,000 processed, 2,990 ok, 10 failed")
	assert.Contains(t, out, "3 minutes remaining")
}

func TestHistory_Text(t *testing.T) {
	prev := entities.Quantity(10)
	pct := decimal.RequireFromString("100")
	entries := []*entities.MinimumStockHistoryEntry{
		{Kind: entities.HistoryCalculated, NewValue: 10, CreatedAt: generated.Add(-48 * time.Hour)},
		{Kind: entities.HistoryManual, PreviousValue: &prev, NewValue: 20, PercentChange: &pct, CreatedAt: generated.Add(-time.Hour)},
	}

	var buf bytes.Buffer
	w := New(&buf, FormatText)
	w.now = func() time.Time { return generated }
	require.NoError(t, w.History(entries))

	out := buf.String()
	assert.Contains(t, out, "2 days ago")
	assert.Contains(t, out, "manual")
	assert.Contains(t, out, "100.00%")

	buf.Reset()
	require.NoError(t, w.History(nil))
	assert.Equal(t, "No history\n", buf.String())
}
