package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/allocation"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/application/services/minstock"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
	"github.com/juliolopes-dev/LogiLink-sub001/pkg/infrastructure/repositories/sqlstore"
)

// Format selects how results are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const dateTimeLayout = "2006-01-02 15:04"

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Writer renders command results as text or JSON
type Writer struct {
	out    io.Writer
	format Format
	now    func() time.Time
}

// New creates a writer; an empty format means text
func New(out io.Writer, format Format) *Writer {
	if format == "" {
		format = FormatText
	}
	return &Writer{out: out, format: format, now: time.Now}
}

// AllocationReport renders a distribution plan
func (w *Writer) AllocationReport(report *allocation.Report) error {
	if w.format == FormatJSON {
		return w.json(report)
	}

	w.printf("ALLOCATION PLAN  origin %s  period %d days  generated %s\n",
		report.Origin, report.PeriodDays, report.GeneratedAt.Format(dateTimeLayout))
	w.printf("Products: %s  Rationed: %s  Deficits: %s\n\n",
		count(len(report.Results)), count(report.Rationed), count(report.Deficits))

	for _, r := range report.Results {
		w.printf("%s  %s  [%s]\n", r.ProductID, r.Description, r.Status)
		w.printf("  Supply: %s  Need: %s  Distributed: %s  Deficit: %s  Multiple: %d\n",
			qty(r.OriginSupply), qty(r.TotalNeed), qty(r.Distributed), qty(r.Deficit), r.SalesMultiple)
		w.printf("  %-6s %-20s %8s %8s %8s %6s %6s %9s  %-10s %s\n",
			"Branch", "Name", "On hand", "Sales", "Group", "Min", "Need", "Allocated", "Status", "Flags")
		for _, b := range r.Branches {
			w.printf("  %-6s %-20s %8s %8s %8s %6s %6s %9s  %-10s %s\n",
				b.BranchID, truncate(b.BranchName, 20), qty(b.OnHand), qty(b.OwnSales), qty(b.GroupSales),
				qty(b.MinimumStock), qty(b.Need), qty(b.Allocated), b.Status, flags(b.BranchDemand))
		}
		if len(r.Alternatives) > 0 {
			w.printf("  Alternatives at origin:\n")
			for _, alt := range r.Alternatives {
				w.printf("    %-12s %-30s %s\n", alt.ProductID, truncate(alt.Description, 30), qty(alt.OriginStock))
			}
		}
		w.printf("\n")
	}
	return nil
}

// MinimumStock renders per-branch minimum stock computations
func (w *Writer) MinimumStock(results []*minstock.ProductMinimumStock) error {
	if w.format == FormatJSON {
		return w.json(results)
	}

	for _, p := range results {
		w.printf("%s  %s\n", p.ProductID, p.Description)
		w.printf("  %-6s %-20s %6s %6s %6s %5s %7s %7s %7s %5s %8s\n",
			"Branch", "Name", "Active", "Calc", "Class", "Lead", "Safety", "Trend", "Season", "S180", "Change")
		for _, b := range p.Branches {
			if b.Err != nil || b.Record == nil {
				w.printf("  %-6s %-20s error: %s\n", b.BranchID, truncate(b.BranchName, 20), b.Error)
				continue
			}
			rec := b.Record
			w.printf("  %-6s %-20s %6s %6s %6s %5d %7s %7s %7s %5s %8s\n",
				b.BranchID, truncate(b.BranchName, 20), qty(b.Active), qty(rec.Calculated), rec.Factors.Class,
				rec.Factors.LeadTimeDays, rec.Factors.SafetyFactor.String(), rec.Factors.TrendFactor.String(),
				rec.Factors.SeasonalFactor.String(), qty(rec.Sales180), percent(b.PercentChange))
		}
		if p.Failed > 0 {
			w.printf("  %d branch(es) failed\n", p.Failed)
		}
		w.printf("\n")
	}
	return nil
}

// Record renders a stored minimum-stock record after an override
func (w *Writer) Record(record *entities.MinimumStockRecord) error {
	if w.format == FormatJSON {
		return w.json(record)
	}
	override := "none"
	if record.HasOverride() {
		override = qty(*record.ManualOverride)
	}
	w.printf("%s at %s: active %s (calculated %s, override %s)\n",
		record.ProductID, record.BranchID, qty(record.Active()), qty(record.Calculated), override)
	return nil
}

// History renders the audit trail of a product at a branch
func (w *Writer) History(entries []*entities.MinimumStockHistoryEntry) error {
	if w.format == FormatJSON {
		return w.json(entries)
	}
	if len(entries) == 0 {
		w.printf("No history\n")
		return nil
	}

	w.printf("%-16s %-14s %-10s %8s %8s %8s\n", "When", "", "Kind", "Previous", "New", "Change")
	for _, e := range entries {
		previous := "-"
		if e.PreviousValue != nil {
			previous = qty(*e.PreviousValue)
		}
		w.printf("%-16s %-14s %-10s %8s %8s %8s\n",
			e.CreatedAt.Format(dateTimeLayout), humanize.RelTime(e.CreatedAt, w.now(), "ago", "from now"),
			e.Kind, previous, qty(e.NewValue), percent(e.PercentChange))
	}
	return nil
}

// JobStatus renders the batch job status as one line
func (w *Writer) JobStatus(status minstock.JobStatus) error {
	if w.format == FormatJSON {
		return w.json(status)
	}

	w.printf("Batch %s: %s  %s/%s processed, %s ok, %s failed",
		shortID(status.ID), status.Phase, count(status.Processed), count(status.Total),
		count(status.Succeeded), count(status.Failed))
	if status.Running() && status.ETA > 0 {
		now := w.now()
		w.printf(", %s", humanize.RelTime(now, now.Add(status.ETA), "remaining", ""))
	}
	if !status.FinishedAt.IsZero() && !status.StartedAt.IsZero() {
		w.printf(", took %s", status.FinishedAt.Sub(status.StartedAt).Round(time.Millisecond))
	}
	w.printf("\n")
	if status.ErrorMessage != "" {
		w.printf("  error: %s\n", status.ErrorMessage)
	}
	for _, item := range status.FailedItems {
		w.printf("  failed: %s\n", item)
	}
	return nil
}

// ImportStats renders the row counts of a scenario import
func (w *Writer) ImportStats(stats sqlstore.ImportStats) error {
	if w.format == FormatJSON {
		return w.json(stats)
	}
	w.printf("Imported %s products, %s groups, %s stock positions, %s movements, %s overrides\n",
		count(stats.Products), count(stats.Groups), count(stats.Stock), count(stats.Movements), count(stats.Overrides))
	return nil
}

func (w *Writer) json(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

func (w *Writer) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

func qty(q entities.Quantity) string {
	return humanize.Comma(int64(q))
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func percent(p *decimal.Decimal) string {
	if p == nil {
		return "-"
	}
	return p.StringFixed(2) + "%"
}

func flags(b entities.BranchDemand) string {
	var out []string
	if b.UsedGroupFallback {
		out = append(out, "group")
	}
	if b.UsedMinimumStockFallback {
		out = append(out, "min-stock")
	}
	if b.ZeroStockTieIn {
		out = append(out, "tie-in")
	}
	return strings.Join(out, ",")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
