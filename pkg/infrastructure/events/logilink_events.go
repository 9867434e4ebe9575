package events

import (
	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

const (
	MinimumStockRecalculatedEvent = "minstock.recalculated"
	MinimumStockOverriddenEvent   = "minstock.overridden"

	BatchStartedEvent   = "batch.started"
	BatchCompletedEvent = "batch.completed"
	BatchFailedEvent    = "batch.failed"

	AllocationDeficitEvent = "allocation.deficit"
)

type MinimumStockRecalculated struct {
	ProductID     entities.ProductID `json:"product_id"`
	BranchID      entities.BranchID  `json:"branch_id"`
	PreviousValue *entities.Quantity `json:"previous_value,omitempty"`
	NewValue      entities.Quantity  `json:"new_value"`
	PercentChange *decimal.Decimal   `json:"percent_change,omitempty"`
	Class         string             `json:"class"`
}

type MinimumStockOverridden struct {
	ProductID entities.ProductID `json:"product_id"`
	BranchID  entities.BranchID  `json:"branch_id"`
	Override  *entities.Quantity `json:"override,omitempty"`
	Cleared   bool               `json:"cleared"`
}

type BatchStarted struct {
	JobID      string `json:"job_id"`
	Candidates int    `json:"candidates"`
}

type BatchCompleted struct {
	JobID     string `json:"job_id"`
	Processed int    `json:"processed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

type BatchFailed struct {
	JobID string `json:"job_id"`
	Error string `json:"error"`
}

type AllocationDeficit struct {
	ProductID    entities.ProductID `json:"product_id"`
	Origin       entities.BranchID  `json:"origin"`
	OriginSupply entities.Quantity  `json:"origin_supply"`
	TotalNeed    entities.Quantity  `json:"total_need"`
	Deficit      entities.Quantity  `json:"deficit"`
}

func NewMinimumStockRecalculated(entry *entities.MinimumStockHistoryEntry) Event {
	return NewEvent(MinimumStockRecalculatedEvent, streamFor(entry.ProductID), MinimumStockRecalculated{
		ProductID:     entry.ProductID,
		BranchID:      entry.BranchID,
		PreviousValue: entry.PreviousValue,
		NewValue:      entry.NewValue,
		PercentChange: entry.PercentChange,
		Class:         entry.Factors.Class.String(),
	})
}

func NewMinimumStockOverridden(product entities.ProductID, branch entities.BranchID, override *entities.Quantity) Event {
	return NewEvent(MinimumStockOverriddenEvent, streamFor(product), MinimumStockOverridden{
		ProductID: product,
		BranchID:  branch,
		Override:  override,
		Cleared:   override == nil,
	})
}

func NewBatchStarted(jobID string, candidates int) Event {
	return NewEvent(BatchStartedEvent, "batch-"+jobID, BatchStarted{JobID: jobID, Candidates: candidates})
}

func NewBatchCompleted(jobID string, processed, succeeded, failed int) Event {
	return NewEvent(BatchCompletedEvent, "batch-"+jobID, BatchCompleted{
		JobID: jobID, Processed: processed, Succeeded: succeeded, Failed: failed,
	})
}

func NewBatchFailed(jobID string, err error) Event {
	return NewEvent(BatchFailedEvent, "batch-"+jobID, BatchFailed{JobID: jobID, Error: err.Error()})
}

func NewAllocationDeficit(result *entities.AllocationResult) Event {
	return NewEvent(AllocationDeficitEvent, streamFor(result.ProductID), AllocationDeficit{
		ProductID:    result.ProductID,
		Origin:       result.Origin,
		OriginSupply: result.OriginSupply,
		TotalNeed:    result.TotalNeed,
		Deficit:      result.Deficit,
	})
}

func streamFor(product entities.ProductID) string {
	return "product-" + string(product)
}
