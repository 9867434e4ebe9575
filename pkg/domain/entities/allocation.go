package entities

// AllocationStatus represents the outcome of allocating one product
type AllocationStatus int

const (
	StatusOK AllocationStatus = iota
	StatusRationed
	StatusDeficit
)

// String method for AllocationStatus enum
func (s AllocationStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRationed:
		return "rationed"
	case StatusDeficit:
		return "deficit"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its string form in JSON output
func (s AllocationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// BranchStatus represents how well one branch's need was covered
type BranchStatus int

const (
	BranchNoNeed BranchStatus = iota
	BranchSatisfied
	BranchPartial
	BranchUnserved
)

// String method for BranchStatus enum
func (s BranchStatus) String() string {
	switch s {
	case BranchNoNeed:
		return "no_need"
	case BranchSatisfied:
		return "satisfied"
	case BranchPartial:
		return "partial"
	case BranchUnserved:
		return "unserved"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its string form in JSON output
func (s BranchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClassifyBranch derives the branch status from its need and allocation
func ClassifyBranch(need, allocated Quantity) BranchStatus {
	switch {
	case need <= 0:
		return BranchNoNeed
	case allocated >= need:
		return BranchSatisfied
	case allocated > 0:
		return BranchPartial
	default:
		return BranchUnserved
	}
}

// BranchDemand is the resolved demand of one product at one destination branch
type BranchDemand struct {
	BranchID                 BranchID `json:"branch_id"`
	BranchName               string   `json:"branch_name"`
	OnHand                   Quantity `json:"on_hand"`
	OwnSales                 Quantity `json:"own_sales"`
	GroupSales               Quantity `json:"group_sales"`
	MinimumStock             Quantity `json:"minimum_stock"`
	Meta                     Quantity `json:"meta"`
	Need                     Quantity `json:"need"`
	UsedGroupFallback        bool     `json:"used_group_fallback"`
	UsedMinimumStockFallback bool     `json:"used_minimum_stock_fallback"`
	ZeroStockTieIn           bool     `json:"zero_stock_tie_in"`
}

// BranchAllocation is the allocation line of one destination branch
type BranchAllocation struct {
	BranchDemand
	Allocated Quantity     `json:"allocated"`
	Status    BranchStatus `json:"status"`
}

// AlternativeProduct is a combined-group sibling holding stock at the origin
type AlternativeProduct struct {
	ProductID   ProductID `json:"product_id"`
	Description string    `json:"description"`
	OriginStock Quantity  `json:"origin_stock"`
}

// AllocationResult is the transient allocation outcome of one product
type AllocationResult struct {
	ProductID     ProductID            `json:"product_id"`
	Description   string               `json:"description"`
	Origin        BranchID             `json:"origin"`
	OriginSupply  Quantity             `json:"origin_supply"`
	TotalNeed     Quantity             `json:"total_need"`
	Distributed   Quantity             `json:"distributed"`
	Deficit       Quantity             `json:"deficit"`
	Status        AllocationStatus     `json:"status"`
	SalesMultiple int                  `json:"sales_multiple"`
	Branches      []BranchAllocation   `json:"branches"`
	Alternatives  []AlternativeProduct `json:"alternatives,omitempty"`
}
