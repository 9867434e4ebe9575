// Package allocation distributes finite origin stock across destination branches and
// plans whole product sets.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"
)

// BranchNeed is the resolved need of one branch
type BranchNeed struct {
	BranchID entities.BranchID
	Need     entities.Quantity
}

// Input is the allocation problem of one product
type Input struct {
	Supply   entities.Quantity
	Needs    []BranchNeed
	Multiple int
}

// Line is the allocation of one branch, in the order of Input.Needs
type Line struct {
	BranchID  entities.BranchID
	Need      entities.Quantity
	Base      entities.Quantity // before remainder distribution; a multiple of the step
	Allocated entities.Quantity
	Lost      decimal.Decimal // units of the exact proportional share lost to rounding
}

// Outcome is the result of Allocate
type Outcome struct {
	Lines        []Line
	TotalNeed    entities.Quantity
	ToDistribute entities.Quantity
	Distributed  entities.Quantity
	Deficit      entities.Quantity
	Status       entities.AllocationStatus
}

// Allocation returns the allocated quantity of a branch
func (o Outcome) Allocation(branch entities.BranchID) entities.Quantity {
	for _, l := range o.Lines {
		if l.BranchID == branch {
			return l.Allocated
		}
	}
	return 0
}

// Allocate distributes min(supply, total need) across the branches. With enough supply each
// branch gets its proportional share floored to the multiple, and the leftover goes out one
// unit at a time by largest lost fraction. Without enough supply branches are served one
// multiple step at a time in priority order.
func Allocate(in Input, priority Priority) Outcome {
	out := Outcome{Lines: make([]Line, len(in.Needs))}
	for i, n := range in.Needs {
		need := n.Need
		if need < 0 {
			need = 0
		}
		out.Lines[i] = Line{BranchID: n.BranchID, Need: need}
		out.TotalNeed += need
	}

	supply := in.Supply
	if supply < 0 {
		supply = 0
	}
	out.ToDistribute = supply
	if out.TotalNeed < supply {
		out.ToDistribute = out.TotalNeed
	}
	if out.TotalNeed > supply {
		out.Deficit = out.TotalNeed - supply
	}

	// indexes of branches with need, in priority order
	order := make([]int, 0, len(out.Lines))
	for i, l := range out.Lines {
		if l.Need > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return priority.Less(out.Lines[order[a]].BranchID, out.Lines[order[b]].BranchID)
	})

	step := NormalizeMultiple(in.Multiple)
	switch {
	case out.TotalNeed == 0:
		out.Status = entities.StatusOK
	case supply == 0:
		out.Status = entities.StatusDeficit
	case supply < out.TotalNeed:
		out.Status = entities.StatusRationed
		ration(out.Lines, order, supply, step)
	default:
		out.Status = entities.StatusOK
		distribute(out.Lines, order, out.ToDistribute, out.TotalNeed, step)
	}

	for _, l := range out.Lines {
		out.Distributed += l.Allocated
	}
	return out
}

// distribute gives each branch its floored proportional share, then hands the leftover out
// one unit at a time to branches below need by descending lost fraction. toDistribute never
// exceeds totalNeed, so the top-up absorbs the whole leftover and no branch goes past its
// need; there is nothing left over for safety units.
func distribute(lines []Line, order []int, toDistribute, totalNeed, step entities.Quantity) {
	denominator := decimal.NewFromInt(int64(totalNeed))
	lost := make(map[int]entities.Quantity, len(order))

	var assigned entities.Quantity
	for _, i := range order {
		// exact share is toDistribute*need/totalNeed; keep numerators to compare losses exactly
		numerator := toDistribute * lines[i].Need
		base := FloorToMultiple(numerator/totalNeed, step)
		lines[i].Base = base
		lines[i].Allocated = base
		lost[i] = numerator - base*totalNeed
		lines[i].Lost = decimal.NewFromInt(int64(lost[i])).Div(denominator)
		assigned += base
	}

	leftover := toDistribute - assigned
	if leftover <= 0 {
		return
	}

	byLoss := append([]int(nil), order...)
	sort.SliceStable(byLoss, func(a, b int) bool {
		return lost[byLoss[a]] > lost[byLoss[b]]
	})

	for leftover > 0 {
		granted := false
		for _, i := range byLoss {
			if leftover == 0 {
				break
			}
			if lines[i].Allocated < lines[i].Need {
				lines[i].Allocated++
				leftover--
				granted = true
			}
		}
		if !granted {
			break
		}
	}

}

// ration cycles the priority order granting one full step per branch while it fits both the
// branch's remaining need and the remaining supply. When no full step fits anywhere the rest
// goes out one unit at a time, still in priority order, so a branch can receive a quantity
// that is not a multiple of the step. Shipping those broken packs needs confirmation from
// the distribution side; until then the supply is used up rather than held back.
func ration(lines []Line, order []int, supply, step entities.Quantity) {
	remaining := supply

	for remaining > 0 {
		granted := false
		for _, i := range order {
			if remaining < step {
				break
			}
			if lines[i].Need-lines[i].Allocated >= step {
				lines[i].Allocated += step
				remaining -= step
				granted = true
			}
		}
		if !granted {
			break
		}
	}

	for i := range lines {
		lines[i].Base = lines[i].Allocated
	}

	for remaining > 0 {
		granted := false
		for _, i := range order {
			if remaining == 0 {
				break
			}
			if lines[i].Allocated < lines[i].Need {
				lines[i].Allocated++
				remaining--
				granted = true
			}
		}
		if !granted {
			break
		}
	}
}
