package allocation

import "github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"

// Priority is the fixed branch order used for tie-breaks and rationing
type Priority struct {
	rank map[entities.BranchID]int
}

// NewPriority creates a priority from an ordered branch list. Repeated ids keep their
// first position.
func NewPriority(order []entities.BranchID) Priority {
	rank := make(map[entities.BranchID]int, len(order))
	for i, id := range order {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}
	return Priority{rank: rank}
}

// PriorityFromNetwork uses the network's destination order
func PriorityFromNetwork(n *entities.Network) Priority {
	return NewPriority(n.Priority)
}

// Rank returns the position of a branch; unknown branches rank after every listed one
func (p Priority) Rank(id entities.BranchID) int {
	if r, ok := p.rank[id]; ok {
		return r
	}
	return len(p.rank)
}

// Less orders a before b. Unknown branches fall back to id order among themselves.
func (p Priority) Less(a, b entities.BranchID) bool {
	ra, rb := p.Rank(a), p.Rank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}
