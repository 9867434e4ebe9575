package entities

import "fmt"

// BranchID represents a unique branch (node) identifier
type BranchID string

// NodeRole represents the part a branch plays in a redistribution run
type NodeRole int

const (
	RoleDestination NodeRole = iota
	RoleOrigin
	RoleExcluded
)

// String method for NodeRole enum
func (r NodeRole) String() string {
	switch r {
	case RoleDestination:
		return "Destination"
	case RoleOrigin:
		return "Origin"
	case RoleExcluded:
		return "Excluded"
	default:
		return "Unknown"
	}
}

// Branch represents a stock-holding node
type Branch struct {
	ID   BranchID
	Name string
	Role NodeRole
}

// Network is the fixed set of nodes known at deploy time: one origin, one excluded
// (warranty) node and the destinations in tie-break priority order.
type Network struct {
	Origin   BranchID
	Excluded BranchID
	Priority []BranchID
	names    map[BranchID]string
	rank     map[BranchID]int
}

// NewNetwork creates a validated Network
func NewNetwork(origin, excluded BranchID, priority []BranchID, names map[BranchID]string) (*Network, error) {
	if string(origin) == "" {
		return nil, fmt.Errorf("origin branch cannot be empty")
	}
	if origin == excluded {
		return nil, fmt.Errorf("origin and excluded branch cannot be the same: %s", origin)
	}
	if len(priority) == 0 {
		return nil, fmt.Errorf("priority list cannot be empty")
	}

	rank := make(map[BranchID]int, len(priority))
	for i, id := range priority {
		if string(id) == "" {
			return nil, fmt.Errorf("priority list contains an empty branch id")
		}
		if id == origin || id == excluded {
			return nil, fmt.Errorf("branch %s cannot be both a destination and the origin or excluded node", id)
		}
		if _, dup := rank[id]; dup {
			return nil, fmt.Errorf("duplicate branch in priority list: %s", id)
		}
		rank[id] = i
	}

	nameCopy := make(map[BranchID]string, len(names))
	for id, name := range names {
		nameCopy[id] = name
	}

	return &Network{
		Origin:   origin,
		Excluded: excluded,
		Priority: append([]BranchID(nil), priority...),
		names:    nameCopy,
		rank:     rank,
	}, nil
}

// Destinations returns the destination branches in priority order
func (n *Network) Destinations() []Branch {
	branches := make([]Branch, 0, len(n.Priority))
	for _, id := range n.Priority {
		branches = append(branches, Branch{ID: id, Name: n.Name(id), Role: RoleDestination})
	}
	return branches
}

// Role returns the role of a branch; unknown branches are reported as excluded
func (n *Network) Role(id BranchID) NodeRole {
	switch {
	case id == n.Origin:
		return RoleOrigin
	case n.IsDestination(id):
		return RoleDestination
	default:
		return RoleExcluded
	}
}

// IsDestination reports whether the branch receives allocations
func (n *Network) IsDestination(id BranchID) bool {
	_, ok := n.rank[id]
	return ok
}

// Rank returns the position of a destination in the priority list, or -1
func (n *Network) Rank(id BranchID) int {
	if r, ok := n.rank[id]; ok {
		return r
	}
	return -1
}

// Name returns the display name of a branch, falling back to its id
func (n *Network) Name(id BranchID) string {
	if name, ok := n.names[id]; ok && name != "" {
		return name
	}
	return string(id)
}
