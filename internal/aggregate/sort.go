package aggregate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortColumn is a sortable report column. Sorting is always descending.
type SortColumn string

const (
	SortHours    SortColumn = "hours"
	SortClients  SortColumn = "clients"
	SortSponsors SortColumn = "sponsors"
	SortCases    SortColumn = "cases"
	SortWorkers  SortColumn = "workers"
)

// AllSortColumns lists the columns in header order.
func AllSortColumns() []SortColumn {
	return []SortColumn{SortHours, SortClients, SortSponsors, SortCases, SortWorkers}
}

func ParseSortColumn(s string) (SortColumn, error) {
	c := SortColumn(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllSortColumns(), c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown sort column %q (want hours, clients, sponsors, cases or workers)", s)
}

// Value returns the number n is ranked by under c.
func (c SortColumn) Value(n *Node) float64 {
	switch c {
	case SortClients:
		return float64(n.UniqueClients())
	case SortSponsors:
		return float64(n.UniqueSponsors())
	case SortCases:
		return float64(n.UniqueCases())
	case SortWorkers:
		return float64(n.UniqueWorkers())
	default:
		return n.TotalHours
	}
}

// SortNodes returns nodes ordered by c, highest first. Ties keep their
// input order, so sorting a sorted slice again is a no-op. The input
// slice is not modified.
func SortNodes(nodes []*Node, c SortColumn) []*Node {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b *Node) int {
		return cmp.Compare(c.Value(b), c.Value(a))
	})
	return out
}

// SortTree sorts every level of the tree by c. It returns copies of the
// nodes and leaves the input tree untouched.
func SortTree(nodes []*Node, c SortColumn) []*Node {
	sorted := SortNodes(nodes, c)
	for i, n := range sorted {
		cp := *n
		cp.Children = SortTree(n.Children, c)
		sorted[i] = &cp
	}
	return sorted
}
