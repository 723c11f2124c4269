package aggregate

import (
	"math"

	"github.com/alexanderramin/tally/internal/expand"
)

// Level is one step of a group-by path.
type Level[T any] struct {
	Kind Kind
	// Key extracts the display key. Distinct keys are counted by
	// ancestors' UniqueCount.
	Key func(T) string
	// Group, when set, decides node identity instead of Key, so items
	// sharing a display key can still land in separate nodes.
	Group func(T) string
}

// Fold groups items along levels. Item values are added to the leaf on
// each item's path only; every inner node's total is then set to the sum
// of its children's totals, bottom up. Items whose value is zero or not
// finite are skipped, and nodes whose total comes to zero (for example
// +3 and -3 under one sponsor) are removed. Children keep first-seen
// order.
func Fold[T any](items []T, levels []Level[T], value func(T) float64) []*Node {
	root := newNode("", "", nil)

	for _, item := range items {
		v := value(item)
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		cur := root
		for _, l := range levels {
			key := l.Key(item)
			group := key
			if l.Group != nil {
				group = l.Group(item)
			}
			child, ok := cur.index[group]
			if !ok {
				child = newNode(l.Kind, key, childPath(cur.Path, group))
				cur.index[group] = child
				cur.Children = append(cur.Children, child)
			}
			cur = child
		}
		cur.leafValues = append(cur.leafValues, v)
	}
	return rollup(root.Children)
}

// rollup fixes totals and distinct-key sets bottom up and drops nodes
// that total zero, so counts only reflect nodes that remain visible.
func rollup(nodes []*Node) []*Node {
	kept := nodes[:0]
	for _, n := range nodes {
		if len(n.Children) > 0 {
			n.Children = rollup(n.Children)
			n.TotalHours = TotalHours(n.Children)
			for _, c := range n.Children {
				n.observe(c.Kind, c.Key)
				for kind, keys := range c.seen {
					for key := range keys {
						n.observe(kind, key)
					}
				}
			}
		} else {
			n.TotalHours = sumExact(n.leafValues)
		}
		n.leafValues = nil
		n.index = nil

		if n.TotalHours != 0 {
			kept = append(kept, n)
		}
	}
	clear(nodes[len(kept):])
	return kept
}

func childPath(parent expand.Path, seg string) expand.Path {
	if parent == nil {
		return expand.Path{seg}
	}
	return parent.Child(seg)
}
