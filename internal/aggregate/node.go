// Package aggregate folds flat timesheet records into the ownership
// hierarchy shown by reports (account manager → client → sponsor → case →
// worker) and orders the result for display.
//
// Every tree is rebuilt from its input on each call; nodes are never
// shared between folds and are not modified after Fold returns.
package aggregate

import (
	"math"
	"math/big"

	"github.com/alexanderramin/tally/internal/expand"
)

// Kind identifies the hierarchy level a node sits at.
type Kind string

const (
	KindManager Kind = "manager"
	KindClient  Kind = "client"
	KindSponsor Kind = "sponsor"
	KindCase    Kind = "case"
	KindWorker  Kind = "worker"
)

// Label returns the plural column heading for k.
func (k Kind) Label() string {
	switch k {
	case KindManager:
		return "Managers"
	case KindClient:
		return "Clients"
	case KindSponsor:
		return "Sponsors"
	case KindCase:
		return "Cases"
	case KindWorker:
		return "Workers"
	default:
		return string(k)
	}
}

// Node is one aggregated row. For inner nodes TotalHours is exactly
// TotalHours(Children), in any child order. It is never zero.
type Node struct {
	Kind       Kind
	Key        string
	Path       expand.Path
	TotalHours float64
	Children   []*Node

	index      map[string]*Node
	seen       map[Kind]map[string]struct{}
	leafValues []float64
}

func newNode(kind Kind, key string, path expand.Path) *Node {
	return &Node{
		Kind:  kind,
		Key:   key,
		Path:  path,
		index: make(map[string]*Node),
		seen:  make(map[Kind]map[string]struct{}),
	}
}

func (n *Node) observe(kind Kind, key string) {
	set, ok := n.seen[kind]
	if !ok {
		set = make(map[string]struct{})
		n.seen[kind] = set
	}
	set[key] = struct{}{}
}

// UniqueCount is the number of distinct keys of kind seen below n.
func (n *Node) UniqueCount(kind Kind) int {
	return len(n.seen[kind])
}

func (n *Node) UniqueClients() int  { return n.UniqueCount(KindClient) }
func (n *Node) UniqueSponsors() int { return n.UniqueCount(KindSponsor) }
func (n *Node) UniqueCases() int    { return n.UniqueCount(KindCase) }
func (n *Node) UniqueWorkers() int  { return n.UniqueCount(KindWorker) }

// Child returns the first child whose display key is key, or nil.
func (n *Node) Child(key string) *Node {
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// TotalHours sums the nodes' totals. The sum is computed exactly and
// rounded once, so it does not depend on node order.
func TotalHours(nodes []*Node) float64 {
	vals := make([]float64, len(nodes))
	for i, n := range nodes {
		vals[i] = n.TotalHours
	}
	return sumExact(vals)
}

// exactPrec covers the full float64 exponent range plus carry bits.
const exactPrec = 2200

func sumExact(vals []float64) float64 {
	switch len(vals) {
	case 0:
		return 0
	case 1:
		return vals[0]
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			var total float64
			for _, v := range vals {
				total += v
			}
			return total
		}
	}
	acc := new(big.Float).SetPrec(exactPrec)
	var x big.Float
	x.SetPrec(exactPrec)
	for _, v := range vals {
		acc.Add(acc, x.SetFloat64(v))
	}
	f, _ := acc.Float64()
	return f
}

// Walk visits nodes depth-first in order. Returning false from fn skips
// the node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	var walk func(ns []*Node, depth int)
	walk = func(ns []*Node, depth int) {
		for _, n := range ns {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
}
