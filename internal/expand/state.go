package expand

import (
	"slices"
	"strings"
)

// CollapsePolicy decides what happens to expanded descendants when a
// node collapses.
type CollapsePolicy int

const (
	// RetainDescendants keeps descendant keys; they are hidden until the
	// ancestor is expanded again.
	RetainDescendants CollapsePolicy = iota
	// PruneDescendants drops every descendant key on collapse.
	PruneDescendants
)

func (p CollapsePolicy) String() string {
	if p == PruneDescendants {
		return "prune"
	}
	return "retain"
}

// State is the set of expanded paths owned by one view. The zero value
// is not usable; call NewState.
type State struct {
	policy   CollapsePolicy
	expanded map[string]Path
}

// NewState returns an empty state using policy.
func NewState(policy CollapsePolicy) *State {
	return &State{policy: policy, expanded: make(map[string]Path)}
}

func (s *State) Policy() CollapsePolicy { return s.policy }

// Toggle expands p if collapsed, otherwise collapses it.
func (s *State) Toggle(p Path) {
	if s.IsExpanded(p) {
		s.Collapse(p)
		return
	}
	s.Expand(p)
}

// Expand marks p expanded. Ancestors are left as they are.
func (s *State) Expand(p Path) {
	if len(p) == 0 {
		return
	}
	s.expanded[p.Key()] = slices.Clone(p)
}

// Collapse unmarks p and, under PruneDescendants, every path below it.
func (s *State) Collapse(p Path) {
	delete(s.expanded, p.Key())
	if s.policy != PruneDescendants {
		return
	}
	for k, q := range s.expanded {
		if len(q) > len(p) && q.HasPrefix(p) {
			delete(s.expanded, k)
		}
	}
}

// IsExpanded reports whether p itself is marked expanded.
func (s *State) IsExpanded(p Path) bool {
	_, ok := s.expanded[p.Key()]
	return ok
}

// Visible reports whether every ancestor of p is expanded. Root paths
// are always visible.
func (s *State) Visible(p Path) bool {
	for anc := p.Parent(); anc != nil; anc = anc.Parent() {
		if !s.IsExpanded(anc) {
			return false
		}
	}
	return true
}

func (s *State) Len() int { return len(s.expanded) }

// Paths returns the expanded paths, shallowest first, then lexically.
func (s *State) Paths() []Path {
	out := make([]Path, 0, len(s.expanded))
	for _, p := range s.expanded {
		out = append(out, slices.Clone(p))
	}
	slices.SortFunc(out, func(a, b Path) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a.Key(), b.Key())
	})
	return out
}

// Clear removes every expanded path.
func (s *State) Clear() {
	clear(s.expanded)
}
