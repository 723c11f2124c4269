// Package expand tracks which rows of a hierarchical report are expanded.
//
// Rows are addressed by Path, a sequence of keys from the root. Paths are
// stored under a canonical serialization that length-prefixes every
// segment, so a client named "A-B" never collides with client "A" holding
// sponsor "B".
package expand

import (
	"strconv"
	"strings"
)

// Path addresses a node by its keys from the root.
type Path []string

// Key returns the canonical serialization of p.
func (p Path) Key() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteString(strconv.Itoa(len(seg)))
		b.WriteByte(':')
		b.WriteString(seg)
	}
	return b.String()
}

// Depth is the number of segments; the root level has depth 1.
func (p Path) Depth() int { return len(p) }

// Parent returns p without its last segment, or nil for a root path.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Child returns a new path extending p by seg. p is not modified.
func (p Path) Child(seg string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// HasPrefix reports whether prefix is p itself or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether p and other address the same node.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

func (p Path) String() string {
	return strings.Join(p, " › ")
}
