package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle_IsInvolution(t *testing.T) {
	s := NewState(RetainDescendants)
	s.Expand(Path{"Mgr"})
	s.Expand(Path{"Mgr", "Acme"})
	before := s.Paths()

	for _, p := range []Path{{"Mgr"}, {"Mgr", "Acme"}, {"Other"}, {"Mgr", "Acme", "Bob"}} {
		s.Toggle(p)
		s.Toggle(p)
		assert.Equal(t, before, s.Paths(), "toggling %v twice", p)
	}
}

func TestToggle_PruneInvolutionForLeafKeys(t *testing.T) {
	s := NewState(PruneDescendants)
	s.Expand(Path{"Acme"})
	before := s.Paths()

	s.Toggle(Path{"Acme", "Bob"})
	s.Toggle(Path{"Acme", "Bob"})
	assert.Equal(t, before, s.Paths())
}

func TestCollapse_RetainKeepsDescendants(t *testing.T) {
	s := NewState(RetainDescendants)
	s.Toggle(Path{"Acme"})
	s.Toggle(Path{"Acme", "Bob"})

	s.Toggle(Path{"Acme"})
	assert.False(t, s.IsExpanded(Path{"Acme"}))
	assert.True(t, s.IsExpanded(Path{"Acme", "Bob"}), "descendant key retained")
	assert.False(t, s.Visible(Path{"Acme", "Bob", "Case"}), "hidden while ancestor collapsed")

	s.Toggle(Path{"Acme"})
	assert.True(t, s.Visible(Path{"Acme", "Bob", "Case"}), "restored on re-expand")
}

func TestCollapse_PruneDropsDescendants(t *testing.T) {
	s := NewState(PruneDescendants)
	s.Toggle(Path{"Acme"})
	s.Toggle(Path{"Acme", "Bob"})
	s.Toggle(Path{"Acme", "Bob", "Audit"})
	s.Toggle(Path{"Globex"})
	s.Toggle(Path{"Globex", "Eve"})

	s.Toggle(Path{"Acme"})
	assert.Equal(t, []Path{{"Globex"}, {"Globex", "Eve"}}, s.Paths())

	s.Toggle(Path{"Acme"})
	assert.False(t, s.IsExpanded(Path{"Acme", "Bob"}), "pruned keys stay gone")
}

func TestPrune_DoesNotTouchSimilarNames(t *testing.T) {
	s := NewState(PruneDescendants)
	s.Expand(Path{"A"})
	s.Expand(Path{"A-B"})
	s.Expand(Path{"A-B", "x"})

	s.Collapse(Path{"A"})
	assert.True(t, s.IsExpanded(Path{"A-B", "x"}))
	assert.Equal(t, 2, s.Len())
}

func TestVisible_RootsAlwaysVisible(t *testing.T) {
	s := NewState(RetainDescendants)
	assert.True(t, s.Visible(Path{"Mgr"}))
	assert.False(t, s.Visible(Path{"Mgr", "Acme"}))
	s.Expand(Path{"Mgr"})
	assert.True(t, s.Visible(Path{"Mgr", "Acme"}))
}

func TestClearAndEmptyPath(t *testing.T) {
	s := NewState(RetainDescendants)
	s.Expand(nil)
	assert.Equal(t, 0, s.Len())

	s.Expand(Path{"a"})
	s.Expand(Path{"b"})
	require.Equal(t, 2, s.Len())
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "retain", s.Policy().String())
	assert.Equal(t, "prune", PruneDescendants.String())
}
