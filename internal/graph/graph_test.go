package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndRemoveKeepsIndicesStable(t *testing.T) {
	g := New[string]()
	a := g.Add("a")
	b := g.Add("b")
	c := g.Add("c")

	g.Remove(b)
	assert.Equal(t, 2, g.Len())

	// a and c must be untouched by b's removal.
	va, ok := g.Node(a)
	require.True(t, ok)
	assert.Equal(t, "a", *va)
	vc, ok := g.Node(c)
	require.True(t, ok)
	assert.Equal(t, "c", *vc)

	_, ok = g.Node(b)
	assert.False(t, ok)

	// The freed slot is recycled.
	d := g.Add("d")
	assert.Equal(t, b, d)
}

func TestRemoveDropsEdges(t *testing.T) {
	g := New[string]()
	a := g.Add("a")
	b := g.Add("b")
	c := g.Add("c")
	require.NoError(t, g.AddEdge(a, b, EdgeLayout))
	require.NoError(t, g.AddEdge(b, c, EdgeLayout))

	g.Remove(b)
	assert.Empty(t, g.Children(a))
	assert.Empty(t, g.Parents(c))
}

func TestAddEdgeRejectsCycle(t *testing.T) {
	g := New[string]()
	a := g.Add("a")
	b := g.Add("b")
	c := g.Add("c")
	require.NoError(t, g.AddEdge(a, b, EdgeCollection))
	require.NoError(t, g.AddEdge(b, c, EdgeCollection))

	err := g.AddEdge(c, a, EdgeCollection)
	assert.True(t, errors.Is(err, ErrCycle))
	err = g.AddEdge(a, a, EdgeLayout)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestInPlaceMutation(t *testing.T) {
	g := New[string]()
	a := g.Add("before")
	v, ok := g.Node(a)
	require.True(t, ok)
	*v = "after"
	v2, _ := g.Node(a)
	assert.Equal(t, "after", *v2)
}

func TestDescendantsAndAncestors(t *testing.T) {
	// page -> layout -> sublayout, member -> page (collection).
	g := New[string]()
	page := g.Add("page")
	layout, err := g.AddChild(page, EdgeLayout, "layout")
	require.NoError(t, err)
	sublayout, err := g.AddChild(layout, EdgeLayout, "sublayout")
	require.NoError(t, err)
	member := g.Add("member")
	require.NoError(t, g.AddEdge(member, page, EdgeCollection))

	assert.ElementsMatch(t, []NodeID{page, layout, sublayout}, g.Descendants(member))
	assert.ElementsMatch(t, []NodeID{layout, page, member}, g.Ancestors(sublayout))
	assert.Empty(t, g.Descendants(sublayout))
}

func TestAncestorsUntilStopsAtMatch(t *testing.T) {
	// sublayout's non-layout ancestor is page; the walk must not pass page
	// to reach member.
	g := New[string]()
	page := g.Add("page")
	layout, _ := g.AddChild(page, EdgeLayout, "layout")
	sublayout, _ := g.AddChild(layout, EdgeLayout, "sublayout")
	member := g.Add("member")
	require.NoError(t, g.AddEdge(member, page, EdgeCollection))

	isPage := func(id NodeID) bool {
		v, _ := g.Node(id)
		return *v == "page"
	}
	got := g.AncestorsUntil(sublayout, isPage)
	assert.ElementsMatch(t, []NodeID{layout, page}, got)
}

func TestToposortOrdersParentsFirst(t *testing.T) {
	g := New[string]()
	page := g.Add("page")
	layout, _ := g.AddChild(page, EdgeLayout, "layout")
	member := g.Add("member")
	require.NoError(t, g.AddEdge(member, page, EdgeCollection))

	order, err := g.Toposort()
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[NodeID]int)
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[member], pos[page], "collection member before dependent")
	assert.Less(t, pos[page], pos[layout], "page before its layout")
}

func TestToposortAfterRemoval(t *testing.T) {
	g := New[string]()
	a := g.Add("a")
	b := g.Add("b")
	require.NoError(t, g.AddEdge(a, b, EdgeCollection))
	g.Remove(a)

	order, err := g.Toposort()
	require.NoError(t, err)
	assert.Equal(t, []NodeID{b}, order)
}
