// Package graph implements a directed acyclic graph with stable node indices.
// Removing a node frees its slot for reuse without shifting any other index,
// so path→index maps held across rebuild cycles stay valid mid-pipeline.
package graph

import (
	"errors"
	"fmt"
)

// NodeID is a stable index into a DAG. IDs are never invalidated by the
// removal of other nodes.
type NodeID int

// EdgeKind distinguishes the two dependency edge kinds of the build graph.
type EdgeKind int

const (
	// EdgeLayout links a document to its layout instance (consumer is the
	// parent). Rendering order must visit the consumer first so the layout
	// can bind it as "page".
	EdgeLayout EdgeKind = iota
	// EdgeCollection links a collection member to a dependent (member is the
	// parent), making member content available before the dependent renders.
	EdgeCollection
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeLayout:
		return "layout"
	case EdgeCollection:
		return "collection"
	default:
		return fmt.Sprintf("edgekind(%d)", int(k))
	}
}

// ErrCycle is returned when a requested edge would make the graph cyclic.
var ErrCycle = errors.New("edge would introduce a cycle")

// ErrNodeNotFound is returned for operations on missing or removed nodes.
var ErrNodeNotFound = errors.New("node not found")

// Edge is a half-edge as seen from one endpoint.
type Edge struct {
	Node NodeID
	Kind EdgeKind
}

type node[T any] struct {
	value T
	live  bool
	out   []Edge // children
	in    []Edge // parents
}

// DAG is a stable-index directed acyclic graph with payload type T.
// It is not safe for concurrent mutation; each build pass owns its graph
// exclusively.
type DAG[T any] struct {
	nodes []node[T]
	free  []NodeID
	count int
}

// New creates an empty DAG.
func New[T any]() *DAG[T] {
	return &DAG[T]{}
}

// Len returns the number of live nodes.
func (g *DAG[T]) Len() int { return g.count }

// Add inserts a node and returns its stable index, reusing a freed slot when
// one is available.
func (g *DAG[T]) Add(value T) NodeID {
	g.count++
	if n := len(g.free); n > 0 {
		id := g.free[n-1]
		g.free = g.free[:n-1]
		g.nodes[id] = node[T]{value: value, live: true}
		return id
	}
	g.nodes = append(g.nodes, node[T]{value: value, live: true})
	return NodeID(len(g.nodes) - 1)
}

// Remove deletes a node and all edges touching it. Its slot is recycled; all
// other indices remain valid.
func (g *DAG[T]) Remove(id NodeID) {
	if !g.has(id) {
		return
	}
	for _, e := range g.nodes[id].out {
		g.nodes[e.Node].in = dropEdge(g.nodes[e.Node].in, id)
	}
	for _, e := range g.nodes[id].in {
		g.nodes[e.Node].out = dropEdge(g.nodes[e.Node].out, id)
	}
	var zero T
	g.nodes[id] = node[T]{value: zero}
	g.free = append(g.free, id)
	g.count--
}

// Node returns a pointer to the payload for in-place mutation.
func (g *DAG[T]) Node(id NodeID) (*T, bool) {
	if !g.has(id) {
		return nil, false
	}
	return &g.nodes[id].value, true
}

// AddEdge connects parent to child. It fails with ErrCycle if the child can
// already reach the parent, and ErrNodeNotFound for dead endpoints.
func (g *DAG[T]) AddEdge(parent, child NodeID, kind EdgeKind) error {
	if !g.has(parent) || !g.has(child) {
		return ErrNodeNotFound
	}
	if parent == child || g.reachable(child, parent) {
		return fmt.Errorf("%w: %d -> %d", ErrCycle, parent, child)
	}
	g.nodes[parent].out = append(g.nodes[parent].out, Edge{Node: child, Kind: kind})
	g.nodes[child].in = append(g.nodes[child].in, Edge{Node: parent, Kind: kind})
	return nil
}

// AddChild inserts a new node and connects it beneath parent in one step.
func (g *DAG[T]) AddChild(parent NodeID, kind EdgeKind, value T) (NodeID, error) {
	if !g.has(parent) {
		return 0, ErrNodeNotFound
	}
	child := g.Add(value)
	if err := g.AddEdge(parent, child, kind); err != nil {
		g.Remove(child)
		return 0, err
	}
	return child, nil
}

// Children returns the outgoing half-edges of a node.
func (g *DAG[T]) Children(id NodeID) []Edge {
	if !g.has(id) {
		return nil
	}
	return g.nodes[id].out
}

// Parents returns the incoming half-edges of a node.
func (g *DAG[T]) Parents(id NodeID) []Edge {
	if !g.has(id) {
		return nil
	}
	return g.nodes[id].in
}

// IDs returns the indices of all live nodes in insertion-slot order.
func (g *DAG[T]) IDs() []NodeID {
	out := make([]NodeID, 0, g.count)
	for i := range g.nodes {
		if g.nodes[i].live {
			out = append(out, NodeID(i))
		}
	}
	return out
}

func (g *DAG[T]) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].live
}

func dropEdge(edges []Edge, target NodeID) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if e.Node != target {
			out = append(out, e)
		}
	}
	return out
}

// reachable reports whether `to` can be reached from `from` along child edges.
// Iterative worklist; the graph may be deep on long collection chains.
func (g *DAG[T]) reachable(from, to NodeID) bool {
	seen := make(map[NodeID]struct{})
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		for _, e := range g.nodes[id].out {
			stack = append(stack, e.Node)
		}
	}
	return false
}
