// Package build implements the incremental build pipeline: graph construction
// from a content provider, diffing against the previous snapshot, invalidation
// propagation, reconciliation of untouched render state, render scheduling in
// topological order, and the orchestrator tying the stages together.
package build

import (
	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
)

// OutputPrefix is the logical path prefix under which rendered output is
// written.
const OutputPrefix = "output/"

// Snapshot is one fully built dependency graph plus its lookup maps. A
// snapshot is owned exclusively by one build pass; the previous snapshot is
// only read, never mutated.
type Snapshot struct {
	Graph *graph.DAG[document.Document]

	// Paths maps every non-layout content path to its node. It is a
	// bijection over live page nodes.
	Paths map[string]graph.NodeID

	// Layouts maps a layout content path to all of its instance nodes, in
	// creation order. Layouts are instantiated once per consumer edge, so one
	// path can have many instances.
	Layouts map[string][]graph.NodeID
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Graph:   graph.New[document.Document](),
		Paths:   make(map[string]graph.NodeID),
		Layouts: make(map[string][]graph.NodeID),
	}
}

// Doc returns the document payload of a node, or nil for a dead index.
func (s *Snapshot) Doc(id graph.NodeID) *document.Document {
	d, ok := s.Graph.Node(id)
	if !ok {
		return nil
	}
	return d
}

// LayoutConsumer returns the node this layout instance wraps (its parent via
// the layout edge). A layout instance has exactly one.
func (s *Snapshot) LayoutConsumer(id graph.NodeID) (graph.NodeID, bool) {
	for _, e := range s.Graph.Parents(id) {
		if e.Kind == graph.EdgeLayout {
			return e.Node, true
		}
	}
	return 0, false
}

// NonLayoutAncestors returns, for each upward path from id, the first
// ancestor that is not a layout. Intermediate layout wrappers are walked
// through but not collected; the walk stops at each non-layout ancestor.
func (s *Snapshot) NonLayoutAncestors(id graph.NodeID) []graph.NodeID {
	walked := s.Graph.AncestorsUntil(id, func(n graph.NodeID) bool {
		d := s.Doc(n)
		return d != nil && !d.IsLayout
	})
	var out []graph.NodeID
	for _, n := range walked {
		if d := s.Doc(n); d != nil && !d.IsLayout {
			out = append(out, n)
		}
	}
	return out
}

// OutputPath resolves where a node's rendered output lands. A node with a URL
// writes under OutputPrefix; a layout with no URL of its own inherits the URL
// of the nearest ancestor along layout edges that has one. An empty return
// means the node has no output location.
func (s *Snapshot) OutputPath(id graph.NodeID) string {
	for {
		d := s.Doc(id)
		if d == nil {
			return ""
		}
		if d.URL != "" {
			return OutputPrefix + d.URL
		}
		if !d.IsLayout {
			return ""
		}
		parent, ok := s.LayoutConsumer(id)
		if !ok {
			return ""
		}
		id = parent
	}
}
