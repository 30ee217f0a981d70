package graph

import "fmt"

// Descendants collects all nodes reachable from root along child edges,
// pre-order, deduplicated, root excluded. Implemented as an explicit stack to
// avoid recursion-depth concerns on deep collection chains.
func (g *DAG[T]) Descendants(root NodeID) []NodeID {
	return g.walk(root, func(id NodeID) []Edge { return g.Children(id) })
}

// Ancestors collects all nodes reachable from root along parent edges,
// pre-order, deduplicated, root excluded.
func (g *DAG[T]) Ancestors(root NodeID) []NodeID {
	return g.walk(root, func(id NodeID) []Edge { return g.Parents(id) })
}

// AncestorsUntil walks parent edges upward. For each parent: if stop reports
// true, the parent is collected and the walk does not continue past it;
// otherwise the parent is collected and expanded. Used for "non-layout
// ancestor" queries, where the walk stops at (and includes) the first
// non-layout ancestor on each path.
func (g *DAG[T]) AncestorsUntil(root NodeID, stop func(NodeID) bool) []NodeID {
	var out []NodeID
	seen := map[NodeID]struct{}{root: {}}
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.Parents(id) {
			if _, ok := seen[e.Node]; ok {
				continue
			}
			seen[e.Node] = struct{}{}
			out = append(out, e.Node)
			if !stop(e.Node) {
				stack = append(stack, e.Node)
			}
		}
	}
	return out
}

func (g *DAG[T]) walk(root NodeID, next func(NodeID) []Edge) []NodeID {
	var out []NodeID
	seen := map[NodeID]struct{}{root: {}}
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range next(id) {
			if _, ok := seen[e.Node]; ok {
				continue
			}
			seen[e.Node] = struct{}{}
			out = append(out, e.Node)
			stack = append(stack, e.Node)
		}
	}
	return out
}

// Toposort returns all live nodes in topological order (parents before
// children). A cycle is a programming-invariant violation: AddEdge refuses
// cycles, so failure here means graph state was corrupted.
func (g *DAG[T]) Toposort() ([]NodeID, error) {
	indegree := make(map[NodeID]int, g.count)
	for _, id := range g.IDs() {
		indegree[id] = len(g.Parents(id))
	}
	var queue []NodeID
	for _, id := range g.IDs() {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	order := make([]NodeID, 0, g.count)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, e := range g.Children(id) {
			indegree[e.Node]--
			if indegree[e.Node] == 0 {
				queue = append(queue, e.Node)
			}
		}
	}
	if len(order) != g.count {
		return nil, fmt.Errorf("toposort: %w", ErrCycle)
	}
	return order, nil
}
