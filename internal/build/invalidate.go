package build

import (
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Invalidate expands a diff into the full render set over the new graph.
//
// A changed node invalidates all of its descendants: layout consumers
// transitively below it and every collection dependent downstream. A removed
// node invalidates the new-graph counterparts of its old-graph descendants,
// which covers dependents that outlive a removed collection member. A global
// context or snippet change falls back to rendering everything.
func Invalidate(old, cur *Snapshot, d Diff, globalChanged bool) sets.Set[graph.NodeID] {
	renderSet := sets.New[graph.NodeID]()
	if globalChanged {
		renderSet.AddAll(cur.Graph.IDs()...)
		return renderSet
	}
	for id := range d.AddedOrModified {
		renderSet.Add(id)
		renderSet.AddAll(cur.Graph.Descendants(id)...)
	}
	for oldID := range d.Removed {
		// Descendants include the removed node's direct children.
		for _, descendant := range old.Graph.Descendants(oldID) {
			doc := old.Doc(descendant)
			if doc == nil {
				continue
			}
			if newID, ok := cur.Paths[doc.Path]; ok {
				renderSet.Add(newID)
			}
		}
	}
	return renderSet
}
