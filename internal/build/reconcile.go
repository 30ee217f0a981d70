package build

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Reconcile copies url and rendered output from old-graph counterparts onto
// the nodes of a freshly built graph. Those are the only two fields a pass
// may carry forward. Nodes outside the render set keep the copied state as
// their final render state; nodes inside it use the copy as the baseline the
// scheduler compares its candidates against, so an invalidated node whose
// output comes out identical is a detectable no-op.
//
// A node outside the render set with no old counterpart should not occur if
// invalidation is correct (an added node is always in the render set); it is
// left empty and logged rather than treated as fatal.
func Reconcile(old, cur *Snapshot, renderSet sets.Set[graph.NodeID], log *slog.Logger) {
	for _, id := range cur.Graph.IDs() {
		oldID, ok := counterpart(old, cur, id)
		if !ok {
			if !renderSet.Has(id) {
				log.Warn("unrendered node has no prior render state", logfields.Path(cur.Doc(id).Path))
			}
			continue
		}
		oldDoc := old.Doc(oldID)
		doc := cur.Doc(id)
		doc.URL = oldDoc.URL
		doc.Rendered = oldDoc.Rendered
	}
}

// counterpart locates the old-graph node matching a new-graph node. Pages
// match by path. Layout instances share a path per consumer, so an instance
// matches through its consumer chain: find the consumer's counterpart, then
// the layout child of that counterpart with the same layout path.
func counterpart(old, cur *Snapshot, id graph.NodeID) (graph.NodeID, bool) {
	doc := cur.Doc(id)
	if doc == nil {
		return 0, false
	}
	if !doc.IsLayout {
		oldID, ok := old.Paths[doc.Path]
		return oldID, ok
	}
	consumer, ok := cur.LayoutConsumer(id)
	if !ok {
		return 0, false
	}
	oldConsumer, ok := counterpart(old, cur, consumer)
	if !ok {
		return 0, false
	}
	for _, e := range old.Graph.Children(oldConsumer) {
		if e.Kind != graph.EdgeLayout {
			continue
		}
		if oldDoc := old.Doc(e.Node); oldDoc != nil && oldDoc.Path == doc.Path {
			return e.Node, true
		}
	}
	return 0, false
}
