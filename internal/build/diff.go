package build

import (
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Diff is the outcome of comparing two snapshots. AddedOrModified holds
// new-graph indices; Removed holds old-graph indices.
type Diff struct {
	AddedOrModified    sets.Set[graph.NodeID]
	Removed            sets.Set[graph.NodeID]
	RemovedOutputPaths []string
}

// ComputeDiff compares the previous snapshot with a freshly built one.
// Content equivalence, not identity, decides modification: two documents
// differing only in url/rendered are the same.
func ComputeDiff(old, cur *Snapshot, log *slog.Logger) Diff {
	d := Diff{
		AddedOrModified: sets.New[graph.NodeID](),
		Removed:         sets.New[graph.NodeID](),
	}

	for _, path := range sortedKeys(cur.Paths) {
		newID := cur.Paths[path]
		oldID, ok := old.Paths[path]
		if !ok || !document.Equivalent(old.Doc(oldID), cur.Doc(newID)) {
			d.AddedOrModified.Add(newID)
		}
	}

	// Layout comparison is representative: all instances of a layout path
	// share source, so the last instance stands in for all of them.
	for _, layoutPath := range layoutPathUnion(old, cur) {
		oldInstances := old.Layouts[layoutPath]
		newInstances := cur.Layouts[layoutPath]
		switch {
		case len(newInstances) > 0:
			changed := len(oldInstances) == 0 ||
				!document.Equivalent(old.Doc(last(oldInstances)), cur.Doc(last(newInstances)))
			if !changed {
				continue
			}
			for _, instance := range newInstances {
				d.AddedOrModified.AddAll(cur.NonLayoutAncestors(instance)...)
			}
		case len(oldInstances) > 0:
			// The layout is gone. Former consumers that still exist must
			// re-render without it.
			for _, instance := range oldInstances {
				for _, ancestor := range old.NonLayoutAncestors(instance) {
					if newID, ok := cur.Paths[old.Doc(ancestor).Path]; ok {
						d.AddedOrModified.Add(newID)
					}
				}
			}
		}
	}

	for _, path := range sortedKeys(old.Paths) {
		oldID := old.Paths[path]
		if _, ok := cur.Paths[path]; ok {
			continue
		}
		d.Removed.Add(oldID)
		if output := old.OutputPath(oldID); output != "" {
			d.RemovedOutputPaths = append(d.RemovedOutputPaths, output)
		} else {
			log.Warn("removed page has no resolvable output path", logfields.Path(path))
		}
	}
	return d
}

func layoutPathUnion(old, cur *Snapshot) []string {
	union := sets.New[string]()
	for p := range old.Layouts {
		union.Add(p)
	}
	for p := range cur.Layouts {
		union.Add(p)
	}
	return sets.SortedStrings(union)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func last(ids []graph.NodeID) graph.NodeID { return ids[len(ids)-1] }
