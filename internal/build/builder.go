package build

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Builder constructs a fresh Snapshot from the provider's current content
// tree. Every rebuild constructs from scratch; incrementality comes from
// diffing snapshots, not from partial graph updates.
type Builder struct {
	Provider content.Provider
	Locale   document.Locale
	Log      *slog.Logger
}

// pending tracks a node whose layout chain still needs wiring. The chain
// records layout paths already instantiated above it so a layout that
// transitively wraps itself is rejected instead of recursing forever.
type pending struct {
	id    graph.NodeID
	chain []string
}

// Build enumerates content paths, parses every page, instantiates layout
// chains per consumer, and wires collection edges.
func (b *Builder) Build() (*Snapshot, error) {
	paths, err := b.Provider.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.Strings(paths)

	snap := newSnapshot()
	var queue []pending
	for _, path := range paths {
		if document.IsLayoutPath(path) {
			// Layouts only enter the graph as per-consumer instances.
			continue
		}
		doc, err := b.parse(path)
		if err != nil {
			return nil, err
		}
		id := snap.Graph.Add(*doc)
		snap.Paths[path] = id
		queue = append(queue, pending{id: id})
	}

	layoutSources := make(map[string]string)
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		doc := snap.Doc(item.id)
		if doc.LayoutName == "" {
			continue
		}
		layoutPath := document.LayoutPath(doc.LayoutName)
		if slices.Contains(item.chain, layoutPath) {
			return nil, &document.ContentError{
				Path:   doc.Path,
				Reason: fmt.Sprintf("layout %s transitively uses itself", layoutPath),
			}
		}
		source, ok := layoutSources[layoutPath]
		if !ok {
			source, err = b.Provider.Read(layoutPath)
			if err != nil {
				return nil, &document.ContentError{
					Path:   doc.Path,
					Reason: fmt.Sprintf("layout %q not found (expected %s)", doc.LayoutName, layoutPath),
					Err:    err,
				}
			}
			layoutSources[layoutPath] = source
		}
		layoutDoc, err := document.Parse(layoutPath, source, b.Locale)
		if err != nil {
			return nil, err
		}
		child, err := snap.Graph.AddChild(item.id, graph.EdgeLayout, *layoutDoc)
		if err != nil {
			return nil, fmt.Errorf("wire layout %s under %s: %w", layoutPath, doc.Path, err)
		}
		snap.Layouts[layoutPath] = append(snap.Layouts[layoutPath], child)
		queue = append(queue, pending{id: child, chain: append(slices.Clone(item.chain), layoutPath)})
	}

	if err := b.wireCollections(snap); err != nil {
		return nil, err
	}
	b.Log.Debug("graph built",
		logfields.Stage("graph"),
		slog.Int("nodes", snap.Graph.Len()),
		slog.Int("pages", len(snap.Paths)),
		slog.Int("layouts", len(snap.Layouts)))
	return snap, nil
}

func (b *Builder) parse(path string) (*document.Document, error) {
	text, err := b.Provider.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return document.Parse(path, text, b.Locale)
}

// wireCollections adds a collection edge from every member of a collection to
// every node that depends on it, deduplicated per node pair.
func (b *Builder) wireCollections(snap *Snapshot) error {
	members := make(map[string][]graph.NodeID)
	dependents := make(map[string][]graph.NodeID)
	for _, id := range snap.Graph.IDs() {
		doc := snap.Doc(id)
		for _, name := range doc.Collections {
			members[name] = append(members[name], id)
		}
		for _, name := range doc.Depends {
			dependents[name] = append(dependents[name], id)
		}
	}

	names := make([]string, 0, len(dependents))
	for name := range dependents {
		names = append(names, name)
	}
	sort.Strings(names)

	wired := make(map[[2]graph.NodeID]struct{})
	for _, name := range names {
		for _, member := range members[name] {
			for _, dependent := range dependents[name] {
				if member == dependent {
					continue
				}
				key := [2]graph.NodeID{member, dependent}
				if _, ok := wired[key]; ok {
					continue
				}
				wired[key] = struct{}{}
				if err := snap.Graph.AddEdge(member, dependent, graph.EdgeCollection); err != nil {
					return fmt.Errorf("wire collection %q member %s to %s: %w",
						name, snap.Doc(member).Path, snap.Doc(dependent).Path, err)
				}
			}
		}
	}
	return nil
}
