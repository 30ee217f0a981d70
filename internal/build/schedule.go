package build

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Scheduler renders the render set in topological order so that every node's
// dependency context (its consumer page, collection members) is current
// before the node itself renders.
type Scheduler struct {
	Renderer templates.Renderer
	Global   map[string]any
	Log      *slog.Logger
}

// Render visits the render set in topological order, resolving each node's
// permalink to a url and its body to rendered output. It returns, in visit
// order, the nodes whose url or rendered output actually changed. Nodes whose
// candidates match stored state are valid no-ops. A single template failure
// aborts the pass; partial output is never committed.
func (s *Scheduler) Render(snap *Snapshot, renderSet sets.Set[graph.NodeID]) ([]graph.NodeID, error) {
	order, err := snap.Graph.Toposort()
	if err != nil {
		return nil, fmt.Errorf("render order: %w", err)
	}
	var rendered []graph.NodeID
	for _, id := range order {
		if !renderSet.Has(id) {
			continue
		}
		doc := snap.Doc(id)
		ctx := s.context(snap, id, doc)

		url := ""
		if pattern := templates.ExpandPermalink(doc.Permalink); pattern != "" {
			url, err = s.Renderer.Render(pattern, permalinkContext(ctx, doc))
			if err != nil {
				return nil, &RenderError{Path: doc.Path, Err: fmt.Errorf("permalink: %w", err)}
			}
		}
		body, err := s.Renderer.Render(doc.Body, ctx)
		if err != nil {
			return nil, &RenderError{Path: doc.Path, Err: err}
		}
		if url == doc.URL && body == doc.Rendered {
			continue
		}
		doc.URL = url
		doc.Rendered = body
		rendered = append(rendered, id)
		s.Log.Debug("rendered", logfields.Path(doc.Path), slog.String("url", url))
	}
	return rendered, nil
}

// permalinkContext layers the bindings the permalink presets use (collection,
// data, date) on top of the node's render context.
func permalinkContext(ctx map[string]any, doc *document.Document) map[string]any {
	merged := make(map[string]any, len(ctx)+3)
	for k, v := range ctx {
		merged[k] = v
	}
	merged["collection"] = doc.PrimaryCollection()
	merged["data"] = doc.Metadata
	if doc.Date != nil {
		merged["date"] = doc.Date.Map()
	}
	return merged
}

// context assembles the template bindings for one node. A page binds itself
// as "page". A layout binds itself as "layout", its layout ancestors as the
// ordered list "layouts" (nearest first), and the first non-layout ancestor
// up the chain as "page". Collection members the node depends on are bound as
// arrays under their collection names, ordered by path.
func (s *Scheduler) context(snap *Snapshot, id graph.NodeID, doc *document.Document) map[string]any {
	ctx := map[string]any{"global": s.Global}
	if doc.IsLayout {
		ctx["layout"] = doc.ContextMap()
		var layouts []map[string]any
		cur := id
		for {
			parent, ok := snap.LayoutConsumer(cur)
			if !ok {
				break
			}
			parentDoc := snap.Doc(parent)
			if parentDoc.IsLayout {
				layouts = append(layouts, parentDoc.ContextMap())
				cur = parent
				continue
			}
			ctx["page"] = parentDoc.ContextMap()
			break
		}
		if len(layouts) > 0 {
			ctx["layouts"] = layouts
		}
	} else {
		ctx["page"] = doc.ContextMap()
	}

	for _, name := range doc.Depends {
		var memberIDs []graph.NodeID
		seen := sets.New[graph.NodeID]()
		for _, e := range snap.Graph.Parents(id) {
			if e.Kind != graph.EdgeCollection || seen.Has(e.Node) {
				continue
			}
			member := snap.Doc(e.Node)
			if slices.Contains(member.Collections, name) {
				seen.Add(e.Node)
				memberIDs = append(memberIDs, e.Node)
			}
		}
		sort.Slice(memberIDs, func(i, j int) bool {
			return snap.Doc(memberIDs[i]).Path < snap.Doc(memberIDs[j]).Path
		})
		members := make([]map[string]any, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			members = append(members, snap.Doc(memberID).ContextMap())
		}
		ctx[name] = members
	}
	return ctx
}
