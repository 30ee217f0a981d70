// Package document holds the in-memory representation of one content unit:
// a page or a layout instance. Documents are the node payload of the build
// graph; everything the incremental pipeline compares lives here.
package document

import (
	"fmt"
	"path"
	"reflect"
	"strings"
)

const (
	// Extension is the reserved extension for content documents.
	Extension = ".vox"
	// LayoutPrefix is the reserved path prefix for layout documents.
	LayoutPrefix = "layouts/"
	// SnippetPrefix is the reserved path prefix for template snippets.
	SnippetPrefix = "snippets/"
)

// Document is one content unit. Identity is the canonical logical path; it is
// the primary key across rebuilds. URL and Rendered are derived render state
// and are deliberately excluded from content equivalence.
type Document struct {
	// Path is the canonical logical path, e.g. "posts/a.vox".
	Path string
	// Metadata is the parsed frontmatter mapping.
	Metadata map[string]any
	// Body is the raw content following the frontmatter.
	Body string
	// Permalink is a preset name or a literal template string.
	Permalink string
	// Date is the decomposed frontmatter date, if present.
	Date *Date
	// Collections are the collection names this document contributes to,
	// derived from its path.
	Collections []string
	// Depends are the collection names this document consumes, declared in
	// frontmatter.
	Depends []string
	// LayoutName references the layout this document wraps itself in, "" if none.
	LayoutName string
	// IsLayout reports whether the document lives in the layout namespace.
	IsLayout bool

	// URL is the resolved output path; empty until first successful render.
	URL string
	// Rendered is the last successfully rendered output text.
	Rendered string
}

// Parse builds a Document from raw file content. All parse failures are
// ContentErrors scoped to the document and carrying its raw header text.
func Parse(logicalPath, content string, locale Locale) (*Document, error) {
	logicalPath = path.Clean(logicalPath)
	header, body, err := SplitFrontmatter(content)
	if err != nil {
		return nil, contentErr(logicalPath, content, "invalid frontmatter", err)
	}
	meta, err := parseHeader(header)
	if err != nil {
		return nil, contentErr(logicalPath, header, "malformed frontmatter", err)
	}

	doc := &Document{
		Path:        logicalPath,
		Metadata:    meta,
		Body:        body,
		Collections: CollectionsFromPath(logicalPath),
		IsLayout:    IsLayoutPath(logicalPath),
	}

	if v, ok := meta["date"]; ok {
		t, err := parseDateValue(v)
		if err != nil {
			return nil, contentErr(logicalPath, header, "invalid date", err)
		}
		d := NewDate(t, locale)
		doc.Date = &d
	}
	if v, ok := meta["layout"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, contentErr(logicalPath, header, "layout must be a string", nil)
		}
		doc.LayoutName = s
	}
	if v, ok := meta["permalink"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, contentErr(logicalPath, header, "permalink must be a string", nil)
		}
		doc.Permalink = s
	}
	if v, ok := meta["depends"]; ok {
		depends, err := stringList(v)
		if err != nil {
			return nil, contentErr(logicalPath, header, "depends must be a list of collection names", err)
		}
		doc.Depends = depends
	}
	return doc, nil
}

// Equivalent reports content equivalence: equality of every field except the
// derived URL and Rendered. Equivalence, not identity, drives re-render
// decisions between graph snapshots.
func Equivalent(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Path == b.Path &&
		a.Body == b.Body &&
		a.Permalink == b.Permalink &&
		a.LayoutName == b.LayoutName &&
		a.IsLayout == b.IsLayout &&
		reflect.DeepEqual(a.Date, b.Date) &&
		reflect.DeepEqual(a.Collections, b.Collections) &&
		reflect.DeepEqual(a.Depends, b.Depends) &&
		reflect.DeepEqual(a.Metadata, b.Metadata)
}

// LayoutPath resolves a frontmatter layout name to its content path.
func LayoutPath(name string) string {
	return LayoutPrefix + name + Extension
}

// IsLayoutPath reports whether a logical path lives in the layout namespace.
// This is a pure function of the path; layout-ness is never inferred from
// runtime state.
func IsLayoutPath(p string) bool {
	return strings.HasPrefix(path.Clean(p), LayoutPrefix)
}

// IsContentPath reports whether a logical path names a content document.
func IsContentPath(p string) bool {
	return strings.HasSuffix(p, Extension)
}

// CollectionsFromPath derives the collection names a document belongs to from
// its storage path. Each leading directory is a collection, as is the
// underscore-joined chain of directories up to that point:
// "books/fantasy/page.vox" is in "books", "fantasy", and "books_fantasy".
// Layout documents belong to no collection.
func CollectionsFromPath(p string) []string {
	p = path.Clean(p)
	if IsLayoutPath(p) {
		return nil
	}
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return nil
	}
	components := strings.Split(dir, "/")
	var results []string
	var chain []string
	for _, component := range components {
		if component == "" {
			continue
		}
		results = append(results, component)
		chain = append(chain, component)
		joined := strings.Join(chain, "_")
		if joined != component {
			results = append(results, joined)
		}
	}
	return results
}

// PrimaryCollection returns the most specific collection name (the last one
// derived from the path), bound as {{collection}} by permalink presets.
func (d *Document) PrimaryCollection() string {
	if len(d.Collections) == 0 {
		return ""
	}
	return d.Collections[len(d.Collections)-1]
}

// ContextMap exposes a document to the template renderer. Rendered state is
// included so layouts can embed their consumer's output.
func (d *Document) ContextMap() map[string]any {
	m := map[string]any{
		"path":        d.Path,
		"data":        d.Metadata,
		"content":     d.Body,
		"permalink":   d.Permalink,
		"collections": d.Collections,
		"depends":     d.Depends,
		"layout":      d.LayoutName,
		"is_layout":   d.IsLayout,
		"url":         d.URL,
		"rendered":    d.Rendered,
	}
	if d.Date != nil {
		m["date"] = d.Date.Map()
	}
	return m
}

// stringList coerces a YAML list value into []string, rejecting anything that
// is not a flat list of strings.
func stringList(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string element, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
