// Package daemon runs the watch-mode machinery: a recursive filesystem
// watcher, a debouncer that coalesces event bursts into change batches, the
// rebuild loop that feeds batches through the build pipeline, and an optional
// periodic full rebuild.
package daemon

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

// Op classifies one filesystem change.
type Op int

const (
	OpCreate Op = iota
	OpModify
	OpRename
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpRename:
		return "rename"
	default:
		return "remove"
	}
}

// Change is one classified filesystem event, path relative to the site root.
type Change struct {
	Op   Op
	Path string
}

// Global reports whether the change touches state shared by every document:
// the global context file or the snippet tree.
func (c Change) Global() bool {
	return c.Path == config.GlobalFile || strings.HasPrefix(c.Path, document.SnippetPrefix)
}

// Batch is a debounced group of changes, processed by exactly one rebuild
// pass. The graph is rebuilt from scratch per batch, so the changes
// themselves are informational; GlobalChanged is the one flag the pipeline
// consumes.
type Batch struct {
	Changes       []Change
	GlobalChanged bool
	FirstAt       time.Time
	LastAt        time.Time
}

func (b *Batch) add(c Change, at time.Time) {
	if len(b.Changes) == 0 {
		b.FirstAt = at
	}
	b.LastAt = at
	b.Changes = append(b.Changes, c)
	if c.Global() {
		b.GlobalChanged = true
	}
}
