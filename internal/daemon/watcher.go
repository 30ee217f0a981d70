package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Watcher monitors the site root recursively and emits classified changes.
// Events under output/ and .git/ are ignored; directories created while
// watching are added to the watch set.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	log     *slog.Logger
	changes chan Change
}

// NewWatcher creates a recursive watcher rooted at dir.
func NewWatcher(dir string, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	w := &Watcher{
		root:    absRoot,
		watcher: fsw,
		log:     log,
		changes: make(chan Change, 256),
	}
	if err := w.addRecursive(absRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Changes returns the stream of classified filesystem changes.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Run pumps fsnotify events until the context ends. It owns the changes
// channel and closes it on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if skipPath(rel) {
		return
	}

	var op Op
	switch {
	case event.Op.Has(fsnotify.Create):
		op = OpCreate
		// New directories must join the watch set before events inside
		// them can arrive.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn("watch new directory", logfields.Path(rel), logfields.Error(err))
			}
			return
		}
	case event.Op.Has(fsnotify.Write):
		op = OpModify
	case event.Op.Has(fsnotify.Rename):
		op = OpRename
	case event.Op.Has(fsnotify.Remove):
		op = OpRemove
	default:
		// Chmod only.
		return
	}

	select {
	case w.changes <- Change{Op: op, Path: rel}:
	case <-ctx.Done():
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(w.root, path)
		if rerr != nil {
			return rerr
		}
		if rel != "." && skipPath(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func skipPath(rel string) bool {
	return rel == "output" || strings.HasPrefix(rel, "output/") ||
		rel == ".git" || strings.HasPrefix(rel, ".git/")
}
