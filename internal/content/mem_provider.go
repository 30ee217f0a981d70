package content

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

// MemProvider keeps the whole content tree in memory. It backs core tests and
// embedded use; listings are returned sorted so builds are deterministic.
type MemProvider struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemProvider creates an in-memory provider seeded with initial files.
func NewMemProvider(initial map[string]string) *MemProvider {
	files := make(map[string]string, len(initial))
	for k, v := range initial {
		files[k] = v
	}
	return &MemProvider{files: files}
}

func (p *MemProvider) ListDocuments() ([]string, error) {
	return p.list(func(path string) bool {
		return document.IsContentPath(path)
	}), nil
}

func (p *MemProvider) ListSnippets() ([]string, error) {
	return p.list(func(path string) bool {
		return strings.HasPrefix(path, document.SnippetPrefix)
	}), nil
}

func (p *MemProvider) Read(path string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	text, ok := p.files[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return text, nil
}

func (p *MemProvider) Write(path string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[path] = string(data)
	return nil
}

func (p *MemProvider) Remove(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, path)
	return nil
}

// Exists reports whether a path is present. Test helper.
func (p *MemProvider) Exists(path string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.files[path]
	return ok
}

// Paths returns all stored paths, sorted. Test helper.
func (p *MemProvider) Paths() []string {
	return p.list(func(string) bool { return true })
}

func (p *MemProvider) list(match func(string) bool) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for path := range p.files {
		if match(path) {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
