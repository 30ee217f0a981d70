package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

// FSProvider reads and writes the content tree rooted at a directory.
type FSProvider struct {
	root string
}

// NewFSProvider creates a filesystem-backed provider rooted at dir.
func NewFSProvider(dir string) *FSProvider {
	return &FSProvider{root: dir}
}

// skipDirs are subtrees that never contain content documents.
var skipDirs = map[string]bool{
	"output": true,
	".git":   true,
}

func (p *FSProvider) ListDocuments() ([]string, error) {
	var out []string
	err := filepath.WalkDir(p.root, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(p.root, fp)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if skipDirs[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		if document.IsContentPath(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

func (p *FSProvider) ListSnippets() ([]string, error) {
	snippetRoot := filepath.Join(p.root, filepath.FromSlash(strings.TrimSuffix(document.SnippetPrefix, "/")))
	if _, err := os.Stat(snippetRoot); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var out []string
	err := filepath.WalkDir(snippetRoot, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(p.root, fp)
		if rerr != nil {
			return rerr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	return out, nil
}

func (p *FSProvider) Read(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(path)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (p *FSProvider) Write(path string, data []byte) error {
	full := filepath.Join(p.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

func (p *FSProvider) Remove(path string) error {
	err := os.Remove(filepath.Join(p.root, filepath.FromSlash(path)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
