package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

// GitProvider serves content from a shallow in-memory clone of a git
// repository; output writes and removals are delegated to a separate sink
// provider (a git source is read-only).
type GitProvider struct {
	worktree billy.Filesystem
	sink     Provider
}

// NewGitProvider clones url (optionally a specific branch) into memory and
// wires sink as the output destination.
func NewGitProvider(url, branch string, sink Provider) (*GitProvider, error) {
	worktree := memfs.New()
	opts := &gogit.CloneOptions{
		URL:   url,
		Depth: 1,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}
	if _, err := gogit.Clone(memory.NewStorage(), worktree, opts); err != nil {
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}
	return &GitProvider{worktree: worktree, sink: sink}, nil
}

func (p *GitProvider) ListDocuments() ([]string, error) {
	return p.walk(func(path string) bool {
		return document.IsContentPath(path)
	})
}

func (p *GitProvider) ListSnippets() ([]string, error) {
	return p.walk(func(path string) bool {
		return strings.HasPrefix(path, document.SnippetPrefix)
	})
}

func (p *GitProvider) Read(path string) (string, error) {
	data, err := util.ReadFile(p.worktree, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (p *GitProvider) Write(path string, data []byte) error {
	return p.sink.Write(path, data)
}

func (p *GitProvider) Remove(path string) error {
	return p.sink.Remove(path)
}

func (p *GitProvider) walk(match func(string) bool) ([]string, error) {
	var out []string
	err := util.Walk(p.worktree, "/", func(fp string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(fp), "/")
		if match(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk worktree: %w", err)
	}
	return out, nil
}
