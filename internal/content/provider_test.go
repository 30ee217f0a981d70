package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemProviderListing(t *testing.T) {
	p := NewMemProvider(map[string]string{
		"posts/b.vox":         "---\n---\nb",
		"posts/a.vox":         "---\n---\na",
		"layouts/post.vox":    "---\n---\nl",
		"snippets/header.txt": "snippet",
		"global.yaml":         "locale: en-US",
	})

	docs, err := p.ListDocuments()
	require.NoError(t, err)
	assert.Equal(t, []string{"layouts/post.vox", "posts/a.vox", "posts/b.vox"}, docs)

	snips, err := p.ListSnippets()
	require.NoError(t, err)
	assert.Equal(t, []string{"snippets/header.txt"}, snips)
}

func TestMemProviderRoundtrip(t *testing.T) {
	p := NewMemProvider(nil)
	require.NoError(t, p.Write("output/a.html", []byte("hello")))

	text, err := p.Read("output/a.html")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	require.NoError(t, p.Remove("output/a.html"))
	_, err = p.Read("output/a.html")
	assert.Error(t, err)

	// Removing again is not an error.
	assert.NoError(t, p.Remove("output/a.html"))
}

func TestFSProviderListsAndSkipsOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/a.vox", "---\n---\na")
	writeFile(t, root, "layouts/post.vox", "---\n---\nl")
	writeFile(t, root, "output/stale.vox", "must be skipped")
	writeFile(t, root, "snippets/head.html", "<head/>")
	writeFile(t, root, "README.md", "not content")

	p := NewFSProvider(root)
	docs, err := p.ListDocuments()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"posts/a.vox", "layouts/post.vox"}, docs)

	snips, err := p.ListSnippets()
	require.NoError(t, err)
	assert.Equal(t, []string{"snippets/head.html"}, snips)
}

func TestFSProviderWriteCreatesParents(t *testing.T) {
	root := t.TempDir()
	p := NewFSProvider(root)
	require.NoError(t, p.Write("output/posts/2024/a.html", []byte("x")))

	data, err := os.ReadFile(filepath.Join(root, "output", "posts", "2024", "a.html"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	require.NoError(t, p.Remove("output/posts/2024/a.html"))
	assert.NoError(t, p.Remove("output/posts/2024/a.html"), "removing a missing file is not an error")
}

func writeFile(t *testing.T, root, rel, text string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(text), 0o644))
}
