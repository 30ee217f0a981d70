package build

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/document"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

func testOrchestrator(p content.Provider) *Orchestrator {
	return &Orchestrator{
		Provider: p,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  metrics.NoopRecorder{},
	}
}

func TestInitialBuildEndToEnd(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox":      "---\ntitle: Alpha\nlayout: post\npermalink: none\n---\nalpha body",
		"layouts/post.vox": "---\n---\n<html>{{ page.rendered }}</html>",
	})
	result, err := testOrchestrator(p).InitialBuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, KindInitial, result.Kind)
	assert.NotEmpty(t, result.ID)
	assert.ElementsMatch(t, []string{"posts/a.vox", "layouts/post.vox"}, result.Rendered)
	assert.Equal(t, []string{"output/posts/Alpha.html"}, result.Written)

	// The layout wraps the page, and the wrapper's output wins at the
	// shared output path.
	out, err := p.Read("output/posts/Alpha.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>alpha body</html>", out)
}

func TestRebuildWithNoChangesIsNoop(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox":      "---\ntitle: Alpha\nlayout: post\npermalink: none\n---\nalpha body",
		"layouts/post.vox": "---\n---\n<html>{{ page.rendered }}</html>",
	})
	o := testOrchestrator(p)
	initial, err := o.InitialBuild(context.Background())
	require.NoError(t, err)

	result, err := o.Rebuild(context.Background(), initial.Snapshot, false)
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Empty(t, result.Rendered)
	assert.Empty(t, result.Written)
	assert.Empty(t, result.RemovedOutputs)

	// Reconciliation must have carried render state onto every page even
	// though nothing rendered; an unrendered node without prior state would
	// mean an invalidation gap.
	for path, id := range result.Snapshot.Paths {
		doc := result.Snapshot.Doc(id)
		assert.NotEmpty(t, doc.URL, "page %s lost its url", path)
		assert.NotEmpty(t, doc.Rendered, "page %s lost its rendered output", path)
	}
}

func TestLayoutChangePropagatesToConsumersOnly(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox":      "---\ntitle: Alpha\nlayout: post\npermalink: none\n---\nalpha",
		"posts/b.vox":      "---\ntitle: Beta\nlayout: post\npermalink: none\n---\nbeta",
		"posts/c.vox":      "---\ntitle: Gamma\nlayout: bare\npermalink: none\n---\ngamma",
		"layouts/post.vox": "---\n---\n<article>{{ page.rendered }}</article>",
		"layouts/bare.vox": "---\n---\n{{ page.rendered }}",
	})
	o := testOrchestrator(p)
	initial, err := o.InitialBuild(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Write("layouts/post.vox", []byte("---\n---\n<main>{{ page.rendered }}</main>")))
	result, err := o.Rebuild(context.Background(), initial.Snapshot, false)
	require.NoError(t, err)

	assert.False(t, result.NoOp)
	// Only the shared layout's instances produced new output; the pages'
	// own bodies were unchanged.
	assert.ElementsMatch(t, []string{"layouts/post.vox", "layouts/post.vox"}, result.Rendered)
	assert.ElementsMatch(t, []string{"output/posts/Alpha.html", "output/posts/Beta.html"}, result.Written)

	out, err := p.Read("output/posts/Alpha.html")
	require.NoError(t, err)
	assert.Equal(t, "<main>alpha</main>", out)
	gamma, err := p.Read("output/posts/Gamma.html")
	require.NoError(t, err)
	assert.Equal(t, "gamma", gamma)
}

func TestNewCollectionMemberPropagatesToDependent(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"index.vox":   "---\npermalink: index.html\ndepends:\n  - posts\n---\n{% for p in posts %}[{{ p.path }}]{% endfor %}",
		"posts/a.vox": "---\ntitle: Alpha\npermalink: none\n---\nalpha",
	})
	o := testOrchestrator(p)
	initial, err := o.InitialBuild(context.Background())
	require.NoError(t, err)

	index, err := p.Read("output/index.html")
	require.NoError(t, err)
	assert.Equal(t, "[posts/a.vox]", index)

	require.NoError(t, p.Write("posts/new.vox", []byte("---\ntitle: New\npermalink: none\n---\nfresh")))
	result, err := o.Rebuild(context.Background(), initial.Snapshot, false)
	require.NoError(t, err)

	assert.Contains(t, result.Rendered, "index.vox")
	index, err = p.Read("output/index.html")
	require.NoError(t, err)
	assert.Equal(t, "[posts/a.vox][posts/new.vox]", index)
}

func TestRemovalCleansUpOutput(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox": "---\ntitle: Alpha\npermalink: none\n---\nalpha",
		"posts/b.vox": "---\ntitle: Beta\npermalink: none\n---\nbeta",
	})
	o := testOrchestrator(p)
	initial, err := o.InitialBuild(context.Background())
	require.NoError(t, err)
	require.True(t, p.Exists("output/posts/Alpha.html"))

	require.NoError(t, p.Remove("posts/a.vox"))
	result, err := o.Rebuild(context.Background(), initial.Snapshot, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"output/posts/Alpha.html"}, result.RemovedOutputs)
	assert.NotContains(t, result.Written, "output/posts/Alpha.html")
	assert.False(t, p.Exists("output/posts/Alpha.html"))
	assert.True(t, p.Exists("output/posts/Beta.html"))
}

func TestRenameProducesRemovalAndRender(t *testing.T) {
	body := "---\ntitle: Alpha\npermalink: \"{{page.path}}.html\"\n---\nalpha"
	p := content.NewMemProvider(map[string]string{"posts/a.vox": body})
	o := testOrchestrator(p)
	initial, err := o.InitialBuild(context.Background())
	require.NoError(t, err)
	require.True(t, p.Exists("output/posts/a.vox.html"))

	require.NoError(t, p.Remove("posts/a.vox"))
	require.NoError(t, p.Write("posts/b.vox", []byte(body)))
	result, err := o.Rebuild(context.Background(), initial.Snapshot, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"output/posts/a.vox.html"}, result.RemovedOutputs)
	assert.Equal(t, []string{"output/posts/b.vox.html"}, result.Written)
	assert.False(t, p.Exists("output/posts/a.vox.html"))
	assert.True(t, p.Exists("output/posts/b.vox.html"))
}

func TestGlobalChangeRerendersEverything(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"global.yaml": "site_name: One",
		"posts/a.vox": "---\ntitle: Alpha\npermalink: none\n---\n{{ global.site_name }}",
		"posts/b.vox": "---\ntitle: Beta\npermalink: none\n---\n{{ global.site_name }}",
	})
	o := testOrchestrator(p)
	initial, err := o.InitialBuild(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Write("global.yaml", []byte("site_name: Two")))
	result, err := o.Rebuild(context.Background(), initial.Snapshot, true)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"output/posts/Alpha.html", "output/posts/Beta.html"}, result.Written)
	out, err := p.Read("output/posts/Beta.html")
	require.NoError(t, err)
	assert.Equal(t, "Two", out)
}

func TestDatePermalinkPreset(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox": "---\ntitle: Alpha\ndate: 2024-03-09\npermalink: date\n---\nalpha",
	})
	result, err := testOrchestrator(p).InitialBuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"output/posts/2024/03/09/Alpha.html"}, result.Written)
}

func TestMissingLayoutIsFatalAndAttributed(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox": "---\ntitle: Alpha\nlayout: nope\n---\nalpha",
	})
	_, err := testOrchestrator(p).InitialBuild(context.Background())
	require.Error(t, err)
	var contentErr *document.ContentError
	require.ErrorAs(t, err, &contentErr)
	assert.Equal(t, "posts/a.vox", contentErr.Path)
	assert.Contains(t, err.Error(), "layouts/nope.vox")
}

func TestLayoutSelfUseIsRejected(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox":      "---\nlayout: wrap\n---\nalpha",
		"layouts/wrap.vox": "---\nlayout: wrap\n---\n{{ page.rendered }}",
	})
	_, err := testOrchestrator(p).InitialBuild(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uses itself")
}

func TestRenderFailureAbortsPass(t *testing.T) {
	p := content.NewMemProvider(map[string]string{
		"posts/a.vox": "---\ntitle: Alpha\npermalink: none\n---\n{% if %}",
	})
	_, err := testOrchestrator(p).InitialBuild(context.Background())
	require.Error(t, err)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "posts/a.vox", renderErr.Path)
}
