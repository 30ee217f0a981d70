package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBindings(t *testing.T) {
	r := NewLiquidRenderer(nil)
	out, err := r.Render("Hello, {{ page.data.title }}!", map[string]any{
		"page": map[string]any{"data": map[string]any{"title": "World"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out)
}

func TestRenderSyntaxErrorIsReported(t *testing.T) {
	r := NewLiquidRenderer(nil)
	_, err := r.Render("{% if %}", nil)
	assert.Error(t, err)
}

func TestMarkdownBlock(t *testing.T) {
	r := NewLiquidRenderer(nil)
	out, err := r.Render("{% markdown %}# Title{% endmarkdown %}", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
}

func TestSnippetInclude(t *testing.T) {
	r := NewLiquidRenderer(map[string]string{
		"snippets/greeting.liquid": "Hello, {{ name }}",
	})
	out, err := r.Render("{% include greeting.liquid %}!", map[string]any{"name": "Vi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Vi!", out)
}

func TestSnippetIncludeNested(t *testing.T) {
	r := NewLiquidRenderer(map[string]string{
		"snippets/outer.liquid": "[{% include inner.liquid %}]",
		"snippets/inner.liquid": "core",
	})
	out, err := r.Render("{% include outer.liquid %}", nil)
	require.NoError(t, err)
	assert.Equal(t, "[core]", out)
}

func TestSnippetIncludeMissing(t *testing.T) {
	r := NewLiquidRenderer(nil)
	_, err := r.Render("{% include nope.liquid %}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.liquid")
}

func TestSnippetIncludeCycleBounded(t *testing.T) {
	r := NewLiquidRenderer(map[string]string{
		"snippets/a.liquid": "{% include b.liquid %}",
		"snippets/b.liquid": "{% include a.liquid %}",
	})
	_, err := r.Render("{% include a.liquid %}", nil)
	assert.Error(t, err)
}

func TestExpandPermalinkPresets(t *testing.T) {
	cases := map[string]string{
		"date":     "{{collection}}/{{date.year}}/{{date.month}}/{{date.day}}/{{data.title}}.html",
		"pretty":   "{{collection}}/{{date.year}}/{{date.month}}/{{date.day}}/{{data.title}}/index.html",
		"ordinal":  "{{collection}}/{{date.year}}/{{date.y_day}}/{{data.title}}.html",
		"weekdate": "{{collection}}/{{date.year}}/W{{date.week}}/{{date.short_day}}/{{data.title}}.html",
		"none":     "{{collection}}/{{data.title}}.html",
	}
	for preset, want := range cases {
		assert.Equal(t, want, ExpandPermalink(preset), preset)
	}
	// Anything else passes through verbatim.
	assert.Equal(t, "posts/{{ data.slug }}.html", ExpandPermalink("posts/{{ data.slug }}.html"))
}
