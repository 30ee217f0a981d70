package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `---
title: Hello
date: 2024-03-09T10:30:00Z
layout: post
permalink: date
depends:
  - posts
---
# Hello

Body text.
`

func TestParsePage(t *testing.T) {
	doc, err := Parse("posts/hello.vox", samplePage, DefaultLocale())
	require.NoError(t, err)

	assert.Equal(t, "posts/hello.vox", doc.Path)
	assert.Equal(t, "Hello", doc.Metadata["title"])
	assert.Equal(t, "post", doc.LayoutName)
	assert.Equal(t, "date", doc.Permalink)
	assert.Equal(t, []string{"posts"}, doc.Depends)
	assert.Equal(t, []string{"posts"}, doc.Collections)
	assert.False(t, doc.IsLayout)
	require.NotNil(t, doc.Date)
	assert.Equal(t, "2024", doc.Date.Year)
	assert.Equal(t, "03", doc.Date.Month)
	assert.Equal(t, "09", doc.Date.Day)
	assert.Contains(t, doc.Body, "Body text.")
	assert.Empty(t, doc.URL)
	assert.Empty(t, doc.Rendered)
}

func TestParseLayout(t *testing.T) {
	doc, err := Parse("layouts/post.vox", "---\n---\n{{ page.rendered }}\n", DefaultLocale())
	require.NoError(t, err)
	assert.True(t, doc.IsLayout)
	assert.Nil(t, doc.Collections)
}

func TestParseMissingFrontmatter(t *testing.T) {
	_, err := Parse("posts/a.vox", "no header here", DefaultLocale())
	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "posts/a.vox", cerr.Path)
	assert.True(t, errors.Is(err, ErrMissingFrontmatter))
}

func TestParseUnterminatedFrontmatter(t *testing.T) {
	_, err := Parse("posts/a.vox", "---\ntitle: x\n", DefaultLocale())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedFrontmatter))
}

func TestParseInvalidDepends(t *testing.T) {
	_, err := Parse("posts/a.vox", "---\ndepends: posts\n---\nbody\n", DefaultLocale())
	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "depends")
	assert.Contains(t, cerr.Header, "depends: posts")
}

func TestParseInvalidDate(t *testing.T) {
	_, err := Parse("posts/a.vox", "---\ndate: not-a-date\n---\nbody\n", DefaultLocale())
	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "date")
}

func TestCollectionsFromPath(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"index.vox", nil},
		{"posts/a.vox", []string{"posts"}},
		{"books/fantasy/page.vox", []string{"books", "fantasy", "books_fantasy"}},
		{"layouts/post.vox", nil},
	}
	for _, tc := range cases {
		got := CollectionsFromPath(tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestEquivalenceIgnoresDerivedFields(t *testing.T) {
	a, err := Parse("posts/a.vox", samplePage, DefaultLocale())
	require.NoError(t, err)
	b, err := Parse("posts/a.vox", samplePage, DefaultLocale())
	require.NoError(t, err)

	b.URL = "posts/2024/03/09/Hello.html"
	b.Rendered = "<h1>Hello</h1>"
	assert.True(t, Equivalent(a, b), "url/rendered must not affect equivalence")

	b.Body = "changed"
	assert.False(t, Equivalent(a, b))
}

func TestEquivalenceSeesMetadataChange(t *testing.T) {
	a, _ := Parse("posts/a.vox", "---\ntitle: One\n---\nbody\n", DefaultLocale())
	b, _ := Parse("posts/a.vox", "---\ntitle: Two\n---\nbody\n", DefaultLocale())
	assert.False(t, Equivalent(a, b))
}

func TestLayoutPath(t *testing.T) {
	if got := LayoutPath("post"); got != "layouts/post.vox" {
		t.Fatalf("unexpected layout path %q", got)
	}
}

func TestPrimaryCollection(t *testing.T) {
	doc := &Document{Collections: []string{"books", "fantasy", "books_fantasy"}}
	assert.Equal(t, "books_fantasy", doc.PrimaryCollection())
	assert.Equal(t, "", (&Document{}).PrimaryCollection())
}
