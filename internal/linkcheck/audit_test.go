package linkcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditFindsBrokenInternalLinks(t *testing.T) {
	pages := map[string]string{
		"output/index.html": `<html><body>
			<a href="/posts/a.html">ok</a>
			<a href="/posts/missing.html">broken</a>
			<a href="https://example.com/x">external</a>
			<a href="#section">fragment</a>
			<a href="mailto:hi@example.com">mail</a>
		</body></html>`,
	}
	outputs := []string{"output/index.html", "output/posts/a.html"}

	broken := Audit(pages, outputs)
	assert.Len(t, broken, 1)
	assert.Equal(t, "output/index.html", broken[0].Page)
	assert.Equal(t, "/posts/missing.html", broken[0].Href)
	assert.Equal(t, "output/posts/missing.html", broken[0].Target)
}

func TestAuditResolvesRelativeAndDirectoryLinks(t *testing.T) {
	pages := map[string]string{
		"output/posts/a.html": `<a href="b.html">sibling</a> <a href="../about/">dir</a>`,
	}
	outputs := []string{"output/posts/a.html", "output/posts/b.html", "output/about/index.html"}

	broken := Audit(pages, outputs)
	assert.Empty(t, broken)
}

func TestAuditQueryStringStripped(t *testing.T) {
	pages := map[string]string{
		"output/index.html": `<a href="/posts/a.html?ref=home">ok</a>`,
	}
	broken := Audit(pages, []string{"output/index.html", "output/posts/a.html"})
	assert.Empty(t, broken)
}
