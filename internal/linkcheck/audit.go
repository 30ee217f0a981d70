// Package linkcheck audits rendered HTML for internal links that point at no
// generated output. It is advisory only: broken links are warned about, never
// fatal.
package linkcheck

import (
	"path"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// BrokenLink is one internal href with no matching output path.
type BrokenLink struct {
	// Page is the output path of the document containing the link.
	Page string
	// Href is the link as written.
	Href string
	// Target is the output path the href resolved to.
	Target string
}

// Audit parses each rendered document and resolves internal hrefs against the
// set of known output paths. External links (scheme or protocol-relative) and
// fragments are ignored.
func Audit(pages map[string]string, outputPaths []string) []BrokenLink {
	known := sets.New(outputPaths...)
	var broken []BrokenLink
	for _, page := range sets.SortedStrings(keys(pages)) {
		for _, href := range extractHrefs(pages[page]) {
			if !internal(href) {
				continue
			}
			target := resolve(page, href)
			if target == "" || known.Has(target) {
				continue
			}
			broken = append(broken, BrokenLink{Page: page, Href: href, Target: target})
		}
	}
	return broken
}

func keys(m map[string]string) sets.Set[string] {
	s := sets.New[string]()
	for k := range m {
		s.Add(k)
	}
	return s
}

func extractHrefs(doc string) []string {
	var hrefs []string
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return hrefs
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := tokenizer.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}
		for {
			key, val, more := tokenizer.TagAttr()
			if string(key) == "href" {
				hrefs = append(hrefs, string(val))
			}
			if !more {
				break
			}
		}
	}
}

func internal(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "//") {
		return false
	}
	if strings.Contains(href, "://") || strings.HasPrefix(href, "mailto:") {
		return false
	}
	return true
}

// resolve maps an href to an output path. Site-absolute hrefs resolve from
// the output root; relative hrefs resolve against the linking page's
// directory. Directory links fall back to their index.html.
func resolve(page, href string) string {
	href, _, _ = strings.Cut(href, "#")
	href, _, _ = strings.Cut(href, "?")
	if href == "" {
		return ""
	}
	var target string
	if strings.HasPrefix(href, "/") {
		target = path.Join("output", href)
	} else {
		target = path.Join(path.Dir(page), href)
	}
	if strings.HasSuffix(href, "/") || path.Ext(target) == "" {
		target = path.Join(target, "index.html")
	}
	return target
}
