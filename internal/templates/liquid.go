package templates

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/osteele/liquid"
	"github.com/osteele/liquid/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// maxIncludeDepth bounds snippet expansion so mutually-including snippets
// fail instead of looping.
const maxIncludeDepth = 8

var includeTag = regexp.MustCompile(`\{\%-?\s*include\s+"?([^\s"%]+)"?\s*-?\%\}`)

// LiquidRenderer renders Liquid templates with a {% markdown %} block and
// textual {% include name %} snippet expansion.
type LiquidRenderer struct {
	engine   *liquid.Engine
	snippets map[string]string
}

// NewLiquidRenderer builds a renderer over a snippet table keyed by logical
// path (e.g. "snippets/header.html").
func NewLiquidRenderer(snippets map[string]string) *LiquidRenderer {
	engine := liquid.NewEngine()
	engine.RegisterBlock("markdown", markdownBlock)
	return &LiquidRenderer{engine: engine, snippets: snippets}
}

func (r *LiquidRenderer) Render(templateText string, context map[string]any) (string, error) {
	expanded, err := r.expandIncludes(templateText)
	if err != nil {
		return "", err
	}
	out, err := r.engine.ParseAndRenderString(expanded, liquid.Bindings(context))
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// expandIncludes substitutes {% include name %} tags with snippet contents
// before the Liquid parse, so snippets may themselves use Liquid syntax.
func (r *LiquidRenderer) expandIncludes(text string) (string, error) {
	for depth := 0; includeTag.MatchString(text); depth++ {
		if depth >= maxIncludeDepth {
			return "", fmt.Errorf("snippet include depth exceeds %d (include cycle?)", maxIncludeDepth)
		}
		var expandErr error
		text = includeTag.ReplaceAllStringFunc(text, func(tag string) string {
			name := includeTag.FindStringSubmatch(tag)[1]
			body, ok := r.lookupSnippet(name)
			if !ok {
				expandErr = fmt.Errorf("include %q: snippet not found", name)
				return tag
			}
			return body
		})
		if expandErr != nil {
			return "", expandErr
		}
	}
	return text, nil
}

func (r *LiquidRenderer) lookupSnippet(name string) (string, bool) {
	if body, ok := r.snippets[name]; ok {
		return body, true
	}
	if !strings.HasPrefix(name, "snippets/") {
		if body, ok := r.snippets["snippets/"+name]; ok {
			return body, true
		}
	}
	return "", false
}

func markdownBlock(c render.Context) (string, error) {
	inner, err := c.InnerString()
	if err != nil {
		return "", err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(inner), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
