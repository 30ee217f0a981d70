// Package templates provides the template-rendering capability the build
// pipeline consumes. The engine is Liquid; a markdown block tag converts
// embedded Markdown to HTML, and snippet includes are expanded before parsing.
package templates

// Renderer renders template text against a set of bindings. Errors carry
// enough detail to attribute the failure to the offending template; callers
// add the document path.
type Renderer interface {
	Render(templateText string, context map[string]any) (string, error)
}
