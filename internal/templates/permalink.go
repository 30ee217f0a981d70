package templates

// Named permalink presets. Anything not in this table is used verbatim as the
// permalink template.
var permalinkPresets = map[string]string{
	"date":     "{{collection}}/{{date.year}}/{{date.month}}/{{date.day}}/{{data.title}}.html",
	"pretty":   "{{collection}}/{{date.year}}/{{date.month}}/{{date.day}}/{{data.title}}/index.html",
	"ordinal":  "{{collection}}/{{date.year}}/{{date.y_day}}/{{data.title}}.html",
	"weekdate": "{{collection}}/{{date.year}}/W{{date.week}}/{{date.short_day}}/{{data.title}}.html",
	"none":     "{{collection}}/{{data.title}}.html",
}

// ExpandPermalink resolves a permalink pattern to a template string,
// substituting known presets and passing anything else through.
func ExpandPermalink(pattern string) string {
	if tmpl, ok := permalinkPresets[pattern]; ok {
		return tmpl
	}
	return pattern
}
