package document

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingFrontmatter indicates the document does not start with a `---`
// delimited YAML header block.
var ErrMissingFrontmatter = errors.New("frontmatter block not found")

// ErrUnterminatedFrontmatter indicates the opening delimiter was found but the
// closing delimiter is missing.
var ErrUnterminatedFrontmatter = errors.New("frontmatter closing delimiter is missing")

// SplitFrontmatter separates the YAML frontmatter (`---` delimited) from the
// document body. Every content document must carry a header block; absence is
// an error rather than an empty header.
func SplitFrontmatter(content string) (header string, body string, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	const delim = "---\n"
	if !strings.HasPrefix(normalized, delim) {
		return "", "", ErrMissingFrontmatter
	}
	rest := normalized[len(delim):]
	if strings.HasPrefix(rest, delim) {
		return "", rest[len(delim):], nil
	}
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		// A final "---" without trailing newline still closes the block.
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-len("\n---")+1], "", nil
		}
		return "", "", ErrUnterminatedFrontmatter
	}
	header = rest[:idx+1]
	body = rest[idx+1+len(delim):]
	return header, body, nil
}

// parseHeader parses raw YAML frontmatter (without delimiters) into a map.
func parseHeader(header string) (map[string]any, error) {
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
