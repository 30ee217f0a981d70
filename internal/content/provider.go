// Package content abstracts access to the site's content tree. The build
// pipeline never touches the filesystem directly; it goes through a Provider
// so filesystem, in-memory, and git-backed sources are interchangeable.
package content

// Provider enumerates and accesses content by logical path. Logical paths are
// slash-separated and relative to the site root (e.g. "posts/a.vox",
// "layouts/post.vox", "output/index.html").
//
// A Provider is an explicitly passed capability, never a process-wide
// singleton; every build pass receives the one it should use.
type Provider interface {
	// ListDocuments returns the logical paths of all content documents
	// (reserved extension), including layouts.
	ListDocuments() ([]string, error)

	// ListSnippets returns the logical paths of all template snippets.
	ListSnippets() ([]string, error)

	// Read returns a file's contents as text.
	Read(path string) (string, error)

	// Write stores bytes at a logical path, creating parents as needed.
	Write(path string, data []byte) error

	// Remove deletes a file. Removing a missing file is not an error.
	Remove(path string) error
}
