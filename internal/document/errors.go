package document

import "fmt"

// ContentError attributes a parse problem to a single document. It carries the
// document's logical path and the raw header text so build failures can be
// traced back to the offending file without re-reading it.
type ContentError struct {
	Path   string
	Header string
	Reason string
	Err    error
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ContentError) Unwrap() error { return e.Err }

func contentErr(path, header, reason string, err error) *ContentError {
	return &ContentError{Path: path, Header: header, Reason: reason, Err: err}
}
