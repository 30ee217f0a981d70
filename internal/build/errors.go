package build

import "fmt"

// RenderError attributes a template failure to one document. It aborts the
// whole build pass: partial output is never committed.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
