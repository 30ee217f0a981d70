// Package metrics defines the observability hooks the build pipeline emits.
package metrics

import "time"

// OutcomeLabel enumerates build pass outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeNoop    OutcomeLabel = "noop"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for build passes. Implementations may
// forward to Prometheus; the NoopRecorder is the default when metrics are not
// configured, and all methods tolerate nil receivers so injection stays
// optional.
type Recorder interface {
	ObserveBuildDuration(kind string, d time.Duration)
	IncBuildOutcome(kind string, outcome OutcomeLabel)
	AddDocumentsRendered(n int)
	SetGraphSize(nodes int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) AddDocumentsRendered(int)                   {}
func (NoopRecorder) SetGraphSize(int)                           {}
