// Package metrics provides observability hooks for the docs ingestion
// pipeline. Components receive a Recorder through injection; the default
// NoopRecorder keeps the pipeline free of conditional instrumentation, and
// PrometheusRecorder activates real collection for the preview server.
package metrics

import "time"

// Recorder defines observability hooks for pipeline and fetch metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	ObserveFetchDuration(d time.Duration, success bool)
	IncBuildOutcome(outcome string) // outcome: success|failed
	SetPagesBuilt(n int)
	SetSectionsBuilt(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) ObserveFetchDuration(time.Duration, bool)   {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetPagesBuilt(int)                          {}
func (NoopRecorder) SetSectionsBuilt(int)                       {}
