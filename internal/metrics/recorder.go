package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PostProcessLabel enumerates per-page post-processing results.
type PostProcessLabel string

const (
	PostProcessRewritten PostProcessLabel = "rewritten"
	PostProcessUnchanged PostProcessLabel = "unchanged"
	PostProcessFailed    PostProcessLabel = "failed"
)

// Recorder defines observability hooks for build, stage and page metrics.
// All methods must be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	ObserveEventDuration(event string, d time.Duration)
	AddDocuments(phase string, n int) // phase: read|written
	IncPostProcess(result PostProcessLabel)
	IncWarning(category string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) ObserveEventDuration(string, time.Duration) {}
func (NoopRecorder) AddDocuments(string, int)                   {}
func (NoopRecorder) IncPostProcess(PostProcessLabel)            {}
func (NoopRecorder) IncWarning(string)                          {}
