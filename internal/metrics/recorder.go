package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines the metric hooks of a run. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	ObserveTaskDuration(phase string, d time.Duration, result ResultLabel)
	IncTaskResult(phase string, result ResultLabel)
	SetWorkers(phase string, n int)
	AddDuplicatesRemoved(n int)
	AddMergeWarnings(n int)
	SetBrokenLinks(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)             {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                     {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                     {}
func (NoopRecorder) IncBuildOutcome(string)                                 {}
func (NoopRecorder) ObserveTaskDuration(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncTaskResult(string, ResultLabel)                      {}
func (NoopRecorder) SetWorkers(string, int)                                 {}
func (NoopRecorder) AddDuplicatesRemoved(int)                               {}
func (NoopRecorder) AddMergeWarnings(int)                                   {}
func (NoopRecorder) SetBrokenLinks(int)                                     {}
