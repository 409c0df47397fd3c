package pipeline

import (
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/metrics"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

// BuildObserver receives callbacks around stage execution and the end of a run.
type BuildObserver interface {
	OnStageStart(stage report.StageName)
	OnStageComplete(stage report.StageName, duration time.Duration, result report.StageResult)
	OnBuildComplete(r *report.BuildReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(report.StageName)                                       {}
func (NoopObserver) OnStageComplete(report.StageName, time.Duration, report.StageResult) {}
func (NoopObserver) OnBuildComplete(*report.BuildReport)                                 {}

// recorderObserver reports run-level metrics. Stage metrics are emitted by
// BuildReport.RecordStage.
type recorderObserver struct{ rec metrics.Recorder }

func (recorderObserver) OnStageStart(report.StageName)                                       {}
func (recorderObserver) OnStageComplete(report.StageName, time.Duration, report.StageResult) {}
func (r recorderObserver) OnBuildComplete(rep *report.BuildReport) {
	r.rec.ObserveBuildDuration(rep.End.Sub(rep.Start))
	r.rec.IncBuildOutcome(string(rep.Outcome))
}
