package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/metrics"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
	"git.home.luguber.info/inful/sdkdocs/internal/scheduler"
)

// stageExtract runs the extraction tool for the core component, every
// component of the dependency map and every enumerated component, each one
// after its dependencies.
func stageExtract(ctx context.Context, bs *BuildState) error {
	ext := bs.Extractor.WithDependencies(bs.Deps)
	obs := &phaseObserver{bs: bs, phase: report.PhaseExtract}
	s := scheduler.New(bs.Deps, bs.Plan.Workers, ext.Extract,
		scheduler.WithObserver(obs), scheduler.WithLogger(bs.Logger))
	bs.Generator.recorder.SetWorkers(string(report.PhaseExtract), s.Workers())

	roots := []string{bs.Catalog.Core().Name}
	for _, c := range bs.Catalog.All() {
		roots = append(roots, c.Name)
	}
	err := s.Run(ctx, roots...)

	handles := s.Handles()
	if err != nil && len(handles) == 0 {
		return report.NewFatalStageError(report.StageExtract, err)
	}

	for _, h := range handles {
		comp := bs.Catalog.Lookup(h.Component())
		switch {
		case h.Err() == nil:
			bs.Extracted = append(bs.Extracted, comp)
		case h.Skipped():
			bs.Report.SetComponentOutcome(comp.Name, string(comp.Group), report.PhaseExtract, report.ComponentSkipped, h.Err())
			bs.Generator.recorder.IncTaskResult(string(report.PhaseExtract), metrics.ResultSkipped)
		}
	}
	sortComponents(bs.Extracted)
	bs.Logger.Info("Extraction finished",
		logfields.Count(len(bs.Extracted)), logfields.Workers(s.Workers()))

	switch {
	case ctx.Err() != nil:
		return report.NewCanceledStageError(report.StageExtract, ctx.Err())
	case err != nil:
		return report.NewPartialStageError(report.StageExtract, err)
	}
	return nil
}

// phaseObserver records per-component task results of one phase.
type phaseObserver struct {
	bs    *BuildState
	phase report.Phase
}

func (o *phaseObserver) OnSubmit(name string) {
	o.bs.Logger.Debug("Task submitted", logfields.Component(name), logfields.Stage(string(o.phase)))
}

func (o *phaseObserver) OnComplete(name string, err error, d time.Duration) {
	o.record(o.bs.Catalog.Lookup(name), err, d)
}

func (o *phaseObserver) record(comp component.Component, err error, d time.Duration) {
	outcome, result := report.ComponentSuccess, metrics.ResultSuccess
	switch {
	case err == nil:
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		outcome, result = report.ComponentSkipped, metrics.ResultCanceled
	default:
		outcome, result = report.ComponentFailed, metrics.ResultFailed
	}
	o.bs.Report.SetComponentOutcome(comp.Name, string(comp.Group), o.phase, outcome, err)
	rec := o.bs.Generator.recorder
	rec.ObserveTaskDuration(string(o.phase), d, result)
	rec.IncTaskResult(string(o.phase), result)
}
